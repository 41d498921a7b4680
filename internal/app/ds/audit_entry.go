package ds

import "time"

// Действия журнала аудита
const (
	AuditActionCreate       = "CREATE"
	AuditActionStatusChange = "STATUS_CHANGE"
	AuditActionSoftDelete   = "SOFT_DELETE"
	AuditActionResetAll     = "RESET_ALL_DATA"
)

// Служебный id для записей bulk reset, не привязанных к конкретной заявке
const AuditSentinelID = "00000000-0000-0000-0000-000000000000"

// 2. Таблица журнала аудита. Записи только добавляются: не обновляются и
// не удаляются, даже когда родительская заявка логически удалена.
type AuditLogEntry struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	POCID       string    `gorm:"type:uuid;not null;index;column:poc_id" json:"poc_id"`
	Action      string    `gorm:"type:varchar(20);not null" json:"action"` // CREATE, STATUS_CHANGE, SOFT_DELETE, RESET_ALL_DATA
	PerformedBy string    `gorm:"type:varchar(100);not null" json:"performed_by"`
	OldStatus   *string   `gorm:"type:varchar(20)" json:"old_status"`
	NewStatus   *string   `gorm:"type:varchar(20)" json:"new_status"`
	Comment     string    `gorm:"type:text" json:"comment,omitempty"`
	PerformedAt time.Time `gorm:"not null" json:"performed_at"`
}

func (AuditLogEntry) TableName() string {
	return "poc_audit_log"
}
