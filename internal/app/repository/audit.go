package repository

import (
	"time"

	"poctracker/internal/app/ds"

	"gorm.io/gorm"
)

// Методы для журнала аудита

// logAudit пишет запись аудита внутри переданной транзакции. Ошибка
// откатывает и основную операцию: смена состояния без следа в журнале
// хуже, чем отказ операции целиком.
func (r *Repository) logAudit(tx *gorm.DB, pocID, action, performedBy string, oldStatus, newStatus *string, comment string) error {
	entry := ds.AuditLogEntry{
		POCID:       pocID,
		Action:      action,
		PerformedBy: performedBy,
		OldStatus:   oldStatus,
		NewStatus:   newStatus,
		Comment:     comment,
		PerformedAt: time.Now(),
	}
	return tx.Create(&entry).Error
}

// GetAuditLog возвращает все записи по заявке, новые сверху
func (r *Repository) GetAuditLog(pocID string) ([]ds.AuditLogEntry, error) {
	var entries []ds.AuditLogEntry
	err := r.db.Where("poc_id = ?", pocID).
		Order("performed_at DESC").
		Order("id DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
