package repository

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"poctracker/internal/app/ds"
	"poctracker/internal/app/status"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Методы для работы с заявками на POC

// Create сохраняет новую заявку в статусе Pending Review и пишет
// CREATE запись в журнал аудита (в одной транзакции с заявкой).
func (r *Repository) Create(req *ds.POCRequest) (*ds.POCRequest, error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	req.ReferenceCode = strings.ToUpper(req.ReferenceCode)
	req.Status = status.Initial
	now := time.Now()
	req.CreatedAt = now
	req.UpdatedAt = now

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(req).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateReference
			}
			return err
		}
		return r.logAudit(tx, req.ID, ds.AuditActionCreate, "system", nil, strPtr(status.Initial), "POC request created")
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// GetByID возвращает заявку по внутреннему id. Логически удаленные
// заявки тоже возвращаются - прямой доступ сохраняется для аудита.
func (r *Repository) GetByID(id string) (*ds.POCRequest, error) {
	var req ds.POCRequest
	err := r.db.Where("id = ?", id).First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}

// GetByReferenceCode ищет по человекочитаемому коду, без учета регистра
func (r *Repository) GetByReferenceCode(code string) (*ds.POCRequest, error) {
	var req ds.POCRequest
	err := r.db.Where("reference_code = ?", strings.ToUpper(code)).First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}

// List возвращает неудаленные заявки с фильтрацией, новые сверху
func (r *Repository) List(f Filters) ([]ds.POCRequest, error) {
	query := r.db.Where("deleted_at IS NULL")

	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.Region != "" {
		query = query.Where("requestor_region = ?", f.Region)
	}
	if f.DealSize != "" {
		query = query.Where("deal_size = ?", f.DealSize)
	}
	if f.Search != "" {
		pattern := "%" + strings.ToLower(f.Search) + "%"
		query = query.Where(
			"LOWER(reference_code) LIKE ? OR LOWER(customer_name) LIKE ? OR LOWER(requestor_name) LIKE ? OR LOWER(requestor_email) LIKE ? OR LOWER(opportunity_id) LIKE ?",
			pattern, pattern, pattern, pattern, pattern,
		)
	}

	var requests []ds.POCRequest
	err := query.Order("created_at DESC").Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

// UpdateStatus применяет переход статуса. Проверяет граф переходов,
// проставляет approved_at при первом переходе в Approved/Active,
// дописывает комментарий в журнал заметок и пишет STATUS_CHANGE
// запись аудита. Все в одной транзакции.
func (r *Repository) UpdateStatus(id, newStatus, actor, comment string) (*ds.POCRequest, error) {
	var updated *ds.POCRequest

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var current ds.POCRequest
		err := tx.Where("id = ? AND deleted_at IS NULL", id).First(&current).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if !status.CanTransition(current.Status, newStatus) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, newStatus)
		}

		now := time.Now()
		updates := map[string]interface{}{
			"status":      newStatus,
			"approved_by": actor,
			"updated_at":  now,
		}

		// approved_at ставится один раз и дальше сохраняется
		if status.IsApproval(newStatus) && current.ApprovedAt == nil {
			updates["approved_at"] = now
		}

		if comment != "" {
			entry := fmt.Sprintf("[%s] %s: %s", now.Format(time.RFC3339), actor, comment)
			if current.InternalNotes != "" {
				entry = current.InternalNotes + "\n" + entry
			}
			updates["internal_notes"] = entry
		}

		if err := tx.Model(&ds.POCRequest{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}

		if err := r.logAudit(tx, id, ds.AuditActionStatusChange, actor, strPtr(current.Status), strPtr(newStatus), comment); err != nil {
			return err
		}

		var after ds.POCRequest
		if err := tx.Where("id = ?", id).First(&after).Error; err != nil {
			return err
		}
		updated = &after
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// SoftDelete помечает заявку удаленной. Уже удаленная заявка
// трактуется как отсутствующая.
func (r *Repository) SoftDelete(id, actor string) (*ds.POCRequest, error) {
	var deleted *ds.POCRequest

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var current ds.POCRequest
		err := tx.Where("id = ? AND deleted_at IS NULL", id).First(&current).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		now := time.Now()
		updates := map[string]interface{}{
			"deleted_at": now,
			"deleted_by": actor,
			"updated_at": now,
		}
		if err := tx.Model(&ds.POCRequest{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}

		if err := r.logAudit(tx, id, ds.AuditActionSoftDelete, actor, strPtr(current.Status), strPtr("Deleted"), "POC request soft deleted"); err != nil {
			return err
		}

		current.DeletedAt = &now
		current.DeletedBy = actor
		current.UpdatedAt = now
		deleted = &current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// ResetAll логически удаляет все неудаленные заявки одним проходом и
// пишет единственную RESET_ALL_DATA запись аудита со счетчиком,
// привязанную к служебному id.
func (r *Repository) ResetAll(actor string) (int64, error) {
	var count int64

	err := r.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		result := tx.Model(&ds.POCRequest{}).
			Where("deleted_at IS NULL").
			Updates(map[string]interface{}{
				"deleted_at": now,
				"deleted_by": actor,
				"updated_at": now,
			})
		if result.Error != nil {
			return result.Error
		}
		count = result.RowsAffected

		comment := fmt.Sprintf("Reset all data - %d records soft deleted", count)
		return r.logAudit(tx, ds.AuditSentinelID, ds.AuditActionResetAll, actor, nil, nil, comment)
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// GetStats считает агрегаты по неудаленным заявкам
func (r *Repository) GetStats() (*Stats, error) {
	type row struct {
		Status  string
		Cnt     int64
		Sockets int64
	}
	var rows []row
	err := r.db.Model(&ds.POCRequest{}).
		Select("status, COUNT(*) as cnt, COALESCE(SUM(total_sockets), 0) as sockets").
		Where("deleted_at IS NULL").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	stats := &Stats{}
	for _, rw := range rows {
		stats.Total += rw.Cnt
		stats.TotalSockets += rw.Sockets
		switch rw.Status {
		case status.PendingReview:
			stats.Pending = rw.Cnt
		case status.Approved:
			stats.Approved = rw.Cnt
		case status.Active:
			stats.Active = rw.Cnt
		case status.Completed:
			stats.Completed = rw.Cnt
		case status.Cancelled:
			stats.Rejected = rw.Cnt
		case status.Expired:
			stats.Expired = rw.Cnt
		}
	}
	return stats, nil
}

// AddAttachment дописывает метаданные загруженного файла к заявке
func (r *Repository) AddAttachment(id string, att ds.Attachment) (*ds.POCRequest, error) {
	var req ds.POCRequest
	err := r.db.Where("id = ? AND deleted_at IS NULL", id).First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	req.Attachments = append(req.Attachments, att)
	req.UpdatedAt = time.Now()
	// Save, а не Updates: для jsonb колонки нужен сериализатор модели
	if err := r.db.Save(&req).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func strPtr(s string) *string {
	return &s
}
