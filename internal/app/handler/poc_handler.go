package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"poctracker/internal/app/calc"
	"poctracker/internal/app/ds"
	"poctracker/internal/app/dto"
	"poctracker/internal/app/redis"
	"poctracker/internal/app/repository"
	"poctracker/internal/app/status"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Категории запрашивающих, для которых компания обязательна
var companyRequiredTypes = map[string]bool{
	"partner-engineer": true,
	"gsi-partner":      true,
	"distributor":      true,
}

// CreatePOCRequest создает новую заявку на POC
// @Summary Создание заявки на POC
// @Description Валидирует заявку, рассчитывает сокеты и сохраняет со статусом Pending Review
// @Tags POC-Requests
// @Accept json
// @Produce json
// @Param request body dto.CreatePOCRequest true "Данные заявки"
// @Success 201 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/poc-requests [post]
func (h *Handler) CreatePOCRequest(c *gin.Context) {
	var req dto.CreatePOCRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.validationErrorResponse(c, err.Error())
		return
	}

	// Компания обязательна для партнерских категорий
	if companyRequiredTypes[req.Requestor.Type] && strings.TrimSpace(req.Requestor.Company) == "" {
		h.validationErrorResponse(c, "company is required for partner and distributor requestor types")
		return
	}

	// Reference code генерирует форма до отправки; если его нет - генерируем сами
	refCode := strings.ToUpper(strings.TrimSpace(req.ReferenceCode))
	if refCode == "" {
		refCode = generateReferenceCode()
	} else if !referenceCodePattern.MatchString(refCode) {
		h.validationErrorResponse(c, "referenceId must match POC-YYYY-XXXXXX")
		return
	}

	// Сокеты всегда пересчитываются на сервере, присланные значения игнорируются
	onPrem := calc.OnPremSockets(req.Datacenters)
	cloud := calc.PublicCloudSockets(req.PublicCloud)
	k8s := calc.KubernetesSockets(req.KubernetesClusters)
	total := onPrem + cloud + k8s

	// Пустая инфраструктура - неполная заявка. Это правило границы,
	// сам калькулятор спокойно возвращает ноль.
	if total == 0 {
		h.validationErrorResponse(c, "at least one non-zero infrastructure entry is required")
		return
	}

	record := &ds.POCRequest{
		ReferenceCode:         refCode,
		RequestorName:         req.Requestor.Name,
		RequestorEmail:        req.Requestor.Email,
		RequestorType:         req.Requestor.Type,
		RequestorCompany:      req.Requestor.Company,
		RequestorRegion:       req.Requestor.Region,
		OpportunityID:         req.Requestor.OpportunityID,
		CustomerName:          req.Customer.Name,
		CustomerIndustry:      req.Customer.Industry,
		CustomerCountry:       req.Customer.Country,
		CustomerContactName:   req.Customer.ContactName,
		CustomerContactEmail:  req.Customer.ContactEmail,
		UseCaseDescription:    req.POCDetails.UseCaseDescription,
		BusinessJustification: req.POCDetails.BusinessJustification,
		POCDuration:           req.POCDetails.Duration,
		SuccessCriteria:       req.POCDetails.SuccessCriteria,
		DealSize:              req.POCDetails.DealSize,
		EnvironmentReady:      req.POCDetails.EnvironmentReady,
		Datacenters:           req.Datacenters,
		PublicCloud:           req.PublicCloud,
		KubernetesClusters:    req.KubernetesClusters,
		Integrations:          req.Integrations,
		OnPremSockets:         onPrem,
		PublicCloudSockets:    cloud,
		KubernetesSockets:     k8s,
		TotalSockets:          total,
	}

	// Дата окончания = дата старта + длительность
	if req.POCDetails.StartDate != "" {
		start, err := time.Parse("2006-01-02", req.POCDetails.StartDate)
		if err != nil {
			h.validationErrorResponse(c, "startDate must be in YYYY-MM-DD format")
			return
		}
		end := start.AddDate(0, 0, req.POCDetails.Duration)
		record.StartDate = &start
		record.ExpectedEndDate = &end
	}

	created, err := h.Repository.Create(record)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateReference) {
			h.errorResponse(c, http.StatusConflict, "POC request with this reference code already exists")
			return
		}
		logrus.Error("Error creating POC request: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Failed to create POC request")
		return
	}

	h.invalidateStatsCache(c)
	h.successResponse(c, http.StatusCreated,
		fmt.Sprintf("POC request created with Reference ID: %s", created.ReferenceCode), created)
}

// GetPOCRequests возвращает список заявок с фильтрацией
// @Summary Список заявок
// @Description Возвращает неудаленные заявки, новые сверху. Фильтры независимо опциональны.
// @Tags POC-Requests
// @Produce json
// @Param status query string false "Фильтр по статусу"
// @Param region query string false "Фильтр по региону"
// @Param dealSize query string false "Фильтр по размеру сделки"
// @Param search query string false "Подстрока по коду/заказчику/имени/email/opportunity id"
// @Success 200 {object} dto.ListResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/poc-requests [get]
func (h *Handler) GetPOCRequests(c *gin.Context) {
	filters := repository.Filters{
		Status:   c.Query("status"),
		Region:   c.Query("region"),
		DealSize: c.Query("dealSize"),
		Search:   c.Query("search"),
	}

	requests, err := h.Repository.List(filters)
	if err != nil {
		logrus.Error("Error fetching POC requests: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Failed to fetch POC requests")
		return
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Success: true,
		Data:    requests,
		Count:   len(requests),
	})
}

// GetPOCStats возвращает агрегированную статистику
// @Summary Статистика по заявкам
// @Description Счетчики по статусам и сумма сокетов по неудаленным заявкам (кешируется в Redis)
// @Tags POC-Requests
// @Produce json
// @Success 200 {object} dto.SuccessResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/poc-requests/stats [get]
func (h *Handler) GetPOCStats(c *gin.Context) {
	// Сначала пробуем кеш
	if h.RedisClient != nil {
		cached, err := h.RedisClient.GetStatsCache(c.Request.Context())
		if err == nil {
			var stats dto.StatsResponse
			if err := json.Unmarshal(cached, &stats); err == nil {
				h.successResponse(c, http.StatusOK, "", stats)
				return
			}
		} else if !redis.IsCacheMiss(err) {
			logrus.Warn("Stats cache read failed: ", err)
		}
	}

	stats, err := h.Repository.GetStats()
	if err != nil {
		logrus.Error("Error fetching POC stats: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Failed to fetch POC statistics")
		return
	}

	response := dto.StatsResponse{
		Total:        stats.Total,
		Pending:      stats.Pending,
		Approved:     stats.Approved,
		Active:       stats.Active,
		Completed:    stats.Completed,
		Rejected:     stats.Rejected,
		Expired:      stats.Expired,
		TotalSockets: stats.TotalSockets,
	}

	if h.RedisClient != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := h.RedisClient.SetStatsCache(c.Request.Context(), payload); err != nil {
				logrus.Warn("Stats cache write failed: ", err)
			}
		}
	}

	h.successResponse(c, http.StatusOK, "", response)
}

// SearchByReferenceCode ищет заявку по reference code (публичный поиск)
// @Summary Поиск по reference code
// @Description Возвращает заявку по человекочитаемому коду, без учета регистра
// @Tags POC-Requests
// @Produce json
// @Param referenceCode path string true "Reference code (POC-YYYY-XXXXXX)"
// @Success 200 {object} dto.SuccessResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/poc-requests/search/{referenceCode} [get]
func (h *Handler) SearchByReferenceCode(c *gin.Context) {
	code := c.Param("referenceCode")

	request, err := h.Repository.GetByReferenceCode(code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.errorResponse(c, http.StatusNotFound, "POC request not found")
			return
		}
		logrus.Error("Error searching POC request: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Failed to search POC request")
		return
	}

	h.successResponse(c, http.StatusOK, "", request)
}

// GetPOCRequest возвращает заявку по id
// @Summary Получение заявки по ID
// @Description Возвращает заявку по внутреннему id, включая логически удаленные
// @Tags POC-Requests
// @Produce json
// @Param id path string true "ID заявки (uuid)"
// @Success 200 {object} dto.SuccessResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/poc-requests/{id} [get]
func (h *Handler) GetPOCRequest(c *gin.Context) {
	id := c.Param("id")

	request, err := h.Repository.GetByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.errorResponse(c, http.StatusNotFound, "POC request not found")
			return
		}
		logrus.Error("Error fetching POC request: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Failed to fetch POC request")
		return
	}

	h.successResponse(c, http.StatusOK, "", request)
}

// UpdatePOCStatus применяет переход статуса
// @Summary Смена статуса заявки
// @Description Проверяет переход по графу статусов, пишет запись аудита
// @Tags POC-Requests
// @Accept json
// @Produce json
// @Param id path string true "ID заявки (uuid)"
// @Param request body dto.UpdateStatusRequest true "Новый статус"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/poc-requests/{id}/status [patch]
func (h *Handler) UpdatePOCStatus(c *gin.Context) {
	id := c.Param("id")

	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.validationErrorResponse(c, err.Error())
		return
	}

	if !status.IsValid(req.Status) {
		h.validationErrorResponse(c, fmt.Sprintf("unknown status %q", req.Status))
		return
	}

	request, err := h.Repository.UpdateStatus(id, req.Status, req.ApprovedBy, req.Comment)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			h.errorResponse(c, http.StatusNotFound, "POC request not found")
		case errors.Is(err, repository.ErrInvalidTransition):
			h.errorResponse(c, http.StatusBadRequest, err.Error())
		default:
			logrus.Error("Error updating POC status: ", err)
			h.errorResponse(c, http.StatusInternalServerError, "Failed to update POC status")
		}
		return
	}

	h.invalidateStatsCache(c)
	h.successResponse(c, http.StatusOK,
		fmt.Sprintf("POC status updated to %s", req.Status), request)
}

// GetPOCAuditLog возвращает журнал аудита заявки
// @Summary Журнал аудита
// @Description Все записи аудита по заявке, новые сверху
// @Tags POC-Requests
// @Produce json
// @Param id path string true "ID заявки (uuid)"
// @Success 200 {object} dto.SuccessResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/poc-requests/{id}/audit [get]
func (h *Handler) GetPOCAuditLog(c *gin.Context) {
	id := c.Param("id")

	entries, err := h.Repository.GetAuditLog(id)
	if err != nil {
		logrus.Error("Error fetching audit log: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Failed to fetch audit log")
		return
	}

	h.successResponse(c, http.StatusOK, "", entries)
}

// DeletePOCRequest логически удаляет заявку
// @Summary Удаление заявки
// @Description Помечает заявку удаленной, данные сохраняются для аудита
// @Tags POC-Requests
// @Accept json
// @Produce json
// @Param id path string true "ID заявки (uuid)"
// @Success 200 {object} dto.SuccessResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/poc-requests/{id} [delete]
func (h *Handler) DeletePOCRequest(c *gin.Context) {
	id := c.Param("id")

	// Тело опционально
	var req dto.DeleteRequest
	_ = c.ShouldBindJSON(&req)
	deletedBy := req.DeletedBy
	if deletedBy == "" {
		deletedBy = "admin"
	}

	request, err := h.Repository.SoftDelete(id, deletedBy)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.errorResponse(c, http.StatusNotFound, "POC request not found or already deleted")
			return
		}
		logrus.Error("Error deleting POC request: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Failed to delete POC request")
		return
	}

	h.invalidateStatsCache(c)
	h.successResponse(c, http.StatusOK,
		fmt.Sprintf("POC %s has been deleted", request.ReferenceCode), request)
}

// ResetAllData логически удаляет все заявки (админский сброс)
// @Summary Сброс всех данных
// @Description Массовое логическое удаление. Требует подтверждения confirmReset="RESET_ALL_DATA".
// @Tags POC-Requests
// @Accept json
// @Produce json
// @Param request body dto.ResetRequest true "Подтверждение сброса"
// @Success 200 {object} dto.ResetResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/poc-requests/reset [post]
func (h *Handler) ResetAllData(c *gin.Context) {
	var req dto.ResetRequest
	_ = c.ShouldBindJSON(&req)

	// Защита от случайного вызова, не security-граница
	if req.ConfirmReset != "RESET_ALL_DATA" {
		h.errorResponse(c, http.StatusBadRequest,
			`Invalid confirmation. Send confirmReset: "RESET_ALL_DATA" to confirm.`)
		return
	}

	deletedBy := req.DeletedBy
	if deletedBy == "" {
		deletedBy = "admin"
	}

	count, err := h.Repository.ResetAll(deletedBy)
	if err != nil {
		logrus.Error("Error resetting data: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Failed to reset data")
		return
	}

	h.invalidateStatsCache(c)
	c.JSON(http.StatusOK, dto.ResetResponse{
		Success:      true,
		Message:      fmt.Sprintf("Successfully reset all data. %d records have been soft deleted.", count),
		DeletedCount: count,
	})
}

// UploadAttachment загружает файл к заявке
// @Summary Загрузка файла к заявке
// @Description Сохраняет файл (схему, сайзинг) в MinIO и дописывает метаданные к заявке
// @Tags POC-Requests
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "ID заявки (uuid)"
// @Param file formData file true "Файл"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/poc-requests/{id}/attachments [post]
func (h *Handler) UploadAttachment(c *gin.Context) {
	if h.MinIOClient == nil {
		h.errorResponse(c, http.StatusInternalServerError, "Attachment storage is not configured")
		return
	}

	id := c.Param("id")
	request, err := h.Repository.GetByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.errorResponse(c, http.StatusNotFound, "POC request not found")
			return
		}
		logrus.Error("Error fetching POC request: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Failed to fetch POC request")
		return
	}
	if request.DeletedAt != nil {
		h.errorResponse(c, http.StatusNotFound, "POC request not found or already deleted")
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, "File is missing from the request")
		return
	}

	opened, err := file.Open()
	if err != nil {
		h.errorResponse(c, http.StatusInternalServerError, "Failed to read file")
		return
	}
	defer opened.Close()

	data, err := io.ReadAll(opened)
	if err != nil {
		h.errorResponse(c, http.StatusInternalServerError, "Failed to read file")
		return
	}

	objectName, err := h.MinIOClient.UploadAttachment(data, request.ReferenceCode, file.Filename)
	if err != nil {
		logrus.Error("Error uploading attachment: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Failed to upload attachment")
		return
	}

	updated, err := h.Repository.AddAttachment(id, ds.Attachment{
		FileName:   file.Filename,
		ObjectName: objectName,
		Size:       file.Size,
		UploadedAt: time.Now().Format(time.RFC3339),
	})
	if err != nil {
		// Файл уже в MinIO, запись не обновилась - убираем файл чтобы не копить сирот
		if delErr := h.MinIOClient.DeleteAttachment(objectName); delErr != nil {
			logrus.Warnf("Failed to delete orphaned attachment %s: %v", objectName, delErr)
		}
		logrus.Error("Error saving attachment metadata: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Failed to save attachment")
		return
	}

	h.successResponse(c, http.StatusOK,
		fmt.Sprintf("Attachment %s uploaded", file.Filename), updated)
}

// GetAttachmentURL выдает временную ссылку на скачивание файла
// @Summary Ссылка на скачивание файла
// @Description Возвращает presigned URL (1 час) для файла, приложенного к заявке
// @Tags POC-Requests
// @Produce json
// @Param id path string true "ID заявки (uuid)"
// @Param objectName path string true "Имя объекта из метаданных заявки"
// @Success 200 {object} dto.SuccessResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/poc-requests/{id}/attachments/{objectName} [get]
func (h *Handler) GetAttachmentURL(c *gin.Context) {
	if h.MinIOClient == nil {
		h.errorResponse(c, http.StatusInternalServerError, "Attachment storage is not configured")
		return
	}

	id := c.Param("id")
	request, err := h.Repository.GetByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.errorResponse(c, http.StatusNotFound, "POC request not found")
			return
		}
		logrus.Error("Error fetching POC request: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Failed to fetch POC request")
		return
	}

	// Ссылки выдаются только на файлы, числящиеся за заявкой
	objectName := c.Param("objectName")
	var found *ds.Attachment
	for i := range request.Attachments {
		if request.Attachments[i].ObjectName == objectName {
			found = &request.Attachments[i]
			break
		}
	}
	if found == nil {
		h.errorResponse(c, http.StatusNotFound, "Attachment not found")
		return
	}

	url, err := h.MinIOClient.GetAttachmentURL(objectName)
	if err != nil {
		logrus.Error("Error generating attachment URL: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Failed to generate attachment URL")
		return
	}

	h.successResponse(c, http.StatusOK, "", gin.H{
		"fileName": found.FileName,
		"url":      url,
	})
}
