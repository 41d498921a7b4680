package dto

import "poctracker/internal/app/ds"

// ============ Общие структуры ответа ============

// Единый конверт ответа: { success, data?, error?, message? }

type SuccessResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

type ListResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Count   int         `json:"count"`
}

type ResetResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	DeletedCount int64  `json:"deletedCount"`
}

// ============ Создание заявки ============

type RequestorPayload struct {
	Name          string `json:"name" binding:"required,min=1"`
	Email         string `json:"email" binding:"required,email"`
	Type          string `json:"type" binding:"required,oneof=hpe-sales-engineer partner-engineer gsi-partner distributor internal-team"`
	Company       string `json:"company"` // обязательна для партнеров/дистрибьюторов, проверяется в хендлере
	Region        string `json:"region" binding:"required,min=1"`
	OpportunityID string `json:"opportunityId"`
}

type CustomerPayload struct {
	Name         string `json:"name" binding:"required,min=1"`
	Industry     string `json:"industry" binding:"required,min=1"`
	Country      string `json:"country"`
	ContactName  string `json:"contactName"`
	ContactEmail string `json:"contactEmail" binding:"omitempty,email"`
}

type POCDetailsPayload struct {
	UseCaseDescription    string `json:"useCaseDescription" binding:"required,min=1"`
	BusinessJustification string `json:"businessJustification"`
	Duration              int    `json:"duration" binding:"required,oneof=45 60 90"`
	StartDate             string `json:"startDate" binding:"omitempty,datetime=2006-01-02"`
	SuccessCriteria       string `json:"successCriteria" binding:"required,min=1"`
	DealSize              string `json:"dealSize" binding:"required,oneof=less-than-50k 50k-100k 100k-250k 250k-500k 500k-plus unknown"`
	EnvironmentReady      bool   `json:"environmentReady"`
}

// CreatePOCRequest - тело POST /api/poc-requests. Ключи совпадают с формой.
// Клиентские calculations не принимаются: сокеты всегда пересчитываются на сервере.
type CreatePOCRequest struct {
	ReferenceCode      string                 `json:"referenceId"` // опционален; формат проверяется в хендлере
	Requestor          RequestorPayload       `json:"requestor" binding:"required"`
	Customer           CustomerPayload        `json:"customer" binding:"required"`
	POCDetails         POCDetailsPayload      `json:"pocDetails" binding:"required"`
	Datacenters        []ds.Datacenter        `json:"datacenters" binding:"omitempty,dive"`
	PublicCloud        []ds.PublicCloudEntry  `json:"publicCloud" binding:"omitempty,dive"`
	KubernetesClusters []ds.KubernetesCluster `json:"kubernetesClusters" binding:"omitempty,dive"`
	Integrations       ds.Integrations        `json:"integrations"`
}

// ============ Смена статуса ============

type UpdateStatusRequest struct {
	Status     string `json:"status" binding:"required"` // членство в enum проверяет пакет status
	ApprovedBy string `json:"approvedBy" binding:"required,min=1"`
	Comment    string `json:"comment"`
}

// ============ Удаление и сброс ============

type DeleteRequest struct {
	DeletedBy string `json:"deletedBy"`
}

type ResetRequest struct {
	ConfirmReset string `json:"confirmReset"`
	DeletedBy    string `json:"deletedBy"`
}

// ============ Статистика ============

type StatsResponse struct {
	Total        int64 `json:"total"`
	Pending      int64 `json:"pending"`
	Approved     int64 `json:"approved"`
	Active       int64 `json:"active"`
	Completed    int64 `json:"completed"`
	Rejected     int64 `json:"rejected"`
	Expired      int64 `json:"expired"`
	TotalSockets int64 `json:"totalSockets"`
}
