package handler

import (
	"fmt"
	"math/rand/v2"
	"net/http"
	"regexp"
	"time"

	"poctracker/internal/app/dto"
	"poctracker/internal/app/redis"
	"poctracker/internal/app/repository"
	"poctracker/internal/app/storage"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	Repository  *repository.Repository
	RedisClient *redis.Client       // может быть nil - работаем без кеша
	MinIOClient *storage.MinIOClient // может быть nil - загрузка файлов отключена
}

func NewHandler(r *repository.Repository, redisClient *redis.Client, minioClient *storage.MinIOClient) *Handler {
	return &Handler{
		Repository:  r,
		RedisClient: redisClient,
		MinIOClient: minioClient,
	}
}

// Регистрация маршрутов
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	// Health probe (без авторизации)
	router.GET("/health", h.Health)

	api := router.Group("/api")

	poc := api.Group("/poc-requests")
	{
		poc.POST("", h.CreatePOCRequest)
		poc.GET("", h.GetPOCRequests)
		poc.GET("/stats", h.GetPOCStats)
		poc.GET("/search/:referenceCode", h.SearchByReferenceCode)
		poc.GET("/:id", h.GetPOCRequest)
		poc.PATCH("/:id/status", h.UpdatePOCStatus)
		poc.GET("/:id/audit", h.GetPOCAuditLog)
		poc.DELETE("/:id", h.DeletePOCRequest)
		poc.POST("/reset", h.ResetAllData)
		poc.POST("/:id/attachments", h.UploadAttachment)
		poc.GET("/:id/attachments/:objectName", h.GetAttachmentURL)
	}
}

// ============ Вспомогательные функции ============

func (h *Handler) errorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, dto.ErrorResponse{
		Success: false,
		Error:   message,
	})
}

func (h *Handler) validationErrorResponse(c *gin.Context, details interface{}) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{
		Success: false,
		Error:   "Validation failed",
		Details: details,
	})
}

func (h *Handler) successResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, dto.SuccessResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Сброс кеша статистики после мутации. Ошибка кеша не влияет на ответ.
func (h *Handler) invalidateStatsCache(c *gin.Context) {
	if h.RedisClient == nil {
		return
	}
	if err := h.RedisClient.InvalidateStatsCache(c.Request.Context()); err != nil {
		logrus.Warn("Failed to invalidate stats cache: ", err)
	}
}

// ============ Reference code ============

// Алфавит без 0/O/1/I, чтобы код можно было диктовать по телефону
const referenceAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

var referenceCodePattern = regexp.MustCompile(`^POC-\d{4}-[A-HJ-NP-Z2-9]{6}$`)

// generateReferenceCode выдает код вида POC-2026-A3F8K2
func generateReferenceCode() string {
	code := make([]byte, 6)
	for i := range code {
		code[i] = referenceAlphabet[rand.IntN(len(referenceAlphabet))]
	}
	return fmt.Sprintf("POC-%d-%s", time.Now().Year(), string(code))
}

// Health проверяет работоспособность сервиса
// @Summary Проверка работоспособности
// @Description Возвращает статус сервиса и текущее время
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
