package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"poctracker/internal/app/ds"
	"poctracker/internal/app/repository"
	"poctracker/internal/app/status"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Поднимает роутер с sqlite in-memory, без Redis и MinIO
func newTestServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:handler_%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&ds.POCRequest{}, &ds.AuditLogEntry{}))

	router := gin.New()
	NewHandler(repository.NewWithDB(db), nil, nil).RegisterRoutes(router)
	return router
}

// Минимальное валидное тело создания заявки
func validCreateBody() map[string]interface{} {
	return map[string]interface{}{
		"referenceId": "POC-2026-TESTAB",
		"requestor": map[string]interface{}{
			"name":   "Jane Smith",
			"email":  "jane.smith@example.com",
			"type":   "hpe-sales-engineer",
			"region": "emea",
		},
		"customer": map[string]interface{}{
			"name":     "Acme Manufacturing",
			"industry": "manufacturing",
		},
		"pocDetails": map[string]interface{}{
			"useCaseDescription": "VM consolidation pilot",
			"duration":           45,
			"successCriteria":    "Migrate 50 VMs",
			"dealSize":           "100k-250k",
			"startDate":          "2026-09-15",
		},
		"datacenters": []map[string]interface{}{{
			"name": "Main DC",
			"workloads": []map[string]interface{}{{
				"hypervisor":     "vmware-vsphere",
				"hosts":          10,
				"socketsPerHost": 2,
			}},
		}},
	}
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	router := newTestServer(t)

	w := doJSON(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "healthy", body["status"])
}

func TestCreatePOCRequest(t *testing.T) {
	router := newTestServer(t)

	w := doJSON(t, router, http.MethodPost, "/api/poc-requests", validCreateBody())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	assert.Contains(t, body["message"], "POC-2026-TESTAB")

	data := body["data"].(map[string]interface{})
	assert.Equal(t, "Pending Review", data["status"])
	// 10 хостов * 2 сокета, облака и k8s нет
	assert.Equal(t, float64(20), data["total_sockets"])
	assert.Equal(t, float64(20), data["on_prem_sockets"])
	// дата окончания = 2026-09-15 + 45 дней
	assert.Contains(t, data["expected_end_date"], "2026-10-30")
}

func TestCreatePOCRequestValidation(t *testing.T) {
	router := newTestServer(t)

	t.Run("missing email", func(t *testing.T) {
		payload := validCreateBody()
		payload["requestor"].(map[string]interface{})["email"] = "not-an-email"
		w := doJSON(t, router, http.MethodPost, "/api/poc-requests", payload)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Validation failed", decodeBody(t, w)["error"])
	})

	t.Run("bad duration", func(t *testing.T) {
		payload := validCreateBody()
		payload["pocDetails"].(map[string]interface{})["duration"] = 30
		w := doJSON(t, router, http.MethodPost, "/api/poc-requests", payload)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("company required for partner", func(t *testing.T) {
		payload := validCreateBody()
		payload["requestor"].(map[string]interface{})["type"] = "partner-engineer"
		w := doJSON(t, router, http.MethodPost, "/api/poc-requests", payload)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		body := decodeBody(t, w)
		assert.Contains(t, body["details"], "company is required")
	})

	t.Run("all zero infrastructure", func(t *testing.T) {
		payload := validCreateBody()
		payload["datacenters"] = []map[string]interface{}{}
		w := doJSON(t, router, http.MethodPost, "/api/poc-requests", payload)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		body := decodeBody(t, w)
		assert.Contains(t, body["details"], "at least one non-zero infrastructure entry")
	})

	t.Run("malformed reference code", func(t *testing.T) {
		payload := validCreateBody()
		payload["referenceId"] = "POC-26-SHORT"
		w := doJSON(t, router, http.MethodPost, "/api/poc-requests", payload)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCreateGeneratesReferenceCode(t *testing.T) {
	router := newTestServer(t)

	payload := validCreateBody()
	delete(payload, "referenceId")
	w := doJSON(t, router, http.MethodPost, "/api/poc-requests", payload)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	data := decodeBody(t, w)["data"].(map[string]interface{})
	assert.Regexp(t, `^POC-\d{4}-[A-HJ-NP-Z2-9]{6}$`, data["reference_code"])
}

func TestCreateDuplicateReferenceConflict(t *testing.T) {
	router := newTestServer(t)

	w := doJSON(t, router, http.MethodPost, "/api/poc-requests", validCreateBody())
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/poc-requests", validCreateBody())
	assert.Equal(t, http.StatusConflict, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["error"], "already exists")
}

func TestListAndFilters(t *testing.T) {
	router := newTestServer(t)

	first := validCreateBody()
	require.Equal(t, http.StatusCreated, doJSON(t, router, http.MethodPost, "/api/poc-requests", first).Code)

	second := validCreateBody()
	second["referenceId"] = "POC-2026-TESTCD"
	second["requestor"].(map[string]interface{})["region"] = "amer"
	second["customer"].(map[string]interface{})["name"] = "Globex Industrial"
	require.Equal(t, http.StatusCreated, doJSON(t, router, http.MethodPost, "/api/poc-requests", second).Code)

	w := doJSON(t, router, http.MethodGet, "/api/poc-requests", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, float64(2), body["count"])

	w = doJSON(t, router, http.MethodGet, "/api/poc-requests?region=amer", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body = decodeBody(t, w)
	assert.Equal(t, float64(1), body["count"])

	w = doJSON(t, router, http.MethodGet, "/api/poc-requests?search=globex", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body = decodeBody(t, w)
	require.Equal(t, float64(1), body["count"])
	row := body["data"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "POC-2026-TESTCD", row["reference_code"])
}

func TestSearchByReferenceCode(t *testing.T) {
	router := newTestServer(t)
	require.Equal(t, http.StatusCreated, doJSON(t, router, http.MethodPost, "/api/poc-requests", validCreateBody()).Code)

	w := doJSON(t, router, http.MethodGet, "/api/poc-requests/search/poc-2026-testab", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "POC-2026-TESTAB", data["reference_code"])

	w = doJSON(t, router, http.MethodGet, "/api/poc-requests/search/POC-2026-MISSIN", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetByIDNotFound(t *testing.T) {
	router := newTestServer(t)

	w := doJSON(t, router, http.MethodGet, "/api/poc-requests/00000000-0000-0000-0000-000000000001", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func createAndGetID(t *testing.T, router *gin.Engine, body map[string]interface{}) string {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/api/poc-requests", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decodeBody(t, w)["data"].(map[string]interface{})["id"].(string)
}

func TestUpdateStatus(t *testing.T) {
	router := newTestServer(t)
	id := createAndGetID(t, router, validCreateBody())

	t.Run("valid transition", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPatch, "/api/poc-requests/"+id+"/status", map[string]interface{}{
			"status":     status.Approved,
			"approvedBy": "moderator@example.com",
			"comment":    "Sizing verified",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		body := decodeBody(t, w)
		assert.Contains(t, body["message"], "Approved")
		data := body["data"].(map[string]interface{})
		assert.Equal(t, status.Approved, data["status"])
		assert.NotEmpty(t, data["approved_at"])
		assert.Contains(t, data["internal_notes"], "Sizing verified")
	})

	t.Run("invalid transition", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPatch, "/api/poc-requests/"+id+"/status", map[string]interface{}{
			"status":     status.Expired,
			"approvedBy": "moderator@example.com",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decodeBody(t, w)["error"], "Approved -> Expired")
	})

	t.Run("unknown status", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPatch, "/api/poc-requests/"+id+"/status", map[string]interface{}{
			"status":     "Rejected",
			"approvedBy": "moderator@example.com",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing approvedBy", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPatch, "/api/poc-requests/"+id+"/status", map[string]interface{}{
			"status": status.Active,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown id", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPatch, "/api/poc-requests/00000000-0000-0000-0000-000000000001/status", map[string]interface{}{
			"status":     status.Approved,
			"approvedBy": "moderator@example.com",
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestAuditLogEndpoint(t *testing.T) {
	router := newTestServer(t)
	id := createAndGetID(t, router, validCreateBody())

	w := doJSON(t, router, http.MethodPatch, "/api/poc-requests/"+id+"/status", map[string]interface{}{
		"status":     status.Approved,
		"approvedBy": "moderator@example.com",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/poc-requests/"+id+"/audit", nil)
	require.Equal(t, http.StatusOK, w.Code)
	entries := decodeBody(t, w)["data"].([]interface{})
	require.Len(t, entries, 2)
	assert.Equal(t, ds.AuditActionStatusChange, entries[0].(map[string]interface{})["action"])
	assert.Equal(t, ds.AuditActionCreate, entries[1].(map[string]interface{})["action"])
}

func TestDeletePOCRequest(t *testing.T) {
	router := newTestServer(t)
	id := createAndGetID(t, router, validCreateBody())

	w := doJSON(t, router, http.MethodDelete, "/api/poc-requests/"+id, map[string]interface{}{
		"deletedBy": "ops@example.com",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decodeBody(t, w)
	assert.Contains(t, body["message"], "has been deleted")
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "ops@example.com", data["deleted_by"])

	// повторное удаление
	w = doJSON(t, router, http.MethodDelete, "/api/poc-requests/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// удаленная заявка доступна по прямому id
	w = doJSON(t, router, http.MethodGet, "/api/poc-requests/"+id, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// но пропадает из списков
	w = doJSON(t, router, http.MethodGet, "/api/poc-requests", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), decodeBody(t, w)["count"])
}

func TestResetAllData(t *testing.T) {
	router := newTestServer(t)

	first := validCreateBody()
	createAndGetID(t, router, first)
	second := validCreateBody()
	second["referenceId"] = "POC-2026-TESTEF"
	createAndGetID(t, router, second)

	t.Run("rejects without confirmation", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/poc-requests/reset", map[string]interface{}{
			"confirmReset": "yes please",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decodeBody(t, w)["error"], "Invalid confirmation")
	})

	t.Run("resets with confirmation", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/poc-requests/reset", map[string]interface{}{
			"confirmReset": "RESET_ALL_DATA",
			"deletedBy":    "ops@example.com",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		body := decodeBody(t, w)
		assert.Equal(t, float64(2), body["deletedCount"])
		assert.Contains(t, body["message"], "2 records")
	})
}

func TestGetStats(t *testing.T) {
	router := newTestServer(t)

	id := createAndGetID(t, router, validCreateBody())
	second := validCreateBody()
	second["referenceId"] = "POC-2026-TESTGH"
	createAndGetID(t, router, second)

	w := doJSON(t, router, http.MethodPatch, "/api/poc-requests/"+id+"/status", map[string]interface{}{
		"status":     status.Cancelled,
		"approvedBy": "moderator@example.com",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/poc-requests/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]interface{})
	assert.Equal(t, float64(2), data["total"])
	assert.Equal(t, float64(1), data["pending"])
	assert.Equal(t, float64(1), data["rejected"])
	assert.Equal(t, float64(40), data["totalSockets"])
}

func TestUploadAttachmentWithoutStorage(t *testing.T) {
	router := newTestServer(t)
	id := createAndGetID(t, router, validCreateBody())

	w := doJSON(t, router, http.MethodPost, "/api/poc-requests/"+id+"/attachments", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, decodeBody(t, w)["error"], "not configured")

	w = doJSON(t, router, http.MethodGet, "/api/poc-requests/"+id+"/attachments/some-object.pdf", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, decodeBody(t, w)["error"], "not configured")
}

func TestGeneratedReferenceCodeFormat(t *testing.T) {
	for i := 0; i < 50; i++ {
		code := generateReferenceCode()
		assert.Regexp(t, `^POC-\d{4}-[A-HJ-NP-Z2-9]{6}$`, code)
		assert.NotContains(t, code[9:], "0")
		assert.NotContains(t, code[9:], "O")
		assert.NotContains(t, code[9:], "1")
		assert.NotContains(t, code[9:], "I")
	}
}
