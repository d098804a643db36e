package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rzaw/delivery-proof/internal/core/domain"
	"github.com/rzaw/delivery-proof/internal/core/service"
)

const maxUploadBytes = 10 << 20

// HTTPHandler maps the HTTP surface onto the two core operations. It is
// deliberately thin: all invariants live in the services, the handler
// only decodes requests, maps failures to status codes and attaches the
// CORS headers every response carries.
type HTTPHandler struct {
	ledger  *service.InventoryLedger
	archive *service.ScreenshotArchive
	logger  *logrus.Logger
}

type updateInventoryRequest struct {
	ProductGroups []domain.DeliveryLineItem `json:"productGroups"`
}

type statusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type uploadResponse struct {
	Success  bool   `json:"success"`
	FileName string `json:"fileName"`
}

type queryResponse struct {
	Success     bool                       `json:"success"`
	Screenshots []domain.ScreenshotSummary `json:"screenshots"`
}

func NewHTTPHandler(ledger *service.InventoryLedger, archive *service.ScreenshotArchive, logger *logrus.Logger) *HTTPHandler {
	return &HTTPHandler{ledger: ledger, archive: archive, logger: logger}
}

func (h *HTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			h.logger.WithField("panic", rec).Error("request handler panicked")
			writeJSON(w, http.StatusInternalServerError, statusResponse{
				Success: false,
				Message: "internal error",
			})
		}
	}()

	setCORS(w)

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	switch r.URL.Path {
	case "/api/upload_screenshot":
		h.requireMethod(w, r, http.MethodPost, h.uploadScreenshot)
	case "/api/update_inventory":
		h.requireMethod(w, r, http.MethodPost, h.updateInventory)
	case "/api/query_screenshots":
		h.requireMethod(w, r, http.MethodGet, h.queryScreenshots)
	case "/health":
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	default:
		writeJSON(w, http.StatusNotFound, statusResponse{
			Success: false,
			Message: "not found",
		})
	}
}

func (h *HTTPHandler) requireMethod(w http.ResponseWriter, r *http.Request, method string, next http.HandlerFunc) {
	if r.Method != method {
		writeJSON(w, http.StatusMethodNotAllowed, statusResponse{
			Success: false,
			Message: "method not allowed",
		})
		return
	}
	next(w, r)
}

func (h *HTTPHandler) uploadScreenshot(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		badRequest(w, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("screenshot")
	if err != nil {
		badRequest(w, "screenshot file is required")
		return
	}
	defer file.Close()

	payload, err := io.ReadAll(file)
	if err != nil {
		badRequest(w, "failed to read screenshot")
		return
	}
	if len(payload) == 0 {
		badRequest(w, "screenshot file is empty")
		return
	}

	company := r.FormValue("receiverCompany")
	date := r.FormValue("date")
	if company == "" || date == "" {
		badRequest(w, "receiverCompany and date are required")
		return
	}
	if !validDate(date) {
		badRequest(w, "date must be YYYY-MM-DD")
		return
	}
	if strings.Contains(company, "_") {
		badRequest(w, "receiverCompany must not contain underscores")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(payload)
	}

	key, err := h.archive.Store(r.Context(), payload, contentType, company, date)
	if err != nil {
		h.logger.WithError(err).WithFields(logrus.Fields{
			"company": company,
			"date":    date,
		}).Error("screenshot upload failed")
		writeJSON(w, http.StatusInternalServerError, statusResponse{
			Success: false,
			Message: "failed to store screenshot",
		})
		return
	}

	writeJSON(w, http.StatusOK, uploadResponse{
		Success:  true,
		FileName: key,
	})
}

func (h *HTTPHandler) updateInventory(w http.ResponseWriter, r *http.Request) {
	var req updateInventoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if len(req.ProductGroups) == 0 {
		badRequest(w, "productGroups is required")
		return
	}

	if err := h.ledger.ApplyDeliveryBatch(r.Context(), req.ProductGroups); err != nil {
		var insufficient *service.InsufficientStockError
		if errors.As(err, &insufficient) {
			badRequest(w, insufficient.Error())
			return
		}

		h.logger.WithError(err).Error("inventory update failed")
		writeJSON(w, http.StatusInternalServerError, statusResponse{
			Success: false,
			Message: "failed to update inventory",
		})
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{Success: true})
}

func (h *HTTPHandler) queryScreenshots(w http.ResponseWriter, r *http.Request) {
	company := r.URL.Query().Get("company")
	startDate := r.URL.Query().Get("startDate")
	endDate := r.URL.Query().Get("endDate")

	if company == "" || startDate == "" || endDate == "" {
		badRequest(w, "company, startDate and endDate are required")
		return
	}
	if !validDate(startDate) || !validDate(endDate) {
		badRequest(w, "dates must be YYYY-MM-DD")
		return
	}

	summaries, err := h.archive.Query(r.Context(), company, startDate, endDate)
	if err != nil {
		h.logger.WithError(err).WithField("company", company).Error("screenshot query failed")
		writeJSON(w, http.StatusInternalServerError, statusResponse{
			Success: false,
			Message: "failed to query screenshots",
		})
		return
	}

	writeJSON(w, http.StatusOK, queryResponse{
		Success:     true,
		Screenshots: summaries,
	})
}

func setCORS(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type")
}

func badRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, statusResponse{
		Success: false,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// validDate accepts fixed-width YYYY-MM-DD only; the archive's range
// filter relies on lexicographic comparison of zero-padded dates.
func validDate(date string) bool {
	if len(date) != len("2006-01-02") {
		return false
	}
	_, err := time.Parse("2006-01-02", date)
	return err == nil
}
