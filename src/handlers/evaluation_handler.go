package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/username/jamtax/src/logger"
	"github.com/username/jamtax/src/models"
	"github.com/username/jamtax/src/processors"
	"github.com/username/jamtax/src/security/validation"
	"github.com/username/jamtax/src/services"
	"github.com/username/jamtax/src/utils"
)

type EvaluationHandler struct {
	evaluationService services.EvaluationService
	maxRequestBytes   int64
}

func NewEvaluationHandler(service services.EvaluationService, maxRequestBytes int64) *EvaluationHandler {
	if maxRequestBytes <= 0 {
		maxRequestBytes = 1 << 20
	}
	return &EvaluationHandler{
		evaluationService: service,
		maxRequestBytes:   maxRequestBytes,
	}
}

type optimalSalaryRequest struct {
	Input models.EvaluationInput `json:"input"`
	Step  decimal.Decimal        `json:"step"`
}

func (h *EvaluationHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	utils.SendJSON(w, map[string]string{"message": "jamtax backend is running"}, http.StatusOK)
}

func (h *EvaluationHandler) HandleGetDefaults(w http.ResponseWriter, r *http.Request) {
	defaults, err := h.evaluationService.Defaults()
	if err != nil {
		logger.FromContext(r.Context()).Error("Error loading default scenario", "error", err)
		utils.SendJSONError(w, "Error loading default scenario", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, defaults, http.StatusOK)
}

func (h *EvaluationHandler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	var input models.EvaluationInput
	if err := h.decodeBody(w, r, &input); err != nil {
		writeServiceError(w, r, err)
		return
	}

	result, err := h.evaluationService.Evaluate(r.Context(), input)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if result.ID != "" {
		w.Header().Set("X-Evaluation-ID", result.ID)
	}
	utils.SendJSON(w, result.Report, http.StatusOK)
}

func (h *EvaluationHandler) HandleSweep(w http.ResponseWriter, r *http.Request) {
	var req services.SweepRequest
	if err := h.decodeBody(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	points, err := h.evaluationService.Sweep(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.SendJSON(w, points, http.StatusOK)
}

func (h *EvaluationHandler) HandleOptimalSalary(w http.ResponseWriter, r *http.Request) {
	var req optimalSalaryRequest
	if err := h.decodeBody(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	result, err := h.evaluationService.OptimalSalary(r.Context(), req.Input, req.Step)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.SendJSON(w, result, http.StatusOK)
}

func (h *EvaluationHandler) HandleListEvaluations(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			utils.SendJSONError(w, fmt.Sprintf("invalid limit %q", v), http.StatusBadRequest)
			return
		}
		limit = n
	}

	summaries, err := h.evaluationService.ListEvaluations(r.Context(), limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.SendJSON(w, summaries, http.StatusOK)
}

func (h *EvaluationHandler) HandleGetEvaluation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	evaluation, err := h.evaluationService.GetEvaluation(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	etag, err := utils.GenerateETag(evaluation)
	if err != nil {
		logger.FromContext(r.Context()).Error("Error generating ETag for evaluation", "id", id, "error", err)
	} else {
		quoted := `"` + etag + `"`
		if r.Header.Get("If-None-Match") == quoted {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", quoted)
	}
	utils.SendJSON(w, evaluation, http.StatusOK)
}

func (h *EvaluationHandler) decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxRequestBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", validation.ErrValidationFailed, err)
	}
	return nil
}

// writeServiceError maps service and engine errors onto HTTP status codes.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())
	switch {
	case errors.Is(err, validation.ErrValidationFailed),
		errors.Is(err, processors.ErrInvalidAllocation),
		errors.Is(err, processors.ErrInvalidRate),
		errors.Is(err, processors.ErrInvalidInput),
		errors.Is(err, services.ErrInvalidSweep):
		log.Warn("Request rejected", "path", r.URL.Path, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, processors.ErrEmptyComparisonSet):
		utils.SendJSONError(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, services.ErrEvaluationNotFound):
		utils.SendJSONError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, services.ErrHistoryDisabled):
		utils.SendJSONError(w, err.Error(), http.StatusNotImplemented)
	default:
		log.Error("Unexpected error handling request", "path", r.URL.Path, "error", err)
		utils.SendJSONError(w, "internal server error", http.StatusInternalServerError)
	}
}
