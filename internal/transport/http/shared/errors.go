package shared

import (
	"errors"
	"log/slog"
	"net/http"

	"hrpay/internal/domain/catalog"
	"hrpay/internal/domain/glrules"
	"hrpay/internal/domain/payroll"
	"hrpay/internal/domain/statutory"
	"hrpay/internal/platform/jobs"
	"hrpay/internal/transport/http/api"
	"hrpay/internal/transport/http/middleware"
)

type errorMapping struct {
	target error
	status int
	code   string
}

// Order matters: the first matching target wins.
var errorMappings = []errorMapping{
	{payroll.ErrUnknownCatalogCode, http.StatusUnprocessableEntity, "unknown_catalog_code"},
	{payroll.ErrInvalidAmount, http.StatusUnprocessableEntity, "invalid_amount"},
	{payroll.ErrInvalidPeriod, http.StatusUnprocessableEntity, "invalid_period"},
	{payroll.ErrInvalidRiskClass, http.StatusUnprocessableEntity, "invalid_risk_class"},
	{catalog.ErrNotFound, http.StatusUnprocessableEntity, "not_found"},
	{catalog.ErrInvalidData, http.StatusUnprocessableEntity, "invalid_reference_data"},
	{statutory.ErrMissingRegistration, http.StatusUnprocessableEntity, "missing_registration"},
	{glrules.ErrRuleAuthoring, http.StatusBadRequest, "rule_authoring_error"},
	{glrules.ErrInvalidPolarity, http.StatusBadRequest, "validation_error"},
	{glrules.ErrSegmentOutOfRange, http.StatusUnprocessableEntity, "segment_out_of_range"},
	{glrules.ErrNotFound, http.StatusNotFound, "not_found"},
	{jobs.ErrNotFound, http.StatusNotFound, "not_found"},
	{jobs.ErrQueueFull, http.StatusServiceUnavailable, "queue_full"},
	{middleware.ErrIdempotencyConflict, http.StatusConflict, "idempotency_conflict"},
	{middleware.ErrIdempotencyInProgress, http.StatusConflict, "idempotency_in_progress"},
}

// ErrorStatus maps a domain error to its HTTP status and error code.
func ErrorStatus(err error) (int, string) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.status, m.code
		}
	}
	return http.StatusInternalServerError, "internal_error"
}

// FailError writes the envelope for a domain error. Calculation failures carry the
// employee and stage as details.
func FailError(w http.ResponseWriter, err error, requestID string) {
	status, code := ErrorStatus(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "requestId", requestID, "err", err)
		api.Fail(w, status, code, "internal error", requestID)
		return
	}
	var assemblyErr *payroll.AssemblyError
	if errors.As(err, &assemblyErr) {
		api.FailWithDetails(w, status, code, err.Error(), map[string]any{
			"employeeId": assemblyErr.EmployeeID,
			"stage":      assemblyErr.Stage,
		}, requestID)
		return
	}
	api.Fail(w, status, code, err.Error(), requestID)
}
