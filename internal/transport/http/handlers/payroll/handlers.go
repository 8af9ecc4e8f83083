package payrollhandler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"hrpay/internal/domain/catalog"
	"hrpay/internal/domain/payroll"
	"hrpay/internal/platform/jobs"
	"hrpay/internal/transport/http/api"
	"hrpay/internal/transport/http/middleware"
	"hrpay/internal/transport/http/shared"
)

const (
	maxBatchItems = 5000
	batchEndpoint = "payroll.calculate.batch"
)

type Handler struct {
	Service     *payroll.Service
	Jobs        *jobs.Service
	Idempotency *middleware.IdempotencyStore
}

func NewHandler(svc *payroll.Service, jobsSvc *jobs.Service, idem *middleware.IdempotencyStore) *Handler {
	return &Handler{Service: svc, Jobs: jobsSvc, Idempotency: idem}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/payroll", func(r chi.Router) {
		r.Post("/calculate", h.handleCalculate)
		r.Post("/calculate/batch", h.handleCalculateBatch)
	})
}

type amountPayload struct {
	Code   string          `json:"code"`
	Amount decimal.Decimal `json:"amount"`
}

type calculatePayload struct {
	EmployeeID   string          `json:"employeeId"`
	PeriodStart  string          `json:"periodStart"`
	PeriodEnd    string          `json:"periodEnd"`
	PaymentDate  string          `json:"paymentDate"`
	Perceptions  []amountPayload `json:"perceptions"`
	Deductions   []amountPayload `json:"deductions"`
	BaseSalary   decimal.Decimal `json:"baseSalary"`
	RiskClass    string          `json:"riskClass"`
	Jurisdiction string          `json:"jurisdiction"`
	DaysWorked   int             `json:"daysWorked"`
}

type batchPayload struct {
	Items []calculatePayload `json:"items"`
}

type itemError struct {
	Code    string        `json:"code"`
	Message string        `json:"message"`
	Stage   payroll.Stage `json:"stage,omitempty"`
}

type batchItem struct {
	EmployeeID string          `json:"employeeId"`
	Success    bool            `json:"success"`
	Result     *payroll.Result `json:"result,omitempty"`
	Error      *itemError      `json:"error,omitempty"`
}

type batchResponse struct {
	Items     []batchItem `json:"items"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
}

var riskClasses = []string{catalog.RiskClassI, catalog.RiskClassII, catalog.RiskClassIII, catalog.RiskClassIV, catalog.RiskClassV}

// toRequest validates one payload; field names are prefixed for batch items.
func toRequest(p calculatePayload, v *shared.Validator, prefix string) payroll.Request {
	v.Required(prefix+"employeeId", p.EmployeeID, "is required")
	v.Required(prefix+"riskClass", p.RiskClass, "is required")
	v.Enum(prefix+"riskClass", p.RiskClass, riskClasses, "must be one of I, II, III, IV, V")
	start, startOK := v.Date(prefix+"periodStart", p.PeriodStart)
	end, endOK := v.Date(prefix+"periodEnd", p.PeriodEnd)
	if startOK && endOK {
		v.DateOrder(prefix+"periodStart", start, prefix+"periodEnd", end)
	}
	paymentDate := end
	if strings.TrimSpace(p.PaymentDate) != "" {
		paymentDate, _ = v.Date(prefix+"paymentDate", p.PaymentDate)
	}
	v.Count(prefix+"perceptions", len(p.Perceptions), 1, 0)
	if p.DaysWorked < 0 {
		v.Add(prefix+"daysWorked", "must not be negative")
	}
	if !p.BaseSalary.IsPositive() {
		v.Add(prefix+"baseSalary", "is required and must be greater than zero")
	}

	req := payroll.Request{
		EmployeeID:   strings.TrimSpace(p.EmployeeID),
		PaymentDate:  paymentDate,
		BaseSalary:   p.BaseSalary,
		RiskClass:    strings.ToUpper(strings.TrimSpace(p.RiskClass)),
		Jurisdiction: strings.ToUpper(strings.TrimSpace(p.Jurisdiction)),
		DaysWorked:   p.DaysWorked,
	}
	for i, line := range p.Perceptions {
		v.Required(fmt.Sprintf("%sperceptions[%d].code", prefix, i), line.Code, "is required")
		req.Perceptions = append(req.Perceptions, payroll.PerceptionInput{Code: strings.TrimSpace(line.Code), Amount: line.Amount})
	}
	for i, line := range p.Deductions {
		v.Required(fmt.Sprintf("%sdeductions[%d].code", prefix, i), line.Code, "is required")
		req.Deductions = append(req.Deductions, payroll.DeductionLine{Code: strings.TrimSpace(line.Code), Amount: line.Amount, Source: payroll.SourceManual})
	}
	if startOK && endOK && !end.Before(start) {
		period, err := payroll.NewPeriod(start, end)
		if err != nil {
			v.Add(prefix+"periodEnd", err.Error())
		}
		req.Period = period
	}
	return req
}

func (h *Handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload calculatePayload
	if !shared.DecodeJSON(w, r, &payload, reqID) {
		return
	}
	v := shared.NewValidator()
	req := toRequest(payload, v, "")
	if v.Reject(w, reqID) {
		return
	}

	result, err := h.Service.Calculate(r.Context(), req)
	if err != nil {
		shared.FailError(w, err, reqID)
		return
	}
	api.Success(w, result, reqID)
}

func (h *Handler) handleCalculateBatch(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			api.Fail(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large", reqID)
			return
		}
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "failed to read request body", reqID)
		return
	}
	r.Body = io.NopCloser(bytes.NewReader(raw))

	var payload batchPayload
	if !shared.DecodeJSON(w, r, &payload, reqID) {
		return
	}
	v := shared.NewValidator()
	v.Count("items", len(payload.Items), 1, maxBatchItems)
	reqs := make([]payroll.Request, 0, len(payload.Items))
	for i, item := range payload.Items {
		reqs = append(reqs, toRequest(item, v, fmt.Sprintf("items[%d].", i)))
	}
	if v.Reject(w, reqID) {
		return
	}

	if r.URL.Query().Get("async") != "true" {
		api.Success(w, toBatchResponse(h.Service.CalculateBatch(r.Context(), reqs)), reqID)
		return
	}
	h.enqueueBatch(w, r, reqs, raw, reqID)
}

func (h *Handler) enqueueBatch(w http.ResponseWriter, r *http.Request, reqs []payroll.Request, raw []byte, reqID string) {
	if h.Jobs == nil {
		api.Fail(w, http.StatusServiceUnavailable, "async_unavailable", "async batch runs are not enabled", reqID)
		return
	}

	key := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	hash := middleware.RequestHash(raw)
	stored, reserved, err := h.Idempotency.Reserve(r.Context(), batchEndpoint, key, hash)
	if err != nil {
		shared.FailError(w, err, reqID)
		return
	}
	if !reserved {
		api.Accepted(w, stored, reqID)
		return
	}

	svc := h.Service
	jobID, err := h.Jobs.Enqueue(r.Context(), jobs.JobPayrollBatch, func(ctx context.Context) (any, error) {
		return toBatchResponse(svc.CalculateBatch(ctx, reqs)), nil
	})
	if err != nil {
		if relErr := h.Idempotency.Release(r.Context(), batchEndpoint, key, hash); relErr != nil {
			slog.Error("release idempotency key", "key", key, "err", relErr)
		}
		shared.FailError(w, err, reqID)
		return
	}

	data := map[string]any{"jobId": jobID, "status": jobs.StatusQueued, "items": len(reqs)}
	if err := h.Idempotency.Save(r.Context(), batchEndpoint, key, hash, mustJSON(data)); err != nil {
		shared.FailError(w, err, reqID)
		return
	}
	api.Accepted(w, data, reqID)
}

func toBatchResponse(results []payroll.BatchResult) batchResponse {
	out := batchResponse{Items: make([]batchItem, 0, len(results))}
	for _, res := range results {
		item := batchItem{EmployeeID: res.EmployeeID}
		if res.Err != nil {
			status, code := shared.ErrorStatus(res.Err)
			message := res.Err.Error()
			if status == http.StatusInternalServerError {
				slog.Error("payroll batch item failed", "employeeId", res.EmployeeID, "err", res.Err)
				message = "internal error"
			}
			item.Error = &itemError{Code: code, Message: message}
			var assemblyErr *payroll.AssemblyError
			if errors.As(res.Err, &assemblyErr) {
				item.Error.Stage = assemblyErr.Stage
			}
			out.Failed++
		} else {
			item.Success = true
			item.Result = res.Result
			out.Succeeded++
		}
		out.Items = append(out.Items, item)
	}
	return out
}
