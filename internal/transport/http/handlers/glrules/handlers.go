package glruleshandler

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"hrpay/internal/domain/audit"
	"hrpay/internal/domain/glrules"
	"hrpay/internal/transport/http/api"
	"hrpay/internal/transport/http/middleware"
	"hrpay/internal/transport/http/shared"
)

type Handler struct {
	Service *glrules.Service
	Audit   *audit.Service
}

func NewHandler(svc *glrules.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Service: svc, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/gl", func(r chi.Router) {
		r.Get("/override-rules", h.handleList)
		r.Post("/override-rules", h.handleCreate)
		r.Get("/override-rules/{ruleID}", h.handleGet)
		r.Put("/override-rules/{ruleID}", h.handleUpdate)
		r.Delete("/override-rules/{ruleID}", h.handleDelete)
		r.Get("/override-rules/{ruleID}/history", h.handleHistory)
		r.Post("/resolve", h.handleResolve)
	})
}

type rulePayload struct {
	Name            string              `json:"name"`
	Priority        int                 `json:"priority"`
	OverrideType    string              `json:"overrideType"`
	AppliesToDebit  bool                `json:"appliesToDebit"`
	AppliesToCredit bool                `json:"appliesToCredit"`
	EffectiveFrom   string              `json:"effectiveFrom"`
	EffectiveTo     string              `json:"effectiveTo"`
	Active          *bool               `json:"active"`
	Conditions      []glrules.Condition `json:"conditions"`
	Target          glrules.Target      `json:"target"`
}

type resolvePayload struct {
	Date    string          `json:"date"`
	Entries []glrules.Entry `json:"entries"`
}

const maxResolveEntries = 10000

var overrideTypes = []string{string(glrules.OverrideAccount), string(glrules.OverrideSegment), string(glrules.OverrideFullString)}

func (p rulePayload) toRule(v *shared.Validator) glrules.Rule {
	v.Required("name", p.Name, "is required")
	v.Required("overrideType", p.OverrideType, "is required")
	v.Enum("overrideType", p.OverrideType, overrideTypes, "must be one of account, segment, full_string")
	from, _ := v.Date("effectiveFrom", p.EffectiveFrom)
	rule := glrules.Rule{
		Name:            p.Name,
		Priority:        p.Priority,
		OverrideType:    glrules.OverrideType(strings.ToLower(strings.TrimSpace(p.OverrideType))),
		AppliesToDebit:  p.AppliesToDebit,
		AppliesToCredit: p.AppliesToCredit,
		EffectiveFrom:   from,
		Active:          true,
		Conditions:      p.Conditions,
		Target:          p.Target,
	}
	if p.Active != nil {
		rule.Active = *p.Active
	}
	if strings.TrimSpace(p.EffectiveTo) != "" {
		if to, ok := v.Date("effectiveTo", p.EffectiveTo); ok {
			v.DateOrder("effectiveFrom", from, "effectiveTo", to)
			rule.EffectiveTo = &to
		}
	}
	return rule
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	activeOnly := r.URL.Query().Get("active") == "true"
	rules, err := h.Service.List(r.Context(), activeOnly)
	if err != nil {
		shared.FailError(w, err, reqID)
		return
	}
	page := shared.ParsePagination(r, shared.DefaultPageSize, shared.MaxPageSize)
	api.Success(w, shared.Paginate(rules, page), reqID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	rule, err := h.Service.Get(r.Context(), chi.URLParam(r, "ruleID"))
	if err != nil {
		shared.FailError(w, err, reqID)
		return
	}
	api.Success(w, rule, reqID)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload rulePayload
	if !shared.DecodeJSON(w, r, &payload, reqID) {
		return
	}
	v := shared.NewValidator()
	rule := payload.toRule(v)
	if v.Reject(w, reqID) {
		return
	}
	created, err := h.Service.Create(r.Context(), rule)
	if err != nil {
		shared.FailError(w, err, reqID)
		return
	}
	h.record(r, audit.ActionCreate, created.ID, nil, created)
	api.Created(w, created, reqID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload rulePayload
	if !shared.DecodeJSON(w, r, &payload, reqID) {
		return
	}
	v := shared.NewValidator()
	rule := payload.toRule(v)
	if v.Reject(w, reqID) {
		return
	}
	ruleID := chi.URLParam(r, "ruleID")
	before, err := h.Service.Get(r.Context(), ruleID)
	if err != nil {
		shared.FailError(w, err, reqID)
		return
	}
	updated, err := h.Service.Update(r.Context(), ruleID, rule)
	if err != nil {
		shared.FailError(w, err, reqID)
		return
	}
	h.record(r, audit.ActionUpdate, ruleID, before, updated)
	api.Success(w, updated, reqID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	ruleID := chi.URLParam(r, "ruleID")
	before, err := h.Service.Get(r.Context(), ruleID)
	if err != nil {
		shared.FailError(w, err, reqID)
		return
	}
	if err := h.Service.Delete(r.Context(), ruleID); err != nil {
		shared.FailError(w, err, reqID)
		return
	}
	h.record(r, audit.ActionDelete, ruleID, before, nil)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	page := shared.ParsePagination(r, shared.DefaultPageSize, shared.MaxPageSize)
	events, err := h.Audit.List(r.Context(), audit.Filter{
		EntityType: audit.EntityGLOverrideRule,
		EntityID:   chi.URLParam(r, "ruleID"),
	}, page.Limit, page.Offset)
	if err != nil {
		shared.FailError(w, err, reqID)
		return
	}
	api.Success(w, map[string]any{"items": events, "limit": page.Limit, "offset": page.Offset}, reqID)
}

// record never fails the request; the rule change has already been committed.
func (h *Handler) record(r *http.Request, action, ruleID string, before, after any) {
	reqID := middleware.GetRequestID(r.Context())
	if err := h.Audit.Record(r.Context(), action, audit.EntityGLOverrideRule, ruleID, reqID, clientIP(r), before, after); err != nil {
		slog.Warn("audit record failed", "requestId", reqID, "ruleId", ruleID, "err", err)
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (h *Handler) handleResolve(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload resolvePayload
	if !shared.DecodeJSON(w, r, &payload, reqID) {
		return
	}
	v := shared.NewValidator()
	date := time.Now().UTC()
	if strings.TrimSpace(payload.Date) != "" {
		date, _ = v.Date("date", payload.Date)
	}
	v.Count("entries", len(payload.Entries), 1, maxResolveEntries)
	for i, e := range payload.Entries {
		if !e.Polarity.Valid() {
			v.Add(fmt.Sprintf("entries[%d].polarity", i), "must be debit or credit")
		}
		v.Required(fmt.Sprintf("entries[%d].account", i), e.Account, "is required")
	}
	if v.Reject(w, reqID) {
		return
	}

	postings, err := h.Service.Post(r.Context(), date, payload.Entries)
	if err != nil {
		shared.FailError(w, err, reqID)
		return
	}
	api.Success(w, map[string]any{"postings": postings, "failed": glrules.Failed(postings)}, reqID)
}
