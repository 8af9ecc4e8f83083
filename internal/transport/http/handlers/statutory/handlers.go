package statutoryhandler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"hrpay/internal/domain/statutory"
	"hrpay/internal/transport/http/api"
	"hrpay/internal/transport/http/middleware"
	"hrpay/internal/transport/http/shared"
)

const maxMovements = 50000

// Recorder receives one observation per generated file.
type Recorder interface {
	ObserveStatutoryFile(emitted, skipped, overflows int)
}

type Handler struct {
	Recorder Recorder
}

func NewHandler(recorder Recorder) *Handler {
	return &Handler{Recorder: recorder}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/statutory", func(r chi.Router) {
		r.Post("/movements/file", h.handleMovementsFile)
	})
}

type movementPayload struct {
	EmployeeNumber       string          `json:"employeeNumber"`
	SocialSecurityNumber string          `json:"socialSecurityNumber"`
	NationalID           string          `json:"nationalId"`
	PaternalSurname      string          `json:"paternalSurname"`
	MaternalSurname      string          `json:"maternalSurname"`
	GivenNames           string          `json:"givenNames"`
	Type                 string          `json:"type"`
	Date                 string          `json:"date"`
	BaseSalary           decimal.Decimal `json:"baseSalary"`
	WorkerType           int             `json:"workerType"`
	TerminationCause     int             `json:"terminationCause"`
	FamilyMedicineUnit   int             `json:"familyMedicineUnit"`
}

type filePayload struct {
	Company   statutory.Company `json:"company"`
	FileDate  string            `json:"fileDate"`
	Movements []movementPayload `json:"movements"`
}

// Malformed dates are payload errors; missing values are left to the encoder, which
// skips and reports the movement.
func (p filePayload) toMovements(v *shared.Validator) []statutory.Movement {
	out := make([]statutory.Movement, 0, len(p.Movements))
	for i, m := range p.Movements {
		var date time.Time
		if strings.TrimSpace(m.Date) != "" {
			date, _ = v.Date(fmt.Sprintf("movements[%d].date", i), m.Date)
		}
		out = append(out, statutory.Movement{
			EmployeeNumber:       m.EmployeeNumber,
			SocialSecurityNumber: m.SocialSecurityNumber,
			NationalID:           m.NationalID,
			PaternalSurname:      m.PaternalSurname,
			MaternalSurname:      m.MaternalSurname,
			GivenNames:           m.GivenNames,
			Type:                 statutory.MovementType(strings.ToLower(strings.TrimSpace(m.Type))),
			Date:                 date,
			BaseSalary:           m.BaseSalary,
			WorkerType:           m.WorkerType,
			TerminationCause:     m.TerminationCause,
			FamilyMedicineUnit:   m.FamilyMedicineUnit,
		})
	}
	return out
}

func (h *Handler) handleMovementsFile(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload filePayload
	if !shared.DecodeJSON(w, r, &payload, reqID) {
		return
	}
	v := shared.NewValidator()
	fileDate := time.Now().UTC()
	if strings.TrimSpace(payload.FileDate) != "" {
		fileDate, _ = v.Date("fileDate", payload.FileDate)
	}
	v.Count("movements", len(payload.Movements), 0, maxMovements)
	movements := payload.toMovements(v)
	if v.Reject(w, reqID) {
		return
	}

	file, err := statutory.Encode(payload.Company, fileDate, movements)
	if err != nil {
		shared.FailError(w, err, reqID)
		return
	}
	if h.Recorder != nil {
		h.Recorder.ObserveStatutoryFile(file.Counts.Details, len(file.Skipped), len(file.Overflows))
	}

	if r.URL.Query().Get("format") == "json" {
		api.Success(w, map[string]any{
			"content":   string(file.Content),
			"counts":    file.Counts,
			"skipped":   file.Skipped,
			"overflows": file.Overflows,
		}, reqID)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=us-ascii")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="movements-%s.txt"`, fileDate.Format("20060102")))
	w.Header().Set("X-Detail-Count", strconv.Itoa(file.Counts.Details))
	w.Header().Set("X-Skipped-Count", strconv.Itoa(len(file.Skipped)))
	w.Header().Set("X-Overflow-Count", strconv.Itoa(len(file.Overflows)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(file.Content)
}
