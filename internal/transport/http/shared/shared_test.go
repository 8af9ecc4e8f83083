package shared

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"hrpay/internal/domain/catalog"
	"hrpay/internal/domain/glrules"
	"hrpay/internal/domain/payroll"
)

func TestErrorStatus(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{&payroll.AssemblyError{EmployeeID: "E1", Stage: payroll.StageSplitting, Err: payroll.ErrUnknownCatalogCode}, 422, "unknown_catalog_code"},
		{fmt.Errorf("wrap: %w", catalog.ErrNotFound), 422, "not_found"},
		{glrules.ErrRuleAuthoring, 400, "rule_authoring_error"},
		{glrules.ErrNotFound, 404, "not_found"},
		{fmt.Errorf("boom"), 500, "internal_error"},
	}
	for _, tc := range cases {
		status, code := ErrorStatus(tc.err)
		if status != tc.status || code != tc.code {
			t.Fatalf("%v: expected %d/%s, got %d/%s", tc.err, tc.status, tc.code, status, code)
		}
	}
}

func TestFailErrorIncludesAssemblyDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	FailError(rec, &payroll.AssemblyError{EmployeeID: "E9", Stage: payroll.StageComputingStatutory, Err: payroll.ErrInvalidRiskClass}, "req")
	body := rec.Body.String()
	if rec.Code != http.StatusUnprocessableEntity || !strings.Contains(body, `"employeeId":"E9"`) || !strings.Contains(body, `"stage":"computing_statutory"`) {
		t.Fatalf("unexpected response %d %s", rec.Code, body)
	}
}

func TestFailErrorHidesInternalMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	FailError(rec, fmt.Errorf("password=secret"), "req")
	if strings.Contains(rec.Body.String(), "secret") {
		t.Fatalf("expected internal error message hidden, got %s", rec.Body.String())
	}
}

func TestDecodeJSONRejectsUnknownFields(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"a","extra":1}`))
	if DecodeJSON(rec, req, &dst, "req") {
		t.Fatal("expected decode to fail")
	}
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "invalid_payload") {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}
}

func TestValidatorIssuesSorted(t *testing.T) {
	v := NewValidator()
	v.Required("z", "", "is required")
	v.Required("a", " ", "is required")
	v.Enum("riskClass", "VI", []string{"I", "II"}, "must be I to V")
	start, _ := v.Date("periodStart", "2025-03-31")
	end, _ := v.Date("periodEnd", "2025-03-01")
	v.DateOrder("periodStart", start, "periodEnd", end)

	issues := v.Issues()
	if len(issues) != 5 || issues[0].Field != "a" || issues[len(issues)-1].Field != "z" {
		t.Fatalf("unexpected issues %+v", issues)
	}

	rec := httptest.NewRecorder()
	if !v.Reject(rec, "req") || rec.Code != http.StatusBadRequest {
		t.Fatalf("expected rejection, got %d", rec.Code)
	}
}

func TestParsePagination(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=500&offset=10", nil)
	p := ParsePagination(req, 50, 200)
	if p.Limit != 200 || p.Offset != 10 {
		t.Fatalf("expected 200/10, got %d/%d", p.Limit, p.Offset)
	}
}

func TestParseDate(t *testing.T) {
	cases := map[string]string{
		"2025-03-15":                "2025-03-15",
		"2025-03-15T23:30:00-06:00": "2025-03-15",
		"":                          "0001-01-01",
	}
	for raw, want := range cases {
		got, err := ParseDate(raw)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", raw, err)
		}
		if got.Format("2006-01-02") != want || got.Location() != time.UTC {
			t.Fatalf("%q: expected %s UTC, got %v", raw, want, got)
		}
	}
	if _, err := ParseDate("15/03/2025"); err == nil {
		t.Fatal("expected error for unsupported layout")
	}
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	page := Paginate(items, Pagination{Limit: 2, Offset: 3})
	if page.Total != 5 || len(page.Items) != 2 || page.Items[0] != 4 {
		t.Fatalf("unexpected page %+v", page)
	}
	page = Paginate(items, Pagination{Limit: 2, Offset: 10})
	if page.Items == nil || len(page.Items) != 0 {
		t.Fatalf("expected empty non-nil window, got %+v", page)
	}
}

func TestValidatorCount(t *testing.T) {
	v := NewValidator()
	v.Count("items", 0, 1, 10)
	v.Count("entries", 11, 1, 10)
	v.Count("movements", 0, 0, 10)
	issues := v.Issues()
	if len(issues) != 2 || issues[0].Field != "entries" || issues[1].Field != "items" {
		t.Fatalf("unexpected issues %+v", issues)
	}
}
