package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"hrpay/internal/domain/glrules"
)

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestCalculateCommand(t *testing.T) {
	input := `{"items":[
	  {"employeeId":"E-1","periodStart":"2025-03-01","periodEnd":"2025-03-15","perceptions":[{"code":"P001","amount":"12000"}],"baseSalary":"800","riskClass":"II","jurisdiction":"CDMX"},
	  {"employeeId":"E-2","periodStart":"2025-03-01","periodEnd":"2025-03-15","perceptions":[{"code":"NOPE","amount":"1"}],"baseSalary":"800","riskClass":"II"}
	]}`
	stdout, _, err := execute(t, input, "calculate", "--catalog", "../../configs/catalog.toml", "--input", "-")
	if err == nil || !strings.Contains(err.Error(), "1 of 2") {
		t.Fatalf("expected one failure to be reported, got %v", err)
	}

	var out []calculateOutput
	if err := json.Unmarshal([]byte(stdout), &out); err != nil {
		t.Fatalf("decode output %q: %v", stdout, err)
	}
	if len(out) != 2 {
		t.Fatalf("expected two results, got %d", len(out))
	}
	if out[0].Result == nil || !out[0].Result.NetPay.IsPositive() {
		t.Fatalf("expected positive net pay for E-1, got %+v", out[0])
	}
	if out[1].Error == "" || out[1].Stage == "" {
		t.Fatalf("expected failure with stage for E-2, got %+v", out[1])
	}
}

func TestEncodeCommand(t *testing.T) {
	input := `{"company":{"registration":"Y5412345108","name":"Acme"},"fileDate":"2025-03-31","movements":[
	  {"employeeNumber":"E-1","socialSecurityNumber":"12345678901","nationalId":"PEMJ800101HDFRRN09","paternalSurname":"Perez","givenNames":"Ana","type":"registration","date":"2025-03-03","baseSalary":"400"},
	  {"employeeNumber":"E-2","type":"termination","date":"2025-03-03"}
	]}`
	stdout, stderr, err := execute(t, input, "encode", "--input", "-")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := strings.Count(stdout, "\r\n"); got != 3 {
		t.Fatalf("expected 3 records, got %d", got)
	}
	if !strings.Contains(stderr, "skipped movement 1 (E-2)") {
		t.Fatalf("expected skip report, got %q", stderr)
	}
}

func TestResolveCommand(t *testing.T) {
	input := `[{"line":{"department":"SALES","payElement":"OVERTIME"},"polarity":"debit","account":"5100-100-01"}]`
	stdout, _, err := execute(t, input, "resolve", "--rules", "../../configs/gl_rules.toml", "--date", "2025-06-01", "--input", "-")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var postings []glrules.Posting
	if err := json.Unmarshal([]byte(stdout), &postings); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if len(postings) != 1 || postings[0].Account != "5100-410-01" {
		t.Fatalf("expected segment override, got %+v", postings)
	}
}
