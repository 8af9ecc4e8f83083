package audit

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
)

func TestBuildQuery(t *testing.T) {
	query, args := buildQuery("SELECT 1", Filter{EntityType: EntityGLOverrideRule, EntityID: "r-1"})
	want := "SELECT 1 FROM audit_events WHERE 1=1 AND entity_type = $1 AND entity_id = $2"
	if query != want {
		t.Fatalf("expected %q, got %q", want, query)
	}
	if len(args) != 2 || args[0] != EntityGLOverrideRule || args[1] != "r-1" {
		t.Fatalf("unexpected args %v", args)
	}
}

func TestServiceWithoutDatabase(t *testing.T) {
	var svc *Service
	if err := svc.Record(context.Background(), ActionCreate, EntityGLOverrideRule, "r-1", "req", "", nil, map[string]string{"a": "b"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	events, err := New(nil).List(context.Background(), Filter{}, 10, 0)
	if err != nil || len(events) != 0 {
		t.Fatalf("expected no events, got %v (%v)", events, err)
	}
}

func TestRecordAndList(t *testing.T) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer pool.Close()

	svc := New(pool)
	entityID := "audit-test-rule"
	if err := svc.Record(ctx, ActionUpdate, EntityGLOverrideRule, entityID, "req-1", "127.0.0.1", map[string]int{"priority": 1}, map[string]int{"priority": 2}); err != nil {
		t.Fatalf("record: %v", err)
	}
	events, err := svc.List(ctx, Filter{EntityType: EntityGLOverrideRule, EntityID: entityID}, 10, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(events) == 0 || events[0].Action != ActionUpdate || len(events[0].After) == 0 {
		t.Fatalf("expected recorded update, got %+v", events)
	}
}
