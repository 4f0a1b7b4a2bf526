package history

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"unprompted-mcp/internal/api"
	"unprompted-mcp/internal/model"
)

func TestStore_RecordAndRecent(t *testing.T) {
	store, err := OpenStore(filepath.Join(t.TempDir(), "nested", "history.db"))
	if err != nil {
		t.Fatalf("OpenStore failed: %v", err)
	}
	defer store.Close()

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	tick := 0
	store.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	ctx := context.Background()
	days, bins := 2, 24
	records := []api.RunRecord{
		{Kind: api.CalcPeriodDistribution, Request: api.Request{UserConfig: api.RawFromConfiguration(model.DefaultConfiguration()), CalculationType: api.CalcPeriodDistribution}, Elapsed: 3 * time.Millisecond, Headline: 200.4},
		{Kind: api.CalcMainSimulation, Request: api.Request{UserConfig: api.RawFromConfiguration(model.DefaultConfiguration()), NumDays: &days, Bins: &bins}, Elapsed: 7 * time.Millisecond, Headline: 400.8},
	}
	for _, rec := range records {
		if err := store.Record(ctx, rec); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	runs, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("Expected 2 runs, got %d", len(runs))
	}
	if runs[0].Kind != api.CalcMainSimulation {
		t.Errorf("Expected newest run first, got %s", runs[0].Kind)
	}
	if runs[0].ElapsedMS != 7 || runs[0].Headline != 400.8 {
		t.Errorf("Unexpected run %+v", runs[0])
	}
	if runs[0].ID == "" || runs[0].ID == runs[1].ID {
		t.Errorf("Expected distinct ids, got %q and %q", runs[0].ID, runs[1].ID)
	}

	var req api.Request
	if err := json.Unmarshal(runs[0].Request, &req); err != nil {
		t.Fatalf("Stored request is not valid JSON: %v", err)
	}
	if req.NumDays == nil || *req.NumDays != 2 {
		t.Errorf("Expected num_days 2 in stored request, got %v", req.NumDays)
	}

	limited, err := store.Recent(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 1 {
		t.Errorf("Expected limit to apply, got %d runs", len(limited))
	}
}

func TestStore_ReopenKeepsRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	store, err := OpenStore(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Record(context.Background(), api.RunRecord{Kind: api.CalcPeriodDistribution}); err != nil {
		t.Fatal(err)
	}
	store.Close()

	reopened, err := OpenStore(path)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	runs, err := reopened.Recent(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Errorf("Expected 1 persisted run, got %d", len(runs))
	}
}
