package simulation

import (
	"encoding/json"
	"math"
	"reflect"
	"testing"

	"unprompted-mcp/internal/model"
)

func TestComputeTimeBins_OneDayHourly(t *testing.T) {
	cfg := model.DefaultConfiguration()

	bins, err := ComputeTimeBins(cfg, 1, 24)
	if err != nil {
		t.Fatal(err)
	}
	if len(bins) != 24 {
		t.Fatalf("Expected 24 bins, got %d", len(bins))
	}

	for i, b := range bins {
		want := model.Periods[i/6]
		if b.ActivePeriod != want {
			t.Errorf("bin %d: expected period %s, got %s", i, want, b.ActivePeriod)
		}
		if b.ActiveMultiplier != cfg.Multiplier(want) {
			t.Errorf("bin %d: expected multiplier %v, got %v", i, cfg.Multiplier(want), b.ActiveMultiplier)
		}
		if b.NTrials != 12 {
			t.Errorf("bin %d: expected 12 trials per 3600s bin, got %d", i, b.NTrials)
		}
		if b.Day != 1 {
			t.Errorf("bin %d: expected day 1, got %d", i, b.Day)
		}
	}

	if bins[0].Label != "00:00-00:59" {
		t.Errorf("Expected first label 00:00-00:59, got %s", bins[0].Label)
	}
	if bins[23].Label != "23:00-23:59" {
		t.Errorf("Expected last label 23:00-23:59, got %s", bins[23].Label)
	}

	// Night: 12 trials at p=0.2
	if math.Abs(bins[0].MeanMessages-2.4) > 1e-9 {
		t.Errorf("Expected Night bin mean 2.4, got %v", bins[0].MeanMessages)
	}
}

func TestComputeTimeBins_Invariants(t *testing.T) {
	cfg := mustConfig(t, 0.03, 300, 300, [model.NumPeriods]float64{1.0, 6.0, 8.4, 10.5})

	tests := []struct {
		name string
		days int
		bins int
	}{
		{"SingleDay", 1, 24},
		{"Week", 7, 24},
		{"FractionalWidth", 2, 7},
		{"FiveMinutes", 1, 288},
		{"Quarters", 3, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bins, err := ComputeTimeBins(cfg, tt.days, tt.bins)
			if err != nil {
				t.Fatal(err)
			}
			if len(bins) != tt.days*tt.bins {
				t.Fatalf("Expected %d bins, got %d", tt.days*tt.bins, len(bins))
			}

			pct, total, means := 0.0, 0.0, 0.0
			for _, b := range bins {
				pct += b.PercentOfTotal
				total += b.TotalMessages
				means += b.MeanMessages

				n := float64(b.NTrials)
				if b.MeanMessages != n*b.PSuccess {
					t.Fatalf("%s: mean %v != n*p", b.Label, b.MeanMessages)
				}
				if b.StdDevMessages != math.Sqrt(n*b.PSuccess*(1-b.PSuccess)) {
					t.Fatalf("%s: std %v != sqrt(npq)", b.Label, b.StdDevMessages)
				}
				if b.PercentOfTotal < 0 || b.PercentOfTotal > 100 {
					t.Fatalf("%s: percentage %v out of range", b.Label, b.PercentOfTotal)
				}
			}

			if math.Abs(pct-100) > 1e-6 {
				t.Errorf("Percentages sum to %v, want 100", pct)
			}
			if math.Abs(total-means) > 1e-9*math.Max(1, means) {
				t.Errorf("Bin totals %v differ from summed means %v", total, means)
			}
			if math.Abs(HorizonTotal(bins)-means) > 1e-9*math.Max(1, means) {
				t.Errorf("HorizonTotal %v differs from summed means %v", HorizonTotal(bins), means)
			}
		})
	}
}

func TestComputeTimeBins_Contiguous(t *testing.T) {
	cfg := model.DefaultConfiguration()

	bins, err := ComputeTimeBins(cfg, 3, 8)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"Day 1 00:00-02:59", "Day 1 03:00-05:59", "Day 1 06:00-08:59"}
	for i, w := range want {
		if bins[i].Label != w {
			t.Errorf("bin %d: expected label %q, got %q", i, w, bins[i].Label)
		}
	}
	if bins[8].Label != "Day 2 00:00-02:59" || bins[8].Day != 2 {
		t.Errorf("Expected bin 8 to start day 2, got %q (day %d)", bins[8].Label, bins[8].Day)
	}
	if bins[23].Label != "Day 3 21:00-23:59" {
		t.Errorf("Expected last label Day 3 21:00-23:59, got %q", bins[23].Label)
	}

	// Day slots repeat identically across the horizon.
	for i := 8; i < len(bins); i++ {
		if bins[i].MeanMessages != bins[i%8].MeanMessages || bins[i].ActivePeriod != bins[i%8].ActivePeriod {
			t.Errorf("bin %d does not repeat day-1 slot %d", i, i%8)
		}
	}
}

func TestComputeTimeBins_FractionalBinPeriod(t *testing.T) {
	cfg := model.DefaultConfiguration()

	// Width 86400/5 = 17280s; starts at 0, 17280, 34560, 51840, 69120.
	bins, err := ComputeTimeBins(cfg, 1, 5)
	if err != nil {
		t.Fatal(err)
	}
	want := []model.Period{model.Night, model.Night, model.Morning, model.Afternoon, model.Evening}
	for i, p := range want {
		if bins[i].ActivePeriod != p {
			t.Errorf("bin %d: expected %s, got %s", i, p, bins[i].ActivePeriod)
		}
		if bins[i].NTrials != 57 { // floor(17280/300)
			t.Errorf("bin %d: expected 57 trials, got %d", i, bins[i].NTrials)
		}
	}
}

func TestComputeTimeBins_AllSuppressed(t *testing.T) {
	cfg := mustConfig(t, 0.2, 300, 300, [model.NumPeriods]float64{0, 0, 0, 0})

	bins, err := ComputeTimeBins(cfg, 2, 24)
	if err != nil {
		t.Fatal(err)
	}
	for _, b := range bins {
		if b.PercentOfTotal != 0 || b.TotalMessages != 0 {
			t.Fatalf("Expected zero activity, got %+v", b)
		}
	}
}

func TestComputeTimeBins_InvalidShape(t *testing.T) {
	cfg := model.DefaultConfiguration()

	for _, c := range []struct{ days, bins int }{{0, 24}, {1, 0}, {-3, 24}, {1, -1}} {
		_, err := ComputeTimeBins(cfg, c.days, c.bins)
		if model.KindOf(err) != model.InvalidRequestShape {
			t.Errorf("days=%d bins=%d: expected InvalidRequestShape, got %v", c.days, c.bins, err)
		}
	}
}

func TestComputeTimeBins_IdempotentJSON(t *testing.T) {
	cfg := model.DefaultConfiguration()

	a, _ := ComputeTimeBins(cfg, 2, 48)
	b, _ := ComputeTimeBins(cfg, 2, 48)
	if !reflect.DeepEqual(a, b) {
		t.Fatal("Two identical calls produced different bins")
	}

	out, err := json.Marshal(a[0])
	if err != nil {
		t.Fatal(err)
	}
	var entry map[string]any
	if err := json.Unmarshal(out, &entry); err != nil {
		t.Fatal(err)
	}
	if entry["active_multiplier_period"] != "Night" {
		t.Errorf("Expected period encoded by name, got %v", entry["active_multiplier_period"])
	}
	for _, field := range []string{"time_bin", "mean_messages", "std_dev_messages", "total_messages_in_bin", "percentage_of_total", "active_multiplier_value"} {
		if _, ok := entry[field]; !ok {
			t.Errorf("Missing field %s", field)
		}
	}
	if _, ok := entry["NTrials"]; ok {
		t.Error("Internal trial fields must not be encoded")
	}
}

func TestComputeTimeBins_QuartileBoundaryBins(t *testing.T) {
	cfg := model.DefaultConfiguration()

	misassigned := 0
	for b := 4; b <= 1440; b += 4 {
		bins, err := ComputeTimeBins(cfg, 1, b)
		if err != nil {
			t.Fatalf("bins=%d: %v", b, err)
		}
		for q := 1; q < model.NumPeriods; q++ {
			slot := q * b / model.NumPeriods
			want := model.Periods[q]
			if bins[slot].ActivePeriod != want {
				misassigned++
				t.Errorf("bins=%d slot=%d label=%s: expected %s, got %s", b, slot, bins[slot].Label, want, bins[slot].ActivePeriod)
			}
			if bins[slot-1].ActivePeriod != model.Periods[q-1] {
				t.Errorf("bins=%d slot=%d: expected %s before the boundary, got %s", b, slot-1, model.Periods[q-1], bins[slot-1].ActivePeriod)
			}
		}
		if misassigned > 10 {
			t.Fatal("too many misassigned boundary bins")
		}
	}
}

func TestComputeTimeBins_BoundaryLabel(t *testing.T) {
	// 86400/52 is not a whole number of seconds; slot 39 starts at 18:00.
	bins, err := ComputeTimeBins(model.DefaultConfiguration(), 1, 52)
	if err != nil {
		t.Fatal(err)
	}
	if got := bins[39].Label; got[:5] != "18:00" {
		t.Errorf("Expected slot 39 to start at 18:00, got %s", got)
	}
	if got := bins[38].Label; got[6:] != "17:59" {
		t.Errorf("Expected slot 38 to end at 17:59, got %s", got)
	}
}

func TestComputeTimeBins_OversizedHorizon(t *testing.T) {
	cfg := model.DefaultConfiguration()

	for _, c := range []struct{ days, bins int }{
		{math.MaxInt/2 + 1, 4},
		{math.MaxInt32, 2},
		{1, math.MaxInt},
	} {
		_, err := ComputeTimeBins(cfg, c.days, c.bins)
		if model.KindOf(err) != model.LimitExceeded {
			t.Errorf("days=%d bins=%d: expected LimitExceeded, got %v", c.days, c.bins, err)
		}
	}
}
