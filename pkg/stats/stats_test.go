package stats

import "testing"

func TestPercentile(t *testing.T) {
	sorted := []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}
	if got := Percentile(sorted, 50); got != 60 {
		t.Errorf("P50 = %v, want 60", got)
	}
	if got := Percentile(sorted, 95); got != 100 {
		t.Errorf("P95 = %v, want 100", got)
	}
	if got := Percentile(nil, 50); got != 0 {
		t.Errorf("empty P50 = %v, want 0", got)
	}
}

func TestMean(t *testing.T) {
	if got := Mean([]float64{50, 100}); got != 75 {
		t.Errorf("Mean = %v, want 75", got)
	}
	if got := Mean(nil); got != 0 {
		t.Errorf("empty Mean = %v, want 0", got)
	}
}
