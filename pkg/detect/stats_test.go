package detect

import (
	"math"
	"testing"

	"github.com/vitalsentry/platform/pkg/vitals"
)

func testTable() vitals.RangeTable {
	return vitals.DefaultRangeTable()
}

func almostEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}

func TestPercentileInterpolates(t *testing.T) {
	data := []float64{10, 20, 30, 40, 50}

	if got := Percentile(data, 50); got != 30 {
		t.Fatalf("expected median 30, got %g", got)
	}
	if got := Percentile(data, 25); got != 20 {
		t.Fatalf("expected p25 20, got %g", got)
	}
	if got := Percentile(data, 0); got != 10 {
		t.Fatalf("expected p0 10, got %g", got)
	}
	if got := Percentile(data, 100); got != 50 {
		t.Fatalf("expected p100 50, got %g", got)
	}
	if got := Percentile(data, 10); !almostEqual(got, 14, 1e-9) {
		t.Fatalf("expected p10 14, got %g", got)
	}
}

func TestMeanStdPopulation(t *testing.T) {
	data := []float64{2, 4, 4, 4, 5, 5, 7, 9}

	if got := Mean(data); got != 5 {
		t.Fatalf("expected mean 5, got %g", got)
	}
	if got := Std(data); got != 2 {
		t.Fatalf("expected population std 2, got %g", got)
	}
}

func TestMADRobustToOutlier(t *testing.T) {
	data := []float64{10, 10, 10, 10, 1000}

	if got := MAD(data); got != 0 {
		t.Fatalf("expected MAD 0 for mostly-constant data, got %g", got)
	}

	data = []float64{1, 2, 3, 4, 5}
	if got := MAD(data); got != 1 {
		t.Fatalf("expected MAD 1, got %g", got)
	}
}

func TestStatsEmptyInput(t *testing.T) {
	if got := Mean(nil); !math.IsNaN(got) {
		t.Fatalf("expected NaN mean for empty input, got %g", got)
	}
	if got := Percentile(nil, 50); !math.IsNaN(got) {
		t.Fatalf("expected NaN percentile for empty input, got %g", got)
	}
	if got := Min(nil); !math.IsNaN(got) {
		t.Fatalf("expected NaN min for empty input, got %g", got)
	}
}

func TestDiff(t *testing.T) {
	got := diff([]float64{1, 4, 2, 2})
	want := []float64{3, -2, 0}
	if len(got) != len(want) {
		t.Fatalf("expected %d diffs, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("diff[%d]: expected %g, got %g", i, want[i], got[i])
		}
	}
}
