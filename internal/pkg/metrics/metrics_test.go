package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveScore_CountsFallbacks(t *testing.T) {
	before := testutil.ToFloat64(scoreFallbacks.WithLabelValues("no_signal"))

	ObserveScore(80, "")
	ObserveScore(72, "no_signal")

	if got := testutil.ToFloat64(scoreFallbacks.WithLabelValues("no_signal")); got != before+1 {
		t.Errorf("expected %v, got %v", before+1, got)
	}
}

type fakeStat struct{}

func (fakeStat) AcquiredConns() int32 { return 3 }
func (fakeStat) IdleConns() int32     { return 7 }
func (fakeStat) TotalConns() int32    { return 10 }

func TestUpdateDBPoolMetrics(t *testing.T) {
	UpdateDBPoolMetrics(fakeStat{})
	if got := testutil.ToFloat64(DBPoolConnsOpen); got != 10 {
		t.Errorf("expected 10 open, got %v", got)
	}
	if got := testutil.ToFloat64(DBPoolConnsIdle); got != 7 {
		t.Errorf("expected 7 idle, got %v", got)
	}

	UpdateDBPoolMetrics("not a pool")
	if got := testutil.ToFloat64(DBPoolConnsAcquired); got != 3 {
		t.Errorf("unknown stat types should be ignored, got %v", got)
	}
}
