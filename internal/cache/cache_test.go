package cache

import (
	"context"
	"testing"
	"time"
)

type stats struct {
	Present int `json:"present"`
}

func TestMemoryRoundTripAndExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 22, 9, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.now = func() time.Time { return now }

	m.Set(ctx, EmployeeStatsKey(2), stats{Present: 3}, CACHE_TTL_SHORT)
	var got stats
	if !m.Get(ctx, "attendance:stats:2", &got) || got.Present != 3 {
		t.Fatalf("expected cached stats, got %+v", got)
	}

	now = now.Add(2 * CACHE_TTL_SHORT)
	if m.Get(ctx, EmployeeStatsKey(2), &got) {
		t.Fatalf("expected expired entry to miss")
	}
}

func TestInvalidateReportCaches(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	m.Set(ctx, DASHBOARD_CACHE_KEY, stats{Present: 1}, CACHE_TTL_MEDIUM)
	m.Set(ctx, EmployeeStatsKey(4), stats{Present: 2}, CACHE_TTL_MEDIUM)
	m.Set(ctx, EmployeeStatsKey(5), stats{Present: 3}, CACHE_TTL_MEDIUM)
	m.Set(ctx, VisitStatsKey("2024-01-23"), stats{Present: 4}, CACHE_TTL_MEDIUM)
	m.Set(ctx, VisitStatsKey("2024-01-22"), stats{Present: 5}, CACHE_TTL_MEDIUM)

	InvalidateReportCaches(ctx, m, []string{"2024-01-23"}, 4)

	var s stats
	if m.Get(ctx, DASHBOARD_CACHE_KEY, &s) || m.Get(ctx, EmployeeStatsKey(4), &s) {
		t.Fatalf("expected dashboard and employee 4 stats to be dropped")
	}
	if !m.Get(ctx, EmployeeStatsKey(5), &s) {
		t.Fatalf("unrelated employee stats should survive")
	}
	if m.Get(ctx, VisitStatsKey("2024-01-23"), &s) {
		t.Fatalf("expected visit stats for the written day to be dropped")
	}
	if !m.Get(ctx, VisitStatsKey("2024-01-22"), &s) {
		t.Fatalf("visit stats for other days should survive")
	}
}

func TestNoopAlwaysMisses(t *testing.T) {
	var c Cache = Noop{}
	c.Set(context.Background(), "k", 1, time.Minute)
	var v int
	if c.Get(context.Background(), "k", &v) {
		t.Fatalf("noop cache should never hit")
	}
}
