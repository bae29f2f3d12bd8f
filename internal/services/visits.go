package services

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"fieldforce-system/internal/access"
	"fieldforce-system/internal/cache"
	"fieldforce-system/internal/database/models"
	"fieldforce-system/internal/filter"
)

type VisitService struct {
	*Deps
}

type VisitStats struct {
	Date          string `json:"date"`
	TotalVisits   int    `json:"total_visits"`
	Completed     int    `json:"completed"`
	InProgress    int    `json:"in_progress"`
	AvgDuration   int    `json:"avg_duration_minutes"`
	AvgDurationTx string `json:"avg_duration"`
}

func (s *VisitService) List(ctx context.Context, actor models.User, q filter.Query) ([]models.Visit, error) {
	if err := access.Check(access.ViewAllRecords, actor, 0); err != nil {
		return nil, err
	}
	all, err := s.Store.ListVisits(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("list visits: %w", err)
	}
	return filter.Apply(all, filter.Visits, q), nil
}

func (s *VisitService) ListOwned(ctx context.Context, actor models.User, employeeID int64) ([]models.Visit, error) {
	if err := access.Check(access.ReadOwned, actor, employeeID); err != nil {
		return nil, err
	}
	out, err := s.Store.ListVisits(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("list visits: %w", err)
	}
	return out, nil
}

// Stats summarises the visits made on date, today when empty.
func (s *VisitService) Stats(ctx context.Context, actor models.User, date string) (VisitStats, error) {
	if err := access.Check(access.ViewAllRecords, actor, 0); err != nil {
		return VisitStats{}, err
	}
	if date == "" {
		date = s.today()
	}
	key := cache.VisitStatsKey(date)
	var stats VisitStats
	if s.Cache.Get(ctx, key, &stats) {
		return stats, nil
	}

	all, err := s.Store.ListVisits(ctx, 0)
	if err != nil {
		return VisitStats{}, fmt.Errorf("list visits: %w", err)
	}
	stats = VisitStats{Date: date}
	total, timed := 0, 0
	for _, v := range all {
		if v.VisitDate != date {
			continue
		}
		stats.TotalVisits++
		switch v.Status {
		case models.VisitCompleted:
			stats.Completed++
		case models.VisitInProgress:
			stats.InProgress++
		}
		if m, ok := ParseDurationMinutes(v.Duration); ok {
			total += m
			timed++
		}
	}
	if timed > 0 {
		stats.AvgDuration = (total + timed/2) / timed
	}
	stats.AvgDurationTx = fmt.Sprintf("%d min", stats.AvgDuration)

	s.Cache.Set(ctx, key, stats, cache.CACHE_TTL_SHORT)
	return stats, nil
}

var durationPart = regexp.MustCompile(`(\d+)\s*(hours?|hrs?|h|minutes?|mins?|m)\b`)

// ParseDurationMinutes reads free-form durations such as "45 minutes" or
// "1 hour 20 minutes".
func ParseDurationMinutes(s string) (int, bool) {
	parts := durationPart.FindAllStringSubmatch(s, -1)
	if len(parts) == 0 {
		return 0, false
	}
	minutes := 0
	for _, p := range parts {
		n, err := strconv.Atoi(p[1])
		if err != nil {
			return 0, false
		}
		if p[2][0] == 'h' {
			n *= 60
		}
		minutes += n
	}
	return minutes, true
}
