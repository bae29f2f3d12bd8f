package filter

import (
	"context"
	"reflect"
	"testing"

	"fieldforce-system/internal/database"
	"fieldforce-system/internal/database/models"
)

func fixtureVisits(t *testing.T) []models.Visit {
	t.Helper()
	s := database.NewMemoryStore()
	if err := database.Seed(context.Background(), s, database.DefaultFixtures()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	visits, err := s.ListVisits(context.Background(), 0)
	if err != nil {
		t.Fatalf("list visits: %v", err)
	}
	return visits
}

func ids(visits []models.Visit) []int64 {
	out := make([]int64, len(visits))
	for i, v := range visits {
		out[i] = v.ID
	}
	return out
}

func TestApplySearchIsCaseInsensitive(t *testing.T) {
	visits := fixtureVisits(t)
	got := Apply(visits, Visits, Query{Search: "JOHN"})
	if !reflect.DeepEqual(ids(got), []int64{1, 2, 4}) {
		t.Fatalf("unexpected match ids %v", ids(got))
	}
	got = Apply(visits, Visits, Query{Search: "david kim"})
	if !reflect.DeepEqual(ids(got), []int64{5}) {
		t.Fatalf("contact person search failed: %v", ids(got))
	}
}

func TestApplyAllMeansNoFilter(t *testing.T) {
	visits := fixtureVisits(t)
	got := Apply(visits, Visits, Query{Exact: map[string]string{"status": All, "purpose": ""}})
	if len(got) != len(visits) {
		t.Fatalf("expected all %d visits, got %d", len(visits), len(got))
	}
}

func TestApplyCombinedFiltersCommute(t *testing.T) {
	visits := fixtureVisits(t)
	search := Query{Search: "john"}
	status := Query{Exact: map[string]string{"status": string(models.VisitCompleted)}}
	both := Query{Search: "john", Exact: status.Exact}

	searched := Apply(visits, Visits, search)
	byStatus := Apply(visits, Visits, status)

	var intersection []int64
	for _, a := range searched {
		for _, b := range byStatus {
			if a.ID == b.ID {
				intersection = append(intersection, a.ID)
			}
		}
	}
	chained := Apply(searched, Visits, status)
	combined := Apply(visits, Visits, both)

	if !reflect.DeepEqual(ids(chained), intersection) || !reflect.DeepEqual(ids(combined), intersection) {
		t.Fatalf("filters do not commute: chained %v combined %v intersection %v", ids(chained), ids(combined), intersection)
	}
	if !reflect.DeepEqual(ids(Apply(combined, Visits, both)), ids(combined)) {
		t.Fatalf("filter is not idempotent")
	}
}

func TestApplyDoesNotMutateSource(t *testing.T) {
	visits := fixtureVisits(t)
	before := ids(visits)
	_ = Apply(visits, Visits, Query{Search: "zzz"})
	if !reflect.DeepEqual(ids(visits), before) {
		t.Fatalf("source list changed")
	}
}

func TestCustomerFields(t *testing.T) {
	customers := []models.Customer{
		{ID: 1, Name: "ABC Corporation", Contact: "James Wilson", AddedBy: "John Smith", Status: models.CustomerActive, Priority: models.PriorityHigh},
		{ID: 2, Name: "Global Enterprises", Contact: "Lisa Thompson", AddedBy: "Mike Wilson", Status: models.CustomerInactive, Priority: models.PriorityMedium},
	}
	if got := Apply(customers, Customers, Query{Search: "mike"}); len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("admin list should search registeredBy: %+v", got)
	}
	if got := Apply(customers, OwnCustomers, Query{Search: "mike"}); len(got) != 0 {
		t.Fatalf("own list should not search registeredBy: %+v", got)
	}
	got := Apply(customers, OwnCustomers, Query{Search: "wilson", Exact: map[string]string{"priority": "high"}})
	if len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("unexpected result %+v", got)
	}
}
