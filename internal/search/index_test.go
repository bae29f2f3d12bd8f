package search

import (
	"context"
	"testing"

	"fieldforce-system/internal/database"
	"fieldforce-system/internal/database/models"
)

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	store := database.NewMemoryStore()
	if err := database.Seed(context.Background(), store, database.DefaultFixtures()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	idx, err := NewIndex()
	if err != nil {
		t.Fatalf("new index: %v", err)
	}
	t.Cleanup(func() { idx.Close() })
	if err := idx.Rebuild(context.Background(), store); err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	return idx
}

func hasHit(hits []Hit, kind string, id int64) bool {
	for _, h := range hits {
		if h.Kind == kind && h.ID == id {
			return true
		}
	}
	return false
}

func TestSearchAcrossKinds(t *testing.T) {
	idx := newTestIndex(t)
	hits, err := idx.Search("Corporation", 0, 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if !hasHit(hits, KindCustomer, 1) {
		t.Fatalf("expected ABC Corporation customer hit, got %+v", hits)
	}

	hits, err = idx.Search("sarah", 0, 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if !hasHit(hits, KindEmployee, 3) {
		t.Fatalf("expected Sarah employee hit, got %+v", hits)
	}
}

func TestSearchScopedToOwner(t *testing.T) {
	idx := newTestIndex(t)
	hits, err := idx.Search("global", 2, 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	for _, h := range hits {
		if h.Kind == KindEmployee || h.Kind == KindCustomer {
			t.Fatalf("John should not see %s %d", h.Kind, h.ID)
		}
	}
	if !hasHit(hits, KindVisit, 4) {
		t.Fatalf("expected John's Global Enterprises visit, got %+v", hits)
	}
}

func TestIndexUpdatesOnWrite(t *testing.T) {
	idx := newTestIndex(t)
	idx.IndexCustomer(models.Customer{ID: 9, Name: "Orbital Freight", Contact: "Ana Ruiz", AddedByID: 4})
	hits, err := idx.Search("orbital", 0, 10)
	if err != nil || !hasHit(hits, KindCustomer, 9) {
		t.Fatalf("new customer not searchable: %+v %v", hits, err)
	}
	idx.Remove(KindCustomer, 9)
	hits, _ = idx.Search("orbital", 0, 10)
	if hasHit(hits, KindCustomer, 9) {
		t.Fatalf("removed customer still searchable")
	}
	if hits, _ := idx.Search("   ", 0, 10); len(hits) != 0 {
		t.Fatalf("blank query should return nothing")
	}
}
