// Package search keeps a bleve full-text index over employees, customers
// and visits.
package search

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"fieldforce-system/internal/database"
	"fieldforce-system/internal/database/models"
)

const (
	KindEmployee = "employee"
	KindCustomer = "customer"
	KindVisit    = "visit"

	defaultLimit = 20
)

type document struct {
	Kind     string  `json:"kind"`
	Title    string  `json:"title"`
	Subtitle string  `json:"subtitle"`
	Body     string  `json:"body"`
	OwnerID  float64 `json:"owner_id"`
}

type Hit struct {
	Kind     string  `json:"kind"`
	ID       int64   `json:"id"`
	Title    string  `json:"title"`
	Subtitle string  `json:"subtitle"`
	Score    float64 `json:"score"`
}

type Index struct {
	idx bleve.Index
}

// NewIndex builds an in-memory index. Contents are rebuilt from the store
// at startup.
func NewIndex() (*Index, error) {
	mapping := bleve.NewIndexMapping()
	idx, err := bleve.NewMemOnly(mapping)
	if err != nil {
		return nil, fmt.Errorf("failed to create bleve index: %w", err)
	}
	return &Index{idx: idx}, nil
}

func docID(kind string, id int64) string {
	return kind + ":" + strconv.FormatInt(id, 10)
}

func (i *Index) put(kind string, id int64, d document) {
	d.Kind = kind
	if err := i.idx.Index(docID(kind, id), d); err != nil {
		log.Printf("WARN: failed to index %s %d: %v", kind, id, err)
	}
}

func (i *Index) IndexEmployee(e models.Employee) {
	i.put(KindEmployee, e.ID, document{
		Title:    e.Name,
		Subtitle: e.Position + " - " + e.Department,
		Body:     strings.Join([]string{e.Email, e.Phone, e.Location}, " "),
		OwnerID:  float64(e.ID),
	})
}

func (i *Index) IndexCustomer(c models.Customer) {
	i.put(KindCustomer, c.ID, document{
		Title:    c.Name,
		Subtitle: c.Contact,
		Body:     strings.Join([]string{c.Email, c.Phone, c.Address, c.Notes, c.AddedBy}, " "),
		OwnerID:  float64(c.AddedByID),
	})
}

func (i *Index) IndexVisit(v models.Visit) {
	i.put(KindVisit, v.ID, document{
		Title:    v.CustomerName,
		Subtitle: string(v.Purpose) + " on " + v.VisitDate,
		Body:     strings.Join([]string{v.EmployeeName, v.ContactPerson, v.Location, v.Notes}, " "),
		OwnerID:  float64(v.EmployeeID),
	})
}

func (i *Index) Remove(kind string, id int64) {
	if err := i.idx.Delete(docID(kind, id)); err != nil {
		log.Printf("WARN: failed to remove %s %d from index: %v", kind, id, err)
	}
}

// Rebuild indexes every searchable record in the store.
func (i *Index) Rebuild(ctx context.Context, store database.Store) error {
	employees, err := store.ListEmployees(ctx)
	if err != nil {
		return fmt.Errorf("list employees: %w", err)
	}
	customers, err := store.ListCustomers(ctx, 0)
	if err != nil {
		return fmt.Errorf("list customers: %w", err)
	}
	visits, err := store.ListVisits(ctx, 0)
	if err != nil {
		return fmt.Errorf("list visits: %w", err)
	}
	for _, e := range employees {
		i.IndexEmployee(e)
	}
	for _, c := range customers {
		i.IndexCustomer(c)
	}
	for _, v := range visits {
		i.IndexVisit(v)
	}
	log.Printf("INFO: search index built (%d employees, %d customers, %d visits)", len(employees), len(customers), len(visits))
	return nil
}

// Search matches text across indexed records. A non-zero ownerID limits
// results to that employee's customers and visits.
func (i *Index) Search(text string, ownerID int64, limit int) ([]Hit, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return []Hit{}, nil
	}
	if limit <= 0 {
		limit = defaultLimit
	}

	match := bleve.NewMatchQuery(text)
	match.SetFuzziness(1)
	prefix := bleve.NewPrefixQuery(strings.ToLower(text))
	var q query.Query = bleve.NewDisjunctionQuery(match, prefix)

	if ownerID != 0 {
		id := float64(ownerID)
		inclusive := true
		owner := bleve.NewNumericRangeInclusiveQuery(&id, &id, &inclusive, &inclusive)
		owner.SetField("owner_id")
		customer := bleve.NewTermQuery(KindCustomer)
		customer.SetField("kind")
		visit := bleve.NewTermQuery(KindVisit)
		visit.SetField("kind")
		q = bleve.NewConjunctionQuery(q, owner, bleve.NewDisjunctionQuery(customer, visit))
	}

	req := bleve.NewSearchRequestOptions(q, limit, 0, false)
	req.Fields = []string{"kind", "title", "subtitle"}
	res, err := i.idx.Search(req)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", text, err)
	}

	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		kind, rawID, ok := strings.Cut(h.ID, ":")
		if !ok {
			continue
		}
		id, err := strconv.ParseInt(rawID, 10, 64)
		if err != nil {
			continue
		}
		hits = append(hits, Hit{
			Kind:     kind,
			ID:       id,
			Title:    fieldString(h.Fields, "title"),
			Subtitle: fieldString(h.Fields, "subtitle"),
			Score:    h.Score,
		})
	}
	return hits, nil
}

func fieldString(fields map[string]interface{}, name string) string {
	if v, ok := fields[name].(string); ok {
		return v
	}
	return ""
}

func (i *Index) Close() error {
	return i.idx.Close()
}
