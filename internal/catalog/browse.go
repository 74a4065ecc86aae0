package catalog

import (
	"context"
	"database/sql"

	"golang.org/x/text/cases"

	"github.com/timel-e/core/internal/apperr"
	"github.com/timel-e/core/internal/database"
)

// Service exposes read-only catalog browsing over the bootstrapped tables.
type Service struct {
	q *database.Queries
}

func NewService(q *database.Queries) *Service {
	return &Service{q: q}
}

var foldCase = cases.Fold()

// BrowseParams mirrors the Edge's /products query parameters: repeated
// department filter, optional aisle, free-text search, and sort key.
type BrowseParams struct {
	Departments []string
	AisleID     *int32
	Search      string
	Sort        string
	Limit       int32
	Offset      int32
}

var validSorts = map[string]bool{
	"name": true, "price": true, "createdAt": true, "popularity": true, "rating": true,
}

type Page struct {
	Items  []database.ProductView
	Total  int64
	Limit  int32
	Offset int32
}

func (s *Service) Browse(ctx context.Context, p BrowseParams) (Page, error) {
	if p.Sort != "" && !validSorts[p.Sort] {
		return Page{}, apperr.New(apperr.InvalidInput, "sort must be one of name, price, createdAt, popularity, rating")
	}
	if p.Limit <= 0 || p.Limit > 100 {
		p.Limit = 20
	}
	if p.Offset < 0 {
		p.Offset = 0
	}

	departments := make([]string, len(p.Departments))
	for i, d := range p.Departments {
		departments[i] = foldCase.String(d)
	}

	arg := database.ListProductsParams{
		Departments: departments,
		Search:      p.Search,
		Sort:        p.Sort,
		Limit:       p.Limit,
		Offset:      p.Offset,
	}
	if p.AisleID != nil {
		arg.AisleID = sql.NullInt32{Int32: *p.AisleID, Valid: true}
	}

	items, err := s.q.ListProducts(ctx, arg)
	if err != nil {
		return Page{}, apperr.Wrap(apperr.Internal, "listing products failed", err)
	}
	total, err := s.q.CountProductsFiltered(ctx, arg)
	if err != nil {
		return Page{}, apperr.Wrap(apperr.Internal, "counting products failed", err)
	}
	return Page{Items: items, Total: total, Limit: p.Limit, Offset: p.Offset}, nil
}

func (s *Service) GetByID(ctx context.Context, productID int32) (database.ProductView, error) {
	p, err := s.q.GetProductByID(ctx, productID)
	if err != nil {
		if err == sql.ErrNoRows {
			return database.ProductView{}, apperr.New(apperr.NotFound, "product not found")
		}
		return database.ProductView{}, apperr.Wrap(apperr.Internal, "looking up product failed", err)
	}
	return p, nil
}

func (s *Service) ByDepartment(ctx context.Context, departmentID int32) ([]database.ProductView, error) {
	items, err := s.q.ListProductsByDepartment(ctx, departmentID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "listing products by department failed", err)
	}
	return items, nil
}

func (s *Service) ByAisle(ctx context.Context, aisleID int32) ([]database.ProductView, error) {
	items, err := s.q.ListProductsByAisle(ctx, aisleID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "listing products by aisle failed", err)
	}
	return items, nil
}

// BatchByIDs is the only way product enrichment may be looked up in bulk,
// never per item, per the no-N+1-lookups requirement.
func (s *Service) BatchByIDs(ctx context.Context, ids []int32) ([]database.ProductView, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	items, err := s.q.ListProductsByIDs(ctx, ids)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "batch product lookup failed", err)
	}
	return items, nil
}
