package database

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"github.com/lib/pq"
)

// catalog.sql.go: read-mostly catalog queries — departments, aisles,
// products, and their optional enrichment side-table.

const countDepartments = `SELECT count(*) FROM departments`

func (q *Queries) CountDepartments(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countDepartments).Scan(&n)
	return n, err
}

const countAisles = `SELECT count(*) FROM aisles`

func (q *Queries) CountAisles(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countAisles).Scan(&n)
	return n, err
}

const countProducts = `SELECT count(*) FROM products`

func (q *Queries) CountProducts(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countProducts).Scan(&n)
	return n, err
}

const countProductEnriched = `SELECT count(*) FROM product_enriched`

func (q *Queries) CountProductEnriched(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countProductEnriched).Scan(&n)
	return n, err
}

const insertDepartment = `INSERT INTO departments (department_id, department) VALUES ($1, $2) ON CONFLICT DO NOTHING`

func (q *Queries) InsertDepartment(ctx context.Context, id int32, name string) error {
	_, err := q.db.ExecContext(ctx, insertDepartment, id, name)
	return err
}

const insertAisle = `INSERT INTO aisles (aisle_id, aisle) VALUES ($1, $2) ON CONFLICT DO NOTHING`

func (q *Queries) InsertAisle(ctx context.Context, id int32, name string) error {
	_, err := q.db.ExecContext(ctx, insertAisle, id, name)
	return err
}

const insertProduct = `
INSERT INTO products (product_id, product_name, aisle_id, department_id)
VALUES ($1, $2, $3, $4) ON CONFLICT DO NOTHING
`

type InsertProductParams struct {
	ProductID    int32
	ProductName  string
	AisleID      int32
	DepartmentID int32
}

func (q *Queries) InsertProduct(ctx context.Context, arg InsertProductParams) error {
	_, err := q.db.ExecContext(ctx, insertProduct, arg.ProductID, arg.ProductName, arg.AisleID, arg.DepartmentID)
	return err
}

const upsertProductEnriched = `
INSERT INTO product_enriched (product_id, description, price, image_url)
VALUES ($1, $2, $3, $4)
ON CONFLICT (product_id) DO UPDATE SET
    description = EXCLUDED.description, price = EXCLUDED.price, image_url = EXCLUDED.image_url
`

type UpsertProductEnrichedParams struct {
	ProductID   int32
	Description sql.NullString
	Price       float64
	ImageURL    sql.NullString
}

func (q *Queries) UpsertProductEnriched(ctx context.Context, arg UpsertProductEnrichedParams) error {
	_, err := q.db.ExecContext(ctx, upsertProductEnriched, arg.ProductID, arg.Description, arg.Price, arg.ImageURL)
	return err
}

const productViewColumns = `
    p.product_id, p.product_name, p.aisle_id, a.aisle, p.department_id, d.department,
    pe.description, COALESCE(pe.price, 0), pe.image_url,
    COALESCE(pe.popularity, 0), COALESCE(pe.rating, 0)
`

const productViewJoin = `
FROM products p
JOIN aisles a ON a.aisle_id = p.aisle_id
JOIN departments d ON d.department_id = p.department_id
LEFT JOIN product_enriched pe ON pe.product_id = p.product_id
`

const getProductByID = `SELECT ` + productViewColumns + productViewJoin + `WHERE p.product_id = $1`

func (q *Queries) GetProductByID(ctx context.Context, id int32) (ProductView, error) {
	row := q.db.QueryRowContext(ctx, getProductByID, id)
	return scanProductView(row)
}

// ListProductsParams filters and sorts the catalog browse endpoint.
// Department is matched case-insensitively when non-empty; Sort must be
// one of "name", "price", "createdAt", "popularity", "rating".
type ListProductsParams struct {
	Departments []string
	AisleID     sql.NullInt32
	Search      string
	Sort        string
	Limit       int32
	Offset      int32
}

// buildProductFilter appends the shared WHERE clauses for department,
// aisle, and name-search filters, starting placeholder numbering at
// argN+1. It returns the trailing SQL fragment and the filter args, in
// the order $argN+1, $argN+2, ... appear in the fragment.
func buildProductFilter(arg ListProductsParams, argN int) (string, []any) {
	var b strings.Builder
	var args []any

	if len(arg.Departments) > 0 {
		argN++
		b.WriteString(" AND lower(d.department) = ANY($" + strconv.Itoa(argN) + ")")
		args = append(args, pq.Array(lowerAll(arg.Departments)))
	}
	if arg.AisleID.Valid {
		argN++
		b.WriteString(" AND p.aisle_id = $" + strconv.Itoa(argN))
		args = append(args, arg.AisleID.Int32)
	}
	if arg.Search != "" {
		argN++
		b.WriteString(" AND p.product_name ILIKE $" + strconv.Itoa(argN))
		args = append(args, "%"+arg.Search+"%")
	}
	return b.String(), args
}

func (q *Queries) ListProducts(ctx context.Context, arg ListProductsParams) ([]ProductView, error) {
	filterSQL, args := buildProductFilter(arg, 0)
	query := `SELECT ` + productViewColumns + productViewJoin + `WHERE 1=1` + filterSQL

	switch arg.Sort {
	case "price":
		query += ` ORDER BY COALESCE(pe.price, 0) ASC`
	case "popularity":
		query += ` ORDER BY COALESCE(pe.popularity, 0) DESC`
	case "rating":
		query += ` ORDER BY COALESCE(pe.rating, 0) DESC`
	case "createdAt":
		query += ` ORDER BY p.product_id DESC`
	default:
		query += ` ORDER BY p.product_name ASC`
	}

	limitN := len(args) + 1
	offsetN := len(args) + 2
	query += ` LIMIT $` + strconv.Itoa(limitN) + ` OFFSET $` + strconv.Itoa(offsetN)
	args = append(args, arg.Limit, arg.Offset)

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProductViews(rows)
}

func (q *Queries) CountProductsFiltered(ctx context.Context, arg ListProductsParams) (int64, error) {
	filterSQL, args := buildProductFilter(arg, 0)
	query := `SELECT count(*) ` + productViewJoin + `WHERE 1=1` + filterSQL

	var n int64
	err := q.db.QueryRowContext(ctx, query, args...).Scan(&n)
	return n, err
}

const listProductsByDepartment = `SELECT ` + productViewColumns + productViewJoin + `WHERE p.department_id = $1 ORDER BY p.product_name`

func (q *Queries) ListProductsByDepartment(ctx context.Context, departmentID int32) ([]ProductView, error) {
	rows, err := q.db.QueryContext(ctx, listProductsByDepartment, departmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProductViews(rows)
}

const listProductsByAisle = `SELECT ` + productViewColumns + productViewJoin + `WHERE p.aisle_id = $1 ORDER BY p.product_name`

func (q *Queries) ListProductsByAisle(ctx context.Context, aisleID int32) ([]ProductView, error) {
	rows, err := q.db.QueryContext(ctx, listProductsByAisle, aisleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProductViews(rows)
}

const listProductsByIDs = `SELECT ` + productViewColumns + productViewJoin + `WHERE p.product_id = ANY($1)`

func (q *Queries) ListProductsByIDs(ctx context.Context, ids []int32) ([]ProductView, error) {
	rows, err := q.db.QueryContext(ctx, listProductsByIDs, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProductViews(rows)
}

func scanProductView(row rowScanner) (ProductView, error) {
	var v ProductView
	err := row.Scan(
		&v.ProductID, &v.ProductName, &v.AisleID, &v.Aisle, &v.DepartmentID, &v.Department,
		&v.Description, &v.Price, &v.ImageURL, &v.Popularity, &v.Rating,
	)
	return v, err
}

func scanProductViewRow(row rowScanner) (ProductView, error) {
	return scanProductView(row)
}

func scanProductViews(rows *sql.Rows) ([]ProductView, error) {
	var out []ProductView
	for rows.Next() {
		v, err := scanProductViewRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func lowerAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = strings.ToLower(s)
	}
	return out
}
