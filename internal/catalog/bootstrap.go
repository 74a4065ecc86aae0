// Package catalog loads the product/aisle/department tables from CSV at
// startup and exposes read-only browse, search, and filter operations.
package catalog

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"github.com/timel-e/core/internal/database"
	"github.com/timel-e/core/utils"
)

// BootstrapConfig points at the mounted CSV directory. Files are read only
// when their corresponding table is empty.
type BootstrapConfig struct {
	Dir string
}

// Bootstrap loads departments.csv, aisles.csv, products.csv, and any
// enriched_products_dept*.csv files, skipping any table that already has
// rows. It is safe to call on every startup.
func Bootstrap(ctx context.Context, q *database.Queries, cfg BootstrapConfig, log *logrus.Logger) error {
	if n, err := q.CountDepartments(ctx); err != nil {
		return fmt.Errorf("count departments: %w", err)
	} else if n == 0 {
		if err := loadDepartments(ctx, q, filepath.Join(cfg.Dir, "departments.csv")); err != nil {
			return err
		}
	} else {
		log.Infof("departments already loaded (%s rows), skipping", humanize.Comma(n))
	}

	if n, err := q.CountAisles(ctx); err != nil {
		return fmt.Errorf("count aisles: %w", err)
	} else if n == 0 {
		if err := loadAisles(ctx, q, filepath.Join(cfg.Dir, "aisles.csv")); err != nil {
			return err
		}
	} else {
		log.Infof("aisles already loaded (%s rows), skipping", humanize.Comma(n))
	}

	if n, err := q.CountProducts(ctx); err != nil {
		return fmt.Errorf("count products: %w", err)
	} else if n == 0 {
		if err := loadProducts(ctx, q, filepath.Join(cfg.Dir, "products.csv")); err != nil {
			return err
		}
	} else {
		log.Infof("products already loaded (%s rows), skipping", humanize.Comma(n))
	}

	if n, err := q.CountProductEnriched(ctx); err != nil {
		return fmt.Errorf("count product_enriched: %w", err)
	} else if n == 0 {
		if err := loadEnrichedProducts(ctx, q, cfg.Dir, log); err != nil {
			return err
		}
	} else {
		log.Infof("product_enriched already loaded (%s rows), skipping", humanize.Comma(n))
	}

	return nil
}

func openCSV(path string) (*csv.Reader, *os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	r := csv.NewReader(f)
	if _, err := r.Read(); err != nil { // header
		f.Close()
		return nil, nil, fmt.Errorf("read header of %s: %w", path, err)
	}
	return r, f, nil
}

func loadDepartments(ctx context.Context, q *database.Queries, path string) error {
	r, f, err := openCSV(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var n int64
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		id, err := strconv.Atoi(strings.TrimSpace(rec[0]))
		if err != nil {
			return fmt.Errorf("%s: bad department_id %q: %w", path, rec[0], err)
		}
		if err := q.InsertDepartment(ctx, int32(id), strings.TrimSpace(rec[1])); err != nil {
			return fmt.Errorf("insert department %d: %w", id, err)
		}
		n++
	}
	return nil
}

func loadAisles(ctx context.Context, q *database.Queries, path string) error {
	r, f, err := openCSV(path)
	if err != nil {
		return err
	}
	defer f.Close()

	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		id, err := strconv.Atoi(strings.TrimSpace(rec[0]))
		if err != nil {
			return fmt.Errorf("%s: bad aisle_id %q: %w", path, rec[0], err)
		}
		if err := q.InsertAisle(ctx, int32(id), strings.TrimSpace(rec[1])); err != nil {
			return fmt.Errorf("insert aisle %d: %w", id, err)
		}
	}
	return nil
}

func loadProducts(ctx context.Context, q *database.Queries, path string) error {
	r, f, err := openCSV(path)
	if err != nil {
		return err
	}
	defer f.Close()

	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		productID, err := strconv.Atoi(strings.TrimSpace(rec[0]))
		if err != nil {
			return fmt.Errorf("%s: bad product_id %q: %w", path, rec[0], err)
		}
		aisleID, err := strconv.Atoi(strings.TrimSpace(rec[2]))
		if err != nil {
			return fmt.Errorf("%s: bad aisle_id %q: %w", path, rec[2], err)
		}
		departmentID, err := strconv.Atoi(strings.TrimSpace(rec[3]))
		if err != nil {
			return fmt.Errorf("%s: bad department_id %q: %w", path, rec[3], err)
		}
		if err := q.InsertProduct(ctx, database.InsertProductParams{
			ProductID:    int32(productID),
			ProductName:  strings.TrimSpace(rec[1]),
			AisleID:      int32(aisleID),
			DepartmentID: int32(departmentID),
		}); err != nil {
			return fmt.Errorf("insert product %d: %w", productID, err)
		}
	}
	return nil
}

// loadEnrichedProducts loads every enriched_products_dept*.csv present in
// dir. Missing files are not an error: enrichment is optional.
func loadEnrichedProducts(ctx context.Context, q *database.Queries, dir string, log *logrus.Logger) error {
	matches, err := filepath.Glob(filepath.Join(dir, "enriched_products_dept*.csv"))
	if err != nil {
		return fmt.Errorf("glob enriched csvs: %w", err)
	}
	if len(matches) == 0 {
		log.Info("no enriched product CSVs found, skipping")
		return nil
	}

	var total int64
	for _, path := range matches {
		r, f, err := openCSV(path)
		if err != nil {
			return err
		}
		for {
			rec, err := r.Read()
			if err == io.EOF {
				break
			}
			if err != nil {
				f.Close()
				return fmt.Errorf("read %s: %w", path, err)
			}
			productID, err := strconv.Atoi(strings.TrimSpace(rec[0]))
			if err != nil {
				f.Close()
				return fmt.Errorf("%s: bad product_id %q: %w", path, rec[0], err)
			}
			price, err := strconv.ParseFloat(strings.TrimSpace(rec[2]), 64)
			if err != nil {
				f.Close()
				return fmt.Errorf("%s: bad price %q: %w", path, rec[2], err)
			}
			if err := q.UpsertProductEnriched(ctx, database.UpsertProductEnrichedParams{
				ProductID:   int32(productID),
				Description: utils.ToNullString(rec[1]),
				Price:       price,
				ImageURL:    utils.ToNullString(rec[3]),
			}); err != nil {
				f.Close()
				return fmt.Errorf("upsert enrichment for product %d: %w", productID, err)
			}
			total++
		}
		f.Close()
	}
	log.Infof("loaded enrichment for %s products", humanize.Comma(total))
	return nil
}
