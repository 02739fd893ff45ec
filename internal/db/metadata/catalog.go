package metadata

import (
	"context"
	"fmt"

	"github.com/rebeliceyang/pgtabs/internal/models"
	"golang.org/x/sync/errgroup"
)

// Querier is the part of connection.Pool the metadata queries need
type Querier interface {
	Query(ctx context.Context, sql string, args ...interface{}) ([]map[string]interface{}, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) (map[string]interface{}, error)
}

const relationsQuery = `
	SELECT
		table_schema as schema,
		table_name as name,
		table_type as type
	FROM information_schema.tables
	WHERE table_schema NOT IN ('pg_catalog', 'information_schema')
		AND table_schema NOT LIKE 'pg_toast%'
	ORDER BY table_schema, table_name;
`

const matviewsQuery = `
	SELECT
		schemaname as schema,
		matviewname as name,
		'MATERIALIZED VIEW' as type
	FROM pg_catalog.pg_matviews
	ORDER BY schemaname, matviewname;
`

const sequencesQuery = `
	SELECT
		sequence_schema as schema,
		sequence_name as name,
		'SEQUENCE' as type
	FROM information_schema.sequences
	WHERE sequence_schema NOT IN ('pg_catalog', 'information_schema')
	ORDER BY sequence_schema, sequence_name;
`

// Catalog lists tables, views, materialized views and sequences per schema
// and pages through their rows.
type Catalog struct {
	db ColumnQuerier
}

// NewCatalog returns a catalog provider bound to a connection
func NewCatalog(db ColumnQuerier) *Catalog {
	return &Catalog{db: db}
}

// TableData returns one page of rows from schema.table
func (c *Catalog) TableData(ctx context.Context, schema, table string, offset, limit int) (*models.TableData, error) {
	return QueryTableData(ctx, c.db, schema, table, offset, limit)
}

// ListSchemasAndTables runs the catalog queries concurrently and merges them
func (c *Catalog) ListSchemasAndTables(ctx context.Context) (models.Catalog, error) {
	queries := []string{relationsQuery, matviewsQuery, sequencesQuery}
	results := make([][]map[string]interface{}, len(queries))

	g, gctx := errgroup.WithContext(ctx)
	for i, q := range queries {
		g.Go(func() error {
			rows, err := c.db.Query(gctx, q)
			if err != nil {
				return err
			}
			results[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("list relations: %w", err)
	}

	catalog := make(models.Catalog)
	for _, rows := range results {
		for _, row := range rows {
			schema := toString(row["schema"])
			catalog[schema] = append(catalog[schema], models.CatalogTable{
				Name: toString(row["name"]),
				Type: toString(row["type"]),
			})
		}
	}
	return catalog, nil
}

// toString safely converts an interface{} to string
func toString(v interface{}) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
