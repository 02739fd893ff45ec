package metadata

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rebeliceyang/pgtabs/internal/db/connection"
	"github.com/rebeliceyang/pgtabs/internal/models"
)

// ColumnQuerier returns rows together with their column order
type ColumnQuerier interface {
	Querier
	QueryWithColumns(ctx context.Context, sql string, args ...interface{}) (*connection.QueryResult, error)
}

// QualifiedName quotes schema and table for use in SQL
func QualifiedName(schema, table string) string {
	return pgx.Identifier{schema, table}.Sanitize()
}

// QueryTableData fetches paginated table data
func QueryTableData(ctx context.Context, db ColumnQuerier, schema, table string, offset, limit int) (*models.TableData, error) {
	name := QualifiedName(schema, table)

	// First get total count
	countRow, err := db.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) as count FROM %s", name))
	if err != nil {
		return nil, fmt.Errorf("failed to count rows: %w", err)
	}

	totalRows := int64(0)
	if count, ok := countRow["count"].(int64); ok {
		totalRows = count
	}

	result, err := db.QueryWithColumns(ctx, fmt.Sprintf("SELECT * FROM %s LIMIT %d OFFSET %d", name, limit, offset))
	if err != nil {
		return nil, fmt.Errorf("failed to query table data: %w", err)
	}

	data := make([][]string, len(result.Rows))
	for i, row := range result.Rows {
		rowData := make([]string, len(result.Columns))
		for j, col := range result.Columns {
			val := row[col]
			if val == nil {
				rowData[j] = "NULL"
			} else {
				rowData[j] = fmt.Sprintf("%v", val)
			}
		}
		data[i] = rowData
	}

	return &models.TableData{
		Columns:   result.Columns,
		Rows:      data,
		TotalRows: totalRows,
	}, nil
}
