package models

// CatalogTable is one relation listed for a schema
type CatalogTable struct {
	Name string
	Type string // information_schema table_type, e.g. "BASE TABLE", "VIEW"
}

// Catalog maps schema name to its relations in server order
type Catalog map[string][]CatalogTable

var kindLabels = map[string]string{
	"BASE TABLE":        "Table",
	"VIEW":              "View",
	"MATERIALIZED VIEW": "Mat. View",
	"FOREIGN TABLE":     "Foreign Table",
	"LOCAL TEMPORARY":   "Temp",
	"SEQUENCE":          "Sequence",
}

// KindLabel returns the short display label for a relation type.
// Unknown types are returned unchanged.
func KindLabel(kind string) string {
	if label, ok := kindLabels[kind]; ok {
		return label
	}
	return kind
}

// TableData represents a page of table rows rendered as strings
type TableData struct {
	Columns   []string
	Rows      [][]string
	TotalRows int64
}
