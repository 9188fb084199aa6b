package schema

import (
	"strings"

	"github.com/pkg/errors"
)

// ============================================================================
// SCHEMA — Describes the shape of a CSV dataset for the loader + engine
// ============================================================================
// The loader maps CSV headers to column keys through the schema.
// The engine reads the same keys as dimensions and measures.
// ============================================================================

// Column roles.
const (
	RoleDimension = "dimension"
	RoleMeasure   = "measure"
)

// ErrMissingColumns is returned by Validate when required headers are absent.
var ErrMissingColumns = errors.New("missing required columns")

// Config describes the complete shape of a dataset.
type Config struct {
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Columns     []ColumnMeta `json:"columns"`
}

// ColumnMeta describes one CSV column.
type ColumnMeta struct {
	Key         string `json:"key"`
	Header      string `json:"header"`
	DisplayName string `json:"displayName"`
	Description string `json:"description,omitempty"`
	Role        string `json:"role"`
	Required    bool   `json:"required"`
	Unit        string `json:"unit,omitempty"` // "kg", "flag"
}

// Dimension creates a ColumnMeta for a string column used for grouping/filtering.
func Dimension(header string, required bool) ColumnMeta {
	return ColumnMeta{
		Key:         ToKey(header),
		Header:      header,
		DisplayName: toDisplayName(header),
		Role:        RoleDimension,
		Required:    required,
	}
}

// Measure creates a ColumnMeta for a numeric column.
func Measure(header, unit string, required bool) ColumnMeta {
	return ColumnMeta{
		Key:         ToKey(header),
		Header:      header,
		DisplayName: toDisplayName(header),
		Role:        RoleMeasure,
		Required:    required,
		Unit:        unit,
	}
}

// DimensionKeys returns all dimension keys in column order.
func (c Config) DimensionKeys() []string {
	return c.keys(RoleDimension)
}

// MeasureKeys returns all measure keys in column order.
func (c Config) MeasureKeys() []string {
	return c.keys(RoleMeasure)
}

func (c Config) keys(role string) []string {
	var keys []string
	for _, col := range c.Columns {
		if col.Role == role {
			keys = append(keys, col.Key)
		}
	}
	return keys
}

// Column looks up a column by key.
func (c Config) Column(key string) (ColumnMeta, bool) {
	for _, col := range c.Columns {
		if col.Key == key {
			return col, true
		}
	}
	return ColumnMeta{}, false
}

// Validate maps CSV headers onto schema keys. Headers match when their keys
// are equal, so case, spacing and punctuation do not matter. Unknown headers
// are ignored. The returned map holds the header index for every column found.
func (c Config) Validate(headers []string) (map[string]int, error) {
	index := make(map[string]int, len(c.Columns))
	for i, h := range headers {
		key := ToKey(h)
		if _, known := c.Column(key); !known {
			continue
		}
		if _, dup := index[key]; dup {
			return nil, errors.Errorf("duplicate column %q", strings.TrimSpace(h))
		}
		index[key] = i
	}

	var missing []string
	for _, col := range c.Columns {
		if _, ok := index[col.Key]; col.Required && !ok {
			missing = append(missing, col.Header)
		}
	}
	if len(missing) > 0 {
		return nil, errors.Wrap(ErrMissingColumns, strings.Join(missing, ", "))
	}
	return index, nil
}
