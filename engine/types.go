package engine

// ============================================================================
// ENGINE TYPES — Records, Query Specs, Render-Ready Results
// ============================================================================
// Record is the generic row (dimension/measure maps). Consumers with typed
// data bind it through DomainAdapter instead.
//
// Dependency: engine only depends on logrus for debug logging.
// ============================================================================

// ============================================================================
// RECORD — Generic data row
// ============================================================================

// Record is a single data row with string dimensions and numeric measures.
type Record struct {
	Dimensions map[string]string  `json:"dimensions"`
	Measures   map[string]float64 `json:"measures"`
}

// ============================================================================
// QUERYSPEC — What the engine should compute
// ============================================================================

// QuerySpec defines what the engine should compute.
type QuerySpec struct {
	Intent      string   `json:"intent"`      // "text", "table", "chart"
	Filters     Filters  `json:"filters"`     // Which records to include
	Aggregation string   `json:"aggregation"` // "sum", "count", "avg", "max", "min", "list", "none"
	Measure     string   `json:"measure"`     // Which measure to aggregate (empty → use default)
	GroupBy     []string `json:"groupBy"`     // Dimension keys: ["launch_site"]
	SortBy      string   `json:"sortBy"`      // "value_desc", "value_asc", "label_asc", "label_desc"
	Limit       int      `json:"limit"`       // 0 = all
	Visualize   string   `json:"visualize"`   // "pie", "bar", "scatter", "table", "text"
	Title       string   `json:"title"`       // Chart/table title
	Reply       string   `json:"reply"`       // Template: "{count} launches, {total} successful"

	// Scatter only: one point per record, one series per ColorBy value.
	XMeasure string `json:"xMeasure,omitempty"`
	YMeasure string `json:"yMeasure,omitempty"`
	ColorBy  string `json:"colorBy,omitempty"`
	XLabel   string `json:"xLabel,omitempty"`
	YLabel   string `json:"yLabel,omitempty"`
}

// Filters define which records to include.
// Dimension keys map to allowed values: OR within a dimension, AND across.
// Range keys are measure names; every range must contain the record's value.
// Empty = all.
type Filters struct {
	Dimensions map[string][]string `json:"dimensions,omitempty"`
	Ranges     map[string]Range    `json:"ranges,omitempty"`
}

// Range is a numeric interval on a measure. Both bounds are exclusive
// unless Inclusive is set.
type Range struct {
	Low       float64 `json:"low"`
	High      float64 `json:"high"`
	Inclusive bool    `json:"inclusive,omitempty"`
}

// Contains reports whether v lies inside the range.
func (r Range) Contains(v float64) bool {
	if r.Inclusive {
		return v >= r.Low && v <= r.High
	}
	return v > r.Low && v < r.High
}

// Valid reports whether Low ≤ High.
func (r Range) Valid() bool { return r.Low <= r.High }

// IsEmpty returns true if no filters are set.
func (f Filters) IsEmpty() bool {
	if len(f.Ranges) > 0 {
		return false
	}
	for _, vals := range f.Dimensions {
		if len(vals) > 0 {
			return false
		}
	}
	return true
}

// ============================================================================
// RESULT — Render-ready output
// ============================================================================

// Result is the engine's render-ready output.
type Result struct {
	Success bool   `json:"success"`
	Type    string `json:"type"` // "chart", "table", "text"
	Reply   string `json:"reply"`
	Title   string `json:"title"`

	// Exactly one of these is populated based on Type:
	ChartConfig *ChartConfig `json:"chartConfig,omitempty"`
	TableData   *TableData   `json:"tableData,omitempty"`
	Data        *TextData    `json:"data,omitempty"`

	Count int `json:"count"` // records after filtering
}

// ============================================================================
// GROUP — Intermediate computation result
// ============================================================================

// Group represents a grouped/aggregated result.
// Builders convert these into ChartConfig, TableData, or TextData.
type Group struct {
	Key   string     `json:"key"`
	Label string     `json:"label"`
	Value float64    `json:"value"`
	Count int        `json:"count"`
	View  RecordView `json:"-"` // Sub-view for records in this group (zero-copy)
}

// ============================================================================
// CHART TYPES
// ============================================================================

// ChartConfig defines how to render a chart.
type ChartConfig struct {
	ChartType  string        `json:"chartType"`
	Title      string        `json:"title"`
	XAxis      string        `json:"xAxis,omitempty"`
	YAxis      string        `json:"yAxis,omitempty"`
	Series     []ChartSeries `json:"series"`
	Colors     []string      `json:"colors,omitempty"`
	ShowLegend bool          `json:"showLegend"`
	ShowGrid   bool          `json:"showGrid"`
}

// IsEmpty reports whether the chart has nothing to draw.
func (c *ChartConfig) IsEmpty() bool {
	if c == nil {
		return true
	}
	for _, s := range c.Series {
		if len(s.Data) > 0 || len(s.Points) > 0 {
			return false
		}
	}
	return true
}

// ChartSeries represents a data series in a chart.
// Categorical charts (pie, bar) use Data; scatter uses Points.
type ChartSeries struct {
	Name   string       `json:"name"`
	Data   []ChartPoint `json:"data,omitempty"`
	Points []XYPoint    `json:"points,omitempty"`
	Color  string       `json:"color,omitempty"`
}

// ChartPoint represents a single categorical data point.
type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// XYPoint is a single scatter point.
type XYPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ============================================================================
// TABLE TYPES
// ============================================================================

// TableData defines how to render a table.
type TableData struct {
	Title   string     `json:"title"`
	Columns []Column   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Summary *Summary   `json:"summary,omitempty"`
}

// Column defines a table column.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Type  string `json:"type"`  // "text", "number", "percent"
	Align string `json:"align"` // "left", "center", "right"
}

// Summary provides totals or aggregations for a table.
type Summary struct {
	Label  string            `json:"label"`
	Values map[string]string `json:"values"`
}

// ============================================================================
// TEXT TYPES
// ============================================================================

// TextData is structured data for simple query answers (type="text").
type TextData struct {
	Value    string  `json:"value"`
	RawValue float64 `json:"rawValue"`
	Measure  string  `json:"measure"`
	Count    int     `json:"count"`
}
