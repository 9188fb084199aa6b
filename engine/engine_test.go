package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// FIXTURES
// ============================================================================

type launch struct {
	site    string
	class   int
	payload float64
	booster string
}

var launches = []launch{
	{"CCAFS LC-40", 0, 0, "v1.0"},
	{"CCAFS LC-40", 0, 525, "v1.0"},
	{"VAFB SLC-4E", 0, 500, "v1.1"},
	{"CCAFS LC-40", 1, 2500, "FT"},
	{"KSC LC-39A", 1, 5000, "FT"},
	{"KSC LC-39A", 1, 3700, "B4"},
	{"VAFB SLC-4E", 1, 9600, "FT"},
	{"CCAFS SLC-40", 1, 6761, "FT"},
	{"CCAFS SLC-40", 0, 4990, "B5"},
}

func testView() RecordView {
	return NewDomainAdapter[launch]().
		Dimension("launch_site", func(l launch) string { return l.site }).
		Dimension("class", func(l launch) string {
			if l.class == 1 {
				return "1"
			}
			return "0"
		}).
		Dimension("booster", func(l launch) string { return l.booster }).
		Measure("class", func(l launch) float64 { return float64(l.class) }).
		Measure("payload", func(l launch) float64 { return l.payload }).
		Bind(launches)
}

// ============================================================================
// VIEWS
// ============================================================================

func TestDomainViewAccess(t *testing.T) {
	view := testView()

	assert.Equal(t, len(launches), view.Len())
	assert.Equal(t, "VAFB SLC-4E", view.Dimension(2, "launch_site"))
	assert.Equal(t, 9600.0, view.Measure(6, "payload"))
	assert.Equal(t, []string{"launch_site", "class", "booster"}, view.DimensionKeys())
	assert.Equal(t, []string{"class", "payload"}, view.MeasureKeys())

	t.Run("out of range and unknown keys read as zero values", func(t *testing.T) {
		assert.Equal(t, "", view.Dimension(-1, "launch_site"))
		assert.Equal(t, "", view.Dimension(0, "missing"))
		assert.Equal(t, 0.0, view.Measure(len(launches), "payload"))
		assert.Equal(t, 0.0, view.Measure(0, "missing"))
	})
}

func TestSliceView(t *testing.T) {
	view := NewSliceView([]Record{
		{Dimensions: map[string]string{"site": "A"}, Measures: map[string]float64{"mass": 1}},
		{Dimensions: map[string]string{"site": "B"}, Measures: map[string]float64{"mass": 2}},
	})

	assert.Equal(t, 2, view.Len())
	assert.Equal(t, "B", view.Dimension(1, "site"))
	assert.Equal(t, 2.0, view.Measure(1, "mass"))
	assert.Equal(t, []string{"site"}, view.DimensionKeys())
	assert.Equal(t, []string{"mass"}, view.MeasureKeys())
}

// ============================================================================
// FILTERS
// ============================================================================

func TestApplyFilters(t *testing.T) {
	view := testView()

	t.Run("empty filter returns the original view", func(t *testing.T) {
		assert.Same(t, view, ApplyFilters(view, Filters{}))
	})

	t.Run("dimension values match exactly", func(t *testing.T) {
		got := ApplyFilters(view, Filters{Dimensions: map[string][]string{"launch_site": {"KSC LC-39A"}}})
		assert.Equal(t, 2, got.Len())

		got = ApplyFilters(view, Filters{Dimensions: map[string][]string{"launch_site": {"ksc lc-39a"}}})
		assert.Equal(t, 0, got.Len())
	})

	t.Run("values within a dimension are OR-combined", func(t *testing.T) {
		got := ApplyFilters(view, Filters{Dimensions: map[string][]string{"launch_site": {"KSC LC-39A", "VAFB SLC-4E"}}})
		assert.Equal(t, 4, got.Len())
	})

	t.Run("range bounds are exclusive", func(t *testing.T) {
		got := ApplyRange(view, "payload", Range{Low: 500, High: 5000})
		for i := 0; i < got.Len(); i++ {
			p := got.Measure(i, "payload")
			assert.Greater(t, p, 500.0)
			assert.Less(t, p, 5000.0)
		}
		// 525, 2500, 3700, 4990
		assert.Equal(t, 4, got.Len())
	})

	t.Run("inclusive ranges keep the endpoints", func(t *testing.T) {
		got := ApplyRange(view, "payload", Range{Low: 500, High: 5000, Inclusive: true})
		assert.Equal(t, 6, got.Len())
	})

	t.Run("dimension and range are AND-combined", func(t *testing.T) {
		got := ApplyFilters(view, Filters{
			Dimensions: map[string][]string{"launch_site": {"CCAFS LC-40"}},
			Ranges:     map[string]Range{"payload": {Low: 0, High: 10000}},
		})
		require.Equal(t, 2, got.Len())
		assert.Equal(t, 525.0, got.Measure(0, "payload"))
		assert.Equal(t, 2500.0, got.Measure(1, "payload"))
	})
}

// ============================================================================
// AGGREGATION
// ============================================================================

func TestGroupAndAggregate(t *testing.T) {
	view := testView()

	t.Run("sum per site sorted by label", func(t *testing.T) {
		groups := GroupAndAggregate(view, []string{"launch_site"}, "class", "sum", "label_asc", 0)
		require.Len(t, groups, 4)

		labels := make([]string, len(groups))
		var total float64
		for i, g := range groups {
			labels[i] = g.Label
			total += g.Value
		}
		assert.Equal(t, []string{"CCAFS LC-40", "CCAFS SLC-40", "KSC LC-39A", "VAFB SLC-4E"}, labels)
		assert.Equal(t, SumMeasure(view, "class"), total)
		assert.Equal(t, 3, groups[0].Count)
		assert.Equal(t, 1.0, groups[0].Value)
	})

	t.Run("grouping keeps first appearance order without a sort", func(t *testing.T) {
		groups := GroupAndAggregate(view, []string{"launch_site"}, "class", "count", "", 0)
		assert.Equal(t, "CCAFS LC-40", groups[0].Key)
		assert.Equal(t, "VAFB SLC-4E", groups[1].Key)
	})

	t.Run("value sort and limit", func(t *testing.T) {
		groups := GroupAndAggregate(view, []string{"launch_site"}, "payload", "max", "value_desc", 2)
		require.Len(t, groups, 2)
		assert.Equal(t, "VAFB SLC-4E", groups[0].Key)
		assert.Equal(t, 9600.0, groups[0].Value)
		assert.Equal(t, "CCAFS SLC-40", groups[1].Key)
	})

	t.Run("no groupBy yields a single total", func(t *testing.T) {
		groups := GroupAndAggregate(view, nil, "payload", "min", "", 0)
		require.Len(t, groups, 1)
		assert.Equal(t, 0.0, groups[0].Value)
		assert.Equal(t, len(launches), groups[0].Count)
	})

	t.Run("empty view", func(t *testing.T) {
		assert.Nil(t, GroupAndAggregate(NewSliceView(nil), []string{"launch_site"}, "class", "sum", "", 0))
	})
}

func TestMeasureHelpers(t *testing.T) {
	view := testView()
	empty := NewSliceView(nil)

	assert.Equal(t, 9600.0, MaxMeasure(view, "payload"))
	assert.Equal(t, 0.0, MinMeasure(view, "payload"))
	assert.InDelta(t, 5.0/9.0, AvgMeasure(view, "class"), 1e-9)
	assert.Equal(t, 0.0, MaxMeasure(empty, "payload"))
	assert.Equal(t, 0.0, AvgMeasure(empty, "payload"))
	assert.Equal(t, []string{"CCAFS LC-40", "VAFB SLC-4E", "KSC LC-39A", "CCAFS SLC-40"}, UniqueValues(view, "launch_site"))
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "1,234,567", FormatInt(1234567))
	assert.Equal(t, "-1,000", FormatInt(-1000))
	assert.Equal(t, "9,600", FormatNumber(9600))
	assert.Equal(t, "0.56", FormatNumber(5.0/9.0))
	assert.Equal(t, "Payload Mass Kg", LabelForDimension("payload_mass_kg"))
	assert.Equal(t, "Count", LabelForAggregation("count"))
}

// ============================================================================
// CHARTS
// ============================================================================

func TestBuildChartPie(t *testing.T) {
	spec := QuerySpec{Intent: "chart", Visualize: "pie", GroupBy: []string{"launch_site"}, Aggregation: "sum", Title: "Sites"}
	groups := GroupAndAggregate(testView(), spec.GroupBy, "class", "sum", "label_asc", 0)

	chart := BuildChart(spec, groups, testView())
	require.Len(t, chart.Series, 1)
	assert.Equal(t, "pie", chart.ChartType)
	assert.False(t, chart.ShowGrid)
	assert.Len(t, chart.Series[0].Data, 4)
	assert.Len(t, chart.Colors, 4)
	assert.False(t, chart.IsEmpty())

	empty := BuildChart(spec, nil, NewSliceView(nil))
	assert.Equal(t, "Sites", empty.Title)
	assert.True(t, empty.IsEmpty())
}

func TestBuildChartScatter(t *testing.T) {
	spec := QuerySpec{
		Intent:    "chart",
		Visualize: "scatter",
		XMeasure:  "payload",
		YMeasure:  "class",
		ColorBy:   "booster",
		XLabel:    "Payload Mass (kg)",
	}

	chart := BuildChart(spec, nil, testView())
	assert.Equal(t, "scatter", chart.ChartType)
	assert.Equal(t, "Payload Mass (kg)", chart.XAxis)
	assert.Equal(t, "Class", chart.YAxis)

	names := make([]string, len(chart.Series))
	points := 0
	for i, s := range chart.Series {
		names[i] = s.Name
		points += len(s.Points)
	}
	assert.Equal(t, []string{"v1.0", "v1.1", "FT", "B4", "B5"}, names)
	assert.Equal(t, len(launches), points)
	assert.Equal(t, XYPoint{X: 525, Y: 0}, chart.Series[0].Points[1])

	empty := BuildChart(spec, nil, NewSliceView(nil))
	assert.True(t, empty.IsEmpty())
	assert.NotNil(t, empty.Series)
}

// ============================================================================
// EXECUTOR
// ============================================================================

func TestExecute(t *testing.T) {
	view := testView()

	t.Run("chart with reply template", func(t *testing.T) {
		spec := QuerySpec{
			Intent:      "chart",
			Visualize:   "pie",
			GroupBy:     []string{"launch_site"},
			Aggregation: "sum",
			Measure:     "class",
			SortBy:      "label_asc",
			Reply:       "{count} launches, {total} successful, best {top_label}",
		}
		result, err := Execute(spec, view)
		require.NoError(t, err)
		assert.Equal(t, "chart", result.Type)
		assert.Equal(t, len(launches), result.Count)
		assert.Equal(t, "9 launches, 5 successful, best KSC LC-39A", result.Reply)
	})

	t.Run("no matches still yields an empty chart", func(t *testing.T) {
		spec := QuerySpec{
			Intent:      "chart",
			Visualize:   "pie",
			GroupBy:     []string{"class"},
			Aggregation: "count",
			Title:       "Nowhere",
			Filters:     Filters{Dimensions: map[string][]string{"launch_site": {"Nowhere"}}},
		}
		result, err := Execute(spec, view)
		require.NoError(t, err)
		assert.Equal(t, "chart", result.Type)
		require.NotNil(t, result.ChartConfig)
		assert.True(t, result.ChartConfig.IsEmpty())
		assert.Equal(t, NoMatchReply, result.Reply)
	})

	t.Run("invalid range", func(t *testing.T) {
		spec := QuerySpec{Intent: "chart", Visualize: "scatter", Filters: Filters{Ranges: map[string]Range{"payload": {Low: 10, High: 1}}}}
		_, err := Execute(spec, view)
		assert.ErrorIs(t, err, ErrInvalidRange)
	})

	t.Run("table and text intents", func(t *testing.T) {
		table, err := Execute(QuerySpec{Intent: "table", GroupBy: []string{"launch_site"}, Aggregation: "sum", Measure: "class", SortBy: "label_asc"}, view)
		require.NoError(t, err)
		require.NotNil(t, table.TableData)
		assert.Len(t, table.TableData.Rows, 4)
		assert.Equal(t, []string{"CCAFS LC-40", "1", "3", "33.3%"}, table.TableData.Rows[0])
		assert.Equal(t, "5", table.TableData.Summary.Values["value"])

		text, err := Execute(QuerySpec{Intent: "text", Aggregation: "max", Measure: "payload"}, view)
		require.NoError(t, err)
		require.NotNil(t, text.Data)
		assert.Equal(t, "9,600", text.Data.Value)
		assert.Equal(t, "Found 9 records totalling 33,576.", text.Reply)
	})

	t.Run("list table has a row per record", func(t *testing.T) {
		result, err := Execute(QuerySpec{Intent: "table", Aggregation: "list", Measure: "payload"}, view)
		require.NoError(t, err)
		assert.Len(t, result.TableData.Rows, len(launches))
		assert.Len(t, result.TableData.Columns, 5)
	})

	t.Run("identical inputs give identical results", func(t *testing.T) {
		spec := QuerySpec{Intent: "chart", Visualize: "scatter", XMeasure: "payload", YMeasure: "class", ColorBy: "booster",
			Filters: Filters{Ranges: map[string]Range{"payload": {Low: 0, High: 10000}}}}
		first, err := Execute(spec, view)
		require.NoError(t, err)
		second, err := Execute(spec, view)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
}

func TestNormalizeQuerySpec(t *testing.T) {
	got := NormalizeQuerySpec(QuerySpec{Intent: "chart", Aggregation: "list"})
	assert.Equal(t, "table", got.Intent)

	got = NormalizeQuerySpec(QuerySpec{Intent: "chart", Visualize: "pie"})
	assert.Equal(t, "text", got.Intent)

	got = NormalizeQuerySpec(QuerySpec{Intent: "chart", Visualize: "scatter", XMeasure: "payload", YMeasure: "class"})
	assert.Equal(t, "chart", got.Intent)

	got = NormalizeQuerySpec(QuerySpec{Intent: "chart", Visualize: "scatter", XMeasure: "payload"})
	assert.Equal(t, "text", got.Intent)
}

func TestStripUnresolvedPlaceholders(t *testing.T) {
	assert.Equal(t, "5 launches", stripUnresolvedPlaceholders("5 launches, {unknown}"))
	assert.Equal(t, "{only}", stripUnresolvedPlaceholders("{only}"))
}
