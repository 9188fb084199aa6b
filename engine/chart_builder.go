package engine

// ============================================================================
// CHART BUILDER — Produces ChartConfig from QuerySpec + Groups / View
// ============================================================================
// Categorical charts (pie, bar) are built from aggregated groups.
// Scatter charts read the filtered view directly: one point per record.
// An empty input still yields a ChartConfig with no data, so frontends can
// draw an empty chart with the right title.
// ============================================================================

// Default color palette for chart series.
var defaultColors = []string{
	"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
}

// BuildChart produces a ChartConfig from a QuerySpec, aggregated groups and
// the filtered view they were computed from.
func BuildChart(spec QuerySpec, groups []Group, view RecordView) *ChartConfig {
	chartType := spec.Visualize
	if chartType == "" {
		chartType = "bar"
	}

	if chartType == "scatter" {
		return buildScatter(spec, view)
	}

	config := &ChartConfig{
		ChartType:  chartType,
		Title:      spec.Title,
		ShowLegend: true,
		ShowGrid:   chartType != "pie",
	}

	if len(spec.GroupBy) > 0 {
		config.XAxis = LabelForDimension(spec.GroupBy[0])
	}
	config.YAxis = LabelForAggregation(spec.Aggregation)
	config.Series = buildSingleSeries(groups, spec.Title)

	if chartType == "pie" {
		config.Colors = assignColors(len(groups))
	} else {
		config.Colors = assignColors(len(config.Series))
	}
	return config
}

// ============================================================================
// SERIES BUILDERS
// ============================================================================

func buildSingleSeries(groups []Group, seriesName string) []ChartSeries {
	if seriesName == "" {
		seriesName = "Value"
	}

	points := make([]ChartPoint, 0, len(groups))
	for _, g := range groups {
		points = append(points, ChartPoint{
			Label: g.Label,
			Value: RoundTo2(g.Value),
		})
	}

	return []ChartSeries{{
		Name: seriesName,
		Data: points,
	}}
}

// buildScatter emits one series per ColorBy value in first-appearance order.
func buildScatter(spec QuerySpec, view RecordView) *ChartConfig {
	config := &ChartConfig{
		ChartType:  "scatter",
		Title:      spec.Title,
		XAxis:      spec.XLabel,
		YAxis:      spec.YLabel,
		Series:     []ChartSeries{},
		ShowLegend: spec.ColorBy != "",
		ShowGrid:   true,
	}
	if config.XAxis == "" {
		config.XAxis = LabelForDimension(spec.XMeasure)
	}
	if config.YAxis == "" {
		config.YAxis = LabelForDimension(spec.YMeasure)
	}

	if view == nil || view.Len() == 0 {
		return config
	}

	index := make(map[string]int)
	for i := 0; i < view.Len(); i++ {
		name := "Value"
		if spec.ColorBy != "" {
			name = view.Dimension(i, spec.ColorBy)
		}
		pos, ok := index[name]
		if !ok {
			pos = len(config.Series)
			index[name] = pos
			config.Series = append(config.Series, ChartSeries{
				Name:  name,
				Color: defaultColors[pos%len(defaultColors)],
			})
		}
		config.Series[pos].Points = append(config.Series[pos].Points, XYPoint{
			X: view.Measure(i, spec.XMeasure),
			Y: view.Measure(i, spec.YMeasure),
		})
	}

	config.Colors = assignColors(len(config.Series))
	return config
}

func assignColors(count int) []string {
	colors := make([]string, count)
	for i := 0; i < count; i++ {
		colors[i] = defaultColors[i%len(defaultColors)]
	}
	return colors
}
