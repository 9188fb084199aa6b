package engine

// ============================================================================
// TEXT BUILDER — Produces TextData for simple queries
// ============================================================================

// BuildText produces a single-value answer from filtered records.
func BuildText(spec QuerySpec, view RecordView, measure string) *TextData {
	if view.Len() == 0 {
		return &TextData{
			Value:   "0",
			Measure: measure,
		}
	}

	var value float64
	switch spec.Aggregation {
	case "count":
		value = float64(view.Len())
	case "avg":
		value = AvgMeasure(view, measure)
	case "max":
		value = MaxMeasure(view, measure)
	case "min":
		value = MinMeasure(view, measure)
	default:
		value = SumMeasure(view, measure)
	}

	return &TextData{
		Value:    FormatNumber(value),
		RawValue: value,
		Measure:  measure,
		Count:    view.Len(),
	}
}
