package engine

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ============================================================================
// EXECUTOR — Dispatcher + Placeholder Resolution
// ============================================================================
// Entry point: Execute(spec, view, opts...)
//
// Pipeline:
//   1. Validate ranges
//   2. Apply filters from QuerySpec → SubView
//   3. Group and aggregate (skipped for scatter)
//   4. Dispatch to builder (chart / table / text)
//   5. Resolve reply template placeholders
//
// Execute is a pure function of its inputs: no state is kept between calls.
// ============================================================================

// ErrInvalidRange is returned when a range filter has Low > High.
var ErrInvalidRange = errors.New("range low bound is greater than high bound")

// NoMatchReply is the reply used when filtering leaves no records.
const NoMatchReply = "No records match the current selection."

// Execute runs a QuerySpec against a RecordView and returns a render-ready Result.
//
// Options:
//   - WithDefaultMeasure(key) — sets the measure when QuerySpec.Measure is empty
//   - WithLogger(logger) — debug logging destination
func Execute(spec QuerySpec, view RecordView, opts ...Option) (*Result, error) {
	cfg := applyOptions(opts)

	measure := spec.Measure
	if measure == "" {
		measure = cfg.DefaultMeasure
	}

	for key, r := range spec.Filters.Ranges {
		if !r.Valid() {
			return nil, errors.Wrapf(ErrInvalidRange, "%s [%v, %v]", key, r.Low, r.High)
		}
	}

	if view == nil {
		view = NewSliceView(nil)
	}

	// 1. Apply filters → SubView (zero-copy)
	filtered := ApplyFilters(view, spec.Filters)

	cfg.Logger.WithFields(logrus.Fields{
		"intent":      spec.Intent,
		"visualize":   spec.Visualize,
		"aggregation": spec.Aggregation,
		"measure":     measure,
		"records":     view.Len(),
		"matched":     filtered.Len(),
	}).Debug("executing query")

	// 2. Group and aggregate
	var groups []Group
	if spec.Visualize != "scatter" {
		groups = GroupAndAggregate(filtered, spec.GroupBy, measure, spec.Aggregation, spec.SortBy, spec.Limit)
	}

	// 3. Dispatch to builder
	result := &Result{
		Success: true,
		Title:   spec.Title,
		Count:   filtered.Len(),
	}

	switch spec.Intent {
	case "chart":
		result.Type = "chart"
		result.ChartConfig = BuildChart(spec, groups, filtered)
	case "table":
		result.Type = "table"
		result.TableData = BuildTable(spec, groups, filtered, measure)
	default:
		result.Type = "text"
		result.Data = BuildText(spec, filtered, measure)
	}

	if filtered.Len() == 0 {
		result.Reply = NoMatchReply
		return result, nil
	}

	// 4. Resolve reply template placeholders
	result.Reply = ResolvePlaceholders(spec.Reply, groups, filtered, measure)
	return result, nil
}

// ============================================================================
// PLACEHOLDER RESOLUTION
// ============================================================================

// ResolvePlaceholders substitutes computed values into the reply template.
func ResolvePlaceholders(template string, groups []Group, view RecordView, measure string) string {
	if template == "" {
		return buildDefaultReply(view, measure)
	}

	count := view.Len()
	total := SumMeasure(view, measure)

	replacements := map[string]string{
		"{count}":  FormatInt(count),
		"{total}":  FormatNumber(total),
		"{groups}": FormatInt(len(groups)),
	}

	if count > 0 {
		replacements["{avg}"] = FormatNumber(total / float64(count))
		replacements["{max}"] = FormatNumber(MaxMeasure(view, measure))
		replacements["{min}"] = FormatNumber(MinMeasure(view, measure))
	}

	// Top group (highest value, first wins on ties)
	if len(groups) > 0 {
		top := groups[0]
		for _, g := range groups[1:] {
			if g.Value > top.Value {
				top = g
			}
		}
		replacements["{top_label}"] = top.Label
		replacements["{top_value}"] = FormatNumber(top.Value)
	}

	result := template
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}

	return stripUnresolvedPlaceholders(result)
}

// ============================================================================
// QUERYSPEC NORMALIZATION
// ============================================================================

// NormalizeQuerySpec applies deterministic rules to fix inconsistent specs.
func NormalizeQuerySpec(spec QuerySpec) QuerySpec {
	// Rule 1: "list" aggregation must be a table
	if spec.Aggregation == "list" && spec.Intent != "table" {
		spec.Intent = "table"
		spec.Visualize = "table"
	}

	// Rule 2: categorical charts must have a groupBy dimension
	if spec.Intent == "chart" && spec.Visualize != "scatter" && len(spec.GroupBy) == 0 {
		spec.Intent = "text"
		spec.Visualize = "text"
	}

	// Rule 3: scatter needs both axes
	if spec.Visualize == "scatter" && (spec.XMeasure == "" || spec.YMeasure == "") {
		spec.Intent = "text"
		spec.Visualize = "text"
	}

	return spec
}

// ============================================================================
// INTERNAL HELPERS
// ============================================================================

func buildDefaultReply(view RecordView, measure string) string {
	if view.Len() == 0 {
		return NoMatchReply
	}
	return fmt.Sprintf("Found %s records totalling %s.",
		FormatInt(view.Len()), FormatNumber(SumMeasure(view, measure)))
}

var placeholderRegex = regexp.MustCompile(`\{[a-z_]+\}`)

func stripUnresolvedPlaceholders(text string) string {
	cleaned := placeholderRegex.ReplaceAllString(text, "")
	cleaned = strings.ReplaceAll(cleaned, "  ", " ")
	cleaned = strings.TrimSpace(cleaned)
	cleaned = strings.TrimRight(cleaned, " ,.—-–")
	if cleaned == "" {
		return text
	}
	return cleaned
}
