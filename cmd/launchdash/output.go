package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"

	"github.com/launchdash/launchdash/engine"
)

// ============================================================================
// OUTPUT — json, pretty, csv and text renderings of a Result
// ============================================================================

func writeResult(w io.Writer, result *engine.Result, format string) error {
	switch format {
	case "csv":
		return writeCSV(w, result)
	case "text":
		return writeText(w, result)
	case "json", "pretty":
		return writeJSON(w, result, format)
	default:
		return errors.Errorf("unknown format %q: want json, pretty, csv or text", format)
	}
}

// ============================================================================
// CSV OUTPUT
// ============================================================================

func writeCSV(w io.Writer, result *engine.Result) error {
	cw := csv.NewWriter(w)

	switch {
	case result == nil:
		cw.Write([]string{"Result", "No data"})
	case result.ChartConfig != nil && result.ChartConfig.ChartType == "scatter":
		writeScatterCSV(cw, result.ChartConfig)
	case result.ChartConfig != nil:
		writeChartCSV(cw, result.ChartConfig)
	case result.TableData != nil:
		writeTableCSV(cw, result.TableData)
	default:
		cw.Write([]string{"Summary"})
		cw.Write([]string{result.Reply})
	}

	cw.Flush()
	return errors.Wrap(cw.Error(), "writing CSV")
}

func writeChartCSV(cw *csv.Writer, chart *engine.ChartConfig) {
	xLabel, yLabel := chart.XAxis, chart.YAxis
	if xLabel == "" {
		xLabel = "Label"
	}
	if yLabel == "" {
		yLabel = "Value"
	}

	cw.Write([]string{xLabel, yLabel})
	for _, s := range chart.Series {
		for _, d := range s.Data {
			cw.Write([]string{d.Label, fmtNum(d.Value)})
		}
	}
}

// writeScatterCSV writes one row per point, tagged with its series.
func writeScatterCSV(cw *csv.Writer, chart *engine.ChartConfig) {
	cw.Write([]string{"Series", chart.XAxis, chart.YAxis})
	for _, s := range chart.Series {
		for _, p := range s.Points {
			cw.Write([]string{s.Name, fmtNum(p.X), fmtNum(p.Y)})
		}
	}
}

func writeTableCSV(cw *csv.Writer, table *engine.TableData) {
	headers := make([]string, len(table.Columns))
	for i, c := range table.Columns {
		headers[i] = c.Label
	}
	cw.Write(headers)
	for _, row := range table.Rows {
		cw.Write(row)
	}

	if table.Summary != nil {
		row := make([]string, len(table.Columns))
		for i, c := range table.Columns {
			row[i] = table.Summary.Values[c.Key]
		}
		if len(row) > 0 {
			row[0] = table.Summary.Label
		}
		cw.Write(row)
	}
}

// ============================================================================
// TEXT OUTPUT
// ============================================================================

func writeText(w io.Writer, result *engine.Result) error {
	lines := []string{}
	if result.Title != "" {
		lines = append(lines, result.Title)
	}
	if result.Reply != "" {
		lines = append(lines, result.Reply)
	}
	if len(lines) == 0 {
		lines = append(lines, "No result.")
	}
	if _, err := fmt.Fprintln(w, strings.Join(lines, "\n")); err != nil {
		return errors.Wrap(err, "writing text")
	}

	switch {
	case result.TableData != nil && len(result.TableData.Columns) > 0:
		t := result.TableData
		table := tablewriter.NewWriter(w)
		headers := make([]string, len(t.Columns))
		for i, c := range t.Columns {
			headers[i] = c.Label
		}
		table.SetHeader(headers)
		table.AppendBulk(t.Rows)
		if t.Summary != nil {
			footer := make([]string, len(t.Columns))
			for i, c := range t.Columns {
				footer[i] = t.Summary.Values[c.Key]
			}
			footer[0] = t.Summary.Label
			table.SetFooter(footer)
		}
		table.Render()
	case result.ChartConfig != nil && result.ChartConfig.ChartType != "scatter" && !result.ChartConfig.IsEmpty():
		c := result.ChartConfig
		table := tablewriter.NewWriter(w)
		table.SetHeader([]string{c.XAxis, c.YAxis})
		for _, s := range c.Series {
			for _, d := range s.Data {
				table.Append([]string{d.Label, fmtNum(d.Value)})
			}
		}
		table.Render()
	}
	return nil
}

// ============================================================================
// JSON OUTPUT
// ============================================================================

func writeJSON(w io.Writer, v any, format string) error {
	var out []byte
	var err error

	if format == "pretty" {
		out, err = json.MarshalIndent(v, "", "  ")
	} else {
		out, err = json.Marshal(v)
	}
	if err != nil {
		return errors.Wrap(err, "marshalling output")
	}

	_, err = fmt.Fprintln(w, string(out))
	return errors.Wrap(err, "writing output")
}

// ============================================================================
// HELPERS
// ============================================================================

func fmtNum(v float64) string {
	// Whole numbers → no decimals, fractional → 2 decimals
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}
