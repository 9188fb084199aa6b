package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/launchdash/launchdash/dashboard"
	"github.com/launchdash/launchdash/engine"
	"github.com/launchdash/launchdash/render"
)

type queryOptions struct {
	site   string
	low    float64
	high   float64
	chart  string
	format string
	out    string
	image  string
}

func newQueryCmd(a *app) *cobra.Command {
	opts := &queryOptions{}

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Compute one chart without starting the server",
		Example: `  launchdash query --chart pie --format text
  launchdash query --chart scatter --site "CCAFS LC-40" --low 2500 --high 5000 --format csv
  launchdash query --chart sites --format pretty --out sites.json
  launchdash query --chart pie --site "KSC LC-39A" --image ksc.svg`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := a.loadDataset(cmd.Context(), false)
			if err != nil {
				return err
			}
			dash := dashboard.New(ds, dashboard.WithLogger(a.logger))

			sel := dash.DefaultSelection()
			sel.Site = opts.site
			if cmd.Flags().Changed("low") {
				sel.Low = opts.low
			}
			if cmd.Flags().Changed("high") {
				sel.High = opts.high
			}

			result, err := runQuery(dash, opts.chart, sel)
			if err != nil {
				return err
			}

			if opts.image != "" {
				if err := writeImage(opts.image, result, a); err != nil {
					return err
				}
				a.logger.WithField("file", opts.image).Info("chart image written")
			}

			var w io.Writer = cmd.OutOrStdout()
			if opts.out != "" {
				f, err := os.Create(opts.out)
				if err != nil {
					return errors.Wrap(err, "creating output file")
				}
				defer f.Close()
				w = f
			}
			return writeResult(w, result, opts.format)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.site, "site", dashboard.AllSites, "launch site or \"All Sites\"")
	f.Float64Var(&opts.low, "low", 0, "lower payload bound in kg, exclusive (default dataset minimum)")
	f.Float64Var(&opts.high, "high", 0, "upper payload bound in kg, exclusive (default dataset maximum)")
	f.StringVar(&opts.chart, "chart", "pie", "chart: pie, scatter or sites")
	f.StringVar(&opts.format, "format", "text", "output format: json, pretty, csv or text")
	f.StringVar(&opts.out, "out", "", "write output to file instead of stdout")
	f.StringVar(&opts.image, "image", "", "also render the chart to this .svg or .png file")
	return cmd
}

func runQuery(dash *dashboard.Dashboard, chart string, sel dashboard.Selection) (*engine.Result, error) {
	switch chart {
	case "pie":
		return dash.Dispatch(dashboard.PieChartID, sel)
	case "scatter":
		return dash.Dispatch(dashboard.ScatterChartID, sel)
	case "sites":
		return dash.SiteSummary()
	default:
		return nil, errors.Errorf("unknown chart %q: want pie, scatter or sites", chart)
	}
}

func writeImage(path string, result *engine.Result, a *app) error {
	if result.ChartConfig == nil {
		return errors.New("only pie and scatter results can be rendered")
	}

	format := render.FormatSVG
	if ext := strings.TrimPrefix(filepath.Ext(path), "."); ext != "" {
		var err error
		if format, err = render.ParseFormat(ext); err != nil {
			return err
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating image file")
	}
	defer f.Close()

	contentType, err := render.NewRenderer(a.cfg.Chart.Width, a.cfg.Chart.Height).Render(f, result.ChartConfig, format)
	if err != nil {
		return err
	}
	if format == render.FormatPNG && contentType != render.ContentTypePNG {
		a.logger.WithField("file", path).Warn("nothing to draw, wrote an SVG placeholder")
	}
	return nil
}
