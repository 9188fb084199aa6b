package dashboard

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/launchdash/launchdash/dataset"
	"github.com/launchdash/launchdash/engine"
	"github.com/launchdash/launchdash/schema"
)

// ErrInvalidRange is returned by ScatterChart when low > high.
var ErrInvalidRange = engine.ErrInvalidRange

// ErrUnknownOutput is returned by Dispatch for an id that is not a graph.
var ErrUnknownOutput = errors.New("unknown output")

// Selection is the state of the page inputs.
type Selection struct {
	Site string  `json:"site"`
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Dashboard answers chart requests over one immutable dataset. All methods
// are safe for concurrent use.
type Dashboard struct {
	ds     *dataset.Dataset
	layout Layout
	logger logrus.FieldLogger
}

// Option configures a Dashboard.
type Option func(*Dashboard)

// WithLogger sets the logger passed down to the engine.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(d *Dashboard) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// New builds the layout for ds and returns the Dashboard serving it.
func New(ds *dataset.Dataset, opts ...Option) *Dashboard {
	d := &Dashboard{
		ds:     ds,
		layout: BuildLayout(ds),
		logger: logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dataset returns the records the dashboard was built on.
func (d *Dashboard) Dataset() *dataset.Dataset { return d.ds }

// Layout returns a copy of the page description.
func (d *Dashboard) Layout() Layout { return d.layout.clone() }

// DefaultSelection is the initial state of the inputs.
func (d *Dashboard) DefaultSelection() Selection {
	return Selection{
		Site: AllSites,
		Low:  d.layout.Slider.Value[0],
		High: d.layout.Slider.Value[1],
	}
}

// PieChart returns the success pie for site. With AllSites there is one slice
// per site sized by its successful launches; otherwise one slice per outcome
// class counting that site's launches. An unknown site yields a chart with
// no slices.
func (d *Dashboard) PieChart(site string) (*engine.Result, error) {
	spec := engine.QuerySpec{
		Intent:    "chart",
		Visualize: "pie",
		Measure:   schema.KeyClass,
		SortBy:    "label_asc",
	}

	if site == AllSites {
		spec.GroupBy = []string{schema.KeyLaunchSite}
		spec.Aggregation = "sum"
		spec.Title = "Total Success Launches by Site"
		spec.Reply = "{count} launches, {total} successful across {groups} sites"
	} else {
		spec.Filters.Dimensions = map[string][]string{schema.KeyLaunchSite: {site}}
		spec.GroupBy = []string{schema.KeyClass}
		spec.Aggregation = "count"
		spec.Title = "Total Success Launches by " + site
		spec.Reply = "{count} launches, {total} successful"
	}

	result, err := d.execute(spec)
	return result, errors.Wrapf(err, "pie chart for %q", site)
}

// ScatterChart returns payload mass against outcome class for launches with
// low < payload < high, one series per booster version category. Launches
// exactly on a bound are excluded.
func (d *Dashboard) ScatterChart(site string, low, high float64) (*engine.Result, error) {
	spec := engine.QuerySpec{
		Intent:    "chart",
		Visualize: "scatter",
		Measure:   schema.KeyClass,
		Filters: engine.Filters{
			Ranges: map[string]engine.Range{schema.KeyPayloadMass: {Low: low, High: high}},
		},
		XMeasure: schema.KeyPayloadMass,
		YMeasure: schema.KeyClass,
		ColorBy:  schema.KeyBoosterVersionCategory,
		XLabel:   "Payload Mass (kg)",
		YLabel:   "class",
		Title:    "Correlation between Payload and Success for " + site,
		Reply:    "{count} launches in range, {total} successful",
	}
	if site != AllSites {
		spec.Filters.Dimensions = map[string][]string{schema.KeyLaunchSite: {site}}
	}

	result, err := d.execute(spec)
	return result, errors.Wrapf(err, "scatter chart for %q", site)
}

// Dispatch runs the handler bound to output in the layout callbacks.
func (d *Dashboard) Dispatch(output string, sel Selection) (*engine.Result, error) {
	switch output {
	case PieChartID:
		return d.PieChart(sel.Site)
	case ScatterChartID:
		return d.ScatterChart(sel.Site, sel.Low, sel.High)
	default:
		return nil, errors.Wrap(ErrUnknownOutput, output)
	}
}

// SiteSummary tabulates launches and successes per site.
func (d *Dashboard) SiteSummary() (*engine.Result, error) {
	result, err := d.execute(engine.QuerySpec{
		Intent:      "table",
		Visualize:   "table",
		GroupBy:     []string{schema.KeyLaunchSite},
		Measure:     schema.KeyClass,
		Aggregation: "sum",
		SortBy:      "label_asc",
		Title:       "Launch Outcomes by Site",
		Reply:       "{count} launches at {groups} sites, most successes at {top_label} ({top_value})",
	})
	return result, errors.Wrap(err, "site summary")
}

func (d *Dashboard) execute(spec engine.QuerySpec) (*engine.Result, error) {
	spec = engine.NormalizeQuerySpec(spec)
	return engine.Execute(spec, d.ds.View(),
		engine.WithDefaultMeasure(schema.KeyClass),
		engine.WithLogger(d.logger),
	)
}
