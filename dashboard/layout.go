// Package dashboard describes the launch records page and computes its two
// linked charts from the current selection.
package dashboard

import (
	"slices"

	"github.com/launchdash/launchdash/dataset"
)

// AllSites selects every launch site.
const AllSites = "All Sites"

// Element ids shared by the layout, the callbacks and the served page.
const (
	SiteDropdownID  = "site-dropdown"
	PayloadSliderID = "payload-slider"
	PieChartID      = "success-pie-chart"
	ScatterChartID  = "success-payload-scatter-chart"
)

// Slider bounds are fixed; the selection starts at the dataset's payload span.
const (
	SliderMin  = 0
	SliderMax  = 10000
	SliderStep = 1000
)

// Layout is the static description of the page, built once at startup.
type Layout struct {
	Title       Heading     `json:"title"`
	Dropdown    Dropdown    `json:"dropdown"`
	SliderLabel string      `json:"sliderLabel"`
	Slider      RangeSlider `json:"slider"`
	Graphs      []Graph     `json:"graphs"`
	Callbacks   []Callback  `json:"callbacks"`
}

// Heading is the page title.
type Heading struct {
	Text  string `json:"text"`
	Style Style  `json:"style"`
}

// Style holds the few CSS properties the page sets inline.
type Style struct {
	TextAlign string `json:"textAlign"`
	Color     string `json:"color"`
	FontSize  int    `json:"fontSize"`
}

// DropdownOption is one dropdown entry.
type DropdownOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Dropdown selects the launch site.
type Dropdown struct {
	ID          string           `json:"id"`
	Options     []DropdownOption `json:"options"`
	Value       string           `json:"value"`
	Placeholder string           `json:"placeholder"`
	Searchable  bool             `json:"searchable"`
}

// Mark is a labelled tick on the slider.
type Mark struct {
	Value float64 `json:"value"`
	Label string  `json:"label"`
}

// RangeSlider selects the payload interval in kg.
type RangeSlider struct {
	ID    string     `json:"id"`
	Min   float64    `json:"min"`
	Max   float64    `json:"max"`
	Step  float64    `json:"step"`
	Marks []Mark     `json:"marks"`
	Value [2]float64 `json:"value"`
}

// Graph is a chart region filled by a callback.
type Graph struct {
	ID string `json:"id"`
}

// Input is a component property a callback reads.
type Input struct {
	ID       string `json:"id"`
	Property string `json:"property"`
}

// Callback binds inputs to the graph they redraw.
type Callback struct {
	Output string  `json:"output"`
	Inputs []Input `json:"inputs"`
}

// BuildLayout enumerates the dropdown options from the dataset's sites and
// starts the slider at [min payload, max payload].
func BuildLayout(ds *dataset.Dataset) Layout {
	options := []DropdownOption{{Label: AllSites, Value: AllSites}}
	for _, site := range ds.Sites() {
		options = append(options, DropdownOption{Label: site, Value: site})
	}

	return Layout{
		Title: Heading{
			Text:  "SpaceX Launch Records Dashboard",
			Style: Style{TextAlign: "center", Color: "#503D36", FontSize: 40},
		},
		Dropdown: Dropdown{
			ID:          SiteDropdownID,
			Options:     options,
			Value:       AllSites,
			Placeholder: "Select a Launch Site here",
			Searchable:  true,
		},
		SliderLabel: "Payload range (Kg):",
		Slider: RangeSlider{
			ID:   PayloadSliderID,
			Min:  SliderMin,
			Max:  SliderMax,
			Step: SliderStep,
			Marks: []Mark{
				{Value: 0, Label: "0"},
				{Value: 2500, Label: "2500"},
				{Value: 5000, Label: "5000"},
				{Value: 10000, Label: "10000"},
			},
			Value: [2]float64{ds.MinPayload(), ds.MaxPayload()},
		},
		Graphs: []Graph{{ID: PieChartID}, {ID: ScatterChartID}},
		Callbacks: []Callback{
			{
				Output: PieChartID,
				Inputs: []Input{{ID: SiteDropdownID, Property: "value"}},
			},
			{
				Output: ScatterChartID,
				Inputs: []Input{
					{ID: SiteDropdownID, Property: "value"},
					{ID: PayloadSliderID, Property: "value"},
				},
			},
		},
	}
}

// clone copies the slices so callers cannot alter the shared layout.
func (l Layout) clone() Layout {
	l.Dropdown.Options = slices.Clone(l.Dropdown.Options)
	l.Slider.Marks = slices.Clone(l.Slider.Marks)
	l.Graphs = slices.Clone(l.Graphs)
	cbs := make([]Callback, len(l.Callbacks))
	for i, cb := range l.Callbacks {
		cb.Inputs = slices.Clone(cb.Inputs)
		cbs[i] = cb
	}
	l.Callbacks = cbs
	return l
}
