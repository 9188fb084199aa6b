// Package dataset loads the SpaceX launch records and exposes them to the
// engine as a read-only view.
package dataset

import (
	"slices"
	"strconv"

	"github.com/pkg/errors"

	"github.com/launchdash/launchdash/engine"
	"github.com/launchdash/launchdash/schema"
)

// ErrEmpty is returned when a dataset has no launch records.
var ErrEmpty = errors.New("dataset has no launch records")

// Launch is one rocket launch.
type Launch struct {
	FlightNumber           int     `json:"flightNumber"`
	LaunchSite             string  `json:"launchSite"`
	MissionOutcome         string  `json:"missionOutcome"`
	Class                  int     `json:"class"` // 1 success, 0 failure
	PayloadMassKg          float64 `json:"payloadMassKg"`
	BoosterVersion         string  `json:"boosterVersion"`
	BoosterVersionCategory string  `json:"boosterVersionCategory"`
}

// ClassLabel is the class as a category value: "0" or "1".
func (l Launch) ClassLabel() string { return strconv.Itoa(l.Class) }

var launchAdapter = engine.NewDomainAdapter[Launch]().
	Dimension(schema.KeyLaunchSite, func(l Launch) string { return l.LaunchSite }).
	Dimension(schema.KeyClass, Launch.ClassLabel).
	Dimension(schema.KeyMissionOutcome, func(l Launch) string { return l.MissionOutcome }).
	Dimension(schema.KeyBoosterVersion, func(l Launch) string { return l.BoosterVersion }).
	Dimension(schema.KeyBoosterVersionCategory, func(l Launch) string { return l.BoosterVersionCategory }).
	Measure(schema.KeyFlightNumber, func(l Launch) float64 { return float64(l.FlightNumber) }).
	Measure(schema.KeyClass, func(l Launch) float64 { return float64(l.Class) }).
	Measure(schema.KeyPayloadMass, func(l Launch) float64 { return l.PayloadMassKg })

// Dataset is the immutable set of launches loaded at startup.
// It is safe for concurrent readers.
type Dataset struct {
	launches   []Launch
	sites      []string
	minPayload float64
	maxPayload float64
	view       engine.RecordView
}

// New builds a Dataset and its payload summary. The slice is copied.
func New(launches []Launch) (*Dataset, error) {
	if len(launches) == 0 {
		return nil, ErrEmpty
	}

	own := slices.Clone(launches)
	ds := &Dataset{
		launches: own,
		view:     launchAdapter.Bind(own),
	}
	ds.sites = engine.UniqueValues(ds.view, schema.KeyLaunchSite)
	ds.minPayload = engine.MinMeasure(ds.view, schema.KeyPayloadMass)
	ds.maxPayload = engine.MaxMeasure(ds.view, schema.KeyPayloadMass)
	return ds, nil
}

// Len returns the number of launches.
func (d *Dataset) Len() int { return len(d.launches) }

// Launches returns a copy of the records.
func (d *Dataset) Launches() []Launch { return slices.Clone(d.launches) }

// Sites returns the distinct launch sites in first-appearance order.
func (d *Dataset) Sites() []string { return slices.Clone(d.sites) }

// HasSite reports whether site occurs in the dataset.
func (d *Dataset) HasSite(site string) bool { return slices.Contains(d.sites, site) }

// MinPayload is the smallest payload mass in kg.
func (d *Dataset) MinPayload() float64 { return d.minPayload }

// MaxPayload is the largest payload mass in kg.
func (d *Dataset) MaxPayload() float64 { return d.maxPayload }

// View exposes the launches to the engine without copying them.
func (d *Dataset) View() engine.RecordView { return d.view }
