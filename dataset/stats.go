package dataset

import (
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
)

// PayloadStats summarises the payload masses of a dataset, in kg.
type PayloadStats struct {
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"stdDev"`
}

// PayloadStats computes the payload summary over every launch.
func (d *Dataset) PayloadStats() (PayloadStats, error) {
	data := make(stats.Float64Data, len(d.launches))
	for i, l := range d.launches {
		data[i] = l.PayloadMassKg
	}

	mean, err := stats.Mean(data)
	if err != nil {
		return PayloadStats{}, errors.Wrap(err, "payload mean")
	}
	median, err := stats.Median(data)
	if err != nil {
		return PayloadStats{}, errors.Wrap(err, "payload median")
	}
	sd, err := stats.StandardDeviation(data)
	if err != nil {
		return PayloadStats{}, errors.Wrap(err, "payload standard deviation")
	}

	return PayloadStats{
		Count:  len(data),
		Min:    d.minPayload,
		Max:    d.maxPayload,
		Mean:   mean,
		Median: median,
		StdDev: sd,
	}, nil
}
