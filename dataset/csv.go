package dataset

import (
	"bytes"
	"encoding/csv"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/launchdash/launchdash/schema"
)

// ============================================================================
// CSV PARSER — launch records CSV → []Launch
// ============================================================================
// The header row is mapped through schema.Launches(). Unknown columns (the
// unnamed pandas index, for one) are skipped. Any bad row fails the whole
// parse: the dashboard never runs on a partial dataset.
// ============================================================================

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseCSV parses launch records CSV bytes.
func ParseCSV(data []byte) ([]Launch, error) {
	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))

	headers, err := reader.Read()
	if err != nil {
		return nil, errors.Wrap(err, "reading CSV headers")
	}

	index, err := schema.Launches().Validate(headers)
	if err != nil {
		return nil, errors.Wrap(err, "validating CSV headers")
	}

	var launches []Launch
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "reading row %d", line)
		}

		l, err := parseRow(row, index)
		if err != nil {
			return nil, errors.Wrapf(err, "row %d", line)
		}
		launches = append(launches, l)
	}

	if len(launches) == 0 {
		return nil, ErrEmpty
	}
	return launches, nil
}

func parseRow(row []string, index map[string]int) (Launch, error) {
	field := func(key string) string {
		i, ok := index[key]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var l Launch
	var err error

	if l.LaunchSite = field(schema.KeyLaunchSite); l.LaunchSite == "" {
		return l, errors.New("empty launch site")
	}
	if l.BoosterVersionCategory = field(schema.KeyBoosterVersionCategory); l.BoosterVersionCategory == "" {
		return l, errors.New("empty booster version category")
	}
	l.MissionOutcome = field(schema.KeyMissionOutcome)
	l.BoosterVersion = field(schema.KeyBoosterVersion)

	if l.PayloadMassKg, err = parseNumber(field(schema.KeyPayloadMass)); err != nil {
		return l, errors.Wrap(err, "payload mass")
	}
	if l.PayloadMassKg < 0 {
		return l, errors.Errorf("negative payload mass %v", l.PayloadMassKg)
	}

	class, err := parseNumber(field(schema.KeyClass))
	if err != nil {
		return l, errors.Wrap(err, "class")
	}
	if class != 0 && class != 1 {
		return l, errors.Errorf("class must be 0 or 1, got %v", class)
	}
	l.Class = int(class)

	if raw := field(schema.KeyFlightNumber); raw != "" {
		n, err := parseNumber(raw)
		if err != nil {
			return l, errors.Wrap(err, "flight number")
		}
		l.FlightNumber = int(n)
	}

	return l, nil
}

func parseNumber(raw string) (float64, error) {
	if raw == "" {
		return 0, errors.New("empty value")
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "parsing %q", raw)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.Errorf("not a finite number: %q", raw)
	}
	return v, nil
}
