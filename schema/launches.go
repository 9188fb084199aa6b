package schema

// Column keys of the launch records dataset.
const (
	KeyFlightNumber           = "flight_number"
	KeyLaunchSite             = "launch_site"
	KeyMissionOutcome         = "mission_outcome"
	KeyClass                  = "class"
	KeyPayloadMass            = "payload_mass_kg"
	KeyBoosterVersion         = "booster_version"
	KeyBoosterVersionCategory = "booster_version_category"
)

// Launches describes the SpaceX launch records CSV.
//
// class is both a measure (summed for success totals) and, in the engine
// view, a dimension (grouped for success/failure counts).
func Launches() Config {
	flight := Measure("Flight Number", "", false)

	site := Dimension("Launch Site", true)
	site.Description = "Launch pad the mission flew from"

	outcome := Dimension("Mission Outcome", false)

	class := Measure("class", "flag", true)
	class.DisplayName = "Class"
	class.Description = "1 when the first stage landed successfully, 0 otherwise"

	payload := Measure("Payload Mass (kg)", "kg", true)

	booster := Dimension("Booster Version", false)

	category := Dimension("Booster Version Category", true)
	category.Description = "Booster family, used to color scatter points"

	return Config{
		Name:        "SpaceX Launch Records",
		Description: "One row per Falcon launch with site, payload and landing outcome",
		Columns:     []ColumnMeta{flight, site, outcome, class, payload, booster, category},
	}
}
