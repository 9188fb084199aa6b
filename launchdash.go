// Package launchdash is a SpaceX launch records dashboard.
//
// The launch CSV is loaded once at startup into an immutable dataset and
// served as a single page with a launch-site dropdown, a payload range slider,
// a success pie chart and a payload/outcome scatter chart.
//
// Packages:
//
//	dataset    CSV loading and the immutable Dataset
//	schema     column metadata of the launch CSV
//	engine     record views, filters, aggregation and chart/table/text builders
//	dashboard  page layout and the pie and scatter handlers
//	render     go-chart SVG/PNG rendering and the page HTML
//	server     HTTP routes and middleware
//	store      SQLite snapshots of the dataset
//	config     viper configuration and logger setup
//
// The binary lives in cmd/launchdash:
//
//	launchdash serve --source spacex_launch_dash.csv
//	launchdash query --chart scatter --site "KSC LC-39A" --low 2000 --high 8000 --format csv
package launchdash
