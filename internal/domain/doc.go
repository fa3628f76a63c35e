// Package domain models ferry service status data and the rules that turn it
// into what a service screen shows.
//
// # Data Sources
//
// Disruption status and route metadata come from the ferry service API, one
// request per service id. Current weather comes from the OpenWeatherMap
// "current weather" endpoint, one request per mappable location. Sailings come
// from a static schedule keyed by ATCO-style stop codes, e.g. "9300ARD"
// (Ardrossan) and "9300BRB" (Brodick).
//
// # Weather Units
//
// OpenWeatherMap reports in its "standard" units unless asked otherwise:
//
//	temperature  Kelvin             → Celsius for display, rounded to whole degrees
//	wind speed   metres per second  → miles per hour for display, rounded
//	wind dir     meteorological degrees (0 = from the north) → 16-point compass
//	rain / snow  mm per period label ("1h", "3h")
//
// # Disruption Severity
//
// The API reports one of four statuses. They map onto what the service
// screen shows and which action a user can take from it:
//
//	Normal             no disruption, no action
//	Information        no disruption, "additional info" action when info is present
//	SailingsAffected   disruption, "disruption information" action
//	SailingsCancelled  disruption, "disruption information" action
//
// Any other value is treated as Normal. See [ClassifyDisruption].
package domain
