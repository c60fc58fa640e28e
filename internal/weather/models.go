package weather

import (
	"strconv"
)

// UnavailableText is rendered when the provider answered but carried no forecast list.
const UnavailableText = "forecast unavailable"

// Snapshot is the normalized first entry of a provider forecast for a location.
// Only its rendered text is ever persisted or compared.
type Snapshot struct {
	Location     string  `json:"location"`
	Description  string  `json:"description"`
	TemperatureC float64 `json:"temperatureC"`

	// Available is false when the provider response had no forecast list.
	Available bool `json:"available"`
}

// Render returns the display form "<description>, <temperature>°C".
func (s Snapshot) Render() string {
	if !s.Available {
		return UnavailableText
	}
	return s.Description + ", " + FormatTemperature(s.TemperatureC) + "°C"
}

// FormatTemperature prints the shortest decimal that round-trips, so 10 stays
// "10" and 14.2 stays "14.2".
func FormatTemperature(c float64) string {
	return strconv.FormatFloat(c, 'f', -1, 64)
}
