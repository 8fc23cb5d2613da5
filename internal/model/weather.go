package model

// WeatherReading is the canonical current-conditions record returned to callers.
// Humidity and WindSpeed are nil when the provider omits them.
type WeatherReading struct {
	City        string   `json:"city"`
	Temperature float64  `json:"temperature"`
	Condition   string   `json:"condition"`
	Humidity    *int     `json:"humidity,omitempty"`
	WindSpeed   *float64 `json:"wind_speed,omitempty"`
}
