package model

import "encoding/json"

// WeatherAPIResponse mirrors the parts of the WeatherAPI.com current.json
// payload the relay reads. Required fields are pointers so a missing key can
// be told apart from a zero value; optional fields stay raw and are decoded
// one by one so a bad value only drops that field.
type WeatherAPIResponse struct {
	Location struct {
		Name *string `json:"name"`
	} `json:"location"`
	Current struct {
		TempC     *float64 `json:"temp_c"`
		Condition struct {
			Text *string `json:"text"`
		} `json:"condition"`
		Humidity json.RawMessage `json:"humidity"`
		WindKph  json.RawMessage `json:"wind_kph"`
	} `json:"current"`
}

// WeatherAPIError covers both error shapes seen from the provider:
// a flat {"message": ...} and WeatherAPI's {"error": {"code": ..., "message": ...}}.
type WeatherAPIError struct {
	Message json.RawMessage `json:"message"`
	Error   json.RawMessage `json:"error"`
}

type WeatherAPIErrorDetail struct {
	Code    int             `json:"code"`
	Message json.RawMessage `json:"message"`
}
