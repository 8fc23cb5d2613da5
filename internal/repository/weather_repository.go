package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"

	"github.com/fakhrymubarak/weather-relay/internal/config"
	"github.com/fakhrymubarak/weather-relay/internal/model"
)

const (
	// maxErrorBody caps how much of a failed reply is read looking for a message.
	maxErrorBody = 64 << 10
	// maxPayloadBody caps a successful reply; anything longer is cut and fails to decode.
	maxPayloadBody = 1 << 20
)

// WeatherRepository fetches current conditions for a city from the provider.
type WeatherRepository interface {
	GetWeather(ctx context.Context, city string) (*model.WeatherReading, error)
}

// HTTPClient is satisfied by *http.Client.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// weatherRepository implements WeatherRepository against WeatherAPI.com
type weatherRepository struct {
	apiKey     string
	baseURL    string
	httpClient HTTPClient
}

// NewWeatherRepository creates a repository for the configured provider.
// Without an explicit client one is built with the provider timeout.
func NewWeatherRepository(cfg config.Provider, httpClient ...HTTPClient) WeatherRepository {
	var client HTTPClient
	if len(httpClient) > 0 && httpClient[0] != nil {
		client = httpClient[0]
	} else {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = config.DefaultProviderURL
	}
	return &weatherRepository{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		httpClient: client,
	}
}

// GetWeather performs exactly one provider call; there is no retry.
func (r *weatherRepository) GetWeather(ctx context.Context, city string) (*model.WeatherReading, error) {
	req, err := r.newRequest(ctx, city)
	if err != nil {
		return nil, err
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: stripURL(err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &HTTPStatusError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(body),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBody))
	if err != nil {
		return nil, &TransportError{Err: stripURL(err)}
	}
	return parseReading(body)
}

func (r *weatherRepository) newRequest(ctx context.Context, city string) (*http.Request, error) {
	u, err := url.Parse(r.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid provider url: %w", err)
	}
	q := u.Query()
	q.Set("key", r.apiKey)
	q.Set("q", city)
	q.Set("aqi", "no")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("building provider request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// stripURL drops the request URL (which carries the API key) from client errors.
func stripURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}

func parseReading(body []byte) (*model.WeatherReading, error) {
	var data model.WeatherAPIResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	switch {
	case data.Location.Name == nil:
		return nil, fmt.Errorf("%w: missing location.name", ErrMalformedPayload)
	case data.Current.TempC == nil:
		return nil, fmt.Errorf("%w: missing current.temp_c", ErrMalformedPayload)
	case data.Current.Condition.Text == nil:
		return nil, fmt.Errorf("%w: missing current.condition.text", ErrMalformedPayload)
	}

	reading := &model.WeatherReading{
		City:        *data.Location.Name,
		Temperature: *data.Current.TempC,
		Condition:   *data.Current.Condition.Text,
	}
	if h, ok := optionalNumber(data.Current.Humidity); ok && h >= 0 && h <= 100 && h == math.Trunc(h) {
		humidity := int(h)
		reading.Humidity = &humidity
	}
	if w, ok := optionalNumber(data.Current.WindKph); ok {
		reading.WindSpeed = &w
	}
	return reading, nil
}

// optionalNumber decodes a JSON number, reporting false for absent, null or non-numeric values.
func optionalNumber(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var n *float64
	if err := json.Unmarshal(raw, &n); err != nil || n == nil {
		return 0, false
	}
	return *n, true
}

// errorMessage pulls a human readable message out of a provider error body.
func errorMessage(body []byte) string {
	var envelope model.WeatherAPIError
	if err := json.Unmarshal(body, &envelope); err != nil {
		return UnknownErrorMessage
	}
	if msg, ok := nonEmptyString(envelope.Message); ok {
		return msg
	}
	if len(envelope.Error) > 0 {
		var detail model.WeatherAPIErrorDetail
		if err := json.Unmarshal(envelope.Error, &detail); err == nil {
			if msg, ok := nonEmptyString(detail.Message); ok {
				return msg
			}
		}
	}
	return UnknownErrorMessage
}

func nonEmptyString(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil || strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}
