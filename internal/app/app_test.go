package app

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/fakhrymubarak/weather-relay/internal/config"
	"github.com/fakhrymubarak/weather-relay/internal/metrics"
	"github.com/fakhrymubarak/weather-relay/internal/model"
)

const testAPIKey = "test_api_key"

// fakeProvider imitates the WeatherAPI.com current.json endpoint.
type fakeProvider struct {
	mu      sync.Mutex
	calls   int32
	status  int
	body    string
	lastKey string
	lastQ   string
	lastAQI string
}

func (p *fakeProvider) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&p.calls, 1)
	p.mu.Lock()
	defer p.mu.Unlock()
	q := r.URL.Query()
	p.lastKey, p.lastQ, p.lastAQI = q.Get("key"), q.Get("q"), q.Get("aqi")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(p.status)
	_, _ = io.WriteString(w, p.body)
}

func (p *fakeProvider) respond(status int, body string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status, p.body = status, body
	atomic.StoreInt32(&p.calls, 0)
}

func (p *fakeProvider) callCount() int {
	return int(atomic.LoadInt32(&p.calls))
}

type WeatherAPITestSuite struct {
	suite.Suite
	provider     *fakeProvider
	providerHTTP *httptest.Server
	app          *App
	httpServer   *httptest.Server
}

func testConfig(providerURL string) *config.Config {
	return &config.Config{
		Server: config.Server{
			Port:              0,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       5 * time.Second,
			WriteTimeout:      5 * time.Second,
			IdleTimeout:       5 * time.Second,
			ShutdownTimeout:   5 * time.Second,
		},
		Provider: config.Provider{
			APIKey:  testAPIKey,
			BaseURL: providerURL + "/v1/current.json",
			Timeout: 2 * time.Second,
		},
		CORS: config.CORS{AllowedOrigins: []string{"*"}},
	}
}

func (s *WeatherAPITestSuite) SetupSuite() {
	s.provider = &fakeProvider{status: http.StatusOK}
	s.providerHTTP = httptest.NewServer(s.provider)

	s.app = New(testConfig(s.providerHTTP.URL), nil)
	s.httpServer = httptest.NewServer(s.app.Handler())
}

func (s *WeatherAPITestSuite) TearDownSuite() {
	if s.httpServer != nil {
		s.httpServer.Close()
	}
	if s.providerHTTP != nil {
		s.providerHTTP.Close()
	}
}

func TestWeatherAPITestSuite(t *testing.T) {
	suite.Run(t, new(WeatherAPITestSuite))
}

func (s *WeatherAPITestSuite) get(path string) (*http.Response, []byte) {
	resp, err := http.Get(s.httpServer.URL + path)
	s.Require().NoError(err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	return resp, body
}

func (s *WeatherAPITestSuite) TestWeatherEndpoint() {
	tests := []struct {
		name       string
		path       string
		status     int
		body       string
		wantStatus int
		wantCalls  int
		validate   func(t *testing.T, body []byte)
	}{
		{
			name:       "Failed - Missing city parameter",
			path:       "/api/weather",
			wantStatus: http.StatusBadRequest,
			wantCalls:  0,
			validate: func(t *testing.T, body []byte) {
				assert.Contains(t, string(body), "Missing 'city' query parameter")
			},
		},
		{
			name:       "Failed - Empty city parameter",
			path:       "/api/weather?city=",
			wantStatus: http.StatusBadRequest,
			wantCalls:  0,
		},
		{
			name:   "Success - All fields",
			path:   "/api/weather?city=london",
			status: http.StatusOK,
			body: `{"location":{"name":"London"},"current":{"temp_c":15.2,"condition":{"text":"Partly cloudy"},` +
				`"humidity":72,"wind_kph":11.5}}`,
			wantStatus: http.StatusOK,
			wantCalls:  1,
			validate: func(t *testing.T, body []byte) {
				var reading model.WeatherReading
				require.NoError(t, json.Unmarshal(body, &reading))
				assert.Equal(t, "London", reading.City)
				assert.Equal(t, 15.2, reading.Temperature)
				assert.Equal(t, "Partly cloudy", reading.Condition)
				require.NotNil(t, reading.Humidity)
				assert.Equal(t, 72, *reading.Humidity)
				require.NotNil(t, reading.WindSpeed)
				assert.Equal(t, 11.5, *reading.WindSpeed)
			},
		},
		{
			name:       "Success - Optional fields missing",
			path:       "/api/weather?city=Oslo",
			status:     http.StatusOK,
			body:       `{"location":{"name":"Oslo"},"current":{"temp_c":-2,"condition":{"text":"Snow"}}}`,
			wantStatus: http.StatusOK,
			wantCalls:  1,
			validate: func(t *testing.T, body []byte) {
				assert.JSONEq(t, `{"city":"Oslo","temperature":-2,"condition":"Snow"}`, string(body))
			},
		},
		{
			name:       "Failed - City not found forwarded",
			path:       "/api/weather?city=Atlantis",
			status:     http.StatusNotFound,
			body:       `{"message":"City not found"}`,
			wantStatus: http.StatusNotFound,
			wantCalls:  1,
			validate: func(t *testing.T, body []byte) {
				assert.JSONEq(t, `{"error":"upstream_error","message":"City not found"}`, string(body))
			},
		},
		{
			name:       "Failed - Provider error without message",
			path:       "/api/weather?city=London",
			status:     http.StatusInternalServerError,
			body:       `oops`,
			wantStatus: http.StatusInternalServerError,
			wantCalls:  1,
			validate: func(t *testing.T, body []byte) {
				assert.Contains(t, string(body), "Unknown error")
			},
		},
		{
			name:       "Failed - Malformed payload",
			path:       "/api/weather?city=London",
			status:     http.StatusOK,
			body:       `{"location":{"name":"London"},"current":{}}`,
			wantStatus: http.StatusServiceUnavailable,
			wantCalls:  1,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.provider.respond(tt.status, tt.body)

			resp, body := s.get(tt.path)

			s.Equal(tt.wantStatus, resp.StatusCode)
			s.Equal("application/json", resp.Header.Get("Content-Type"))
			s.Equal(tt.wantCalls, s.provider.callCount())
			if tt.validate != nil {
				tt.validate(s.T(), body)
			}
		})
	}
}

func (s *WeatherAPITestSuite) TestProviderQuery() {
	s.provider.respond(http.StatusOK, `{"location":{"name":"San Francisco"},"current":{"temp_c":18,"condition":{"text":"Fog"}}}`)

	resp, _ := s.get("/api/weather?city=San%20Francisco")
	s.Equal(http.StatusOK, resp.StatusCode)

	s.provider.mu.Lock()
	defer s.provider.mu.Unlock()
	s.Equal(testAPIKey, s.provider.lastKey)
	s.Equal("San Francisco", s.provider.lastQ)
	s.Equal("no", s.provider.lastAQI)
}

func (s *WeatherAPITestSuite) TestHealthEndpoint() {
	resp, body := s.get("/working")

	s.Equal(http.StatusOK, resp.StatusCode)
	s.JSONEq(`{"status":"yes working"}`, string(body))
	s.NotEmpty(resp.Header.Get("X-Request-ID"))
}

func (s *WeatherAPITestSuite) TestMethodNotAllowed() {
	resp, err := http.Post(s.httpServer.URL+"/api/weather?city=London", "application/json", nil)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusMethodNotAllowed, resp.StatusCode)
	s.Equal(http.MethodGet, resp.Header.Get("Allow"))
}

func (s *WeatherAPITestSuite) TestUnknownRoute() {
	resp, body := s.get("/api/forecast")

	s.Equal(http.StatusNotFound, resp.StatusCode)
	s.Contains(string(body), "not_found")
}

func (s *WeatherAPITestSuite) TestCORSHeaders() {
	req, err := http.NewRequest(http.MethodGet, s.httpServer.URL+"/working", nil)
	s.Require().NoError(err)
	req.Header.Set("Origin", "http://localhost:5173")

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal("http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
	s.Equal("true", resp.Header.Get("Access-Control-Allow-Credentials"))
}

func (s *WeatherAPITestSuite) TestMetricsEndpoint() {
	httpErrors := s.app.Metrics().UpstreamRequestsTotal.WithLabelValues(metrics.OutcomeHTTPError)
	before := testutil.ToFloat64(httpErrors)

	s.provider.respond(http.StatusNotFound, `{"message":"City not found"}`)
	s.get("/api/weather?city=Atlantis")
	s.Equal(before+1, testutil.ToFloat64(httpErrors))

	resp, body := s.get("/metrics")

	s.Equal(http.StatusOK, resp.StatusCode)
	s.Contains(string(body), `weather_relay_upstream_requests_total{outcome="http_error"}`)
	s.Contains(string(body), `weather_relay_http_requests_total{method="GET",route="/api/weather",status_class="4xx"}`)
}

// Transport failures and the health check need a provider that is not there.
func TestUnreachableProvider(t *testing.T) {
	dead := httptest.NewServer(http.NotFoundHandler())
	deadURL := dead.URL
	dead.Close()

	srv := httptest.NewServer(New(testConfig(deadURL), nil).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/weather?city=London")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body model.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, model.ErrKindServiceUnavailable, body.Error)
	assert.Contains(t, body.Message, "communicating")
	assert.NotContains(t, body.Message, testAPIKey)

	health, err := http.Get(srv.URL + "/working")
	require.NoError(t, err)
	defer health.Body.Close()
	assert.Equal(t, http.StatusOK, health.StatusCode)
}

func TestServe_GracefulShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	a := New(testConfig("http://127.0.0.1:1"), nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- a.Serve(ctx, ln)
	}()

	url := "http://" + ln.Addr().String() + "/working"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
