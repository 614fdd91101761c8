package tests

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/brizzai/storefront-gateway/internal/config"
	"github.com/brizzai/storefront-gateway/internal/requester"
	"github.com/google/go-cmp/cmp"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

type mockAuthManager struct {
	applyAuthFunc func(http.Header) error
}

func (m *mockAuthManager) ApplyAuth(headers http.Header) error {
	return m.applyAuthFunc(headers)
}

func serviceConfig(baseURL string) *config.ServiceConfig {
	return &config.ServiceConfig{
		Name:          "user.info",
		BaseURL:       baseURL,
		TimeoutMillis: 1000,
		Mode:          config.ModeLive,
		Setting:       "services.user_lookup.base_url",
	}
}

func TestHTTPRequestBuilder_BuildRequest(t *testing.T) {
	tests := []struct {
		name         string
		config       *config.ServiceConfig
		headers      map[string]string
		authManager  requester.AuthManager
		route        requester.Route
		wantErr      bool
		checkRequest func(t *testing.T, req *requester.Request)
	}{
		{
			name:    "Simple GET Request",
			config:  serviceConfig("https://reqres.in/api/users"),
			headers: map[string]string{"Content-Type": "application/json"},
			route:   requester.Route{Segments: []string{"2"}},
			authManager: &mockAuthManager{
				applyAuthFunc: func(h http.Header) error {
					h.Set("Authorization", "Bearer test-token")
					return nil
				},
			},
			checkRequest: func(t *testing.T, req *requester.Request) {
				assert.Equal(t, "https://reqres.in/api/users/2", req.URL)
				assert.Equal(t, "/api/users/2", req.Path)
				assert.Equal(t, http.MethodGet, req.Method)
				assert.Equal(t, "application/json", req.Headers.Get("Content-Type"))
				assert.Equal(t, "Bearer test-token", req.Headers.Get("Authorization"))
			},
		},
		{
			name:   "Trailing slash on base URL",
			config: serviceConfig("https://reqres.in/api/users/"),
			route:  requester.Route{Segments: []string{"2"}},
			checkRequest: func(t *testing.T, req *requester.Request) {
				assert.Equal(t, "https://reqres.in/api/users/2", req.URL)
			},
		},
		{
			name:   "Segments and query",
			config: serviceConfig("https://pwa.example.com/content"),
			route: requester.Route{
				Segments: []string{"RefArch", "page", "homepage"},
				Query:    url.Values{"preview": {"true"}},
			},
			checkRequest: func(t *testing.T, req *requester.Request) {
				assert.Equal(t, "https://pwa.example.com/content/RefArch/page/homepage?preview=true", req.URL)
				assert.Equal(t, "/content/RefArch/page/homepage", req.Path)
			},
		},
		{
			name:   "Segments are escaped",
			config: serviceConfig("https://pwa.example.com"),
			route:  requester.Route{Segments: []string{"a b", "c/d"}},
			checkRequest: func(t *testing.T, req *requester.Request) {
				assert.Equal(t, "https://pwa.example.com/a%20b/c%2Fd", req.URL)
			},
		},
		{
			name: "Integration headers win over config headers",
			config: func() *config.ServiceConfig {
				cfg := serviceConfig("https://reqres.in/api/users")
				cfg.Headers = map[string]string{"Accept": "text/plain", "X-Env": "test"}
				return cfg
			}(),
			headers: map[string]string{"Accept": "text/html"},
			checkRequest: func(t *testing.T, req *requester.Request) {
				assert.Equal(t, "text/html", req.Headers.Get("Accept"))
				assert.Equal(t, "test", req.Headers.Get("X-Env"))
			},
		},
		{
			name:    "Missing base URL",
			config:  serviceConfig(""),
			route:   requester.Route{Segments: []string{"2"}},
			wantErr: true,
		},
		{
			name:    "Base URL without scheme",
			config:  serviceConfig("reqres.in/api/users"),
			wantErr: true,
		},
		{
			name:    "Base URL with query",
			config:  serviceConfig("https://h.example/pwa?site=x"),
			route:   requester.Route{Segments: []string{"RefArch", "page", "home"}, Query: url.Values{"preview": {"true"}}},
			wantErr: true,
		},
		{
			name:    "Base URL with fragment",
			config:  serviceConfig("https://h.example/pwa#top"),
			route:   requester.Route{Segments: []string{"home"}},
			wantErr: true,
		},
		{
			name:   "Auth failure",
			config: serviceConfig("https://reqres.in/api/users"),
			authManager: &mockAuthManager{
				applyAuthFunc: func(http.Header) error { return errors.New("no token") },
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			builder := requester.NewHTTPRequestBuilder(tt.config, tt.authManager, http.MethodGet, tt.headers)

			req, err := builder.BuildRequest(tt.route)
			if tt.wantErr {
				var ce *requester.ConfigurationError
				require.ErrorAs(t, err, &ce)
				assert.NotEmpty(t, ce.Setting)
				return
			}

			require.NoError(t, err)
			tt.checkRequest(t, req)
		})
	}
}

func TestHTTPRequestBuilder_MissingBaseURLNamesSetting(t *testing.T) {
	builder := requester.NewHTTPRequestBuilder(serviceConfig(""), nil, http.MethodGet, nil)

	_, err := builder.BuildRequest(requester.Route{Segments: []string{"2"}})

	var ce *requester.ConfigurationError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "services.user_lookup.base_url", ce.Setting)
	assert.Equal(t, "STOREFRONT_SERVICES_USER_LOOKUP_BASE_URL", ce.EnvVar)
	assert.Contains(t, ce.Message, "user.info")
	assert.Contains(t, ce.Message, ce.Setting)
	assert.Contains(t, ce.Message, ce.EnvVar)
}

func TestHTTPRequestBuilder_BaseURLQueryNamesSetting(t *testing.T) {
	builder := requester.NewHTTPRequestBuilder(serviceConfig("https://h.example/pwa?site=x"), nil, http.MethodGet, nil)

	req, err := builder.BuildRequest(requester.Route{Segments: []string{"home"}})

	assert.Nil(t, req)
	var ce *requester.ConfigurationError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "services.user_lookup.base_url", ce.Setting)
	assert.NotContains(t, ce.Message, "h.example")
}

func TestHTTPRequestBuilder_CredentialCheckedBeforeBaseURL(t *testing.T) {
	cfg := serviceConfig("")
	cfg.AuthType = "weird"
	builder := requester.NewHTTPRequestBuilder(cfg, requester.NewHTTPAuthManager(cfg), http.MethodGet, nil)

	_, err := builder.BuildRequest(requester.Route{})

	var ce *requester.ConfigurationError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "services.user_lookup.auth_config", ce.Setting)
}

func TestHTTPRequestBuilder_Deterministic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		base := rapid.SampledFrom([]string{
			"https://reqres.in/api/users",
			"https://reqres.in/api/users/",
			"http://localhost:8080",
		}).Draw(t, "base")
		segments := rapid.SliceOfN(rapid.StringMatching(`[a-zA-Z0-9 _\-/]{1,12}`), 0, 4).Draw(t, "segments")

		cfg := serviceConfig(base)
		cfg.Headers = map[string]string{"X-Env": "test"}
		builder := requester.NewHTTPRequestBuilder(cfg, nil, http.MethodGet, map[string]string{"Accept": "text/html"})
		route := requester.Route{Segments: segments, Query: url.Values{"preview": {"true"}}}

		first, err := builder.BuildRequest(route)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		second, err := builder.BuildRequest(route)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if diff := cmp.Diff(first, second); diff != "" {
			t.Fatalf("requests differ (-first +second):\n%s", diff)
		}
		_, rest, _ := strings.Cut(first.URL, "://")
		if strings.Contains(rest, "//") {
			t.Fatalf("double slash in %s", first.URL)
		}
	})
}
