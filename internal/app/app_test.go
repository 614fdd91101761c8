package app

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/brizzai/storefront-gateway/internal/config"
	"github.com/brizzai/storefront-gateway/internal/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Server:     config.ServerConfig{Host: "127.0.0.1", Port: 0, Timeout: "5s", Version: "test"},
		Logging:    config.LoggingConfig{Level: "error", Format: "console"},
		Storefront: config.StorefrontConfig{SiteID: "RefArch"},
		Services: config.ServicesConfig{
			UserLookup: config.ServiceConfig{
				Name: "user.info", TimeoutMillis: 1000, Mode: config.ModeSimulate,
				Setting: "services.user_lookup.base_url",
			},
			PageContent: config.ServiceConfig{
				Name: "pwakit.http.service", TimeoutMillis: 1000, Mode: config.ModeSimulate,
				Setting: "services.page_content.base_url",
			},
		},
		Newsletter: config.NewsletterConfig{Driver: config.NewsletterDriverSQLite, DSN: ":memory:"},
	}
}

func TestOptions_Validate(t *testing.T) {
	require.NoError(t, fx.ValidateApp(Options(testConfig(t))))
}

func TestApp_ServesSimulatedRoutes(t *testing.T) {
	var srv *server.Server
	app := fxtest.New(t, Options(testConfig(t)), fx.Populate(&srv))
	app.RequireStart()
	defer app.RequireStop()

	base := "http://" + srv.Addr()

	get := func(path string) (int, string) {
		resp, err := http.Get(base + path)
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp.StatusCode, string(body)
	}

	status, body := get("/users/2")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `"first_name":"Mock"`)

	status, body = get("/pwa/content?pageID=homepage")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "<div>Mock PWA Kit Content</div>", body)

	status, _ = get("/healthz")
	assert.Equal(t, http.StatusOK, status)

	resp, err := http.Post(base+"/newsletter/subscribe", "application/json", strings.NewReader(`{"email":"jane@example.com"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	status, body = get("/metrics")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `storefront_newsletter_subscriptions_total{result="created"} 1`)
	assert.Contains(t, body, fmt.Sprintf(`storefront_service_calls_total{mode="simulate",outcome="ok",service=%q} 1`, "user.info"))
}

func TestApp_HandlerWithoutServer(t *testing.T) {
	var h http.Handler
	app := fxtest.New(t, Options(testConfig(t)), fx.Populate(&h))
	app.RequireStart()
	defer app.RequireStop()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/openapi.json", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"openapi":"3.0.3"`)
}
