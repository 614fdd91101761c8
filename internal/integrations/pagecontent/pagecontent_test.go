package pagecontent

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/brizzai/storefront-gateway/internal/config"
	"github.com/brizzai/storefront-gateway/internal/requester"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name      string
		params    Params
		segments  []string
		wantParam string
	}{
		{name: "Both set", params: Params{SiteID: "RefArch", PageID: "homepage"}, segments: []string{"RefArch", "page", "homepage"}},
		{name: "Missing site", params: Params{PageID: "homepage"}, wantParam: "siteID"},
		{name: "Missing page", params: Params{SiteID: "RefArch"}, wantParam: "pageID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			route, err := resolve(tt.params)
			if tt.wantParam != "" {
				var ce *requester.ConfigurationError
				require.ErrorAs(t, err, &ce)
				assert.Equal(t, tt.wantParam, ce.Param)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.segments, route.Segments)
			assert.Equal(t, "true", route.Query.Get("preview"))
		})
	}
}

func TestGetPageContent_Live(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/mobify/RefArch/page/homepage", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("preview"))
		assert.Equal(t, "text/html", r.Header.Get("Accept"))
		_, _ = w.Write([]byte("<main>home</main>"))
	}))
	defer server.Close()

	cfg := &config.ServiceConfig{
		Name:          "pwakit.http.service",
		BaseURL:       server.URL + "/mobify",
		TimeoutMillis: 2000,
		Mode:          config.ModeLive,
	}
	result := NewClient(cfg, requester.NewHTTPRequester(server.Client())).GetPageContent(context.Background(), "RefArch", "homepage")

	require.True(t, result.OK)
	assert.Equal(t, "<main>home</main>", *result.Payload)
}

func TestGetPageContent_Simulated(t *testing.T) {
	cfg := &config.ServiceConfig{Name: "pwakit.http.service", TimeoutMillis: 2000, Mode: config.ModeSimulate}

	result := NewClient(cfg, nil).GetPageContent(context.Background(), "RefArch", "homepage")

	require.True(t, result.OK)
	assert.Equal(t, MockContent, *result.Payload)
}

func TestGetPageContent_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := &config.ServiceConfig{Name: "pwakit.http.service", BaseURL: server.URL, TimeoutMillis: 2000, Mode: config.ModeLive}
	result := NewClient(cfg, requester.NewHTTPRequester(server.Client())).GetPageContent(context.Background(), "RefArch", "homepage")

	require.False(t, result.OK)
	assert.Equal(t, requester.KindHTTP, result.Error.Kind)
	assert.Equal(t, http.StatusInternalServerError, result.Error.StatusCode)
}
