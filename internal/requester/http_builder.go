package requester

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/brizzai/storefront-gateway/internal/config"
)

// HTTPRequestBuilder turns a resolved Route into a Request for one service
type HTTPRequestBuilder struct {
	serviceCfg *config.ServiceConfig
	authMgr    AuthManager
	method     string
	headers    map[string]string
}

// NewHTTPRequestBuilder creates a builder for an integration. headers are the
// fixed headers the integration declares; service-level headers from the
// config are merged underneath them.
func NewHTTPRequestBuilder(cfg *config.ServiceConfig, authMgr AuthManager, method string, headers map[string]string) *HTTPRequestBuilder {
	if method == "" {
		method = http.MethodGet
	}
	return &HTTPRequestBuilder{
		serviceCfg: cfg,
		authMgr:    authMgr,
		method:     method,
		headers:    headers,
	}
}

// BuildRequest builds the outbound request. It is a pure function of the
// service config and the route; a *ConfigurationError is returned when the
// credential or the base URL is missing or unusable. Credentials are checked
// first.
func (b *HTTPRequestBuilder) BuildRequest(route Route) (*Request, error) {
	headers := make(http.Header)
	for k, v := range b.serviceCfg.Headers {
		headers.Set(k, v)
	}
	for k, v := range b.headers {
		headers.Set(k, v)
	}
	if b.authMgr != nil {
		if err := b.authMgr.ApplyAuth(headers); err != nil {
			return nil, &ConfigurationError{
				Setting: b.settingPrefix() + "auth_config",
				Message: "invalid service credential: " + err.Error(),
			}
		}
	}

	target, err := b.baseURL()
	if err != nil {
		return nil, err
	}

	target += routePath(route)
	if len(route.Query) > 0 {
		target += "?" + route.Query.Encode()
	}

	u, err := url.Parse(target)
	if err != nil {
		return nil, b.missingSetting("invalid credential URL")
	}

	return &Request{
		Method:  b.method,
		URL:     target,
		Path:    u.EscapedPath(),
		Headers: headers,
	}, nil
}

// baseURL returns the configured endpoint without trailing slashes
func (b *HTTPRequestBuilder) baseURL() (string, error) {
	raw := strings.TrimSpace(b.serviceCfg.BaseURL)
	if raw == "" {
		return "", b.missingSetting("missing credential URL")
	}
	base := strings.TrimRight(raw, "/")
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", b.missingSetting("invalid credential URL")
	}
	if strings.ContainsAny(base, "?#") {
		return "", b.missingSetting("credential URL must not carry a query or fragment")
	}
	return base, nil
}

func (b *HTTPRequestBuilder) baseSetting() string {
	if b.serviceCfg.Setting == "" {
		return "base_url"
	}
	return b.serviceCfg.Setting
}

func (b *HTTPRequestBuilder) missingSetting(message string) *ConfigurationError {
	setting := b.baseSetting()
	env := config.EnvKey(setting)
	return &ConfigurationError{
		Setting: setting,
		EnvVar:  env,
		Message: message + " for service " + b.serviceCfg.Name + ", please set " + setting + " or " + env,
	}
}

func (b *HTTPRequestBuilder) settingPrefix() string {
	if prefix, ok := strings.CutSuffix(b.serviceCfg.Setting, "base_url"); ok {
		return prefix
	}
	return ""
}

// routePath joins the escaped route segments into a path
func routePath(route Route) string {
	if len(route.Segments) == 0 {
		return ""
	}
	segments := make([]string, 0, len(route.Segments))
	for _, segment := range route.Segments {
		segments = append(segments, url.PathEscape(segment))
	}
	return "/" + strings.Join(segments, "/")
}
