package requester

import (
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/brizzai/storefront-gateway/internal/config"
)

// AuthManager adds service credentials to outbound headers
type AuthManager interface {
	ApplyAuth(headers http.Header) error
}

// HTTPAuthManager applies the credential declared on a ServiceConfig
type HTTPAuthManager struct {
	authType   config.AuthType
	authConfig map[string]string
}

// NewHTTPAuthManager creates a new HTTPAuthManager
func NewHTTPAuthManager(serviceConfig *config.ServiceConfig) *HTTPAuthManager {
	return &HTTPAuthManager{
		authType:   serviceConfig.AuthType,
		authConfig: serviceConfig.AuthConfig,
	}
}

// ApplyAuth adds authentication headers. It never reads from the network.
func (a *HTTPAuthManager) ApplyAuth(headers http.Header) error {
	switch a.authType {
	case config.AuthTypeNone, "":
		return nil
	case config.AuthTypeBasic:
		username := a.authConfig["username"]
		password := a.authConfig["password"]
		if username == "" {
			return fmt.Errorf("basic auth requires auth_config.username")
		}
		creds := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
		headers.Set("Authorization", "Basic "+creds)
	case config.AuthTypeBearer:
		token := a.authConfig["token"]
		if token == "" {
			return fmt.Errorf("bearer auth requires auth_config.token")
		}
		headers.Set("Authorization", "Bearer "+token)
	case config.AuthTypeAPIKey:
		key := a.authConfig["key"]
		header := a.authConfig["header"]
		if header == "" {
			header = "X-API-Key"
		}
		headers.Set(header, key)
	default:
		return fmt.Errorf("unsupported auth type: %s", a.authType)
	}
	return nil
}
