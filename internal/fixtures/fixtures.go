// Package fixtures loads canned responses used by integrations running in
// simulate mode.
package fixtures

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/brizzai/storefront-gateway/internal/logger"
	"github.com/brizzai/storefront-gateway/internal/requester"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Fixture is one canned response
type Fixture struct {
	Status        int               `yaml:"status"`
	StatusMessage string            `yaml:"status_message,omitempty"`
	Headers       map[string]string `yaml:"headers,omitempty"`
	Body          string            `yaml:"body"`
}

// File is the on-disk layout, keyed by service name
type File struct {
	Services map[string]Fixture `yaml:"services"`
}

// Set holds the loaded fixtures
type Set struct {
	fixtures map[string]Fixture
}

// Empty returns a Set without overrides
func Empty() *Set {
	return &Set{fixtures: map[string]Fixture{}}
}

// Load reads fixtures from a YAML file. An empty path yields an empty set.
func Load(filePath string) (*Set, error) {
	if filePath == "" {
		logger.Debug("No mock fixtures file provided")
		return Empty(), nil
	}

	logger.Info("Loading mock fixtures from file", zap.String("file", filePath))
	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("mock fixtures file %s not found, please adjust mock_fixtures or pass --mock-fixtures", filePath)
		}
		return nil, err
	}
	return Parse(data)
}

// Parse decodes fixtures from YAML
func Parse(data []byte) (*Set, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("invalid mock fixtures: %w", err)
	}
	set := Empty()
	for name, fixture := range file.Services {
		if fixture.Status < 0 || fixture.Status > 999 {
			return nil, fmt.Errorf("invalid status %d in mock fixture for %s", fixture.Status, name)
		}
		set.fixtures[name] = fixture
	}
	return set, nil
}

// Response returns the override for a service, or nil when there is none
func (s *Set) Response(service string) *requester.Response {
	if s == nil {
		return nil
	}
	fixture, ok := s.fixtures[service]
	if !ok {
		return nil
	}
	headers := make(http.Header, len(fixture.Headers))
	for k, v := range fixture.Headers {
		headers.Set(k, v)
	}
	return &requester.Response{
		StatusCode:    fixture.Status,
		StatusMessage: fixture.StatusMessage,
		Headers:       headers,
		Body:          []byte(fixture.Body),
	}
}

// Option returns the invoker option applying the override for a service
func (s *Set) Option(service string) requester.Option {
	return requester.WithFixture(s.Response(service))
}
