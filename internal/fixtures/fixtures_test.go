package fixtures

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
services:
  user.info:
    status: 404
    status_message: Not Found
    body: '{}'
  pwakit.http.service:
    status: 200
    headers:
      Content-Type: text/html
    body: <div>fixture</div>
`

func TestParse(t *testing.T) {
	set, err := Parse([]byte(sample))
	require.NoError(t, err)

	user := set.Response("user.info")
	require.NotNil(t, user)
	assert.Equal(t, 404, user.StatusCode)
	assert.Equal(t, "Not Found", user.StatusMessage)
	assert.Equal(t, "{}", string(user.Body))

	page := set.Response("pwakit.http.service")
	require.NotNil(t, page)
	assert.Equal(t, "text/html", page.Headers.Get("Content-Type"))
	assert.Equal(t, "<div>fixture</div>", string(page.Body))

	assert.Nil(t, set.Response("unknown"))
}

func TestParse_InvalidStatus(t *testing.T) {
	_, err := Parse([]byte("services:\n  user.info:\n    status: 1200\n"))
	assert.Error(t, err)
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("services: ["))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	t.Run("Empty path", func(t *testing.T) {
		set, err := Load("")
		require.NoError(t, err)
		assert.Nil(t, set.Response("user.info"))
	})

	t.Run("Missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--mock-fixtures")
	})

	t.Run("File", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "fixtures.yaml")
		require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

		set, err := Load(path)
		require.NoError(t, err)
		assert.NotNil(t, set.Response("user.info"))
	})
}

func TestResponse_NilSet(t *testing.T) {
	var set *Set
	assert.Nil(t, set.Response("user.info"))
}
