package httpclient

import (
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearProxyEnv(t *testing.T) {
	t.Helper()
	for _, name := range ProxyEnvironmentVariables {
		t.Setenv(name, "")
	}
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestNew_NoProxy(t *testing.T) {
	clearProxyEnv(t)

	client := New(5*time.Second, quietLogger())
	assert.Equal(t, 5*time.Second, client.Timeout)

	transport, ok := client.Transport.(*http.Transport)
	require.True(t, ok)
	assert.NotNil(t, transport)
}

func TestNew_WithProxy(t *testing.T) {
	clearProxyEnv(t)
	t.Setenv("HTTPS_PROXY", "http://user:pw@proxy.internal:3128")

	client := New(time.Second, quietLogger())
	transport, ok := client.Transport.(*http.Transport)
	require.True(t, ok)

	req, err := http.NewRequest(http.MethodGet, "https://sheets.googleapis.com/v4/spreadsheets/x", nil)
	require.NoError(t, err)
	proxy, err := transport.Proxy(req)
	require.NoError(t, err)
	assert.Equal(t, "proxy.internal:3128", proxy.Host)
}

func TestGetProxyURL_Precedence(t *testing.T) {
	clearProxyEnv(t)
	t.Setenv("HTTP_PROXY", "http://second:1")
	t.Setenv("HTTPS_PROXY", "$HTTPS_PROXY")
	assert.Equal(t, "http://second:1", getProxyURL())
}

func TestRedactProxyCredentials(t *testing.T) {
	redacted := redactProxyCredentials("http://u:p@proxy:8080")
	assert.NotContains(t, redacted, "u:p@")
	assert.Contains(t, redacted, "@proxy:8080")
	assert.Equal(t, "http://proxy:8080", redactProxyCredentials("http://proxy:8080"))
}
