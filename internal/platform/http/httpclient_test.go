package http

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHTTPClient(t *testing.T) {
	t.Parallel()

	c, err := NewHTTPClient(7*time.Second, "")
	require.NoError(t, err)
	assert.Equal(t, 7*time.Second, c.Timeout)

	tr, ok := c.Transport.(*http.Transport)
	require.True(t, ok)
	assert.Equal(t, 100, tr.MaxIdleConns)
}

func TestNewHTTPClient_Proxy(t *testing.T) {
	t.Parallel()

	c, err := NewHTTPClient(time.Second, "http://127.0.0.1:7890")
	require.NoError(t, err)

	tr := c.Transport.(*http.Transport)
	req := &http.Request{URL: &url.URL{Scheme: "https", Host: "query1.finance.yahoo.com"}}
	p, err := tr.Proxy(req)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:7890", p.Host)

	_, err = NewHTTPClient(time.Second, "not a url")
	assert.Error(t, err)
}
