package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func get(t *testing.T, server *httptest.Server, path string) (string, string) {
	t.Helper()
	resp, err := http.Get(server.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body), resp.Header.Get("Content-Type")
}

func TestRoutes(t *testing.T) {
	server := httptest.NewServer(newMux())
	defer server.Close()

	payload := url.QueryEscape("<svg onload=alert(1)>")

	body, ctype := get(t, server, "/?q="+payload)
	assert.Equal(t, "text/html", ctype)
	assert.Contains(t, body, "<svg onload=alert(1)>")

	body, _ = get(t, server, "/safe?q="+payload)
	assert.Contains(t, body, "&lt;svg onload=alert(1)&gt;")

	body, _ = get(t, server, "/sink")
	assert.Contains(t, body, `<main id="app">`)

	body, ctype = get(t, server, "/purify.js")
	assert.Equal(t, "application/javascript", ctype)
	assert.Contains(t, body, "window.DOMPurify")
}
