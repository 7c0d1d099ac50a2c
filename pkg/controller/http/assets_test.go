package http_test

import (
	"net/http"
	"testing"

	"github.com/m-mizutani/gt"
)

func TestAssets_RootServesShell(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, body := get(t, ts.URL+"/")
	gt.Number(t, resp.StatusCode).Equal(http.StatusOK)
	gt.String(t, resp.Header.Get("Content-Type")).Contains("text/html")
	gt.Equal(t, resp.Header.Get("Cache-Control"), "no-cache")
	gt.String(t, body).Contains("<html")
}

func TestAssets_LocalesRevalidated(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, body := get(t, ts.URL+"/locales/en.json")
	gt.Number(t, resp.StatusCode).Equal(http.StatusOK)
	gt.Equal(t, resp.Header.Get("Cache-Control"), "no-cache")
	gt.String(t, resp.Header.Get("Content-Type")).Contains("application/json")
	gt.String(t, body).Contains("{")
}

func TestAssets_StaticImmutableWithETag(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, _ := get(t, ts.URL+"/app.js")
	gt.Number(t, resp.StatusCode).Equal(http.StatusOK)
	gt.Equal(t, resp.Header.Get("Cache-Control"), "public, max-age=31536000, immutable")

	etag := resp.Header.Get("ETag")
	gt.Value(t, etag).NotEqual("")

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/app.js", nil)
	gt.NoError(t, err)
	req.Header.Set("If-None-Match", etag)
	resp2, err := http.DefaultClient.Do(req)
	gt.NoError(t, err)
	gt.NoError(t, resp2.Body.Close())
	gt.Number(t, resp2.StatusCode).Equal(http.StatusNotModified)
}

func TestAssets_NavigationFallsBackToShell(t *testing.T) {
	ts, _ := newTestServer(t)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/settings/deep-link", nil)
	gt.NoError(t, err)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	resp, err := http.DefaultClient.Do(req)
	gt.NoError(t, err)
	defer resp.Body.Close()

	gt.Number(t, resp.StatusCode).Equal(http.StatusOK)
	gt.String(t, resp.Header.Get("Content-Type")).Contains("text/html")
}

func TestAssets_NonNavigationMiss404(t *testing.T) {
	ts, _ := newTestServer(t)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/no-such-asset.js", nil)
	gt.NoError(t, err)
	req.Header.Set("Accept", "*/*")
	resp, err := http.DefaultClient.Do(req)
	gt.NoError(t, err)
	gt.NoError(t, resp.Body.Close())

	gt.Number(t, resp.StatusCode).Equal(http.StatusNotFound)
}

func TestHealth(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, _ := get(t, ts.URL+"/health")
	gt.Number(t, resp.StatusCode).Equal(http.StatusOK)
}
