package fetch_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/carrel-app/carrel/pkg/infra/fetch"
)

func TestClient_Fetch(t *testing.T) {
	payload := []byte("PK\x03\x04 pretend archive")
	var gotAuth string

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write(payload)
	}))
	defer ts.Close()

	client := fetch.New(fetch.WithAuthHeader("Bearer token"))
	data, err := client.Fetch(context.Background(), ts.URL+"/pkg.zip")
	gt.NoError(t, err)
	gt.Equal(t, data, payload)
	gt.Equal(t, gotAuth, "Bearer token")
}

func TestClient_FetchErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer ts.Close()

	_, err := fetch.New().Fetch(context.Background(), ts.URL+"/gone.zip")
	gt.Error(t, err)
}

func TestClient_FetchTooLarge(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(make([]byte, 2048))
	}))
	defer ts.Close()

	_, err := fetch.New(fetch.WithMaxSize(1024)).Fetch(context.Background(), ts.URL+"/big.zip")
	gt.Error(t, err)
}

func TestClient_FetchRejectsNonHTTP(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{name: "file scheme", url: "file:///etc/passwd"},
		{name: "ftp scheme", url: "ftp://example.com/pkg.zip"},
		{name: "garbage", url: "::not a url::"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fetch.New().Fetch(context.Background(), tt.url)
			gt.Error(t, err)
		})
	}
}
