package usecase_test

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/carrel-app/carrel/pkg/domain/model"
	"github.com/carrel-app/carrel/pkg/usecase"
)

func buildFileMap(paths ...string) *model.FileMap {
	m := model.NewFileMap()
	for _, p := range paths {
		m.Set(p, []byte(p))
	}
	return m
}

func TestResolve(t *testing.T) {
	files := buildFileMap(
		"index.html",
		"Style/Main.css",
		"foo/index.html",
		"media/clip.mp4",
	)

	tests := []struct {
		name    string
		path    string
		wantKey string
		wantOK  bool
	}{
		{
			name:    "exact match",
			path:    "index.html",
			wantKey: "index.html",
			wantOK:  true,
		},
		{
			name:    "directory without trailing slash",
			path:    "foo",
			wantKey: "foo/index.html",
			wantOK:  true,
		},
		{
			name:    "directory with trailing slash",
			path:    "foo/",
			wantKey: "foo/index.html",
			wantOK:  true,
		},
		{
			name:    "case-insensitive fallback",
			path:    "style/main.css",
			wantKey: "Style/Main.css",
			wantOK:  true,
		},
		{
			name:   "missing path",
			path:   "missing.png",
			wantOK: false,
		},
		{
			name:   "missing directory",
			path:   "bar/",
			wantOK: false,
		},
		{
			name:   "path with extension gets no index fallback",
			path:   "foo.html",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, ok := usecase.Resolve(tt.path, files)
			gt.Equal(t, ok, tt.wantOK)
			if tt.wantOK {
				gt.Equal(t, key, tt.wantKey)
			}
		})
	}
}

func TestResolve_ExactBeatsIndexFallback(t *testing.T) {
	// "foo" stored literally wins over "foo/index.html".
	files := buildFileMap("foo", "foo/index.html")

	key, ok := usecase.Resolve("foo", files)
	gt.True(t, ok)
	gt.Equal(t, key, "foo")
}

func TestResolve_CaseInsensitiveFirstMatchWins(t *testing.T) {
	// Two keys differing only by case: first in entry order wins.
	files := buildFileMap("Readme.TXT", "readme.txt")

	key, ok := usecase.Resolve("README.txt", files)
	gt.True(t, ok)
	gt.Equal(t, key, "Readme.TXT")
}

func TestResolve_NilFiles(t *testing.T) {
	_, ok := usecase.Resolve("index.html", nil)
	gt.False(t, ok)
}
