package archive_test

import (
	"bytes"
	"context"
	"strconv"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	"github.com/carrel-app/carrel/pkg/domain/model"
	"github.com/carrel-app/carrel/pkg/domain/types"
	"github.com/carrel-app/carrel/pkg/infra/archive"
)

type zipEntry struct {
	name string
	data string
	dir  bool
}

func buildZip(t *testing.T, entries []zipEntry) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		name := e.name
		if e.dir {
			name += "/"
		}
		w, err := zw.Create(name)
		gt.NoError(t, err)
		if !e.dir {
			_, err = w.Write([]byte(e.data))
			gt.NoError(t, err)
		}
	}
	gt.NoError(t, zw.Close())
	return buf.Bytes()
}

// extract runs the worker to completion and returns the terminal event plus
// the full event sequence.
func extract(t *testing.T, data []byte) (model.ExtractEvent, []model.ExtractEvent) {
	t.Helper()

	var events []model.ExtractEvent
	for ev := range archive.New().Extract(context.Background(), data) {
		events = append(events, ev)
	}
	gt.Number(t, len(events)).Greater(0)
	return events[len(events)-1], events
}

func TestExtractor_StripsSingleWrapperFolder(t *testing.T) {
	data := buildZip(t, []zipEntry{
		{name: "mypkg", dir: true},
		{name: "mypkg/index.html", data: "<html></html>"},
		{name: "mypkg/style.css", data: "body{}"},
	})

	last, events := extract(t, data)
	gt.Equal(t, events[0].Phase, model.PhaseReading)
	gt.Equal(t, last.Phase, model.PhaseComplete)

	files := last.Files
	gt.Number(t, files.Len()).Equal(2)
	gt.True(t, files.Has("index.html"))
	gt.True(t, files.Has("style.css"))
	gt.False(t, files.Has("mypkg/index.html"))
}

func TestExtractor_RootIndexNoStrip(t *testing.T) {
	data := buildZip(t, []zipEntry{
		{name: "index.html", data: "<html></html>"},
		{name: "assets/app.js", data: "x"},
	})

	last, _ := extract(t, data)
	gt.Equal(t, last.Phase, model.PhaseComplete)
	gt.True(t, last.Files.Has("index.html"))
	gt.True(t, last.Files.Has("assets/app.js"))
}

func TestExtractor_DeepIndexNoStrip(t *testing.T) {
	// The wrapper rule only fires for an index exactly one level deep.
	data := buildZip(t, []zipEntry{
		{name: "a/b/index.html", data: "<html></html>"},
		{name: "a/b/style.css", data: "body{}"},
	})

	last, _ := extract(t, data)
	gt.Equal(t, last.Phase, model.PhaseComplete)
	gt.True(t, last.Files.Has("a/b/index.html"))
	gt.False(t, last.Files.Has("index.html"))
	gt.False(t, last.Files.Has("b/index.html"))
}

func TestExtractor_PrefixStripOnlyAffectsMatchingPaths(t *testing.T) {
	data := buildZip(t, []zipEntry{
		{name: "pkg/index.html", data: "<html></html>"},
		{name: "other/readme.txt", data: "r"},
	})

	last, _ := extract(t, data)
	gt.Equal(t, last.Phase, model.PhaseComplete)
	gt.True(t, last.Files.Has("index.html"))
	gt.True(t, last.Files.Has("other/readme.txt"))
}

func TestExtractor_DirectoryEntriesSkipped(t *testing.T) {
	data := buildZip(t, []zipEntry{
		{name: "index.html", data: "<html></html>"},
		{name: "empty", dir: true},
	})

	last, _ := extract(t, data)
	gt.Equal(t, last.Phase, model.PhaseComplete)
	gt.Number(t, last.Files.Len()).Equal(1)
}

func TestExtractor_CorruptArchive(t *testing.T) {
	last, _ := extract(t, []byte("this is not a zip archive"))

	gt.Equal(t, last.Phase, model.PhaseError)
	gt.Error(t, last.Err)
	gt.True(t, goerr.HasTag(last.Err, types.ErrTagBadArchive))
	gt.False(t, goerr.HasTag(last.Err, types.ErrTagEmptyArchive))
}

func TestExtractor_EmptyArchiveDistinctFromCorrupt(t *testing.T) {
	data := buildZip(t, nil)

	last, _ := extract(t, data)
	gt.Equal(t, last.Phase, model.PhaseError)
	gt.True(t, goerr.HasTag(last.Err, types.ErrTagEmptyArchive))
	gt.False(t, goerr.HasTag(last.Err, types.ErrTagBadArchive))
}

func TestExtractor_ProgressEvents(t *testing.T) {
	entries := make([]zipEntry, 0, 120)
	entries = append(entries, zipEntry{name: "index.html", data: "<html></html>"})
	for i := 0; i < 119; i++ {
		entries = append(entries, zipEntry{
			name: "assets/f" + string(rune('a'+i%26)) + "/" + strconv.Itoa(i) + ".txt",
			data: "x",
		})
	}
	data := buildZip(t, entries)

	last, events := extract(t, data)
	gt.Equal(t, last.Phase, model.PhaseComplete)
	gt.Number(t, last.Files.Len()).Equal(120)

	var progress []model.ExtractEvent
	for _, ev := range events {
		if ev.Phase == model.PhaseProgress {
			progress = append(progress, ev)
		}
	}
	gt.Number(t, len(progress)).Greater(0)
	for _, ev := range progress {
		gt.Number(t, ev.Total).Equal(120)
		gt.Number(t, ev.Processed).Greater(0)
	}
}

func TestExtractor_BackslashNamesNormalized(t *testing.T) {
	data := buildZip(t, []zipEntry{
		{name: "index.html", data: "<html></html>"},
		{name: `sub\page.html`, data: "<html></html>"},
	})

	last, _ := extract(t, data)
	gt.Equal(t, last.Phase, model.PhaseComplete)
	gt.True(t, last.Files.Has("sub/page.html"))
}

func TestExtractor_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	data := buildZip(t, []zipEntry{{name: "index.html", data: "x"}})

	var sawTerminal bool
	for ev := range archive.New().Extract(ctx, data) {
		if ev.Phase == model.PhaseComplete || ev.Phase == model.PhaseError {
			sawTerminal = true
		}
	}
	// The worker may stop before emitting a terminal event; either way the
	// channel closes and nothing leaks.
	_ = sawTerminal
}
