package archive

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/klauspost/compress/zip"
	"github.com/m-mizutani/goerr/v2"

	"github.com/carrel-app/carrel/pkg/domain/model"
	"github.com/carrel-app/carrel/pkg/domain/types"
)

// progressInterval is the number of decoded entries between progress events.
const progressInterval = 50

// Extractor decodes ZIP package archives into a FileMap. Decoding runs on a
// dedicated goroutine so a large archive never blocks the caller; events
// stream over the returned channel.
type Extractor struct{}

// New creates an Extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract parses archive bytes and emits ExtractEvents: PhaseReading once,
// PhaseProgress periodically, then exactly one of PhaseComplete (with the
// file map) or PhaseError. The channel is closed afterwards. Cancelling ctx
// stops the worker and closes the channel without a terminal event.
func (x *Extractor) Extract(ctx context.Context, data []byte) <-chan model.ExtractEvent {
	ch := make(chan model.ExtractEvent)

	go func() {
		defer close(ch)

		emit := func(ev model.ExtractEvent) bool {
			select {
			case ch <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !emit(model.ExtractEvent{Phase: model.PhaseReading}) {
			return
		}

		zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			emit(model.ExtractEvent{
				Phase: model.PhaseError,
				Err: goerr.Wrap(err, "not a valid package archive",
					goerr.T(types.ErrTagBadArchive),
				),
			})
			return
		}

		total := 0
		for _, f := range zr.File {
			if !f.FileInfo().IsDir() {
				total++
			}
		}
		if total == 0 {
			emit(model.ExtractEvent{
				Phase: model.PhaseError,
				Err: goerr.New("archive contains no files",
					goerr.T(types.ErrTagEmptyArchive),
				),
			})
			return
		}

		files := model.NewFileMap()
		processed := 0
		for _, f := range zr.File {
			if f.FileInfo().IsDir() {
				continue
			}

			content, err := readEntry(f)
			if err != nil {
				emit(model.ExtractEvent{
					Phase: model.PhaseError,
					Err: goerr.Wrap(err, "failed to decode archive entry",
						goerr.T(types.ErrTagBadArchive),
						goerr.V("entry", f.Name),
					),
				})
				return
			}

			files.Set(normalizeName(f.Name), content)

			processed++
			if processed%progressInterval == 0 {
				if !emit(model.ExtractEvent{
					Phase:     model.PhaseProgress,
					Processed: processed,
					Total:     total,
				}) {
					return
				}
			}
		}

		emit(model.ExtractEvent{
			Phase: model.PhaseComplete,
			Files: stripCommonPrefix(files),
		})
	}()

	return ch
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// normalizeName converts an archive entry name to a normalized relative
// path: forward slashes, no leading slash.
func normalizeName(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	return strings.TrimPrefix(name, "/")
}

// stripCommonPrefix removes a single wrapper folder: when the entry HTML
// document sits exactly one level deep ("mypkg/index.html"), the first
// segment of its path is stripped from every path that starts with it. The
// one-level-only threshold is deliberate; an index nested two or more levels
// deep never triggers stripping.
func stripCommonPrefix(files *model.FileMap) *model.FileMap {
	var indexPath string
	for _, p := range files.Paths() {
		if p == "index.html" || strings.HasSuffix(p, "/index.html") {
			indexPath = p
			break
		}
	}
	if indexPath == "" || strings.Count(indexPath, "/") != 1 {
		return files
	}

	prefix := indexPath[:strings.Index(indexPath, "/")+1]

	stripped := model.NewFileMap()
	for _, p := range files.Paths() {
		data, _ := files.Get(p)
		stripped.Set(strings.TrimPrefix(p, prefix), data)
	}
	return stripped
}
