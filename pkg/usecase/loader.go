package usecase

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/carrel-app/carrel/pkg/domain/interfaces"
	"github.com/carrel-app/carrel/pkg/domain/model"
)

// Loader runs the extract-then-install pipeline: archive bytes go to the
// extraction worker, progress is logged as it streams in, and only a fully
// successful extraction reaches the content store. A failed extraction never
// installs a partial set.
type Loader struct {
	extractor interfaces.Extractor
	content   interfaces.ContentStore
}

// NewLoader creates a package loader.
func NewLoader(extractor interfaces.Extractor, content interfaces.ContentStore) *Loader {
	return &Loader{
		extractor: extractor,
		content:   content,
	}
}

// Load extracts the archive and installs the resulting file map, replacing
// any live set. The replacement is a single atomic swap inside the store, so
// no separate clear step is needed (or wanted: a clear between extract and
// install would open a window where nothing is served).
func (l *Loader) Load(ctx context.Context, data []byte, opts model.ContentOptions) (*model.InstallResult, error) {
	logger := ctxlog.From(ctx)

	var files *model.FileMap
	for ev := range l.extractor.Extract(ctx, data) {
		switch ev.Phase {
		case model.PhaseReading:
			logger.Debug("reading archive", "size_bytes", len(data))
		case model.PhaseProgress:
			logger.Debug("extracting package",
				"processed", ev.Processed,
				"total", ev.Total,
			)
		case model.PhaseError:
			return nil, goerr.Wrap(ev.Err, "failed to extract package")
		case model.PhaseComplete:
			files = ev.Files
		}
	}

	if files == nil {
		// Channel closed without a terminal event: the context was cancelled.
		if err := ctx.Err(); err != nil {
			return nil, goerr.Wrap(err, "extraction interrupted")
		}
		return nil, goerr.New("extraction finished without a result")
	}

	return l.content.Install(ctx, files, opts)
}
