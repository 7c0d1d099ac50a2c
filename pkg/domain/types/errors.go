package types

import "github.com/m-mizutani/goerr/v2"

// Error tags classify failures across layers. The HTTP controller maps them
// to response codes; callers use them to tell recoverable conditions apart.
var (
	// ErrTagNotReady marks lookups against a store with no package loaded.
	ErrTagNotReady = goerr.NewTag("not_ready")

	// ErrTagNotFound marks a path that does not resolve inside the loaded package.
	ErrTagNotFound = goerr.NewTag("not_found")

	// ErrTagBadArchive marks bytes that are not a parseable archive.
	ErrTagBadArchive = goerr.NewTag("bad_archive")

	// ErrTagEmptyArchive marks an archive that parses but contains no files.
	ErrTagEmptyArchive = goerr.NewTag("empty_archive")

	// ErrTagQuotaExceeded marks a persistence write rejected for size reasons.
	// Content stays servable in memory; it just won't survive a restart.
	ErrTagQuotaExceeded = goerr.NewTag("quota_exceeded")
)
