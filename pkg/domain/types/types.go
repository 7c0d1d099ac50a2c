package types

// Version is the application version. Overwritten via -ldflags at release
// build time; also reported by the status API and used as the cache key for
// the embedded UI assets.
var Version = "0.1.0"

// ServiceName is used in health responses and log output.
const ServiceName = "carrel"
