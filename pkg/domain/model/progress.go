package model

// ExtractPhase identifies a stage of archive extraction.
type ExtractPhase string

const (
	// PhaseReading is emitted once, before the archive is parsed.
	PhaseReading ExtractPhase = "reading"
	// PhaseProgress is emitted periodically while entries are decoded.
	PhaseProgress ExtractPhase = "progress"
	// PhaseComplete carries the final file map.
	PhaseComplete ExtractPhase = "complete"
	// PhaseError carries the failure that aborted extraction.
	PhaseError ExtractPhase = "error"
)

// ExtractEvent is one message from the extraction worker. Exactly one of
// Files (PhaseComplete) or Err (PhaseError) is set, and either phase is the
// last event on the channel.
type ExtractEvent struct {
	Phase     ExtractPhase
	Processed int
	Total     int
	Files     *FileMap
	Err       error
}
