package model

// FileMap holds extracted package files keyed by normalized relative path
// (forward-slash separated, no leading slash). Entry order is preserved so
// that the case-insensitive lookup fallback is deterministic: first match in
// archive order wins.
type FileMap struct {
	entries map[string][]byte
	order   []string
}

// NewFileMap returns an empty FileMap.
func NewFileMap() *FileMap {
	return &FileMap{entries: map[string][]byte{}}
}

// Set stores data under path. Writing an existing path replaces its content
// but keeps its original position (last write wins on collision).
func (m *FileMap) Set(path string, data []byte) {
	if _, ok := m.entries[path]; !ok {
		m.order = append(m.order, path)
	}
	m.entries[path] = data
}

// Get returns the content stored under path.
func (m *FileMap) Get(path string) ([]byte, bool) {
	data, ok := m.entries[path]
	return data, ok
}

// Has reports whether path is stored.
func (m *FileMap) Has(path string) bool {
	_, ok := m.entries[path]
	return ok
}

// Len returns the number of stored files.
func (m *FileMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// Paths returns all stored paths in insertion order. The returned slice is
// shared; callers must not mutate it.
func (m *FileMap) Paths() []string {
	if m == nil {
		return nil
	}
	return m.order
}

// ContentSet is the single installed, addressable set of package files.
type ContentSet struct {
	ID    string // assigned at install time
	Files *FileMap
}

// FileCount returns the number of files in the set.
func (s *ContentSet) FileCount() int {
	if s == nil {
		return 0
	}
	return s.Files.Len()
}

// ContentOptions configures how the loaded package is served.
type ContentOptions struct {
	OpenExternalLinksInNewWindow bool `json:"openExternalLinksInNewWindow"`
}

// DefaultContentOptions returns the options applied when a package is loaded
// without explicit settings, or when persisted options are absent.
func DefaultContentOptions() ContentOptions {
	return ContentOptions{OpenExternalLinksInNewWindow: true}
}

// File is a resolved lookup result. Path is the stored key the request
// resolved to, which may differ from the requested path (index fallback,
// case-insensitive match).
type File struct {
	Path string
	Data []byte
}

// Status describes the serving state of the content store.
type Status struct {
	Ready     bool   `json:"ready"`
	FileCount int    `json:"fileCount"`
	Version   string `json:"version"`
}

// InstallResult reports the outcome of installing a package. StorageError is
// non-nil when the in-memory install succeeded but persisting it did not;
// content is servable for this run either way.
type InstallResult struct {
	ID           string
	FileCount    int
	StorageError error
}
