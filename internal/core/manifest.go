package core

import (
	"encoding/json"
	"time"
)

type ManifestEntry struct {
	Output       string       `json:"output"`
	Binaries     []string     `json:"binaries,omitempty"`
	Dependencies []Dependency `json:"dependencies"`
	BuiltAt      time.Time    `json:"builtAt"`
}

// Manifest records, per entry stylesheet, what the last build produced and
// which files it depended on.
type Manifest struct {
	Entries map[string]ManifestEntry `json:"entries"`
}

func NewManifest() *Manifest {
	return &Manifest{Entries: make(map[string]ManifestEntry)}
}

func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	if m.Entries == nil {
		m.Entries = make(map[string]ManifestEntry)
	}
	return &m, nil
}

func (m *Manifest) Marshal() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

type FileStamp struct {
	Exists  bool
	ModTime time.Time
}

// IsStale decides whether an entry must be rebuilt. stat reports the current
// state of a path on disk.
func IsStale(entry ManifestEntry, stat func(path string) FileStamp) bool {
	out := stat(entry.Output)
	if !out.Exists {
		return true
	}
	for _, name := range entry.Binaries {
		if !stat(name).Exists {
			return true
		}
	}
	for _, dep := range entry.Dependencies {
		st := stat(dep.Path)
		switch dep.Status {
		case StatusMissing:
			if st.Exists {
				return true
			}
		default:
			if !st.Exists || st.ModTime.After(out.ModTime) {
				return true
			}
		}
	}
	return false
}
