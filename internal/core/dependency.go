package core

import (
	"encoding/json"
	"fmt"
)

type Status int

const (
	StatusResolved Status = iota
	StatusMissing
)

func (s Status) String() string {
	switch s {
	case StatusResolved:
		return "resolved"
	case StatusMissing:
		return "missing"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	switch str {
	case "resolved":
		*s = StatusResolved
	case "missing":
		*s = StatusMissing
	default:
		return fmt.Errorf("unknown dependency status %q", str)
	}
	return nil
}

// Dependency is a file that contributed, or tried to contribute, to a render.
type Dependency struct {
	Path   string `json:"path"`
	Status Status `json:"status"`
}

func Resolved(path string) Dependency {
	return Dependency{Path: path, Status: StatusResolved}
}

func Missing(path string) Dependency {
	return Dependency{Path: path, Status: StatusMissing}
}

type Binary struct {
	Name string `json:"name"`
	Data []byte `json:"data"`
}

func (b Binary) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name string `json:"name"`
		Data string `json:"data"`
	}{b.Name, string(b.Data)})
}

type ResultError struct {
	File    string `json:"file"`
	Message string `json:"message"`
}

type Result struct {
	Binaries     []Binary     `json:"binaries"`
	Dependencies []Dependency `json:"dependencies"`
	Error        *ResultError `json:"error,omitempty"`
}

func NewResult() *Result {
	return &Result{
		Binaries:     make([]Binary, 0),
		Dependencies: make([]Dependency, 0),
	}
}

func CountByStatus(deps []Dependency) (resolved, missing int) {
	for _, dep := range deps {
		if dep.Status == StatusMissing {
			missing++
		} else {
			resolved++
		}
	}
	return resolved, missing
}
