package core

import (
	"strings"
)

const DefaultMarkerSentinel = "sassbuild:"

const (
	regionStart = "region"
	regionEnd   = "endregion"
)

type MarkerKind int

const (
	MarkerStart MarkerKind = iota
	MarkerEnd
)

type Marker struct {
	Kind MarkerKind
	Path string
}

// MarkerFormat renders and recognises region markers. Markers are loud
// comments so compressed output styles keep them until rebase strips them.
type MarkerFormat struct {
	Sentinel string
}

func NewMarkerFormat(sentinel string) MarkerFormat {
	if sentinel == "" {
		sentinel = DefaultMarkerSentinel
	}
	return MarkerFormat{Sentinel: sentinel}
}

func (f MarkerFormat) sentinel() string {
	if f.Sentinel == "" {
		return DefaultMarkerSentinel
	}
	return f.Sentinel
}

func (f MarkerFormat) Start(path string) string {
	return "/*! " + regionStart + " " + f.sentinel() + " " + path + " */"
}

func (f MarkerFormat) End(path string) string {
	return "/*! " + regionEnd + " " + f.sentinel() + " " + path + " */"
}

// Wrap surrounds contents with a marker pair on their own lines.
func (f MarkerFormat) Wrap(path, contents string) string {
	var sb strings.Builder
	sb.Grow(len(contents) + 2*len(path) + 64)
	sb.WriteString(f.Start(path))
	sb.WriteByte('\n')
	sb.WriteString(contents)
	sb.WriteByte('\n')
	sb.WriteString(f.End(path))
	sb.WriteByte('\n')
	return sb.String()
}

// Parse recognises a complete comment token as a marker.
func (f MarkerFormat) Parse(comment []byte) (Marker, bool) {
	text := string(comment)
	if !strings.HasPrefix(text, "/*") || !strings.HasSuffix(text, "*/") || len(text) < 4 {
		return Marker{}, false
	}
	body := strings.TrimSpace(text[2 : len(text)-2])
	body = strings.TrimSpace(strings.TrimPrefix(body, "!"))

	keyword, rest, ok := strings.Cut(body, " ")
	if !ok {
		return Marker{}, false
	}

	var kind MarkerKind
	switch keyword {
	case regionStart:
		kind = MarkerStart
	case regionEnd:
		kind = MarkerEnd
	default:
		return Marker{}, false
	}

	rest = strings.TrimSpace(rest)
	path, ok := strings.CutPrefix(rest, f.sentinel())
	if !ok {
		return Marker{}, false
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return Marker{}, false
	}
	return Marker{Kind: kind, Path: path}, true
}

func (f MarkerFormat) Contains(text []byte) bool {
	return strings.Contains(string(text), " "+f.sentinel()+" ")
}
