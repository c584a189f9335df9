package core

import (
	"path/filepath"
	"strings"
)

const (
	DefaultOutputName = "index.css"
	SourceMapSuffix   = ".map"
	DefaultExtension  = ".scss"
	PartialPrefix     = "_"
)

func OutputName(output string) string {
	if output == "" {
		return DefaultOutputName
	}
	return output
}

func SourceMapName(output string) string {
	return output + SourceMapSuffix
}

// OutputNameForEntry maps an entry stylesheet to its artifact name inside outDir.
func OutputNameForEntry(entry string, outDir string) string {
	name := filepath.Base(entry)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	if name == "" || name == "." {
		name = strings.TrimSuffix(DefaultOutputName, ".css")
	}
	return filepath.Join(outDir, name+".css")
}

func IsPartial(path string) bool {
	return strings.HasPrefix(filepath.Base(path), PartialPrefix)
}

func PartialName(path string) string {
	return filepath.Join(filepath.Dir(path), PartialPrefix+filepath.Base(path))
}
