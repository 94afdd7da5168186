package cli

import (
	"path/filepath"
	"strings"
)

// OutputPath resolves where a search's hit table is written. An empty "to"
// picks the default location next to the input file; a "to" starting with
// "." replaces only the suffix of the default path; anything else is used
// verbatim.
func OutputPath(searchKey, inputPath, to, suffix string) string {
	if to == "" {
		return defaultOutputPath(searchKey, inputPath, suffix)
	}
	if strings.HasPrefix(to, ".") {
		def := defaultOutputPath(searchKey, inputPath, suffix)
		return strings.TrimSuffix(def, filepath.Ext(def)) + to
	}
	return to
}

// defaultOutputPath is <input dir>/<input stem>-output/<search key><suffix>.
func defaultOutputPath(searchKey, inputPath, suffix string) string {
	stem := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	parent := filepath.Join(filepath.Dir(inputPath), stem+"-output")
	return filepath.Join(parent, sanitizeNode(searchKey+suffix))
}

// sanitizeNode makes a search key safe to use as a file name.
func sanitizeNode(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		if r < 0x20 {
			return '_'
		}
		return r
	}, name)
}
