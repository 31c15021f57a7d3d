package ingest

import (
	"path/filepath"
	"strings"

	"github.com/Khalidfayaz/kidscope-backend/constants"
)

// AllowedExt checks if a file extension is a corpus document type.
func AllowedExt(ext string) bool {
	_, ok := constants.CorpusExtensions[constants.NormalizeExt(ext)]
	return ok
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return base != "." && strings.HasPrefix(base, ".")
}
