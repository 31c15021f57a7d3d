package constants

import "strings"

// FileFormat is the extraction branch an upload is routed to.
type FileFormat string

const (
	SPREADSHEET FileFormat = "SPREADSHEET"
	PDF         FileFormat = "PDF"
	IMAGE       FileFormat = "IMAGE"
	UNKNOWN     FileFormat = "UNKNOWN"
)

// AllowedExtensions holds the upload extensions the marksheet extractor accepts.
var AllowedExtensions = map[string]FileFormat{
	"xls":  SPREADSHEET,
	"xlsx": SPREADSHEET,
	"xlsm": SPREADSHEET,
	"csv":  SPREADSHEET,
	"pdf":  PDF,
	"png":  IMAGE,
	"jpg":  IMAGE,
	"jpeg": IMAGE,
	"gif":  IMAGE,
	"bmp":  IMAGE,
	"tif":  IMAGE,
	"tiff": IMAGE,
	"webp": IMAGE,
}

// CorpusExtensions are the document types the index builder reads.
var CorpusExtensions = map[string]struct{}{
	"txt": {},
	"md":  {},
	"pdf": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

// MapExtToFormat returns the format for an extension (with or without the dot).
func MapExtToFormat(ext string) FileFormat {
	if f, ok := AllowedExtensions[NormalizeExt(ext)]; ok {
		return f
	}
	return UNKNOWN
}
