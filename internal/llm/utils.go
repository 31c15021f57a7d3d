package llm

import (
	"encoding/base64"
	"strings"
)

// DataURL encodes an image as a base64 data URL for vision requests.
func DataURL(img ImageInput) string {
	mt := strings.TrimSpace(img.MIMEType)
	if mt == "" {
		mt = "image/png"
	}
	return "data:" + mt + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}

// ImageFormat returns the subtype of an image MIME type ("image/png" -> "png").
func ImageFormat(mimeType string) string {
	if _, sub, ok := strings.Cut(mimeType, "/"); ok && sub != "" {
		return sub
	}
	return "png"
}
