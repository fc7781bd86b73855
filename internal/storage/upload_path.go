package storage

import (
	"fmt"
	"mime"
	"path"
	"strings"
	"time"
	"unicode"
)

const uploadCategory = "requests"

// buildUploadKey derives the storage key for an uploaded file:
// requests/{unix-millis}_{sanitized-original-name}. The timestamp prefix
// keeps concurrent uploads of identically named files apart.
func buildUploadKey(filename string) string {
	name := sanitizeFilename(filename)
	if name == "" {
		name = "upload.bin"
	}
	return path.Join(uploadCategory, fmt.Sprintf("%d_%s", time.Now().UnixMilli(), name))
}

// sanitizeFilename collapses whitespace to underscores and strips path
// separators and control characters, keeping the extension intact.
func sanitizeFilename(value string) string {
	base := path.Base(strings.ReplaceAll(strings.TrimSpace(value), "\\", "/"))
	if base == "." || base == ".." {
		return ""
	}
	var builder strings.Builder
	builder.Grow(len(base))
	for _, r := range base {
		switch {
		case unicode.IsSpace(r):
			builder.WriteByte('_')
		case r < 0x20 || r == '/' || r == '\\':
			// drop
		default:
			builder.WriteRune(r)
		}
	}
	return strings.Trim(builder.String(), "._")
}

func detectContentType(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if ext == "" {
		return "application/octet-stream"
	}
	typeName := mime.TypeByExtension(ext)
	if typeName == "" {
		return "application/octet-stream"
	}
	return typeName
}

func joinPrefix(prefix, key string) string {
	cleanPrefix := trimPrefix(prefix)
	if cleanPrefix == "" {
		return strings.TrimLeft(key, "/")
	}
	return path.Join(cleanPrefix, strings.TrimLeft(key, "/"))
}

func trimPrefix(prefix string) string {
	return strings.Trim(strings.TrimSpace(prefix), "/")
}
