package constants

import "strings"

// Output types understood by the extraction service.
const (
	OutputTypeFinancialMarkdown = "markdown-financial-docs" // generic tabular rendering, used for schema discovery
	OutputTypeSpecifiedFields   = "specified-fields"        // targeted extraction of the discovered fields
)

// DefaultModel is the model selector sent with every extraction request.
const DefaultModel = "openai"

const PDFMimeType = "application/pdf"

// Chunk size bounds, in pages per chunk (anchor page excluded).
const (
	MinChunkSize     = 2
	MaxChunkSize     = 12
	DefaultChunkSize = 4
)

// AllowedExtensions holds the file extensions accepted as statements.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsAllowedExt reports whether ext names a supported statement file.
func IsAllowedExt(ext string) bool {
	_, ok := AllowedExtensions[NormalizeExt(ext)]
	return ok
}

// ClampChunkSize bounds n to [MinChunkSize, MaxChunkSize]; zero selects the default.
func ClampChunkSize(n int) int {
	switch {
	case n == 0:
		return DefaultChunkSize
	case n < MinChunkSize:
		return MinChunkSize
	case n > MaxChunkSize:
		return MaxChunkSize
	}
	return n
}
