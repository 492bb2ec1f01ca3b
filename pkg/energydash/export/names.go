package export

import (
	"strings"
	"unicode/utf8"

	"github.com/energyconsortium/energydash-go/pkg/energydash/models"
)

// DefaultSheetName is used when a sheet name sanitizes to nothing.
const DefaultSheetName = "Sheet1"

// maxSheetNameLen is Excel's limit on sheet name length.
const maxSheetNameLen = 31

// FileName builds the download name of a logical export name, an optional
// variant suffix and the format extension, e.g. renewable_map_2022.png.
func FileName(logical, variant string, format models.ExportFormat) string {
	name := logical
	if variant != "" {
		name += "_" + variant
	}
	return WithExtension(name, format)
}

// WithExtension sanitizes name and makes sure it ends with the extension of
// format.
func WithExtension(name string, format models.ExportFormat) string {
	name = SanitizeFileName(name)
	ext := format.Extension()
	if strings.HasSuffix(strings.ToLower(name), ext) {
		return name
	}
	return name + ext
}

// SanitizeFileName replaces path separators and characters that are invalid
// in file names on common platforms.
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		if r < 0x20 {
			return -1
		}
		return r
	}, name)
	name = strings.Trim(name, ". ")
	if name == "" {
		return "export"
	}
	return name
}

// SanitizeSheetName applies Excel's sheet name rules: at most 31 characters,
// none of : \ / ? * [ ], and no leading or trailing apostrophe.
func SanitizeSheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	name = strings.Trim(name, "'")
	if utf8.RuneCountInString(name) > maxSheetNameLen {
		name = string([]rune(name)[:maxSheetNameLen])
	}
	if strings.TrimSpace(name) == "" {
		return DefaultSheetName
	}
	return name
}
