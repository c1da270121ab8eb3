// Package toolkit wraps the pdftk command-line toolkit. It runs the binary,
// parses its line-oriented dumps into typed records, and reads form-field
// geometry the toolkit does not report.
package toolkit

import (
	"regexp"
	"strconv"
	"strings"
)

// FormField is one AcroForm field as reported by dump_data_fields.
type FormField struct {
	Name    string   `json:"name"`
	Type    string   `json:"type"`
	Value   string   `json:"value"`
	Options []string `json:"options"`
}

// Metadata holds document information keys exactly as the toolkit emits them.
type Metadata map[string]string

const (
	keyFieldName   = "FieldName:"
	keyFieldType   = "FieldType:"
	keyFieldValue  = "FieldValue:"
	keyFieldOption = "FieldStateOption:"
	keyInfoKey     = "InfoKey:"
	keyInfoValue   = "InfoValue:"

	recordSeparator = "---"

	defaultFieldType = "Text"
)

var pageCountPattern = regexp.MustCompile(`NumberOfPages: (\d+)`)

// ParseFields reads a dump_data_fields listing. Records start at FieldName
// lines; a repeated name updates the earlier record in place. pdftk opens
// each record with a "---" line and may print FieldType ahead of FieldName,
// so attributes seen between a separator and the name belong to that name.
func ParseFields(text string) []FormField {
	fields := []FormField{}
	index := map[string]int{}
	current := -1
	var pending *FormField

	for line := range strings.Lines(text) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if line == recordSeparator {
			current = -1
			pending = &FormField{}
			continue
		}

		if v, ok := valueOf(line, keyFieldName); ok {
			i, seen := index[v]
			if !seen {
				fields = append(fields, FormField{Name: v, Type: defaultFieldType, Options: []string{}})
				i = len(fields) - 1
				index[v] = i
			}
			current = i
			if pending != nil {
				fields[i].apply(*pending)
				pending = nil
			}
			continue
		}

		var f *FormField
		switch {
		case current >= 0:
			f = &fields[current]
		case pending != nil:
			f = pending
		default:
			continue
		}

		if v, ok := valueOf(line, keyFieldType); ok {
			f.Type = v
		} else if v, ok := valueOf(line, keyFieldValue); ok {
			f.Value = v
		} else if v, ok := valueOf(line, keyFieldOption); ok {
			f.Options = append(f.Options, v)
		}
	}

	for i := range fields {
		if fields[i].Type == "" {
			fields[i].Type = defaultFieldType
		}
	}

	return fields
}

func (f *FormField) apply(attrs FormField) {
	if attrs.Type != "" {
		f.Type = attrs.Type
	}
	if attrs.Value != "" {
		f.Value = attrs.Value
	}
	f.Options = append(f.Options, attrs.Options...)
}

// ParseMetadata reads a dump_data listing. InfoKey/InfoValue pairs are
// collected first-class; any other "K: V" line is taken as-is. When nothing
// is found a fixed placeholder record is returned.
func ParseMetadata(text string) Metadata {
	meta := Metadata{}
	pendingKey := ""

	for line := range strings.Lines(text) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if v, ok := valueOf(line, keyInfoKey); ok {
			pendingKey = v
			continue
		}
		if v, ok := valueOf(line, keyInfoValue); ok {
			if pendingKey != "" {
				meta[pendingKey] = v
				pendingKey = ""
			}
			continue
		}

		if k, v, ok := strings.Cut(line, ": "); ok {
			meta[strings.TrimSpace(k)] = strings.TrimSpace(v)
		}
	}

	if len(meta) == 0 {
		return FallbackMetadata()
	}
	return meta
}

// FallbackMetadata is the record reported when metadata is unavailable.
func FallbackMetadata() Metadata {
	return Metadata{
		"Title":               "Unknown",
		"NumberOfPages":       "1",
		"PageMediaDimensions": "Unknown",
	}
}

// ResolvePageCount returns the NumberOfPages entry of meta, else the first
// NumberOfPages match in raw, else 1. Non-positive counts are skipped.
func ResolvePageCount(meta Metadata, raw string) int {
	if n, err := strconv.Atoi(strings.TrimSpace(meta["NumberOfPages"])); err == nil && n >= 1 {
		return n
	}

	if m := pageCountPattern.FindStringSubmatch(raw); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n >= 1 {
			return n
		}
	}

	return 1
}

func valueOf(line, prefix string) (string, bool) {
	if !strings.HasPrefix(line, prefix) {
		return "", false
	}
	return strings.TrimSpace(line[len(prefix):]), true
}
