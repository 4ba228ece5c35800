// Package display renders command results and integrated protein records.
package display

import (
	"encoding/json"
	"io"
	"slices"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/teranos/protix/errors"
	"github.com/teranos/protix/ixgest/types"
)

// Record output formats
const (
	FormatJSON  = "json"
	FormatJSONL = "jsonl"
	FormatYAML  = "yaml"
	FormatTOML  = "toml"
)

// Formats lists the supported record output formats
var Formats = []string{FormatJSON, FormatJSONL, FormatYAML, FormatTOML}

// IsSupportedFormat reports whether format is one of Formats
func IsSupportedFormat(format string) bool {
	return slices.Contains(Formats, format)
}

// jsonlRecord is one line of JSONL output
type jsonlRecord struct {
	ID string `json:"id"`
	*types.ProteinRecord
}

// WriteRecords writes records to w in the given format, ordered by identifier.
//
//   - json: a single object keyed by identifier
//   - jsonl: one object per line with an "id" field
//   - yaml, toml: a mapping keyed by identifier
func WriteRecords(w io.Writer, format string, records map[string]*types.ProteinRecord) error {
	if records == nil {
		records = map[string]*types.ProteinRecord{}
	}

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(records); err != nil {
			return errors.Wrap(err, "failed to encode records as JSON")
		}

	case FormatJSONL:
		enc := json.NewEncoder(w)
		for _, id := range SortedIDs(records) {
			if err := enc.Encode(jsonlRecord{ID: id, ProteinRecord: records[id]}); err != nil {
				return errors.Wrapf(err, "failed to encode record %s as JSONL", id)
			}
		}

	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(records); err != nil {
			return errors.Wrap(err, "failed to encode records as YAML")
		}
		if err := enc.Close(); err != nil {
			return errors.Wrap(err, "failed to flush YAML")
		}

	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(records); err != nil {
			return errors.Wrap(err, "failed to encode records as TOML")
		}

	default:
		return errors.WithHintf(
			errors.NewInvalidRequestError("unsupported format: %s", format),
			"supported formats: %v", Formats)
	}
	return nil
}

// SortedIDs returns the record identifiers in ascending order
func SortedIDs(records map[string]*types.ProteinRecord) []string {
	ids := make([]string, 0, len(records))
	for id := range records {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
