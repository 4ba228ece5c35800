package protein

import (
	"bufio"
	"io"
	"strings"

	"github.com/teranos/protix/errors"
)

// Source names used in errors, warnings and logs.
const (
	SourceFASTA    = "fasta"
	SourceTaxonomy = "taxonomy"
	SourceTerms    = "terms"
)

// rowReader reads a headerless tab-separated table with a fixed number of
// fields per row. Fields are literal: no quoting or escaping. Blank lines
// are skipped and a trailing CR is dropped.
type rowReader struct {
	source string
	fields int
	br     *bufio.Reader
	line   int
	done   bool
}

func newRowReader(source string, r io.Reader, fields int) *rowReader {
	return &rowReader{source: source, fields: fields, br: bufio.NewReader(r)}
}

// next returns the next row and its 1-based line number, or io.EOF.
// A row with the wrong field count is an errors.ErrMalformedRow.
func (rr *rowReader) next() ([]string, int, error) {
	for !rr.done {
		text, err := rr.br.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, rr.line, errors.NewReadError(err, rr.source)
		}
		if err == io.EOF {
			rr.done = true
			if text == "" {
				break
			}
		}
		rr.line++

		text = strings.TrimSuffix(strings.TrimSuffix(text, "\n"), "\r")
		if text == "" {
			continue
		}
		row := strings.Split(text, "\t")
		if len(row) != rr.fields {
			return nil, rr.line, errors.NewMalformedRowError(rr.source, rr.line,
				"expected %d tab-separated fields, got %d", rr.fields, len(row))
		}
		return row, rr.line, nil
	}
	return nil, 0, io.EOF
}
