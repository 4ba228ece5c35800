// Package fasta parses protein FASTA databases into identifier/sequence maps.
//
// A header line starts with '>'. UniProt-style headers (">sp|P12345|NAME")
// are keyed by their second pipe field; any other header is keyed by its
// first whitespace-delimited token. Sequence lines are concatenated without
// separators until the next header or end of input.
package fasta

import (
	"bufio"
	"io"
	"strings"

	"github.com/teranos/protix/errors"
)

const headerMarker = '>'

// Report summarises a parse.
type Report struct {
	// Headers is the number of header lines seen.
	Headers int `json:"headers"`
	// Duplicates lists identifiers whose header appeared again, once per
	// repeat, in input order. The later record replaced the earlier one.
	Duplicates []string `json:"duplicates,omitempty"`
}

// Parse reads FASTA text from r and returns the sequence for each
// identifier. A repeated identifier keeps the sequence of its last record.
// Input without headers yields an empty map.
func Parse(r io.Reader) (map[string]string, error) {
	sequences, _, err := ParseWithReport(r)
	return sequences, err
}

// ParseWithReport is Parse plus a Report of headers and duplicates.
func ParseWithReport(r io.Reader) (map[string]string, Report, error) {
	var (
		sequences = make(map[string]string)
		report    Report
		br        = bufio.NewReader(r)

		// Idle until the first header; lines seen while idle are dropped.
		accumulating bool
		currentID    string
		buf          strings.Builder
	)

	flush := func() {
		if !accumulating {
			return
		}
		sequences[currentID] = buf.String()
		buf.Reset()
	}

	for {
		line, err := br.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, report, errors.Wrap(err, "failed to read FASTA input")
		}
		eof := err == io.EOF

		line = strings.TrimSpace(line)
		switch {
		case len(line) > 0 && line[0] == headerMarker:
			flush()
			currentID = HeaderID(line)
			if _, seen := sequences[currentID]; seen {
				report.Duplicates = append(report.Duplicates, currentID)
			}
			accumulating = true
			report.Headers++
		case accumulating:
			buf.WriteString(line)
		}

		if eof {
			break
		}
	}
	flush()

	return sequences, report, nil
}

// HeaderID extracts the protein identifier from a header line.
//
// When splitting on '|' yields more than one field, the second field is the
// identifier. Otherwise it is the first whitespace-delimited token after the
// '>' marker, or "" when the header has no token.
func HeaderID(header string) string {
	if fields := strings.Split(header, "|"); len(fields) > 1 {
		return fields[1]
	}
	tokens := strings.Fields(strings.TrimPrefix(header, string(headerMarker)))
	if len(tokens) == 0 {
		return ""
	}
	return tokens[0]
}
