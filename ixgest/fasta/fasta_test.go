package fasta

import (
	"bytes"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderID(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{name: "uniprot pipe header", header: ">sp|P12345|NAME_HUMAN", want: "P12345"},
		{name: "plain header with description", header: ">P12345 description", want: "P12345"},
		{name: "plain header without description", header: ">P12345", want: "P12345"},
		{name: "tab separated description", header: ">P12345\tsome protein", want: "P12345"},
		{name: "two pipe fields", header: ">tr|Q9XYZ1", want: "Q9XYZ1"},
		{name: "empty pipe field", header: ">sp||NAME", want: ""},
		{name: "marker only", header: ">", want: ""},
		{name: "marker and spaces", header: ">   ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HeaderID(tt.header))
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  map[string]string
	}{
		{
			name:  "multi-line sequences",
			input: ">sp|P1|desc\nABC\nDE\n>sp|P2|desc2\nXYZ",
			want:  map[string]string{"P1": "ABCDE", "P2": "XYZ"},
		},
		{
			name:  "plain headers",
			input: ">P1 first protein\nMKV\nLL\n>P2 second\nAAA\n",
			want:  map[string]string{"P1": "MKVLL", "P2": "AAA"},
		},
		{
			name:  "headers only map to empty sequences",
			input: ">sp|P1|a\n>sp|P2|b\n>P3\n",
			want:  map[string]string{"P1": "", "P2": "", "P3": ""},
		},
		{
			name:  "no headers",
			input: "ABC\nDEF\n",
			want:  map[string]string{},
		},
		{
			name:  "empty input",
			input: "",
			want:  map[string]string{},
		},
		{
			name:  "blank lines and trailing whitespace",
			input: ">P1\nAB  \n\n   \nCD\t\r\n\n>P2\r\nEF\r\n",
			want:  map[string]string{"P1": "ABCD", "P2": "EF"},
		},
		{
			name:  "indented header",
			input: "  >P1\nAB\n",
			want:  map[string]string{"P1": "AB"},
		},
		{
			name:  "lines before first header are dropped",
			input: "ZZZ\n>P1\nAB\n",
			want:  map[string]string{"P1": "AB"},
		},
		{
			name:  "duplicate header overwrites",
			input: ">P1\nAAA\n>P2\nBBB\n>P1\nCCC\n",
			want:  map[string]string{"P1": "CCC", "P2": "BBB"},
		},
		{
			name:  "empty identifier is still a key",
			input: ">\nABC\n>P1\nD\n",
			want:  map[string]string{"": "ABC", "P1": "D"},
		},
		{
			name:  "last record without trailing newline is flushed",
			input: ">P1\nAB\n>P2\nCD",
			want:  map[string]string{"P1": "AB", "P2": "CD"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseLongLines(t *testing.T) {
	long := strings.Repeat("ACDEFGHIKLMNPQRSTVWY", 20000)
	input := ">sp|P1|big\n" + long + "\n" + long + "\n"

	got, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, long+long, got["P1"])
}

func TestParseConcatenationInvariant(t *testing.T) {
	lines := []string{"MKT", "AYIA", "", "KQR", "QISFVKSHFSRQ"}
	var b bytes.Buffer
	b.WriteString(">sp|P1|x\n")
	for _, l := range lines {
		b.WriteString(l + "\n")
	}
	b.WriteString(">sp|P2|y\nQQ\n")

	got, err := Parse(&b)
	require.NoError(t, err)
	assert.Equal(t, strings.Join(lines, ""), got["P1"])
	assert.Equal(t, "QQ", got["P2"])
}

func TestParseWithReport(t *testing.T) {
	input := ">P1\nA\n>P2\nB\n>P1\nC\n>P1\nD\n"

	got, report, err := ParseWithReport(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"P1": "D", "P2": "B"}, got)
	assert.Equal(t, 4, report.Headers)
	assert.Equal(t, []string{"P1", "P1"}, report.Duplicates)
}

func TestParseReadError(t *testing.T) {
	_, err := Parse(iotest.ErrReader(iotest.ErrTimeout))
	require.Error(t, err)
	assert.ErrorIs(t, err, iotest.ErrTimeout)
	assert.Contains(t, err.Error(), "failed to read FASTA input")
}

func TestParseOneByteReads(t *testing.T) {
	r := iotest.OneByteReader(strings.NewReader(">sp|P1|x\nAB\nCD\n>P2 y\nEF"))

	got, err := Parse(r)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"P1": "ABCD", "P2": "EF"}, got)
}
