package fasta

import (
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/teranos/protix/errors"
)

// StdinPath is the path that selects standard input.
const StdinPath = "-"

// Open opens an input source. "-" reads standard input and a ".gz" suffix
// is decompressed transparently. Failures wrap errors.ErrMissingSource.
// The caller must Close the returned reader.
func Open(path string) (io.ReadCloser, error) {
	if path == StdinPath {
		return io.NopCloser(os.Stdin), nil
	}
	fh, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapMissingSource(err, path)
	}
	if !strings.HasSuffix(path, ".gz") {
		return fh, nil
	}
	gr, err := gzip.NewReader(fh)
	if err != nil {
		fh.Close()
		return nil, errors.WrapMissingSource(err, path)
	}
	return &gzipFile{Reader: gr, file: fh}, nil
}

type gzipFile struct {
	*gzip.Reader
	file *os.File
}

func (g *gzipFile) Close() error {
	gzErr := g.Reader.Close()
	if err := g.file.Close(); err != nil {
		return err
	}
	return gzErr
}

// ParseFile opens path, parses it and closes it.
func ParseFile(path string) (map[string]string, error) {
	rc, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	sequences, err := Parse(rc)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	return sequences, nil
}
