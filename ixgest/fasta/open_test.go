package fasta

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/protix/errors"
)

func writeGzip(t *testing.T, path, content string) {
	t.Helper()
	fh, err := os.Create(path)
	require.NoError(t, err)
	zw := gzip.NewWriter(fh)
	_, err = zw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, fh.Close())
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "proteins.fasta")
	require.NoError(t, os.WriteFile(path, []byte(">sp|P1|a\nMK\nV\n"), 0644))

	got, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"P1": "MKV"}, got)
}

func TestParseFileGzip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "proteins.fasta.gz")
	writeGzip(t, path, ">sp|P1|a\nMK\nV\n>sp|P2|b\nQQ")

	got, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"P1": "MKV", "P2": "QQ"}, got)
}

func TestOpenMissingSource(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "absent.fasta"))
	require.Error(t, err)
	assert.True(t, errors.IsMissingSource(err))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestOpenCorruptGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.fasta.gz")
	require.NoError(t, os.WriteFile(path, []byte("not gzip"), 0644))

	_, err := Open(path)
	require.Error(t, err)
	assert.True(t, errors.IsMissingSource(err))
}

func TestOpenStdin(t *testing.T) {
	rc, err := Open(StdinPath)
	require.NoError(t, err)
	assert.NoError(t, rc.Close())
}
