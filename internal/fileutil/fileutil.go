// Package fileutil provides file helpers shared by the pipeline stages:
// transparent decompression of source files and atomic output writes.
package fileutil

import (
	"bytes"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"

	"github.com/ulikunitz/xz"

	"github.com/emholm/standoff/core/errors"
)

// CompressionType identifies the compression of a source file.
type CompressionType string

const (
	// CompressionNone means a plain file.
	CompressionNone CompressionType = "none"
	// CompressionGzip means gzip compression.
	CompressionGzip CompressionType = "gzip"
	// CompressionXZ means xz compression.
	CompressionXZ CompressionType = "xz"
)

// DetectCompression sniffs the magic bytes of a file.
func DetectCompression(path string) (CompressionType, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", errors.NewIO("open", path, err)
	}
	defer file.Close()

	magic := make([]byte, 6)
	n, err := file.Read(magic)
	if err != nil && err != io.EOF {
		return "", errors.NewIO("read magic bytes", path, err)
	}

	// gzip magic (1f 8b)
	if n >= 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		return CompressionGzip, nil
	}

	// XZ magic (fd 37 7a 58 5a 00)
	if n >= 6 && bytes.Equal(magic, []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00}) {
		return CompressionXZ, nil
	}

	return CompressionNone, nil
}

// ReadSource reads a whole source file, decompressing gzip or xz
// content transparently.
func ReadSource(path string) ([]byte, error) {
	compression, err := DetectCompression(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, errors.NewIO("open", path, err)
	}
	defer file.Close()

	var reader io.Reader = file
	switch compression {
	case CompressionGzip:
		gz, err := gzip.NewReader(file)
		if err != nil {
			return nil, errors.NewIO("open gzip stream", path, err)
		}
		defer gz.Close()
		reader = gz
	case CompressionXZ:
		xzr, err := xz.NewReader(file)
		if err != nil {
			return nil, errors.NewIO("open xz stream", path, err)
		}
		reader = xzr
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.NewIO("read", path, err)
	}
	return data, nil
}

// WriteAtomic writes data to path via a temporary file in the same
// directory, creating parent directories as needed. The rename makes a
// partially written output file impossible.
func WriteAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.NewIO("create directory", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.NewIO("create temp file", dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.NewIO("write", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.NewIO("close", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return errors.NewIO("rename", path, err)
	}
	return nil
}
