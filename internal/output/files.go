package output

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// CompressedExt marks output paths that are written zstd-compressed.
const CompressedExt = ".zst"

// File is a created output file. Flush pushes buffered bytes to disk; for
// compressed files it also ends the current zstd block.
type File interface {
	io.WriteCloser
	Flush() error
}

type plainFile struct{ *os.File }

func (f plainFile) Flush() error { return nil }

type zstdFile struct {
	f   *os.File
	enc *zstd.Encoder
}

func (z *zstdFile) Write(p []byte) (int, error) { return z.enc.Write(p) }

func (z *zstdFile) Flush() error { return z.enc.Flush() }

func (z *zstdFile) Close() error {
	return errors.Join(z.enc.Close(), z.f.Close())
}

// Create truncates or creates path, making parent directories as needed.
func Create(path string) (File, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	if !IsCompressed(path) {
		return plainFile{f}, nil
	}
	enc, err := zstd.NewWriter(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &zstdFile{f: f, enc: enc}, nil
}

type zstdReader struct {
	f   *os.File
	dec *zstd.Decoder
}

func (z *zstdReader) Read(p []byte) (int, error) { return z.dec.Read(p) }

func (z *zstdReader) Close() error {
	z.dec.Close()
	return z.f.Close()
}

// Open reads back a file written by Create, decompressing .zst transparently.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !IsCompressed(path) {
		return f, nil
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &zstdReader{f: f, dec: dec}, nil
}

// IsCompressed reports whether path carries the compressed extension.
func IsCompressed(path string) bool {
	return strings.EqualFold(filepath.Ext(path), CompressedExt)
}

// baseExt is the extension before any compression suffix: "a.csv.zst" -> ".csv".
func baseExt(path string) string {
	if IsCompressed(path) {
		path = path[:len(path)-len(CompressedExt)]
	}
	return strings.ToLower(filepath.Ext(path))
}
