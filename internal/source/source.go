// Package source opens decoder inputs as seekable streams of known size.
//
// Plain files are read directly from disk. Files whose name ends in .gz,
// .zst or .lz4 are decompressed into memory first, since the decoder
// needs to seek and to know the logical (decompressed) file size.
package source

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/pkg/errors"
)

// Compression identifies how an input file is stored on disk.
type Compression int

const (
	None Compression = iota
	Gzip
	Zstd
	LZ4
)

func (c Compression) String() string {
	return [...]string{"none", "gzip", "zstd", "lz4"}[c]
}

// Detect returns the compression implied by the file name suffix.
func Detect(filename string) Compression {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".gz":
		return Gzip
	case ".zst":
		return Zstd
	case ".lz4":
		return LZ4
	default:
		return None
	}
}

// Strip removes a compression suffix from filename, if any.
func Strip(filename string) string {
	if Detect(filename) == None {
		return filename
	}
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}

// File is an open input.
type File interface {
	io.ReadSeeker
	io.Closer
}

type memFile struct {
	*bytes.Reader
}

func (memFile) Close() error { return nil }

// Open opens filename and returns the stream and its logical size.
func Open(filename string) (File, int64, error) {
	fi, err := os.Stat(filename)
	if err != nil {
		return nil, 0, errors.Wrap(err, "stat failed")
	}
	file, err := os.Open(filename)
	if err != nil {
		return nil, 0, errors.Wrapf(err, "could not open file %s", filename)
	}
	comp := Detect(filename)
	if comp == None {
		return file, fi.Size(), nil
	}
	defer file.Close()
	data, err := decompress(file, comp)
	if err != nil {
		return nil, 0, errors.Wrapf(err, "%s decompression of %s failed", comp, filename)
	}
	return memFile{bytes.NewReader(data)}, int64(len(data)), nil
}

func decompress(r io.Reader, comp Compression) ([]byte, error) {
	switch comp {
	case Gzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		return io.ReadAll(zr)
	case Zstd:
		zr, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		return io.ReadAll(zr)
	case LZ4:
		return io.ReadAll(lz4.NewReader(r))
	default:
		return io.ReadAll(r)
	}
}

// Compress encodes data for the given compression. It is the inverse of
// the decompression done by Open and is used to produce compressed inputs.
func Compress(data []byte, comp Compression) ([]byte, error) {
	var buf bytes.Buffer
	switch comp {
	case None:
		return data, nil
	case Gzip:
		zw := gzip.NewWriter(&buf)
		if _, err := zw.Write(data); err != nil {
			return nil, err
		}
		if err := zw.Close(); err != nil {
			return nil, err
		}
	case Zstd:
		zw, err := zstd.NewWriter(&buf)
		if err != nil {
			return nil, err
		}
		if _, err = zw.Write(data); err != nil {
			return nil, err
		}
		if err = zw.Close(); err != nil {
			return nil, err
		}
	case LZ4:
		zw := lz4.NewWriter(&buf)
		if _, err := zw.Write(data); err != nil {
			return nil, err
		}
		if err := zw.Close(); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}
