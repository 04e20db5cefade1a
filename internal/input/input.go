// Package input acquires raw save bytes: from a file or stdin, optionally
// hex-encoded, and optionally wrapped in zstd, gzip or lz4 compression.
package input

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Stdin is read when the path is empty or "-".
var Stdin io.Reader = os.Stdin

// Read returns the contents of path, or of Stdin when path is "" or "-".
// When hexMode is true the contents are hex-decoded; whitespace between
// digit pairs is ignored.
func Read(path string, hexMode bool) ([]byte, error) {
	var data []byte
	var err error
	if path == "" || path == "-" {
		data, err = io.ReadAll(Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
	} else {
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}
	if hexMode {
		return DecodeHex(data)
	}
	return data, nil
}

// DecodeHex strips whitespace from hex-encoded input and decodes it.
func DecodeHex(data []byte) ([]byte, error) {
	cleaned := bytes.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, data)

	if len(cleaned) == 0 {
		return nil, fmt.Errorf("empty input after stripping whitespace from hex")
	}

	decoded := make([]byte, hex.DecodedLen(len(cleaned)))
	count, err := hex.Decode(decoded, cleaned)
	if err != nil {
		return nil, fmt.Errorf("decode hex: %w", err)
	}
	return decoded[:count], nil
}

// Compression identifies a compression container found on input.
type Compression uint8

const (
	CompressionNone Compression = iota
	CompressionZstd
	CompressionGzip
	CompressionLZ4
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZstd:
		return "zstd"
	case CompressionGzip:
		return "gzip"
	case CompressionLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

var magics = map[Compression][]byte{
	CompressionZstd: {0x28, 0xB5, 0x2F, 0xFD},
	CompressionGzip: {0x1F, 0x8B},
	CompressionLZ4:  {0x04, 0x22, 0x4D, 0x18},
}

// ParseCompression parses a compression name as accepted on the command
// line. "auto" is not a compression; resolve it with ForPath.
func ParseCompression(name string) (Compression, error) {
	switch strings.ToLower(name) {
	case "none", "":
		return CompressionNone, nil
	case "zstd", "zst":
		return CompressionZstd, nil
	case "gzip", "gz":
		return CompressionGzip, nil
	case "lz4":
		return CompressionLZ4, nil
	default:
		return 0, fmt.Errorf("unknown compression %q (want none, zstd, gzip or lz4)", name)
	}
}

// ForPath picks the compression implied by the file extension of path.
// Magic bytes alone are not trusted: the size marker at the start of a
// raw save can look like a gzip header.
func ForPath(path string) Compression {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zst", ".zstd":
		return CompressionZstd
	case ".gz":
		return CompressionGzip
	case ".lz4":
		return CompressionLZ4
	default:
		return CompressionNone
	}
}

// Decompress unwraps data compressed with c. The data must start with
// the magic bytes of c.
func Decompress(data []byte, c Compression) ([]byte, error) {
	if c == CompressionNone {
		return data, nil
	}
	magic, ok := magics[c]
	if !ok {
		return nil, fmt.Errorf("unsupported compression %v", c)
	}
	if !bytes.HasPrefix(data, magic) {
		return nil, fmt.Errorf("input is not %v data: missing magic % X", c, magic)
	}
	var out []byte
	var err error
	switch c {
	case CompressionZstd:
		out, err = decompressZstd(data)
	case CompressionGzip:
		out, err = decompressGzip(data)
	case CompressionLZ4:
		out, err = io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
	}
	if err != nil {
		return nil, fmt.Errorf("%v decompress: %w", c, err)
	}
	return out, nil
}

func decompressZstd(data []byte) ([]byte, error) {
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer decoder.Close()
	return decoder.DecodeAll(data, nil)
}

func decompressGzip(data []byte) ([]byte, error) {
	reader, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	return io.ReadAll(reader)
}
