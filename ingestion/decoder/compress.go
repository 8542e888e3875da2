package decoder

import (
	"bytes"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// MetadataContentEncoding is the request metadata key naming the payload compression
const MetadataContentEncoding = "content-encoding"

const defaultMaxDecompressedBytes = 64 << 20

// zstdDecoder is shared; DecodeAll is safe for concurrent use
var zstdDecoder, _ = zstd.NewReader(nil,
	zstd.WithDecoderConcurrency(0),
	zstd.WithDecoderMaxMemory(defaultMaxDecompressedBytes),
)

// Decompress returns the payload with the named content encoding removed.
// The input is never modified; identity encodings return raw itself.
// limit bounds the decompressed size, zero means the package default.
func Decompress(encoding string, raw []byte, limit int64) ([]byte, error) {
	if limit <= 0 {
		limit = defaultMaxDecompressedBytes
	}
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "identity":
		return raw, nil
	case "gzip":
		out, err := gunzip(raw, limit)
		if err != nil {
			return nil, malformed("invalid gzip payload: %v", err)
		}
		return out, nil
	case "zstd":
		out, err := zstdDecoder.DecodeAll(raw, nil)
		if err != nil {
			return nil, malformed("invalid zstd payload: %v", err)
		}
		if int64(len(out)) > limit {
			return nil, malformed("decompressed payload exceeds %d bytes", limit)
		}
		return out, nil
	default:
		return nil, malformed("unsupported content-encoding: %s", encoding)
	}
}

func isGzip(b []byte) bool {
	return len(b) > 2 && b[0] == 0x1f && b[1] == 0x8b
}

func gunzip(raw []byte, limit int64) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	out, err := io.ReadAll(io.LimitReader(zr, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(out)) > limit {
		return nil, malformed("decompressed payload exceeds %d bytes", limit)
	}
	return out, nil
}
