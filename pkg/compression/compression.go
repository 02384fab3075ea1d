// Package compression provides content-encoding codecs for transformation
// plugins that inspect or rewrite message bodies. The encoding is taken
// from the message's header collection, so the package works the same for
// attached and detached messages.
package compression

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"

	"github.com/proxytools/go-proxybind/pkg/errors"
	"github.com/proxytools/go-proxybind/pkg/headers"
)

// Encoding is a supported Content-Encoding.
type Encoding int

const (
	EncodingIdentity Encoding = iota
	EncodingGzip
	EncodingDeflate
	EncodingBrotli
	EncodingZstd
)

func (e Encoding) String() string {
	switch e {
	case EncodingGzip:
		return "gzip"
	case EncodingDeflate:
		return "deflate"
	case EncodingBrotli:
		return "br"
	case EncodingZstd:
		return "zstd"
	default:
		return "identity"
	}
}

// DetectEncoding maps a Content-Encoding value to an Encoding. Unrecognized
// values map to identity, matching the degrade-don't-fail policy of the
// rest of this library.
func DetectEncoding(contentEncoding string) Encoding {
	switch strings.ToLower(strings.TrimSpace(contentEncoding)) {
	case "gzip", "x-gzip":
		return EncodingGzip
	case "deflate", "x-deflate":
		return EncodingDeflate
	case "br", "brotli":
		return EncodingBrotli
	case "zstd", "zstandard":
		return EncodingZstd
	default:
		return EncodingIdentity
	}
}

// HeaderEncoding reads the encoding from a header collection's
// Content-Encoding field.
func HeaderEncoding(h *headers.Headers) Encoding {
	return DetectEncoding(h.Get("Content-Encoding"))
}

// Decode decompresses data according to enc. Identity data passes through
// untouched.
func Decode(data []byte, enc Encoding) ([]byte, error) {
	if len(data) == 0 || enc == EncodingIdentity {
		return data, nil
	}

	var r io.Reader
	switch enc {
	case EncodingGzip:
		gz, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, errors.Wrap(errors.KindParse, "compression.Decode", "bad gzip stream", err)
		}
		defer gz.Close()
		r = gz
	case EncodingDeflate:
		fr := flate.NewReader(bytes.NewReader(data))
		defer fr.Close()
		r = fr
	case EncodingBrotli:
		r = brotli.NewReader(bytes.NewReader(data))
	case EncodingZstd:
		zr, err := zstd.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, errors.Wrap(errors.KindParse, "compression.Decode", "bad zstd stream", err)
		}
		defer zr.Close()
		r = zr.IOReadCloser()
	default:
		return nil, errors.New(errors.KindParse, "compression.Decode", "unsupported encoding")
	}

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.KindParse, "compression.Decode", "decompression failed", err)
	}
	return out, nil
}

// Encode compresses data according to enc.
func Encode(data []byte, enc Encoding) ([]byte, error) {
	if enc == EncodingIdentity {
		return data, nil
	}

	var buf bytes.Buffer
	var w io.WriteCloser
	switch enc {
	case EncodingGzip:
		w = gzip.NewWriter(&buf)
	case EncodingDeflate:
		fw, err := flate.NewWriter(&buf, flate.DefaultCompression)
		if err != nil {
			return nil, errors.Wrap(errors.KindEngine, "compression.Encode", "flate writer", err)
		}
		w = fw
	case EncodingBrotli:
		w = brotli.NewWriter(&buf)
	case EncodingZstd:
		zw, err := zstd.NewWriter(&buf)
		if err != nil {
			return nil, errors.Wrap(errors.KindEngine, "compression.Encode", "zstd writer", err)
		}
		w = zw
	default:
		return nil, errors.New(errors.KindParse, "compression.Encode", "unsupported encoding")
	}

	if _, err := w.Write(data); err != nil {
		w.Close()
		return nil, errors.Wrap(errors.KindParse, "compression.Encode", "compression failed", err)
	}
	if err := w.Close(); err != nil {
		return nil, errors.Wrap(errors.KindParse, "compression.Encode", "compression failed", err)
	}
	return buf.Bytes(), nil
}

// DecodeBody decompresses a message body using the Content-Encoding of its
// header collection.
func DecodeBody(h *headers.Headers, body []byte) ([]byte, error) {
	return Decode(body, HeaderEncoding(h))
}
