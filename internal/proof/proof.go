// Package proof reads break proof images and encodes them as data URIs.
package proof

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/alexanderramin/studylog/internal/domain"
	"golang.org/x/sync/errgroup"
)

// DefaultMaxBytes caps a single proof image.
const DefaultMaxBytes = 5 << 20

// Encoder reads proof images from disk.
type Encoder struct {
	maxBytes int64
}

// NewEncoder returns an Encoder that refuses files larger than maxBytes.
// A non-positive maxBytes selects DefaultMaxBytes.
func NewEncoder(maxBytes int64) *Encoder {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Encoder{maxBytes: maxBytes}
}

// EncodeFile reads an image file and returns it as a data URI.
func (e *Encoder) EncodeFile(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, e.maxBytes+1))
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", fmt.Errorf("file is empty")
	}
	if int64(len(data)) > e.maxBytes {
		return "", fmt.Errorf("file is larger than %d bytes", e.maxBytes)
	}

	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return "", fmt.Errorf("file is %s, not an image", mime)
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// EncodeAll reads every path concurrently and returns the payloads in input
// order. Any failure cancels the remaining reads and the whole batch fails
// with a *domain.EncodingError for the first break that failed.
func (e *Encoder) EncodeAll(ctx context.Context, paths []string) ([]string, error) {
	out := make([]string, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			payload, err := e.EncodeFile(gctx, path)
			if err != nil {
				return &domain.EncodingError{Index: i, Path: path, Err: err}
			}
			out[i] = payload
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
