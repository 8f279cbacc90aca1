package export

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// maxImageBytes bounds a single fetched image. Oversized bodies degrade to
// the placeholder like any other fetch failure.
const maxImageBytes = 8 << 20

var (
	placeholderOnce sync.Once
	placeholderPNG  []byte
)

// PlaceholderPNG returns a 1x1 transparent PNG used wherever a product
// image cannot be fetched. A bad image must never abort an export.
func PlaceholderPNG() []byte {
	placeholderOnce.Do(func() {
		buf := &bytes.Buffer{}
		_ = png.Encode(buf, image.NewNRGBA(image.Rect(0, 0, 1, 1)))
		placeholderPNG = buf.Bytes()
	})
	return placeholderPNG
}

// FetchedImage is one resolved image slot.
type FetchedImage struct {
	Data      []byte
	Extension string // "png", "jpeg", ...
	Fallback  bool   // true when the placeholder was substituted
}

// ImageFetcher downloads remote images with graceful per-image degradation.
type ImageFetcher struct {
	Client *http.Client
}

// NewImageFetcher builds a fetcher with a bounded default client.
func NewImageFetcher() *ImageFetcher {
	return &ImageFetcher{Client: &http.Client{Timeout: 15 * time.Second}}
}

// Fetch downloads one image. Any failure (transport error, non-2xx status,
// oversized body) yields the placeholder with Fallback set, never an error.
func (f *ImageFetcher) Fetch(ctx context.Context, url string) FetchedImage {
	if url == "" {
		return FetchedImage{Data: PlaceholderPNG(), Extension: "png", Fallback: true}
	}
	data, ext, err := f.fetch(ctx, url)
	if err != nil {
		return FetchedImage{Data: PlaceholderPNG(), Extension: "png", Fallback: true}
	}
	return FetchedImage{Data: data, Extension: ext}
}

// FetchAll resolves every URL concurrently. Each result lands in the slot
// matching its input index, so there is no write contention and the output
// order always matches the input order.
func (f *ImageFetcher) FetchAll(ctx context.Context, urls []string) []FetchedImage {
	results := make([]FetchedImage, len(urls))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, url := range urls {
		i, url := i, url
		g.Go(func() error {
			results[i] = f.Fetch(gctx, url)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (f *ImageFetcher) fetch(ctx context.Context, url string) ([]byte, string, error) {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("image fetch status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, "", err
	}
	if len(data) > maxImageBytes {
		return nil, "", fmt.Errorf("image exceeds %d bytes", maxImageBytes)
	}
	return data, extensionFor(resp.Header.Get("Content-Type"), url), nil
}

func extensionFor(contentType, url string) string {
	switch {
	case strings.Contains(contentType, "png"):
		return "png"
	case strings.Contains(contentType, "jpeg"), strings.Contains(contentType, "jpg"):
		return "jpeg"
	case strings.Contains(contentType, "gif"):
		return "gif"
	}
	lower := strings.ToLower(url)
	switch {
	case strings.HasSuffix(lower, ".jpg"), strings.HasSuffix(lower, ".jpeg"):
		return "jpeg"
	case strings.HasSuffix(lower, ".gif"):
		return "gif"
	default:
		return "png"
	}
}
