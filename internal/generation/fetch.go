// ABOUTME: Fetches remote garment images and converts them to data URLs
// ABOUTME: Catalog items may reference http(s) URLs; the collaborator only accepts inline images

package generation

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"
)

// maxFetchBytes bounds a fetched garment image.
const maxFetchBytes = 32 << 20

// Fetcher turns an image reference into a data URL.
type Fetcher interface {
	Fetch(ctx context.Context, ref string) (string, error)
}

// HTTPFetcher downloads http(s) references. Data URLs are returned unchanged.
type HTTPFetcher struct {
	client   *http.Client
	maxBytes int64
}

// NewHTTPFetcher creates a fetcher. A nil client uses a 30 second timeout.
func NewHTTPFetcher(client *http.Client) *HTTPFetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPFetcher{client: client, maxBytes: maxFetchBytes}
}

// IsRemote reports whether ref is an http(s) URL.
func IsRemote(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

// Fetch returns ref as a data URL. A body larger than the size limit is an
// error rather than a truncated image.
func (f *HTTPFetcher) Fetch(ctx context.Context, ref string) (string, error) {
	if !IsRemote(ref) {
		return ref, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", ref, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching %s: unexpected status %d", ref, resp.StatusCode)
	}

	if resp.ContentLength > f.maxBytes {
		return "", fmt.Errorf("fetching %s: body of %d bytes exceeds %d bytes", ref, resp.ContentLength, f.maxBytes)
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", ref, err)
	}
	if int64(len(raw)) > f.maxBytes {
		return "", fmt.Errorf("fetching %s: body exceeds %d bytes", ref, f.maxBytes)
	}
	if len(raw) == 0 {
		return "", fmt.Errorf("fetching %s: empty body", ref)
	}

	mediaType, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil || !strings.HasPrefix(mediaType, "image/") {
		mediaType = http.DetectContentType(raw)
		if i := strings.IndexByte(mediaType, ';'); i >= 0 {
			mediaType = mediaType[:i]
		}
	}
	return EncodeDataURL(mediaType, raw), nil
}
