package catalog

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// MaxAssetSize caps fetched asset bodies at 256 MiB.
const MaxAssetSize = 256 << 20

// ErrAssetTooLarge is returned when an asset body exceeds MaxAssetSize.
var ErrAssetTooLarge = errors.New("asset exceeds size limit")

// Fetcher retrieves asset bytes from http(s) URLs, file URLs, or plain
// filesystem paths.
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a fetcher with a bounded request timeout.
func NewFetcher() *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

// Fetch resolves raw to a source and reads the full asset body.
func (f *Fetcher) Fetch(raw string) ([]byte, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing asset url %s: %w", raw, err)
	}

	switch u.Scheme {
	case "http", "https":
		return f.fetchHTTP(raw)
	case "file":
		return readLocal(u.Path)
	default:
		return readLocal(raw)
	}
}

func (f *Fetcher) fetchHTTP(rawURL string) ([]byte, error) {
	resp, err := f.client.Get(rawURL)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: status %s", rawURL, resp.Status)
	}
	if resp.ContentLength > MaxAssetSize {
		return nil, fmt.Errorf("%w: %s declares %d bytes", ErrAssetTooLarge, rawURL, resp.ContentLength)
	}

	data, err := readCapped(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", rawURL, err)
	}
	return data, nil
}

func readLocal(path string) ([]byte, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("opening asset %s: %w", path, err)
	}
	if fi.Size() > MaxAssetSize {
		return nil, fmt.Errorf("%w: %s is %d bytes", ErrAssetTooLarge, path, fi.Size())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading asset %s: %w", path, err)
	}
	return data, nil
}

// readCapped reads at most MaxAssetSize bytes and errors when the body
// keeps going past the cap.
func readCapped(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxAssetSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxAssetSize {
		return nil, ErrAssetTooLarge
	}
	return data, nil
}
