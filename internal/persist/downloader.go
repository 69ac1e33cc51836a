package persist

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// ErrTooLarge is returned when a download exceeds the size cap
var ErrTooLarge = errors.New("file exceeds size limit")

const defaultContentType = "image/webp"

// Download is a fetched file held in memory
type Download struct {
	Body        []byte
	ContentType string
}

// Downloader fetches provider-hosted media. It never retries.
type Downloader struct {
	client  *resty.Client
	maxSize int64
}

func NewDownloader(timeout time.Duration, maxSize int64) *Downloader {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Downloader{
		client: resty.New().
			SetTimeout(timeout).
			SetRetryCount(0),
		maxSize: maxSize,
	}
}

// Fetch downloads url, refusing bodies larger than the configured cap
func (d *Downloader) Fetch(ctx context.Context, url string) (*Download, error) {
	resp, err := d.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d from %s", resp.StatusCode(), url)
	}
	if d.maxSize > 0 && resp.RawResponse.ContentLength > d.maxSize {
		return nil, ErrTooLarge
	}

	reader := body
	if d.maxSize > 0 {
		reader = io.NopCloser(io.LimitReader(body, d.maxSize+1))
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", url, err)
	}
	if d.maxSize > 0 && int64(len(data)) > d.maxSize {
		return nil, ErrTooLarge
	}

	contentType := resp.Header().Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		contentType = defaultContentType
	}
	return &Download{Body: data, ContentType: contentType}, nil
}
