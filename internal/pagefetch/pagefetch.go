// Package pagefetch downloads application pages for offline inspection.
package pagefetch

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

const (
	userAgent       = "spigell/applyfill (+https://github.com/spigell/applyfill)"
	acceptHTML      = "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8"
	contentEncoding = "gzip"
	// Pages larger than this are cut.
	maxBody = 10 << 20
)

type Client struct {
	logger     *zap.Logger
	HTTPClient *retryablehttp.Client
	UserAgent  string
}

// Page is a fetched document together with the address it was finally served
// from.
type Page struct {
	URL  string
	HTML []byte
}

func New(logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	retryClient := retryablehttp.NewClient()
	retryClient.Logger = leveled{logger.Sugar()}
	retryClient.RetryMax = 3
	retryClient.RetryWaitMin = 500 * time.Millisecond
	retryClient.RetryWaitMax = 5 * time.Second
	retryClient.HTTPClient.Timeout = 20 * time.Second

	return &Client{
		logger:     logger,
		HTTPClient: retryClient,
		UserAgent:  userAgent,
	}
}

// Fetch downloads rawURL. Transport errors and 5xx answers are retried; any
// other non-200 status fails.
func (c *Client) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", acceptHTML)
	req.Header.Set("Accept-Encoding", contentEncoding)
	req.Header.Set("Accept-Language", "en")

	c.logger.Debug("make request", zap.String("url", rawURL))
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status: %s", resp.Status)
	}

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gzipReader.Close()
		reader = gzipReader
	}

	data, err := io.ReadAll(io.LimitReader(reader, maxBody))
	if err != nil {
		return nil, err
	}

	final := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		final = resp.Request.URL.String()
	}

	c.logger.Debug("got page", zap.String("url", final), zap.Int("bytes", len(data)))
	return &Page{URL: final, HTML: data}, nil
}

// leveled routes the retry client's messages to zap.
type leveled struct {
	s *zap.SugaredLogger
}

func (l leveled) Error(msg string, kv ...interface{}) { l.s.Errorw(msg, kv...) }
func (l leveled) Info(msg string, kv ...interface{})  { l.s.Debugw(msg, kv...) }
func (l leveled) Debug(msg string, kv ...interface{}) { l.s.Debugw(msg, kv...) }
func (l leveled) Warn(msg string, kv ...interface{})  { l.s.Warnw(msg, kv...) }
