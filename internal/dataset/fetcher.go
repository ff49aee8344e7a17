// Package dataset retrieves the raw OurAirports exports over HTTP and keeps a
// compressed on-disk copy of each one keyed by filename.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
	"golang.org/x/sync/errgroup"

	"airport-data/pkg/logging"
	"airport-data/pkg/metrics"
)

const cacheSuffix = ".zst"

// Config holds dataset retrieval settings
type Config struct {
	BaseURL string
	// CacheDir holds one compressed file per dataset.
	CacheDir string
	// MaxAge is the freshness window of a cached copy.
	MaxAge  time.Duration
	Timeout time.Duration
}

// Fetcher downloads datasets and serves fresh cached copies
type Fetcher struct {
	cfg     Config
	client  *http.Client
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
	enc     *zstd.Encoder
	dec     *zstd.Decoder
	now     func() time.Time
}

// NewFetcher creates a fetcher. The base URL always ends with a slash so
// filenames resolve beneath it.
func NewFetcher(cfg Config, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) (*Fetcher, error) {
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", cfg.BaseURL, err)
	}
	if !strings.HasSuffix(cfg.BaseURL, "/") {
		cfg.BaseURL += "/"
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return nil, fmt.Errorf("failed to create cache encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
	if err != nil {
		return nil, fmt.Errorf("failed to create cache decoder: %w", err)
	}

	return &Fetcher{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
		metrics: metricsCollector,
		enc:     enc,
		dec:     dec,
		now:     time.Now,
	}, nil
}

// Close releases the compression resources
func (f *Fetcher) Close() {
	f.enc.Close()
	f.dec.Close()
}

// URL returns the remote location of a dataset
func (f *Fetcher) URL(name string) string {
	return f.cfg.BaseURL + name
}

// CachePath returns where the compressed copy of a dataset is stored
func (f *Fetcher) CachePath(name string) string {
	return filepath.Join(f.cfg.CacheDir, name+cacheSuffix)
}

// Fetch returns the dataset bytes, from cache when a copy younger than MaxAge
// exists and forceRefresh is false, otherwise from the network.
func (f *Fetcher) Fetch(ctx context.Context, name string, forceRefresh bool) ([]byte, error) {
	log := f.logger.WithFields(logging.Fields{"dataset": name, "stage": "FETCH"})
	timer := f.metrics.NewTimer(f.metrics.DatasetFetchDuration.WithLabelValues(name))
	defer timer.ObserveDuration()

	if forceRefresh {
		f.metrics.RecordCacheResult(name, "forced")
	} else {
		data, result, err := f.readCache(name)
		switch {
		case err == nil:
			f.metrics.RecordCacheResult(name, result)
			log.Info(ctx, "[FETCH_CACHE_HIT] Using cached dataset", logging.Fields{
				"cache_path": f.CachePath(name),
				"bytes":      len(data),
			})
			return data, nil
		case result != "":
			f.metrics.RecordCacheResult(name, result)
		default:
			f.metrics.RecordCacheResult(name, "corrupt")
			log.Warn(ctx, "[FETCH_CACHE_CORRUPT] Ignoring unreadable cache", logging.Fields{
				"cache_path": f.CachePath(name),
				"error":      err.Error(),
			})
		}
	}

	data, err := f.download(ctx, name)
	if err != nil {
		return nil, err
	}

	log.Info(ctx, "[FETCH_DOWNLOADED] Dataset downloaded", logging.Fields{
		"url":   f.URL(name),
		"bytes": len(data),
	})

	if err := f.writeCache(name, data); err != nil {
		log.Warn(ctx, "[FETCH_CACHE_WRITE_ERROR] Failed to cache dataset", logging.Fields{
			"cache_path": f.CachePath(name),
			"error":      err.Error(),
		})
	}

	return data, nil
}

// FetchAll retrieves every named dataset concurrently. Nothing is returned
// unless all of them succeed.
func (f *Fetcher) FetchAll(ctx context.Context, names []string, forceRefresh bool) (map[string][]byte, error) {
	g, gctx := errgroup.WithContext(ctx)
	var mu sync.Mutex
	out := make(map[string][]byte, len(names))

	for _, name := range names {
		name := name
		g.Go(func() error {
			data, err := f.Fetch(gctx, name, forceRefresh)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			mu.Lock()
			out[name] = data
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// readCache returns the cached dataset. On a miss, result is "miss" or
// "stale" and err is non-nil; a non-empty result with nil err is a hit.
func (f *Fetcher) readCache(name string) ([]byte, string, error) {
	path := f.CachePath(name)
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, "miss", err
	}
	if err != nil {
		return nil, "", err
	}
	if f.now().Sub(info.ModTime()) >= f.cfg.MaxAge {
		return nil, "stale", fmt.Errorf("cache older than %s", f.cfg.MaxAge)
	}

	compressed, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	data, err := f.dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decompress cache: %w", err)
	}
	return data, "hit", nil
}

func (f *Fetcher) writeCache(name string, data []byte) error {
	if err := os.MkdirAll(f.cfg.CacheDir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(f.cfg.CacheDir, name+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(f.enc.EncodeAll(data, nil)); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.CachePath(name))
}

func (f *Fetcher) download(ctx context.Context, name string) ([]byte, error) {
	u := f.URL(name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &FetchError{URL: u, Err: err}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: u, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{URL: u, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: u, Err: err}
	}
	return data, nil
}

// FetchError reports a failed dataset download
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("HTTP %d from %s", e.StatusCode, e.URL)
	}
	return fmt.Sprintf("failed to fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether retrying later could succeed
func (e *FetchError) IsTransient() bool {
	return e.StatusCode == 0 || e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}
