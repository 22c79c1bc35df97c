// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package magnet turns result download references into magnet URIs.
package magnet

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/anacrolix/torrent/metainfo"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"github.com/autobrr/burst/internal/buildinfo"
	"github.com/autobrr/burst/internal/metrics"
	"github.com/autobrr/burst/internal/models"
	"github.com/autobrr/burst/internal/services/filter"
)

const (
	// DefaultMaxRedirects bounds how many redirects one reference may follow.
	DefaultMaxRedirects = 20

	maxTorrentBytes int64 = 16 << 20

	defaultTimeout = 20 * time.Second

	torrentContentType = "application/x-bittorrent"
)

// ResolutionFailure explains why a download reference could not be turned into a magnet.
type ResolutionFailure struct {
	Name   string
	URL    string
	Reason string
	Err    error
}

func (e *ResolutionFailure) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("resolve %q: %s: %v", e.Name, e.Reason, e.Err)
	}
	return fmt.Sprintf("resolve %q: %s", e.Name, e.Reason)
}

func (e *ResolutionFailure) Unwrap() error { return e.Err }

func (e *ResolutionFailure) Is(target error) bool {
	_, ok := target.(*ResolutionFailure)
	return ok
}

// Resolver resolves results concurrently with a bounded number of in-flight requests.
type Resolver struct {
	httpClient   *http.Client
	sem          *semaphore.Weighted
	maxRedirects int
	recorder     metrics.Recorder
}

type Option func(*Resolver)

// WithConcurrency sets the number of parallel resolutions. Non-positive values keep the default.
func WithConcurrency(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.sem = semaphore.NewWeighted(int64(n))
		}
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(r *Resolver) {
		if hc != nil {
			r.httpClient = hc
		}
	}
}

func WithRecorder(rec metrics.Recorder) Option {
	return func(r *Resolver) {
		if rec != nil {
			r.recorder = rec
		}
	}
}

func WithMaxRedirects(n int) Option {
	return func(r *Resolver) {
		if n >= 0 {
			r.maxRedirects = n
		}
	}
}

// DefaultConcurrency is four resolutions per available CPU.
func DefaultConcurrency() int {
	return runtime.GOMAXPROCS(0) * 4
}

func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		httpClient:   &http.Client{Timeout: defaultTimeout},
		sem:          semaphore.NewWeighted(int64(DefaultConcurrency())),
		maxRedirects: DefaultMaxRedirects,
		recorder:     metrics.Nop{},
	}
	for _, opt := range opts {
		opt(r)
	}

	// Redirects are followed by hand so magnet locations can be intercepted.
	client := *r.httpClient
	client.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	r.httpClient = &client

	return r
}

// Resolve resolves every result, drops the ones that fail and removes duplicate
// info hashes, keeping the first occurrence. Input order is preserved.
func (r *Resolver) Resolve(ctx context.Context, results []models.Result) []models.Result {
	type slot struct {
		result models.Result
		ok     bool
	}

	slots := make([]slot, len(results))
	var wg sync.WaitGroup

	for i, res := range results {
		if err := r.sem.Acquire(ctx, 1); err != nil {
			log.Debug().Err(err).Int("pending", len(results)-i).Msg("Magnet resolution cancelled")
			break
		}

		wg.Add(1)
		go func(i int, res models.Result) {
			defer wg.Done()
			defer r.sem.Release(1)
			defer func() {
				if p := recover(); p != nil {
					log.Error().
						Str("name", res.Name).
						Interface("panic", p).
						Msg("Recovered from panic in magnet resolution")
				}
			}()

			resolved, err := r.ResolveOne(ctx, res)
			if err != nil {
				r.recorder.RecordMagnetResolution("failed")
				log.Warn().Err(err).Str("provider", res.Provider).Msg("Could not resolve download reference")
				return
			}
			slots[i] = slot{result: resolved, ok: true}
		}(i, res)
	}

	wg.Wait()

	out := make([]models.Result, 0, len(results))
	for _, s := range slots {
		if s.ok {
			out = append(out, s.result)
		}
	}

	deduped := filter.Dedup(out)
	log.Debug().
		Int("requested", len(results)).
		Int("resolved", len(out)).
		Int("unique", len(deduped)).
		Msg("Resolved download references")

	return deduped
}

// ResolveOne returns result with DownloadRef set to a magnet URI and InfoHash filled in.
func (r *Resolver) ResolveOne(ctx context.Context, result models.Result) (models.Result, error) {
	ref := strings.TrimSpace(result.DownloadRef)

	if models.IsMagnetURI(ref) {
		r.recorder.RecordMagnetResolution("magnet")
		return withMagnet(result, ref, ""), nil
	}

	for hop := 0; hop <= r.maxRedirects; hop++ {
		next, resolved, err := r.step(ctx, result, ref)
		if err != nil {
			return models.Result{}, err
		}
		if resolved != nil {
			r.recorder.RecordMagnetResolution("resolved")
			return *resolved, nil
		}
		if models.IsMagnetURI(next) {
			r.recorder.RecordMagnetResolution("resolved")
			return withMagnet(result, next, ""), nil
		}
		ref = next
	}

	return models.Result{}, &ResolutionFailure{
		Name:   result.Name,
		URL:    ref,
		Reason: fmt.Sprintf("stopped after %d redirects", r.maxRedirects),
	}
}

// step issues one request. It returns either the next location to visit or
// the resolved result.
func (r *Resolver) step(ctx context.Context, result models.Result, ref string) (string, *models.Result, error) {
	fail := func(reason string, err error) (string, *models.Result, error) {
		return "", nil, &ResolutionFailure{Name: result.Name, URL: ref, Reason: reason, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return fail("invalid download url", err)
	}
	req.Header.Set("User-Agent", buildinfo.UserAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fail("request failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= http.StatusMultipleChoices && resp.StatusCode < http.StatusBadRequest:
		location := strings.TrimSpace(resp.Header.Get("Location"))
		if location == "" {
			return fail(fmt.Sprintf("redirect %d without location", resp.StatusCode), nil)
		}
		if models.IsMagnetURI(location) {
			return location, nil, nil
		}
		next, err := resp.Request.URL.Parse(location)
		if err != nil {
			return fail("invalid redirect location", err)
		}
		return next.String(), nil, nil

	case resp.StatusCode == http.StatusOK:
		mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
		if mediaType != torrentContentType {
			return fail(fmt.Sprintf("unexpected content type %q", resp.Header.Get("Content-Type")), nil)
		}

		resolved, err := fromTorrent(result, resp.Body)
		if err != nil {
			return fail("invalid torrent file", err)
		}
		return "", &resolved, nil

	default:
		return fail(fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}
}

var errTorrentTooLarge = errors.New("torrent file exceeds size limit")

func fromTorrent(result models.Result, body io.Reader) (models.Result, error) {
	data, err := io.ReadAll(io.LimitReader(body, maxTorrentBytes+1))
	if err != nil {
		return models.Result{}, err
	}
	if int64(len(data)) > maxTorrentBytes {
		return models.Result{}, errTorrentTooLarge
	}

	mi, err := metainfo.Load(bytes.NewReader(data))
	if err != nil {
		return models.Result{}, err
	}
	info, err := mi.UnmarshalInfo()
	if err != nil {
		return models.Result{}, err
	}

	hash := mi.HashInfoBytes()
	magnet := mi.Magnet(&hash, &info)
	return withMagnet(result, magnet.String(), hash.HexString()), nil
}

// withMagnet stores uri on the result. The info hash is taken from the URI when
// not supplied and not already known.
func withMagnet(result models.Result, uri, hash string) models.Result {
	result.DownloadRef = uri
	if hash != "" {
		result.InfoHash = strings.ToLower(hash)
		return result
	}
	if result.InfoHash == "" {
		if m, err := metainfo.ParseMagnetUri(uri); err == nil && m.InfoHash != (metainfo.Hash{}) {
			result.InfoHash = strings.ToLower(m.InfoHash.HexString())
		}
	}
	return result
}
