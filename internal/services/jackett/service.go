// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package jackett

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/autobrr/burst/internal/metrics"
	"github.com/autobrr/burst/internal/models"
	"github.com/autobrr/burst/internal/notify"
)

// IndexerSource is the subset of the Jackett client the search service needs.
type IndexerSource interface {
	ListIndexers(ctx context.Context) ([]models.Indexer, error)
	Query(ctx context.Context, idx models.Indexer, params url.Values) ([]models.Result, error)
}

// ProgressFunc receives progress after each finished sub-query. label names the
// indexers that are still outstanding.
type ProgressFunc func(completed, total int, label string)

// Service fans a search request out to every configured indexer and merges the answers.
type Service struct {
	source   IndexerSource
	notifier notify.Notifier
	recorder metrics.Recorder
}

type ServiceOption func(*Service)

func WithNotifier(n notify.Notifier) ServiceOption {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

func WithRecorder(r metrics.Recorder) ServiceOption {
	return func(s *Service) {
		if r != nil {
			s.recorder = r
		}
	}
}

func NewService(source IndexerSource, opts ...ServiceOption) *Service {
	s := &Service{
		source:   source,
		notifier: notify.Nop{},
		recorder: metrics.Nop{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Indexers returns the configured indexers.
func (s *Service) Indexers(ctx context.Context) ([]models.Indexer, error) {
	return s.source.ListIndexers(ctx)
}

// Outcome counts how the sub-queries of one search ended.
type Outcome struct {
	Indexers       int `json:"indexers"`
	Queries        int `json:"queries"`
	Succeeded      int `json:"succeeded"`
	TimedOut       int `json:"timed_out"`
	RateLimited    int `json:"rate_limited"`
	Failed         int `json:"failed"`
	ProtocolErrors int `json:"protocol_errors"`
	ParseErrors    int `json:"parse_errors"`
}

type searchTask struct {
	indexer models.Indexer
	query   Query
}

type taskResult struct {
	task    searchTask
	results []models.Result
	err     error
	elapsed time.Duration
}

// progressTracker serializes progress callbacks coming from task goroutines.
type progressTracker struct {
	mu          sync.Mutex
	completed   int
	total       int
	outstanding map[string]int
	callback    ProgressFunc
}

func newProgressTracker(tasks []searchTask, callback ProgressFunc) *progressTracker {
	p := &progressTracker{
		total:       len(tasks),
		outstanding: make(map[string]int),
		callback:    callback,
	}
	for _, t := range tasks {
		p.outstanding[t.indexer.DisplayName()]++
	}
	return p
}

func (p *progressTracker) done(task searchTask) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.completed++
	name := task.indexer.DisplayName()
	if p.outstanding[name]--; p.outstanding[name] <= 0 {
		delete(p.outstanding, name)
	}

	if p.callback != nil {
		p.callback(p.completed, p.total, p.label())
	}
}

func (p *progressTracker) label() string {
	if len(p.outstanding) == 0 {
		return ""
	}
	names := make([]string, 0, len(p.outstanding))
	for name := range p.outstanding {
		names = append(names, name)
	}
	sort.Strings(names)
	return "Waiting for " + strings.Join(names, ", ")
}

// Search lists the indexers once, plans the sub-queries for each and runs them
// concurrently. A failing indexer never affects the others. Results are merged by
// name with the last answer winning. A cancelled context returns what was merged
// so far together with the context error.
func (s *Service) Search(ctx context.Context, req models.SearchRequest, policy models.FilterPolicy, progress ProgressFunc) ([]models.Result, Outcome, error) {
	var outcome Outcome

	indexers, err := s.source.ListIndexers(ctx)
	if err != nil {
		s.notifyFailure(err)
		return nil, outcome, fmt.Errorf("list indexers: %w", err)
	}
	outcome.Indexers = len(indexers)

	if len(indexers) == 0 {
		log.Warn().Msg("No configured indexers found in Jackett")
		return nil, outcome, nil
	}

	tasks := s.planTasks(indexers, req, policy)
	outcome.Queries = len(tasks)

	tracker := newProgressTracker(tasks, progress)
	resultsChan := make(chan taskResult, len(tasks))

	for _, task := range tasks {
		go func(t searchTask) {
			defer func() {
				if r := recover(); r != nil {
					err := fmt.Errorf("panic in indexer goroutine: %v", r)
					log.Error().
						Err(err).
						Str("indexer_id", t.indexer.ID).
						Str("indexer", t.indexer.DisplayName()).
						Msg("Recovered from panic in indexer search")
					tracker.done(t)
					resultsChan <- taskResult{task: t, err: err}
				}
			}()

			res := s.runTask(ctx, t)
			tracker.done(t)
			resultsChan <- res
		}(task)
	}

	var (
		merged        []models.Result
		positions     = make(map[string]int)
		protocolBy    = make(map[string]string)
		failedBy      = make(map[string]struct{})
		rateLimitedBy = make(map[string]struct{})
	)

	for range tasks {
		select {
		case <-ctx.Done():
			return merged, outcome, ctx.Err()
		case res := <-resultsChan:
			label := res.task.indexer.DisplayName()
			s.recorder.RecordIndexerQuery(label, outcomeLabel(res.err), res.elapsed)

			if res.err != nil {
				var protoErr *ProtocolError
				var parseErr *ParseError
				switch {
				case errors.Is(res.err, context.Canceled):
				case isTimeoutError(res.err) || errors.Is(res.err, &TransportTimeoutError{}):
					outcome.TimedOut++
					failedBy[label] = struct{}{}
				case errors.As(res.err, &protoErr):
					outcome.ProtocolErrors++
					protocolBy[label] = protoErr.Description
				case errors.As(res.err, &parseErr):
					outcome.ParseErrors++
				case isRateLimited(res.err):
					outcome.RateLimited++
					rateLimitedBy[label] = struct{}{}
				default:
					outcome.Failed++
					failedBy[label] = struct{}{}
				}
				log.Warn().
					Err(res.err).
					Str("indexer", label).
					Str("query", res.task.query.Label()).
					Dur("elapsed", res.elapsed).
					Msg("Indexer search failed")
				continue
			}

			outcome.Succeeded++
			for _, result := range res.results {
				if pos, ok := positions[result.Name]; ok {
					merged[pos] = result
					continue
				}
				positions[result.Name] = len(merged)
				merged = append(merged, result)
			}
		}
	}

	s.notifyOutcome(protocolBy, failedBy, rateLimitedBy)

	if outcome.Succeeded < outcome.Queries {
		log.Warn().
			Int("indexers_requested", outcome.Indexers).
			Int("queries_requested", outcome.Queries).
			Int("queries_successful", outcome.Succeeded).
			Int("queries_failed", outcome.Failed).
			Int("queries_timed_out", outcome.TimedOut).
			Int("queries_rate_limited", outcome.RateLimited).
			Int("protocol_errors", outcome.ProtocolErrors).
			Int("parse_errors", outcome.ParseErrors).
			Msg("Some indexers failed or timed out during search")
	}

	log.Debug().
		Int("indexers_requested", outcome.Indexers).
		Int("queries_successful", outcome.Succeeded).
		Int("results", len(merged)).
		Msg("Jackett search completion summary")

	return merged, outcome, nil
}

func (s *Service) planTasks(indexers []models.Indexer, req models.SearchRequest, policy models.FilterPolicy) []searchTask {
	requested := req.Kind.SearchType()
	var (
		tasks       []searchTask
		unsupported int
	)

	for _, idx := range indexers {
		if requested != models.SearchTypeCommon && !idx.Caps(requested).Available {
			unsupported++
			log.Debug().
				Str("indexer", idx.DisplayName()).
				Str("search_type", requested.String()).
				Msg("Indexer has no capability for the requested search type, using plain search")
		}

		for _, q := range PlanQueries(idx, req, policy) {
			tasks = append(tasks, searchTask{indexer: idx, query: q})
		}
	}

	if unsupported > 0 && unsupported == len(indexers) {
		s.notifier.Notify(notify.CategoryInfo,
			fmt.Sprintf("Jackett has no %s capabilities on any indexer, falling back to general search", requested))
	}

	return tasks
}

func (s *Service) runTask(ctx context.Context, t searchTask) taskResult {
	start := time.Now()
	results, err := s.source.Query(ctx, t.indexer, t.query.Params)
	res := taskResult{task: t, err: err, elapsed: time.Since(start)}
	if err != nil {
		return res
	}

	if season := t.query.SeasonFilter; season > 0 {
		kept := results[:0]
		for _, r := range results {
			if MatchesSeason(r.Name, season) {
				kept = append(kept, r)
			}
		}
		results = kept
	}

	log.Debug().
		Str("indexer", t.indexer.DisplayName()).
		Str("query", t.query.Label()).
		Int("results", len(results)).
		Dur("elapsed", res.elapsed).
		Msg("Indexer search completed")

	res.results = results
	return res
}

func (s *Service) notifyOutcome(protocolBy map[string]string, failedBy, rateLimitedBy map[string]struct{}) {
	if len(protocolBy) > 0 {
		names := sortedKeys(protocolBy)
		parts := make([]string, 0, len(names))
		for _, name := range names {
			parts = append(parts, fmt.Sprintf("%s: %s", name, protocolBy[name]))
		}
		s.notifier.Notify(notify.CategoryProtocol, "Jackett error: "+strings.Join(parts, "; "))
	}

	if len(failedBy) > 0 {
		names := sortedKeys(failedBy)
		s.notifier.Notify(notify.CategoryConnection, "Unable to reach indexers: "+strings.Join(names, ", "))
	}

	if len(rateLimitedBy) > 0 {
		names := sortedKeys(rateLimitedBy)
		s.notifier.Notify(notify.CategoryConnection, "Indexers are rate limiting requests: "+strings.Join(names, ", "))
	}
}

func (s *Service) notifyFailure(err error) {
	var protoErr *ProtocolError
	if errors.As(err, &protoErr) {
		s.notifier.Notify(notify.CategoryProtocol, "Jackett error: "+protoErr.Description)
		return
	}
	if errors.Is(err, context.Canceled) {
		return
	}
	s.notifier.Notify(notify.CategoryConnection, "Unable to connect to Jackett: "+err.Error())
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
