// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package search runs the full pipeline for one request: indexer fan-out,
// filtering, magnet resolution and ranking.
package search

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/autobrr/burst/internal/metrics"
	"github.com/autobrr/burst/internal/models"
	"github.com/autobrr/burst/internal/notify"
	"github.com/autobrr/burst/internal/services/filter"
	"github.com/autobrr/burst/internal/services/jackett"
	"github.com/autobrr/burst/internal/services/magnet"
	"github.com/autobrr/burst/internal/services/ranking"
)

// SettingsProvider returns the settings a search should run with. It is read
// once per call so configuration reloads apply to the next search.
type SettingsProvider interface {
	SearchSettings() models.SearchSettings
}

// StatusSink persists the outcome of a settings validation.
type StatusSink interface {
	SetValidationStatus(status string) error
}

type Service struct {
	settings   SettingsProvider
	status     StatusSink
	notifier   notify.Notifier
	recorder   metrics.Recorder
	httpClient *http.Client
}

type Option func(*Service)

func WithStatusSink(sink StatusSink) Option {
	return func(s *Service) { s.status = sink }
}

func WithNotifier(n notify.Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

func WithRecorder(r metrics.Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithHTTPClient sets the client used for Jackett requests and torrent downloads.
func WithHTTPClient(hc *http.Client) Option {
	return func(s *Service) { s.httpClient = hc }
}

func NewService(settings SettingsProvider, opts ...Option) *Service {
	s := &Service{
		settings: settings,
		notifier: notify.Nop{},
		recorder: metrics.Nop{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) client(settings models.SearchSettings) *jackett.Client {
	client := jackett.NewClient(settings.JackettHost, settings.JackettAPIKey, settings.JackettTimeout)
	if s.httpClient != nil {
		client.WithHTTPClient(s.httpClient)
	}
	return client
}

// checkSettings validates host and API key, notifying the user when they are unusable.
func (s *Service) checkSettings(settings models.SearchSettings) error {
	if err := jackett.ValidateSettings(settings.JackettHost, settings.JackettAPIKey); err != nil {
		log.Error().
			Err(err).
			Str("host", settings.JackettHost).
			Str("api_key", jackett.CensorAPIKey(settings.JackettAPIKey)).
			Msg("Jackett settings are invalid")
		s.notifier.Notify(notify.CategorySettings, "Jackett settings are invalid: "+err.Error())
		return err
	}
	return nil
}

// Search runs a request through the whole pipeline. It never fails: problems
// are logged and reported through the notifier and an empty list is returned.
func (s *Service) Search(ctx context.Context, req models.SearchRequest, progress jackett.ProgressFunc) (results []models.Result) {
	start := time.Now()
	results = []models.Result{}

	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Str("kind", string(req.Kind)).
				Msg("Recovered from panic during search")
			s.notifier.Notify(notify.CategoryCritical, "Search failed with an unexpected error, see the log for details")
			results = []models.Result{}
		}
	}()

	s.recorder.RecordSearch(string(req.Kind))

	if req.Kind == models.SearchKindAnime {
		log.Warn().Str("title", req.Title).Msg("Anime searches are not supported")
		return results
	}

	settings := s.settings.SearchSettings()
	if err := s.checkSettings(settings); err != nil {
		return results
	}

	if title := req.SearchTitle(settings.PreferredLanguage); title != req.Title {
		log.Debug().
			Str("language", settings.PreferredLanguage).
			Str("title", title).
			Msg("Using localized search title")
		req.Title = title
	}

	client := s.client(settings)
	orchestrator := jackett.NewService(client,
		jackett.WithNotifier(s.notifier),
		jackett.WithRecorder(s.recorder),
	)

	merged, outcome, err := orchestrator.Search(ctx, req, settings.Policy, progress)
	s.persistValidation(client.LastValidation())
	if err != nil {
		log.Error().Err(err).Str("kind", string(req.Kind)).Msg("Search against Jackett failed")
		return results
	}

	filtered := filter.Apply(merged, req, settings.Policy)

	resolver := magnet.NewResolver(
		magnet.WithConcurrency(settings.ResolverConcurrency),
		magnet.WithRecorder(s.recorder),
		magnet.WithHTTPClient(s.httpClient),
	)
	resolved := resolver.Resolve(ctx, filtered)

	results = ranking.Rank(resolved, settings.Sort, settings.MaxResults)
	s.recorder.RecordResults(len(results))

	log.Info().
		Str("kind", string(req.Kind)).
		Str("title", req.Title).
		Int("indexers", outcome.Indexers).
		Int("merged", len(merged)).
		Int("filtered", len(filtered)).
		Int("resolved", len(resolved)).
		Int("results", len(results)).
		Str("sort", settings.Sort.String()).
		Dur("elapsed", time.Since(start)).
		Msg("Search finished")

	return results
}

// Indexers lists the configured indexers with their capabilities.
func (s *Service) Indexers(ctx context.Context) ([]models.Indexer, error) {
	settings := s.settings.SearchSettings()
	if err := jackett.ValidateSettings(settings.JackettHost, settings.JackettAPIKey); err != nil {
		return nil, err
	}
	return s.client(settings).ListIndexers(ctx)
}

// Validate checks the configured connection and stores the resulting status.
func (s *Service) Validate(ctx context.Context) jackett.ValidationStatus {
	settings := s.settings.SearchSettings()

	var status jackett.ValidationStatus
	if err := s.checkSettings(settings); err != nil {
		status = jackett.ValidationStatus{Message: err.Error(), CheckedAt: time.Now()}
	} else {
		status = s.client(settings).Validate(ctx)
	}

	s.persistValidation(status)

	if status.OK {
		s.notifier.Notify(notify.CategoryInfo, "Successfully connected to Jackett")
	} else {
		s.notifier.Notify(notify.CategorySettings, fmt.Sprintf("Could not validate Jackett settings: %s", status.Message))
	}
	return status
}

func (s *Service) persistValidation(status jackett.ValidationStatus) {
	if s.status == nil || status.CheckedAt.IsZero() {
		return
	}
	if err := s.status.SetValidationStatus(status.Message); err != nil {
		log.Warn().Err(err).Msg("Could not store validation status")
	}
}
