// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/autobrr/burst/internal/models"
	"github.com/autobrr/burst/internal/services/jackett"
)

// localizedTitlePrefix marks query parameters carrying a localized title,
// e.g. title_de=Beispiel.
const localizedTitlePrefix = "title_"

// Searcher is the search service as seen by the HTTP layer.
type Searcher interface {
	Search(ctx context.Context, req models.SearchRequest, progress jackett.ProgressFunc) []models.Result
	Indexers(ctx context.Context) ([]models.Indexer, error)
	Validate(ctx context.Context) jackett.ValidationStatus
}

// SearchHandler serves the search, indexer and validation endpoints.
type SearchHandler struct {
	service Searcher
}

func NewSearchHandler(service Searcher) *SearchHandler {
	return &SearchHandler{service: service}
}

func (h *SearchHandler) Routes(r chi.Router) {
	r.Get("/indexers", h.ListIndexers)
	r.Post("/validate", h.Validate)

	r.Route("/search", func(r chi.Router) {
		r.Get("/", h.SearchGeneral)
		r.Post("/", h.SearchRequest)
		r.Get("/movie", h.SearchMovie)
		r.Get("/season", h.SearchSeason)
		r.Get("/episode", h.SearchEpisode)
	})
}

func (h *SearchHandler) ListIndexers(w http.ResponseWriter, r *http.Request) {
	indexers, err := h.service.Indexers(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list indexers")
		RespondError(w, http.StatusBadGateway, "Failed to list indexers")
		return
	}
	if indexers == nil {
		indexers = []models.Indexer{}
	}
	RespondJSON(w, http.StatusOK, indexers)
}

func (h *SearchHandler) Validate(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, h.service.Validate(r.Context()))
}

func (h *SearchHandler) SearchGeneral(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		RespondError(w, http.StatusBadRequest, "query is required")
		return
	}
	h.run(w, r, models.SearchRequest{Kind: models.SearchKindGeneral, Title: query})
}

// SearchRequest accepts a full search request as a JSON body.
func (h *SearchHandler) SearchRequest(w http.ResponseWriter, r *http.Request) {
	var req models.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Kind = models.ParseSearchKind(string(req.Kind))
	if strings.TrimSpace(req.Title) == "" {
		RespondError(w, http.StatusBadRequest, "title is required")
		return
	}
	h.run(w, r, req)
}

func (h *SearchHandler) SearchMovie(w http.ResponseWriter, r *http.Request) {
	h.fromQuery(w, r, models.SearchKindMovie, "year")
}

func (h *SearchHandler) SearchSeason(w http.ResponseWriter, r *http.Request) {
	h.fromQuery(w, r, models.SearchKindSeason, "season")
}

func (h *SearchHandler) SearchEpisode(w http.ResponseWriter, r *http.Request) {
	h.fromQuery(w, r, models.SearchKindEpisode, "season", "episode")
}

func (h *SearchHandler) fromQuery(w http.ResponseWriter, r *http.Request, kind models.SearchKind, required ...string) {
	req, err := requestFromQuery(kind, r.URL.Query(), required...)
	if err != nil {
		RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.run(w, r, req)
}

func (h *SearchHandler) run(w http.ResponseWriter, r *http.Request, req models.SearchRequest) {
	results := h.service.Search(r.Context(), req, nil)
	RespondJSON(w, http.StatusOK, results)
}

func requestFromQuery(kind models.SearchKind, q url.Values, required ...string) (models.SearchRequest, error) {
	req := models.SearchRequest{
		Kind:       kind,
		Title:      strings.TrimSpace(q.Get("title")),
		IMDbID:     strings.TrimSpace(q.Get("imdb_id")),
		SeasonName: strings.TrimSpace(q.Get("season_name")),
	}
	if req.Title == "" {
		return req, fmt.Errorf("title is required")
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"year", &req.Year},
		{"season", &req.Season},
		{"episode", &req.Episode},
		{"absolute_episode", &req.AbsoluteEpisode},
		{"episode_year", &req.EpisodeYear},
		{"season_year", &req.SeasonYear},
		{"show_year", &req.ShowYear},
	}
	for _, p := range ints {
		raw := strings.TrimSpace(q.Get(p.name))
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return req, fmt.Errorf("%s must be a non-negative integer", p.name)
		}
		*p.dst = v
	}

	for _, name := range required {
		if strings.TrimSpace(q.Get(name)) == "" {
			return req, fmt.Errorf("%s is required", name)
		}
	}

	for key, values := range q {
		code, ok := strings.CutPrefix(key, localizedTitlePrefix)
		if !ok || code == "" || len(values) == 0 {
			continue
		}
		if req.Titles == nil {
			req.Titles = make(map[string]string)
		}
		req.Titles[strings.ToLower(code)] = values[0]
	}

	return req, nil
}
