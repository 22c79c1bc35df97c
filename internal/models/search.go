// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package models

import (
	"strings"
)

// SearchKind is the kind of lookup a client asks for.
type SearchKind string

const (
	SearchKindMovie   SearchKind = "movie"
	SearchKindSeason  SearchKind = "season"
	SearchKindEpisode SearchKind = "episode"
	SearchKindGeneral SearchKind = "general"
	SearchKindAnime   SearchKind = "anime"
)

// ParseSearchKind maps a method name onto a SearchKind, defaulting to general.
func ParseSearchKind(value string) SearchKind {
	switch SearchKind(strings.ToLower(strings.TrimSpace(value))) {
	case SearchKindMovie:
		return SearchKindMovie
	case SearchKindSeason:
		return SearchKindSeason
	case SearchKindEpisode:
		return SearchKindEpisode
	case SearchKindAnime:
		return SearchKindAnime
	default:
		return SearchKindGeneral
	}
}

// SearchType returns the Torznab search type the kind is requested as.
func (k SearchKind) SearchType() SearchType {
	switch k {
	case SearchKindMovie:
		return SearchTypeMovie
	case SearchKindSeason, SearchKindEpisode:
		return SearchTypeTV
	default:
		return SearchTypeCommon
	}
}

// SearchRequest describes what the client is looking for. Zero values mean "not supplied".
type SearchRequest struct {
	Kind  SearchKind `json:"kind"`
	Title string     `json:"title"`
	// Titles holds localized titles keyed by lowercase ISO-639-1 code.
	Titles map[string]string `json:"titles,omitempty"`

	Year            int    `json:"year,omitempty"`
	Season          int    `json:"season,omitempty"`
	Episode         int    `json:"episode,omitempty"`
	AbsoluteEpisode int    `json:"absolute_episode,omitempty"`
	IMDbID          string `json:"imdb_id,omitempty"`

	// Year hypotheses for the smart matcher and TV year variants.
	EpisodeYear int `json:"episode_year,omitempty"`
	SeasonYear  int `json:"season_year,omitempty"`
	ShowYear    int `json:"show_year,omitempty"`

	// SeasonName is the raw season label; use NormalizedSeasonName for matching.
	SeasonName string `json:"season_name,omitempty"`
}

// SearchTitle picks the localized title for language when one exists.
func (r SearchRequest) SearchTitle(language string) string {
	language = strings.ToLower(strings.TrimSpace(language))
	if language != "" && len(r.Titles) > 0 {
		for code, title := range r.Titles {
			if strings.ToLower(code) == language && strings.TrimSpace(title) != "" {
				return title
			}
		}
	}
	return r.Title
}

// NormalizedSeasonName lowercases the season label and suppresses it when it
// would match every result anyway: when it appears in the title or contains
// the word "season".
func (r SearchRequest) NormalizedSeasonName() string {
	name := strings.ToLower(strings.TrimSpace(r.SeasonName))
	if name == "" {
		return ""
	}
	if strings.Contains(strings.ToLower(r.Title), name) || strings.Contains(name, "season") {
		return ""
	}
	return name
}

// YearHypotheses returns the distinct non-zero years a matching release may carry,
// in episode, season, show order.
func (r SearchRequest) YearHypotheses() []int {
	years := make([]int, 0, 3)
	for _, y := range []int{r.EpisodeYear, r.SeasonYear, r.ShowYear} {
		if y <= 0 {
			continue
		}
		dup := false
		for _, seen := range years {
			if seen == y {
				dup = true
				break
			}
		}
		if !dup {
			years = append(years, y)
		}
	}
	return years
}
