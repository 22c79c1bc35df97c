// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package jackett

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/autobrr/burst/internal/models"
)

// Query is one concrete parameter set to send to one indexer.
type Query struct {
	Type   models.SearchType
	Params url.Values
	// SeasonFilter, when non-zero, keeps only results whose name carries this season.
	SeasonFilter int
}

// Label is a short description used in logs and progress messages.
func (q Query) Label() string {
	if q.Params == nil {
		return ""
	}
	if v := q.Params.Get("imdbid"); v != "" {
		return "imdb " + v
	}
	return q.Params.Encode()
}

// PlanQuery builds the parameter set for one indexer. It is a pure function of
// the indexer capabilities, the request and the policy.
func PlanQuery(idx models.Indexer, req models.SearchRequest, policy models.FilterPolicy) Query {
	searchType, caps := EffectiveSearch(idx, req.Kind.SearchType())

	params := url.Values{}
	params.Set("t", searchType.Function())

	// imdbid cannot be combined with season/ep in the Torznab protocol.
	if req.IMDbID != "" && policy.SearchByIMDb && caps.Has(models.CapIMDbID) {
		params.Set("imdbid", req.IMDbID)
		return Query{Type: searchType, Params: params}
	}

	var q strings.Builder
	q.WriteString(strings.TrimSpace(req.Title))

	if req.Year > 0 {
		if caps.Has(models.CapYear) {
			params.Set("year", strconv.Itoa(req.Year))
		} else {
			fmt.Fprintf(&q, " %d", req.Year)
		}
	}

	seasonStructured := false
	seasonInline := false
	if req.Season > 0 {
		if caps.Has(models.CapSeason) {
			params.Set("season", strconv.Itoa(req.Season))
			seasonStructured = true
		} else {
			fmt.Fprintf(&q, " S%02d", req.Season)
			seasonInline = true
		}
	}

	if req.Episode > 0 {
		switch {
		case seasonStructured && caps.Has(models.CapEpisode):
			params.Set("ep", strconv.Itoa(req.Episode))
		case seasonInline:
			fmt.Fprintf(&q, "E%02d", req.Episode)
		default:
			fmt.Fprintf(&q, " E%02d", req.Episode)
		}
	}

	if text := strings.TrimSpace(q.String()); text != "" {
		params.Set("q", text)
	}

	return Query{Type: searchType, Params: params}
}

// PlanQueries builds every parameter set to send to one indexer for a request:
// the base query, the smart TV year variants, and the extra season query for
// episode searches. Identical parameter sets are sent once.
func PlanQueries(idx models.Indexer, req models.SearchRequest, policy models.FilterPolicy) []Query {
	var planned []Query
	seen := make(map[string]struct{})
	add := func(q Query) {
		key := q.Params.Encode()
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		planned = append(planned, q)
	}

	if policy.SmartYearVariants && req.Kind.SearchType() == models.SearchTypeTV {
		for _, year := range yearCandidates(req) {
			variant := req
			variant.Year = year
			add(PlanQuery(idx, variant, policy))
		}
	} else {
		add(PlanQuery(idx, req, policy))
	}

	if policy.SeasonOnEpisode && req.Kind == models.SearchKindEpisode && req.Season > 0 && req.Episode > 0 {
		seasonReq := req
		seasonReq.Kind = models.SearchKindSeason
		seasonReq.Episode = 0
		seasonReq.Year = 0
		q := PlanQuery(idx, seasonReq, policy)
		q.SeasonFilter = req.Season
		add(q)
	}

	return planned
}

// yearCandidates returns the episode, season and show years followed by "no year",
// without duplicates.
func yearCandidates(req models.SearchRequest) []int {
	candidates := append(req.YearHypotheses(), 0)
	if req.Year > 0 {
		candidates = append([]int{req.Year}, candidates...)
	}

	out := make([]int, 0, len(candidates))
	seen := make(map[int]struct{}, len(candidates))
	for _, y := range candidates {
		if _, ok := seen[y]; ok {
			continue
		}
		seen[y] = struct{}{}
		out = append(out, y)
	}
	return out
}

var seasonPatterns sync.Map // int -> *regexp.Regexp

// seasonPattern matches "SNN" or "Season NN" as a whole word.
func seasonPattern(season int) *regexp.Regexp {
	if re, ok := seasonPatterns.Load(season); ok {
		return re.(*regexp.Regexp)
	}
	re := regexp.MustCompile(`(?i)\bS(eason )?` + regexp.QuoteMeta(fmt.Sprintf("%02d", season)) + `\b`)
	actual, _ := seasonPatterns.LoadOrStore(season, re)
	return actual.(*regexp.Regexp)
}

// MatchesSeason reports whether a release name carries the given season.
func MatchesSeason(name string, season int) bool {
	return seasonPattern(season).MatchString(name)
}
