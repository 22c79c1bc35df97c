// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package filter narrows merged search results down to what the configured
// policy allows.
package filter

import (
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/autobrr/burst/internal/models"
)

type stage struct {
	name    string
	enabled func(models.SearchRequest, models.FilterPolicy) bool
	run     func([]models.Result, models.SearchRequest, models.FilterPolicy) []models.Result
}

// stages run in this order. Dedup is not part of it since it needs resolved info hashes.
var stages = []stage{
	{
		name:    "keywords",
		enabled: func(_ models.SearchRequest, p models.FilterPolicy) bool { return p.KeywordsEnabled },
		run: func(in []models.Result, _ models.SearchRequest, p models.FilterPolicy) []models.Result {
			return Keywords(in, p.BlockKeywords, p.RequireKeywords)
		},
	},
	{
		name:    "size",
		enabled: func(_ models.SearchRequest, p models.FilterPolicy) bool { return p.SizeEnabled },
		run: func(in []models.Result, req models.SearchRequest, p models.FilterPolicy) []models.Result {
			return Size(in, p.SizeBoundsFor(req.Kind), p.IncludeUnknownSize)
		},
	},
	{
		name:    "resolution",
		enabled: func(_ models.SearchRequest, p models.FilterPolicy) bool { return p.ResolutionEnabled },
		run: func(in []models.Result, _ models.SearchRequest, p models.FilterPolicy) []models.Result {
			return keep(in, func(r models.Result) bool { return p.AllowsResolution(r.Resolution) })
		},
	},
	{
		name:    "release_type",
		enabled: func(_ models.SearchRequest, p models.FilterPolicy) bool { return p.ReleaseTypeEnabled },
		run: func(in []models.Result, _ models.SearchRequest, p models.FilterPolicy) []models.Result {
			return keep(in, func(r models.Result) bool { return p.AllowsReleaseType(r.ReleaseType) })
		},
	},
	{
		name:    "seeds",
		enabled: func(_ models.SearchRequest, p models.FilterPolicy) bool { return p.ExcludeNoSeed },
		run: func(in []models.Result, _ models.SearchRequest, _ models.FilterPolicy) []models.Result {
			return keep(in, func(r models.Result) bool { return r.Seeds > 0 })
		},
	},
	{
		name: "smart_match",
		enabled: func(req models.SearchRequest, p models.FilterPolicy) bool {
			return p.SmartMatch && req.Kind == models.SearchKindEpisode
		},
		run: func(in []models.Result, req models.SearchRequest, _ models.FilterPolicy) []models.Result {
			m := NewMatcher(req)
			return keep(in, func(r models.Result) bool { return m.Match(r.Name) })
		},
	},
}

// Apply runs every enabled stage in order. The input slice is not modified.
func Apply(results []models.Result, req models.SearchRequest, policy models.FilterPolicy) []models.Result {
	out := append([]models.Result(nil), results...)
	for _, s := range stages {
		if !s.enabled(req, policy) {
			continue
		}
		before := len(out)
		out = s.run(out, req, policy)
		log.Debug().
			Str("stage", s.name).
			Int("before", before).
			Int("after", len(out)).
			Msg("Applied result filter")
	}
	return out
}

// Keywords drops results whose name contains a blocked term or lacks a required
// one. Matching is a case-sensitive substring test; blank terms are ignored.
func Keywords(results []models.Result, block, require []string) []models.Result {
	block = cleanTerms(block)
	require = cleanTerms(require)
	if len(block) == 0 && len(require) == 0 {
		return results
	}

	return keep(results, func(r models.Result) bool {
		for _, term := range block {
			if strings.Contains(r.Name, term) {
				return false
			}
		}
		for _, term := range require {
			if !strings.Contains(r.Name, term) {
				return false
			}
		}
		return true
	})
}

// Size keeps results inside bounds. Results of unknown size pass only when includeUnknown is set.
func Size(results []models.Result, bounds models.SizeBounds, includeUnknown bool) []models.Result {
	return keep(results, func(r models.Result) bool {
		if !r.SizeKnown() {
			return includeUnknown
		}
		return bounds.Contains(r.SizeBytes)
	})
}

// Dedup keeps the first result for each info hash, compared case-insensitively.
// Results without an info hash are kept.
func Dedup(results []models.Result) []models.Result {
	seen := make(map[string]struct{}, len(results))
	return keep(results, func(r models.Result) bool {
		hash := strings.ToLower(r.InfoHash)
		if hash == "" {
			return true
		}
		if _, ok := seen[hash]; ok {
			return false
		}
		seen[hash] = struct{}{}
		return true
	})
}

func keep(results []models.Result, fn func(models.Result) bool) []models.Result {
	out := make([]models.Result, 0, len(results))
	for _, r := range results {
		if fn(r) {
			out = append(out, r)
		}
	}
	return out
}

func cleanTerms(terms []string) []string {
	out := terms[:0:0]
	for _, t := range terms {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
