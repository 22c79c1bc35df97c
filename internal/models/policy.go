// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package models

import (
	"fmt"
	"slices"
)

// BytesPerGB converts configured GB bounds to bytes.
const BytesPerGB = 1024 * 1024 * 1024

// SizeBounds is an inclusive size window in GB.
type SizeBounds struct {
	MinGB float64 `json:"min_gb"`
	MaxGB float64 `json:"max_gb"`
}

// Contains reports whether size (in bytes) lies inside the window.
func (b SizeBounds) Contains(size int64) bool {
	minBytes := b.MinGB * BytesPerGB
	maxBytes := b.MaxGB * BytesPerGB
	s := float64(size)
	return s >= minBytes && s <= maxBytes
}

// FilterPolicy is the immutable set of filter toggles and parameters applied to one search.
type FilterPolicy struct {
	KeywordsEnabled bool     `json:"keywords_enabled"`
	BlockKeywords   []string `json:"block_keywords,omitempty"`
	RequireKeywords []string `json:"require_keywords,omitempty"`

	SizeEnabled        bool       `json:"size_enabled"`
	IncludeUnknownSize bool       `json:"include_unknown_size"`
	MovieSize          SizeBounds `json:"movie_size"`
	SeasonSize         SizeBounds `json:"season_size"`
	EpisodeSize        SizeBounds `json:"episode_size"`
	GeneralSize        SizeBounds `json:"general_size"`

	ResolutionEnabled  bool              `json:"resolution_enabled"`
	AllowedResolutions []ResolutionClass `json:"allowed_resolutions,omitempty"`

	ReleaseTypeEnabled  bool          `json:"release_type_enabled"`
	AllowedReleaseTypes []ReleaseType `json:"allowed_release_types,omitempty"`

	ExcludeNoSeed bool `json:"exclude_no_seed"`
	SmartMatch    bool `json:"smart_match"`

	// Query shaping
	SearchByIMDb      bool `json:"search_by_imdb"`
	SeasonOnEpisode   bool `json:"season_on_episode"`
	SmartYearVariants bool `json:"smart_year_variants"`
}

// DefaultFilterPolicy mirrors the defaults written to a fresh config file.
func DefaultFilterPolicy() FilterPolicy {
	return FilterPolicy{
		IncludeUnknownSize:  true,
		MovieSize:           SizeBounds{MinGB: 0.5, MaxGB: 30},
		SeasonSize:          SizeBounds{MinGB: 0.5, MaxGB: 10},
		EpisodeSize:         SizeBounds{MinGB: 0, MaxGB: 1},
		GeneralSize:         SizeBounds{MinGB: 0, MaxGB: 100},
		ResolutionEnabled:   true,
		AllowedResolutions:  DefaultResolutions(),
		ReleaseTypeEnabled:  true,
		AllowedReleaseTypes: DefaultReleaseTypes(),
		ExcludeNoSeed:       true,
		SearchByIMDb:        true,
	}
}

// DefaultResolutions excludes 240p and unknown.
func DefaultResolutions() []ResolutionClass {
	return []ResolutionClass{Resolution4K, Resolution2K, Resolution1080p, Resolution720p, Resolution480p}
}

// DefaultReleaseTypes excludes the low quality and non-feature types.
func DefaultReleaseTypes() []ReleaseType {
	excluded := []ReleaseType{Release3D, ReleaseTelesync, ReleaseCam, ReleaseVHSRip, ReleaseTrailer, ReleaseWorkprint, ReleaseLine, ReleaseUnknown}
	types := make([]ReleaseType, 0, len(releaseTypes))
	for _, t := range releaseTypes {
		if !slices.Contains(excluded, t) {
			types = append(types, t)
		}
	}
	return types
}

// SizeBoundsFor returns the size window for the search kind.
func (p FilterPolicy) SizeBoundsFor(kind SearchKind) SizeBounds {
	switch kind {
	case SearchKindMovie:
		return p.MovieSize
	case SearchKindSeason:
		return p.SeasonSize
	case SearchKindEpisode:
		return p.EpisodeSize
	default:
		return p.GeneralSize
	}
}

// AllowsResolution reports whether r is in the allowed set.
func (p FilterPolicy) AllowsResolution(r ResolutionClass) bool {
	return slices.Contains(p.AllowedResolutions, r)
}

// AllowsReleaseType reports whether t is in the allowed set.
func (p FilterPolicy) AllowsReleaseType(t ReleaseType) bool {
	return slices.Contains(p.AllowedReleaseTypes, t)
}

// SortStrategy selects the final ordering of results.
type SortStrategy int

const (
	SortByResolution SortStrategy = iota
	SortBySeeds
	SortBySize
	SortBalanced
)

// ParseSortStrategy maps the configured index onto a strategy.
func ParseSortStrategy(value int) (SortStrategy, error) {
	s := SortStrategy(value)
	switch s {
	case SortByResolution, SortBySeeds, SortBySize, SortBalanced:
		return s, nil
	default:
		return SortBalanced, fmt.Errorf("unknown sort strategy %d", value)
	}
}

func (s SortStrategy) String() string {
	switch s {
	case SortByResolution:
		return "resolution"
	case SortBySeeds:
		return "seeds"
	case SortBySize:
		return "size"
	default:
		return "balanced"
	}
}
