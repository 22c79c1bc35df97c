// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package jackett

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autobrr/burst/internal/models"
)

func tvIndexer(params ...models.Capability) models.Indexer {
	return models.Indexer{
		ID:       "tv",
		Name:     "TV",
		Search:   models.SearchCaps{Available: true, Params: models.NewCapSet(models.CapQuery)},
		TVSearch: models.SearchCaps{Available: true, Params: models.NewCapSet(params...)},
	}
}

func movieIndexer(params ...models.Capability) models.Indexer {
	return models.Indexer{
		ID:          "movie",
		Name:        "Movie",
		Search:      models.SearchCaps{Available: true, Params: models.NewCapSet(models.CapQuery)},
		MovieSearch: models.SearchCaps{Available: true, Params: models.NewCapSet(params...)},
	}
}

func plainIndexer() models.Indexer {
	return models.Indexer{
		ID:     "plain",
		Name:   "Plain",
		Search: models.SearchCaps{Available: true, Params: models.NewCapSet(models.CapQuery)},
	}
}

func TestPlanQuery(t *testing.T) {
	policy := models.DefaultFilterPolicy()
	episode := models.SearchRequest{Kind: models.SearchKindEpisode, Title: "Example Show", Season: 1, Episode: 3}

	tests := []struct {
		name   string
		idx    models.Indexer
		req    models.SearchRequest
		policy *models.FilterPolicy
		want   url.Values
	}{
		{
			name: "structured episode",
			idx:  tvIndexer(models.CapQuery, models.CapSeason, models.CapEpisode),
			req:  episode,
			want: url.Values{"t": {"tvsearch"}, "q": {"Example Show"}, "season": {"1"}, "ep": {"3"}},
		},
		{
			name: "fallback to plain search",
			idx:  plainIndexer(),
			req:  episode,
			want: url.Values{"t": {"search"}, "q": {"Example Show S01E03"}},
		},
		{
			name: "structured season without episode capability",
			idx:  tvIndexer(models.CapQuery, models.CapSeason),
			req:  episode,
			want: url.Values{"t": {"tvsearch"}, "q": {"Example Show E03"}, "season": {"1"}},
		},
		{
			name: "season search inline",
			idx:  tvIndexer(models.CapQuery),
			req:  models.SearchRequest{Kind: models.SearchKindSeason, Title: "Example Show", Season: 2},
			want: url.Values{"t": {"tvsearch"}, "q": {"Example Show S02"}},
		},
		{
			name: "movie by imdb id",
			idx:  movieIndexer(models.CapQuery, models.CapIMDbID),
			req:  models.SearchRequest{Kind: models.SearchKindMovie, Title: "Example Movie", Year: 2019, IMDbID: "tt0000001"},
			want: url.Values{"t": {"movie"}, "imdbid": {"tt0000001"}},
		},
		{
			name:   "imdb disabled by policy",
			idx:    movieIndexer(models.CapQuery, models.CapIMDbID, models.CapYear),
			req:    models.SearchRequest{Kind: models.SearchKindMovie, Title: "Example Movie", Year: 2019, IMDbID: "tt0000001"},
			policy: &models.FilterPolicy{SearchByIMDb: false},
			want:   url.Values{"t": {"movie"}, "q": {"Example Movie"}, "year": {"2019"}},
		},
		{
			name: "movie year inline",
			idx:  movieIndexer(models.CapQuery),
			req:  models.SearchRequest{Kind: models.SearchKindMovie, Title: "Example Movie", Year: 2019, IMDbID: "tt0000001"},
			want: url.Values{"t": {"movie"}, "q": {"Example Movie 2019"}},
		},
		{
			name: "general query",
			idx:  tvIndexer(models.CapQuery, models.CapSeason),
			req:  models.SearchRequest{Kind: models.SearchKindGeneral, Title: "  free text  "},
			want: url.Values{"t": {"search"}, "q": {"free text"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := policy
			if tt.policy != nil {
				p = *tt.policy
			}
			got := PlanQuery(tt.idx, tt.req, p)
			assert.Equal(t, tt.want, got.Params)
		})
	}
}

func TestPlanQuery_OnlyDeclaredParams(t *testing.T) {
	policy := models.DefaultFilterPolicy()
	req := models.SearchRequest{
		Kind:    models.SearchKindEpisode,
		Title:   "Example Show",
		Year:    2020,
		Season:  1,
		Episode: 3,
		IMDbID:  "tt0000001",
	}

	all := []models.Capability{
		models.CapQuery, models.CapSeason, models.CapEpisode, models.CapIMDbID,
		models.CapTVDbID, models.CapGenre, models.CapYear,
	}

	for mask := 0; mask < 1<<len(all); mask++ {
		var caps []models.Capability
		for i, c := range all {
			if mask&(1<<i) != 0 {
				caps = append(caps, c)
			}
		}
		idx := tvIndexer(caps...)
		_, effective := EffectiveSearch(idx, models.SearchTypeTV)
		declared := make(map[string]bool)
		for _, p := range effective.Params() {
			declared[p] = true
		}

		q := PlanQuery(idx, req, policy)
		for key := range q.Params {
			if key == "t" || key == "q" {
				continue
			}
			require.Truef(t, declared[key], "param %q sent without capability (mask %07b)", key, mask)
		}
	}
}

func TestPlanQueries(t *testing.T) {
	idx := tvIndexer(models.CapQuery, models.CapSeason, models.CapEpisode, models.CapYear)
	req := models.SearchRequest{
		Kind:        models.SearchKindEpisode,
		Title:       "Example Show",
		Season:      1,
		Episode:     3,
		EpisodeYear: 2021,
		ShowYear:    2020,
	}

	t.Run("single query by default", func(t *testing.T) {
		queries := PlanQueries(idx, req, models.DefaultFilterPolicy())
		require.Len(t, queries, 1)
		assert.Zero(t, queries[0].SeasonFilter)
	})

	t.Run("year variants", func(t *testing.T) {
		policy := models.DefaultFilterPolicy()
		policy.SmartYearVariants = true

		queries := PlanQueries(idx, req, policy)
		require.Len(t, queries, 3)
		assert.Equal(t, "2021", queries[0].Params.Get("year"))
		assert.Equal(t, "2020", queries[1].Params.Get("year"))
		assert.Empty(t, queries[2].Params.Get("year"))
	})

	t.Run("season on episode", func(t *testing.T) {
		policy := models.DefaultFilterPolicy()
		policy.SeasonOnEpisode = true

		queries := PlanQueries(idx, req, policy)
		require.Len(t, queries, 2)
		assert.Equal(t, "3", queries[0].Params.Get("ep"))
		assert.Empty(t, queries[1].Params.Get("ep"))
		assert.Equal(t, "1", queries[1].Params.Get("season"))
		assert.Equal(t, 1, queries[1].SeasonFilter)
	})

	t.Run("identical variants sent once", func(t *testing.T) {
		policy := models.DefaultFilterPolicy()
		policy.SmartYearVariants = true

		queries := PlanQueries(idx, models.SearchRequest{Kind: models.SearchKindSeason, Title: "Example Show", Season: 2}, policy)
		assert.Len(t, queries, 1)
	})
}

func TestMatchesSeason(t *testing.T) {
	tests := []struct {
		name   string
		season int
		want   bool
	}{
		{"Example.Show.S01.1080p", 1, true},
		{"Example Show Season 01 Complete", 1, true},
		{"Example.Show.s01e03", 1, false},
		{"Example.Show.S02.1080p", 1, false},
		{"Example.Show.S010", 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchesSeason(tt.name, tt.season))
		})
	}
}
