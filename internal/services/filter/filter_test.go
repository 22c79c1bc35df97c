// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autobrr/burst/internal/models"
)

func named(names ...string) []models.Result {
	out := make([]models.Result, 0, len(names))
	for _, n := range names {
		out = append(out, models.Result{Name: n, SizeBytes: -1})
	}
	return out
}

func names(results []models.Result) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.Name)
	}
	return out
}

func TestKeywords(t *testing.T) {
	in := named("Movie.2019.1080p.HEVC", "Movie.2019.1080p.x264", "Movie.2019.720p.x264.HC")

	tests := []struct {
		name    string
		block   []string
		require []string
		want    []string
	}{
		{name: "no terms", want: names(in)},
		{name: "blank terms ignored", block: []string{"", " "}, require: []string{""}, want: names(in)},
		{name: "block", block: []string{"HEVC"}, want: []string{"Movie.2019.1080p.x264", "Movie.2019.720p.x264.HC"}},
		{name: "block is case sensitive", block: []string{"hevc"}, want: names(in)},
		{name: "require all", require: []string{"x264", "1080p"}, want: []string{"Movie.2019.1080p.x264"}},
		{name: "block and require", block: []string{"HC"}, require: []string{"x264"}, want: []string{"Movie.2019.1080p.x264"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, names(Keywords(in, tt.block, tt.require)))
		})
	}
}

func TestSize(t *testing.T) {
	unknown := models.Result{Name: "unknown", SizeBytes: -1}
	oneGB := models.Result{Name: "one", SizeBytes: 1_073_741_824}
	huge := models.Result{Name: "huge", SizeBytes: 40 * 1024 * 1024 * 1024}
	tiny := models.Result{Name: "tiny", SizeBytes: 1024}
	in := []models.Result{unknown, oneGB, huge, tiny}

	movie := models.SizeBounds{MinGB: 0.5, MaxGB: 30}

	assert.Equal(t, []string{"one"}, names(Size(in, movie, false)))
	assert.Equal(t, []string{"unknown", "one"}, names(Size(in, movie, true)))
}

func TestApply(t *testing.T) {
	results := []models.Result{
		{Name: "Movie.2019.1080p.BluRay", SizeBytes: 8 * models.BytesPerGB, Seeds: 10, Resolution: models.Resolution1080p, ReleaseType: models.ReleaseBRRip},
		{Name: "Movie.2019.CAM", SizeBytes: 1 * models.BytesPerGB, Seeds: 100, Resolution: models.ResolutionUnknown, ReleaseType: models.ReleaseCam},
		{Name: "Movie.2019.720p.WEB", SizeBytes: 2 * models.BytesPerGB, Seeds: 0, Resolution: models.Resolution720p, ReleaseType: models.ReleaseWebDL},
		{Name: "Movie.2019.2160p.BluRay.REMUX", SizeBytes: 60 * models.BytesPerGB, Seeds: 3, Resolution: models.Resolution4K, ReleaseType: models.ReleaseBRRip},
		{Name: "Movie.2019.480p.DVDRip", SizeBytes: -1, Seeds: 4, Resolution: models.Resolution480p, ReleaseType: models.ReleaseDVD},
	}
	req := models.SearchRequest{Kind: models.SearchKindMovie, Title: "Movie", Year: 2019}

	t.Run("defaults", func(t *testing.T) {
		got := Apply(results, req, models.DefaultFilterPolicy())
		assert.Equal(t, []string{"Movie.2019.1080p.BluRay", "Movie.2019.2160p.BluRay.REMUX", "Movie.2019.480p.DVDRip"}, names(got))
	})

	t.Run("size enabled", func(t *testing.T) {
		policy := models.DefaultFilterPolicy()
		policy.SizeEnabled = true
		policy.IncludeUnknownSize = false

		got := Apply(results, req, policy)
		assert.Equal(t, []string{"Movie.2019.1080p.BluRay"}, names(got))
	})

	t.Run("everything disabled", func(t *testing.T) {
		got := Apply(results, req, models.FilterPolicy{})
		assert.Len(t, got, len(results))
	})

	t.Run("idempotent", func(t *testing.T) {
		policy := models.DefaultFilterPolicy()
		policy.SizeEnabled = true
		policy.KeywordsEnabled = true
		policy.BlockKeywords = []string{"REMUX"}

		once := Apply(results, req, policy)
		twice := Apply(once, req, policy)
		assert.Equal(t, once, twice)
	})

	t.Run("input untouched", func(t *testing.T) {
		before := append([]models.Result(nil), results...)
		_ = Apply(results, req, models.DefaultFilterPolicy())
		assert.Equal(t, before, results)
	})
}

func TestApply_SmartMatchOnlyForEpisodes(t *testing.T) {
	results := named("Show.Name.S02E05.2021", "Show.Name.S03E05.2021")
	policy := models.FilterPolicy{SmartMatch: true}

	episode := models.SearchRequest{Kind: models.SearchKindEpisode, Title: "Show Name", Season: 2, Episode: 5, EpisodeYear: 2021}
	assert.Equal(t, []string{"Show.Name.S02E05.2021"}, names(Apply(results, episode, policy)))

	season := models.SearchRequest{Kind: models.SearchKindSeason, Title: "Show Name", Season: 2}
	assert.Len(t, Apply(results, season, policy), 2)
}

func TestDedup(t *testing.T) {
	in := []models.Result{
		{Name: "a", InfoHash: "ABCDEF0123456789ABCDEF0123456789ABCDEF01"},
		{Name: "b", InfoHash: "abcdef0123456789abcdef0123456789abcdef01"},
		{Name: "c", InfoHash: "1111111111111111111111111111111111111111"},
		{Name: "d"},
		{Name: "e"},
	}

	got := Dedup(in)
	require.Len(t, got, 4)
	assert.Equal(t, []string{"a", "c", "d", "e"}, names(got))
}
