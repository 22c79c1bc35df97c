// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package jackett

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autobrr/burst/internal/models"
	"github.com/autobrr/burst/internal/notify"
)

type fakeSource struct {
	indexers []models.Indexer
	listErr  error
	query    func(idx models.Indexer, params url.Values) ([]models.Result, error)

	mu    sync.Mutex
	calls []url.Values
}

func (f *fakeSource) ListIndexers(context.Context) ([]models.Indexer, error) {
	return f.indexers, f.listErr
}

func (f *fakeSource) Query(_ context.Context, idx models.Indexer, params url.Values) ([]models.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, params)
	f.mu.Unlock()
	return f.query(idx, params)
}

func result(name, provider string) models.Result {
	return models.Result{Name: name, Provider: provider, DownloadRef: "magnet:?xt=urn:btih:" + name}
}

func categories(buf *notify.Buffer) []notify.Category {
	var out []notify.Category
	for _, n := range buf.Recent(0) {
		out = append(out, n.Category)
	}
	return out
}

func TestService_SearchIsolatesFailures(t *testing.T) {
	source := &fakeSource{
		indexers: []models.Indexer{plainIndexer(), {ID: "broken", Name: "Broken"}, {ID: "slow", Name: "Slow"}, {ID: "panics", Name: "Panics"}},
		query: func(idx models.Indexer, _ url.Values) ([]models.Result, error) {
			switch idx.ID {
			case "broken":
				return nil, &ProtocolError{Indexer: "Broken", Code: "100", Description: "Invalid API Key"}
			case "slow":
				return nil, &TransportTimeoutError{Indexer: "Slow", Err: context.DeadlineExceeded}
			case "panics":
				panic("boom")
			default:
				return []models.Result{result("Example.Movie.2019.1080p", "Plain")}, nil
			}
		},
	}
	buf := notify.NewBuffer(10, nil)
	svc := NewService(source, WithNotifier(buf))

	results, outcome, err := svc.Search(context.Background(),
		models.SearchRequest{Kind: models.SearchKindGeneral, Title: "Example Movie"},
		models.DefaultFilterPolicy(), nil)

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Example.Movie.2019.1080p", results[0].Name)

	assert.Equal(t, 4, outcome.Queries)
	assert.Equal(t, 1, outcome.Succeeded)
	assert.Equal(t, 1, outcome.ProtocolErrors)
	assert.Equal(t, 1, outcome.TimedOut)
	assert.Equal(t, 1, outcome.Failed)

	assert.ElementsMatch(t, []notify.Category{notify.CategoryConnection, notify.CategoryProtocol}, categories(buf))
}

func TestService_SearchReportsRateLimits(t *testing.T) {
	source := &fakeSource{
		indexers: []models.Indexer{plainIndexer(), {ID: "busy", Name: "Busy"}},
		query: func(idx models.Indexer, _ url.Values) ([]models.Result, error) {
			if idx.ID == "busy" {
				return nil, &TransportError{Indexer: "Busy", StatusCode: 429, Err: errors.New("429 Too Many Requests")}
			}
			return []models.Result{result("Example.Movie.2019.1080p", "Plain")}, nil
		},
	}
	buf := notify.NewBuffer(10, nil)

	results, outcome, err := NewService(source, WithNotifier(buf)).Search(context.Background(),
		models.SearchRequest{Kind: models.SearchKindGeneral, Title: "Example Movie"},
		models.DefaultFilterPolicy(), nil)

	require.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, 1, outcome.RateLimited)
	assert.Zero(t, outcome.Failed)

	recent := buf.Recent(0)
	require.Len(t, recent, 1)
	assert.Equal(t, notify.CategoryConnection, recent[0].Category)
	assert.Equal(t, "Indexers are rate limiting requests: Busy", recent[0].Message)
}

func TestService_SearchMergesByName(t *testing.T) {
	source := &fakeSource{
		indexers: []models.Indexer{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}},
		query: func(idx models.Indexer, _ url.Values) ([]models.Result, error) {
			return []models.Result{
				result("Shared.Release", idx.Name),
				result("Only."+idx.Name, idx.Name),
			}, nil
		},
	}

	results, _, err := NewService(source).Search(context.Background(),
		models.SearchRequest{Kind: models.SearchKindGeneral, Title: "x"}, models.DefaultFilterPolicy(), nil)
	require.NoError(t, err)

	names := make(map[string]int)
	for _, r := range results {
		names[r.Name]++
	}
	assert.Equal(t, map[string]int{"Shared.Release": 1, "Only.A": 1, "Only.B": 1}, names)
}

func TestService_SearchReportsProgress(t *testing.T) {
	source := &fakeSource{
		indexers: []models.Indexer{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}, {ID: "c", Name: "C"}},
		query: func(models.Indexer, url.Values) ([]models.Result, error) {
			return nil, nil
		},
	}

	var (
		mu        sync.Mutex
		completed []int
		labels    []string
	)
	progress := func(done, total int, label string) {
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, 3, total)
		completed = append(completed, done)
		labels = append(labels, label)
	}

	_, _, err := NewService(source).Search(context.Background(),
		models.SearchRequest{Kind: models.SearchKindGeneral, Title: "x"}, models.DefaultFilterPolicy(), progress)
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{1, 2, 3}, completed)
	assert.Contains(t, labels[0], "Waiting for")
	assert.Empty(t, labels[2])
}

func TestService_SearchAppliesSeasonFilter(t *testing.T) {
	idx := tvIndexer(models.CapQuery, models.CapSeason, models.CapEpisode)
	source := &fakeSource{
		indexers: []models.Indexer{idx},
		query: func(_ models.Indexer, params url.Values) ([]models.Result, error) {
			if params.Get("ep") != "" {
				return []models.Result{result("Example.Show.S01E03.1080p", "TV")}, nil
			}
			return []models.Result{
				result("Example.Show.S01.1080p", "TV"),
				result("Example.Show.S02.1080p", "TV"),
			}, nil
		},
	}

	policy := models.DefaultFilterPolicy()
	policy.SeasonOnEpisode = true

	results, outcome, err := NewService(source).Search(context.Background(),
		models.SearchRequest{Kind: models.SearchKindEpisode, Title: "Example Show", Season: 1, Episode: 3}, policy, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, outcome.Queries)

	names := make([]string, 0, len(results))
	for _, r := range results {
		names = append(names, r.Name)
	}
	assert.ElementsMatch(t, []string{"Example.Show.S01E03.1080p", "Example.Show.S01.1080p"}, names)
}

func TestService_SearchListFailure(t *testing.T) {
	source := &fakeSource{listErr: &TransportError{Indexer: AllIndexers, Err: errors.New("connection refused")}}
	buf := notify.NewBuffer(10, nil)

	results, _, err := NewService(source, WithNotifier(buf)).Search(context.Background(),
		models.SearchRequest{Kind: models.SearchKindGeneral, Title: "x"}, models.DefaultFilterPolicy(), nil)

	require.Error(t, err)
	assert.Empty(t, results)
	assert.Equal(t, []notify.Category{notify.CategoryConnection}, categories(buf))
}

func TestService_SearchNoIndexers(t *testing.T) {
	results, outcome, err := NewService(&fakeSource{}).Search(context.Background(),
		models.SearchRequest{Kind: models.SearchKindGeneral, Title: "x"}, models.DefaultFilterPolicy(), nil)

	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Zero(t, outcome.Queries)
}

func TestService_SearchCanceled(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	source := &fakeSource{
		indexers: []models.Indexer{{ID: "a", Name: "A"}},
		query: func(models.Indexer, url.Values) ([]models.Result, error) {
			<-release
			return nil, nil
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := NewService(source).Search(ctx,
		models.SearchRequest{Kind: models.SearchKindGeneral, Title: "x"}, models.DefaultFilterPolicy(), nil)
	assert.ErrorIs(t, err, context.Canceled)
}
