// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package ranking

import (
	"cmp"
	"slices"

	"github.com/autobrr/burst/internal/models"
)

// Rank returns results ordered by strategy, highest first, keeping at most limit
// entries. Ties keep their input order. limit <= 0 disables truncation.
func Rank(results []models.Result, strategy models.SortStrategy, limit int) []models.Result {
	out := slices.Clone(results)
	key := sortKey(strategy)

	slices.SortStableFunc(out, func(a, b models.Result) int {
		return cmp.Compare(key(b), key(a))
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func sortKey(strategy models.SortStrategy) func(models.Result) int64 {
	switch strategy {
	case models.SortByResolution:
		return func(r models.Result) int64 { return int64(r.Resolution.Ordinal()) }
	case models.SortBySeeds:
		return func(r models.Result) int64 { return int64(r.Seeds) }
	case models.SortBySize:
		return func(r models.Result) int64 { return r.SizeBytes }
	default:
		return func(r models.Result) int64 { return int64(r.Seeds) * 3 * int64(r.Resolution.Ordinal()) }
	}
}
