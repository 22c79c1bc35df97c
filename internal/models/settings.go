// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package models

// SearchSettings is the snapshot of settings one search runs with.
type SearchSettings struct {
	JackettHost    string
	JackettAPIKey  string
	JackettTimeout int

	PreferredLanguage   string
	Policy              FilterPolicy
	Sort                SortStrategy
	MaxResults          int
	ResolverConcurrency int
}
