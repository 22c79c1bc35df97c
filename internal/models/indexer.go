// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package models

import (
	"encoding/json"
	"strings"
)

// SearchType is the Torznab search function an indexer is queried with.
type SearchType int

const (
	SearchTypeCommon SearchType = iota
	SearchTypeMovie
	SearchTypeTV
)

// Function returns the value of the Torznab "t" parameter.
func (t SearchType) Function() string {
	switch t {
	case SearchTypeMovie:
		return "movie"
	case SearchTypeTV:
		return "tvsearch"
	default:
		return "search"
	}
}

func (t SearchType) String() string {
	switch t {
	case SearchTypeMovie:
		return "movie"
	case SearchTypeTV:
		return "tv"
	default:
		return "common"
	}
}

// Capability is a single Torznab search parameter an indexer may support.
type Capability uint8

const (
	CapQuery Capability = 1 << iota
	CapSeason
	CapEpisode
	CapIMDbID
	CapTVDbID
	CapGenre
	CapYear
)

var capabilityParams = []struct {
	cap   Capability
	param string
}{
	{CapQuery, "q"},
	{CapSeason, "season"},
	{CapEpisode, "ep"},
	{CapIMDbID, "imdbid"},
	{CapTVDbID, "tvdbid"},
	{CapGenre, "genre"},
	{CapYear, "year"},
}

// CapSet is a set of capabilities.
type CapSet uint8

// NewCapSet builds a set from the given capabilities.
func NewCapSet(caps ...Capability) CapSet {
	var s CapSet
	for _, c := range caps {
		s |= CapSet(c)
	}
	return s
}

// ParseCapSet parses a supportedParams attribute such as "q,season,ep".
// Unknown parameter names are ignored.
func ParseCapSet(supportedParams string) CapSet {
	var s CapSet
	for _, raw := range strings.Split(supportedParams, ",") {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" {
			continue
		}
		for _, cp := range capabilityParams {
			if cp.param == name {
				s |= CapSet(cp.cap)
				break
			}
		}
	}
	return s
}

// Has reports whether c is in the set.
func (s CapSet) Has(c Capability) bool {
	return s&CapSet(c) != 0
}

// Params returns the Torznab parameter names in the set.
func (s CapSet) Params() []string {
	params := make([]string, 0, len(capabilityParams))
	for _, cp := range capabilityParams {
		if s.Has(cp.cap) {
			params = append(params, cp.param)
		}
	}
	return params
}

func (s CapSet) String() string {
	return strings.Join(s.Params(), ",")
}

func (s CapSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Params())
}

// SearchCaps describes one <searching> entry of an indexer's caps document.
type SearchCaps struct {
	Available bool   `json:"available"`
	Params    CapSet `json:"params"`
}

// Indexer is a configured Jackett indexer and its declared search capabilities.
// It is fetched once per search session and treated as immutable afterwards.
type Indexer struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Search      SearchCaps `json:"search"`
	TVSearch    SearchCaps `json:"tv_search"`
	MovieSearch SearchCaps `json:"movie_search"`
}

// Caps returns the capability entry for the given search type.
func (i Indexer) Caps(t SearchType) SearchCaps {
	switch t {
	case SearchTypeMovie:
		return i.MovieSearch
	case SearchTypeTV:
		return i.TVSearch
	default:
		return i.Search
	}
}

// DisplayName falls back to the ID when the indexer has no title.
func (i Indexer) DisplayName() string {
	if strings.TrimSpace(i.Name) != "" {
		return i.Name
	}
	return i.ID
}
