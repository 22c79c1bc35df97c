// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package filter

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/autobrr/burst/internal/models"
)

// maxEpisodeScans bounds the strip-and-retry loop over absolute episode numbers.
const maxEpisodeScans = 32

// wordStart stands in for \b, which does not treat non-ASCII letters as word characters.
const wordStart = `(?:^|[^\pL\pN])`

var (
	resolutionToken = regexp.MustCompile(`\b\d+p\b`)
	yearToken       = regexp.MustCompile(`(?:^|\D)((?:19|20)\d{2})(?:\s*-\s*((?:19|20)\d{2}))?(?:\D|$)`)
	titleYearToken  = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)

	seasonMarkers = []string{`s`, `season`, `saison`, `staffel`, `temporada`, `stagione`, `sezon`, `сезон`}
	seasonToken   = regexp.MustCompile(wordStart + `(?:` + strings.Join(seasonMarkers, "|") + `)[\s._-]*(\d{1,3})(?:\s*-\s*(?:s|` + strings.Join(seasonMarkers[1:], "|") + `)?[\s._-]*(\d{1,3}))?`)

	// The second alternative covers an episode marker glued to a season number, as in s01e17.
	episodeToken = regexp.MustCompile(`(?:` + wordStart + `(?:e|ep|episode)?|\d(?:episode|ep|e))[\s._-]*(\d{1,4})(?:\s*(-|~|of)\s*(\d{1,4}))?`)
)

// Matcher decides whether a release name plausibly belongs to a TV episode request.
// It errs on the side of accepting.
type Matcher struct {
	season     int
	episode    int
	absolute   int
	seasonName string
	years      []int
	titleYears []string
	exact      *regexp.Regexp
}

func NewMatcher(req models.SearchRequest) *Matcher {
	m := &Matcher{
		season:     req.Season,
		episode:    req.Episode,
		absolute:   req.AbsoluteEpisode,
		seasonName: req.NormalizedSeasonName(),
		years:      req.YearHypotheses(),
		titleYears: titleYearToken.FindAllString(req.Title, -1),
	}
	if req.Season > 0 && req.Episode > 0 {
		m.exact = regexp.MustCompile(fmt.Sprintf(`\bs0*%de0*%d\b`, req.Season, req.Episode))
	}
	return m
}

// Match reports whether name is accepted.
func (m *Matcher) Match(name string) bool {
	text := cases.Lower(language.Und).String(name)
	text = resolutionToken.ReplaceAllString(text, "")

	if m.seasonName != "" && strings.Contains(text, m.seasonName) {
		return true
	}

	if len(m.years) > 0 {
		// Years that are part of the show title say nothing about the release.
		for _, y := range m.titleYears {
			if i := strings.Index(text, y); i >= 0 {
				text = text[:i] + " " + text[i+len(y):]
			}
		}
		loc := yearToken.FindStringSubmatchIndex(text)
		if loc == nil {
			return false
		}
		if !m.yearMatches(text, loc) {
			return false
		}
		text = text[:loc[2]] + text[yearSpanEnd(loc):]
	}

	if m.exact != nil && m.exact.MatchString(text) {
		return true
	}

	if sm := seasonToken.FindStringSubmatch(text); sm != nil {
		first, _ := strconv.Atoi(sm[1])
		last := first
		if sm[2] != "" {
			last, _ = strconv.Atoi(sm[2])
		}
		if m.season >= first && m.season <= last {
			return true
		}
		// A bare "1" is often the only season of a show numbered by absolute episode.
		if first != 1 {
			return false
		}
	}

	if m.absolute <= 0 {
		return false
	}
	return m.scanEpisodes(text)
}

func (m *Matcher) yearMatches(text string, loc []int) bool {
	start, _ := strconv.Atoi(text[loc[2]:loc[3]])
	if loc[4] >= 0 {
		end, _ := strconv.Atoi(text[loc[4]:loc[5]])
		for _, y := range m.years {
			if y >= start && y <= end {
				return true
			}
		}
		return false
	}
	return slices.Contains(m.years, start)
}

func yearSpanEnd(loc []int) int {
	if loc[4] >= 0 {
		return loc[5]
	}
	return loc[3]
}

// scanEpisodes looks for the absolute episode number, removing each
// non-matching candidate and searching again.
func (m *Matcher) scanEpisodes(text string) bool {
	for range maxEpisodeScans {
		loc := episodeToken.FindStringSubmatchIndex(text)
		if loc == nil {
			return false
		}

		first, _ := strconv.Atoi(text[loc[2]:loc[3]])
		switch {
		case loc[4] < 0:
			if first == m.absolute {
				return true
			}
		case text[loc[4]:loc[5]] == "of":
			if first == m.absolute {
				return true
			}
		default:
			last, _ := strconv.Atoi(text[loc[6]:loc[7]])
			if m.absolute >= first && m.absolute <= last {
				return true
			}
		}

		text = text[:loc[0]] + " " + text[loc[1]:]
	}
	return false
}
