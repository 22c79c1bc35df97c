// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package jackett

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/dustin/go-humanize"
	"github.com/moistari/rls"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/autobrr/burst/internal/models"
)

type classPattern[T any] struct {
	class T
	re    *regexp.Regexp
}

func tokenPattern(alternatives ...string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\W+(` + strings.Join(alternatives, "|") + `)\W*`)
}

// Checked in order; the first matching class wins, so more specific entries come first.
var resolutionPatterns = []classPattern[models.ResolutionClass]{
	{models.Resolution4K, tokenPattern(`4k`, `2160[p]`, `uhd`, `hd4k`)},
	{models.Resolution2K, tokenPattern(`1440[p]`, `2k`)},
	{models.Resolution1080p, tokenPattern(`1080[ip]`, `1920x1080`, `hd1080p?`, `fullhd`, `fhd`, `blu\W*ray`, `bd\W*remux`)},
	{models.Resolution720p, tokenPattern(`720[p]`, `1280x720`, `hd720p?`, `hd\-?rip`, `b[rd]rip`)},
	{models.Resolution480p, tokenPattern(`480[p]`, `xvid`, `dvd`, `dvdrip`, `hdtv`, `web\-(dl)?rip`, `iptv`, `sat\-?rip`, `tv\-?rip`)},
	{models.Resolution240p, tokenPattern(`240[p]`, `vhs\-?rip`)},
}

var releaseTypePatterns = []classPattern[models.ReleaseType]{
	{models.ReleaseBRRip, tokenPattern(`brrip`, `bd\-?rip`, `blu\-?ray`, `bd\-?remux`)},
	{models.ReleaseWebDL, tokenPattern(`web`, `web_?\-?dl`, `web\-?rip`, `dl\-?rip`, `yts`)},
	{models.ReleaseHDRip, tokenPattern(`hd\-?rip`)},
	{models.ReleaseHDTV, tokenPattern(`hd\-?tv`)},
	{models.ReleaseDVD, tokenPattern(`dvd`, `dvd\-?rip`, `vcd\-?rip`, `divx`, `xvid`)},
	{models.ReleaseDVDScr, tokenPattern(`dvd\-?scr(eener)?`)},
	{models.ReleaseScreener, tokenPattern(`screener`, `scr`)},
	{models.Release3D, tokenPattern(`3d`)},
	{models.ReleaseTelesync, tokenPattern(`telesync`, `ts`, `tc`)},
	{models.ReleaseCam, tokenPattern(`cam(\-rip)?`, `hd\-?cam`)},
	{models.ReleaseTVRip, tokenPattern(`tv\-?rip`, `sat\-?rip`, `dvb`)},
	{models.ReleaseVHSRip, tokenPattern(`vhs\-?rip`)},
	{models.ReleaseIPTVRip, tokenPattern(`iptv\-?rip`)},
	{models.ReleaseTrailer, tokenPattern(`trailer`)},
	{models.ReleaseWorkprint, tokenPattern(`workprint`)},
	{models.ReleaseLine, tokenPattern(`line`)},
	{models.ReleaseH26x, tokenPattern(`x26[45]`)},
}

func lower(s string) string {
	// cases.Caser is stateful and must not be shared between goroutines.
	return cases.Lower(language.Und).String(s)
}

func classify[T any](name string, patterns []classPattern[T], fallback T) T {
	for _, p := range patterns {
		if p.re.MatchString(name) {
			return p.class
		}
	}
	return fallback
}

// ClassifyResolution returns the resolution class of a release name.
func ClassifyResolution(name string) models.ResolutionClass {
	return classify(lower(name), resolutionPatterns, models.ResolutionUnknown)
}

// ClassifyReleaseType returns the release type of a release name.
func ClassifyReleaseType(name string) models.ReleaseType {
	return classify(lower(name), releaseTypePatterns, models.ReleaseUnknown)
}

// detectLanguage returns the first language tag the release parser finds, if any.
func detectLanguage(name string) string {
	release := rls.ParseString(name)
	if len(release.Language) == 0 {
		return ""
	}
	return release.Language[0]
}

var sizeSuffixes = []string{"B", "KB", "MB", "GB", "TB", "PB"}

// HumanSize renders a byte count with binary units and at most two decimals.
func HumanSize(size int64) string {
	value := float64(size)
	i := 0
	for value >= 1024 && i < len(sizeSuffixes)-1 {
		value /= 1024
		i++
	}
	value = math.Round(value*100) / 100
	return humanize.FtoaWithDigits(value, 2) + " " + sizeSuffixes[i]
}

const providerColorMinBrightness = 50

// ProviderColor derives a stable ARGB color for a provider name. Every channel is
// at least providerColorMinBrightness.
func ProviderColor(provider string) string {
	const (
		bits = 21
		mask = 1<<bits - 1
	)

	sum := xxhash.Sum64String(provider)

	var channels [3]int
	for i := range channels {
		slice := (sum >> (bits * uint(i))) & mask
		channels[i] = max(int(math.Round(float64(slice)/float64(mask)*255)), providerColorMinBrightness)
	}

	return fmt.Sprintf("FF%02X%02X%02X", channels[0], channels[1], channels[2])
}
