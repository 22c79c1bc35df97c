// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package models

import (
	"slices"
	"strings"
)

// UnknownProvider is used when a feed item does not name its indexer.
const UnknownProvider = "Unknown"

// ResolutionClass is the closed set of video resolutions a release name can be classified into.
type ResolutionClass string

const (
	Resolution4K      ResolutionClass = "4k"
	Resolution2K      ResolutionClass = "2k"
	Resolution1080p   ResolutionClass = "1080p"
	Resolution720p    ResolutionClass = "720p"
	Resolution480p    ResolutionClass = "480p"
	Resolution240p    ResolutionClass = "240p"
	ResolutionUnknown ResolutionClass = "unknown"
)

// resolutionClasses is ordered highest first. Ordinal is derived from the
// reversed position so unknown ranks lowest.
var resolutionClasses = []ResolutionClass{
	Resolution4K,
	Resolution2K,
	Resolution1080p,
	Resolution720p,
	Resolution480p,
	Resolution240p,
	ResolutionUnknown,
}

// ResolutionClasses returns every resolution class, highest first.
func ResolutionClasses() []ResolutionClass {
	return slices.Clone(resolutionClasses)
}

// Ordinal ranks the class for sorting: unknown is 0 and 4k is 6.
func (r ResolutionClass) Ordinal() int {
	idx := slices.Index(resolutionClasses, r)
	if idx < 0 {
		return 0
	}
	return len(resolutionClasses) - 1 - idx
}

// Valid reports whether r is a member of the closed set.
func (r ResolutionClass) Valid() bool {
	return slices.Contains(resolutionClasses, r)
}

// ParseResolutionClass maps a configured name onto a ResolutionClass.
func ParseResolutionClass(value string) (ResolutionClass, bool) {
	r := ResolutionClass(strings.ToLower(strings.TrimSpace(value)))
	return r, r.Valid()
}

// ReleaseType is the closed set of release sources a release name can be classified into.
type ReleaseType string

const (
	ReleaseBRRip     ReleaseType = "brrip"
	ReleaseWebDL     ReleaseType = "webdl"
	ReleaseHDRip     ReleaseType = "hdrip"
	ReleaseHDTV      ReleaseType = "hdtv"
	ReleaseDVD       ReleaseType = "dvd"
	ReleaseDVDScr    ReleaseType = "dvdscr"
	ReleaseScreener  ReleaseType = "screener"
	Release3D        ReleaseType = "3d"
	ReleaseTelesync  ReleaseType = "telesync"
	ReleaseCam       ReleaseType = "cam"
	ReleaseTVRip     ReleaseType = "tvrip"
	ReleaseVHSRip    ReleaseType = "vhsrip"
	ReleaseIPTVRip   ReleaseType = "iptvrip"
	ReleaseTrailer   ReleaseType = "trailer"
	ReleaseWorkprint ReleaseType = "workprint"
	ReleaseLine      ReleaseType = "line"
	ReleaseH26x      ReleaseType = "h26x"
	ReleaseUnknown   ReleaseType = "unknown"
)

var releaseTypes = []ReleaseType{
	ReleaseBRRip,
	ReleaseWebDL,
	ReleaseHDRip,
	ReleaseHDTV,
	ReleaseDVD,
	ReleaseDVDScr,
	ReleaseScreener,
	Release3D,
	ReleaseTelesync,
	ReleaseCam,
	ReleaseTVRip,
	ReleaseVHSRip,
	ReleaseIPTVRip,
	ReleaseTrailer,
	ReleaseWorkprint,
	ReleaseLine,
	ReleaseH26x,
	ReleaseUnknown,
}

// ReleaseTypes returns every release type in classification order.
func ReleaseTypes() []ReleaseType {
	return slices.Clone(releaseTypes)
}

// Valid reports whether t is a member of the closed set.
func (t ReleaseType) Valid() bool {
	return slices.Contains(releaseTypes, t)
}

// ParseReleaseType maps a configured name onto a ReleaseType.
func ParseReleaseType(value string) (ReleaseType, bool) {
	t := ReleaseType(strings.ToLower(strings.TrimSpace(value)))
	return t, t.Valid()
}

// Result is one canonical search hit.
type Result struct {
	Name        string          `json:"name"`
	Provider    string          `json:"provider"`
	SizeBytes   int64           `json:"size_bytes"`
	SizeDisplay string          `json:"size"`
	DownloadRef string          `json:"uri"`
	Seeds       int             `json:"seeds"`
	Peers       int             `json:"peers"`
	InfoHash    string          `json:"info_hash"`
	Resolution  ResolutionClass `json:"resolution"`
	ReleaseType ReleaseType     `json:"release_type"`
	Language    string          `json:"language,omitempty"`
	// Color is an ARGB hex string derived from Provider.
	Color string `json:"color,omitempty"`
}

// SizeKnown reports whether the indexer supplied a size.
func (r Result) SizeKnown() bool {
	return r.SizeBytes >= 0
}

// IsMagnet reports whether DownloadRef is already a magnet URI.
func (r Result) IsMagnet() bool {
	return IsMagnetURI(r.DownloadRef)
}

// IsMagnetURI reports whether uri uses the magnet scheme.
func IsMagnetURI(uri string) bool {
	return len(uri) >= len("magnet:") && strings.EqualFold(uri[:len("magnet:")], "magnet:")
}
