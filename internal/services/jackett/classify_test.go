// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package jackett

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autobrr/burst/internal/models"
)

func TestClassifyResolution(t *testing.T) {
	tests := []struct {
		name string
		want models.ResolutionClass
	}{
		{"Movie.Name.2019.2160p.UHD.BluRay.x265", models.Resolution4K},
		{"Show.S01E01.1440p.WEB", models.Resolution2K},
		{"Movie.Name.2019.1080p.BluRay.x264-GRP", models.Resolution1080p},
		{"Movie Name 2019 FullHD", models.Resolution1080p},
		{"Movie.Name.2019.720p.HDTV", models.Resolution720p},
		{"Movie.Name.2019.DVDRip.XviD", models.Resolution480p},
		{"Old.Movie.VHSRip", models.Resolution240p},
		{"Movie Name", models.ResolutionUnknown},
		{"1080p.Movie", models.ResolutionUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyResolution(tt.name))
		})
	}
}

func TestClassifyReleaseType(t *testing.T) {
	tests := []struct {
		name string
		want models.ReleaseType
	}{
		{"Movie.Name.2019.1080p.BluRay.x264", models.ReleaseBRRip},
		{"Movie.Name.2019.1080p.WEB-DL.x264", models.ReleaseWebDL},
		{"Movie.Name.2019.HDRip", models.ReleaseHDRip},
		{"Movie.Name.2019.1080p.HDTV", models.ReleaseHDTV},
		{"Movie.Name.2019.CAM", models.ReleaseCam},
		{"Movie.Name.2019.x264", models.ReleaseH26x},
		{"Movie Name", models.ReleaseUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyReleaseType(tt.name))
		})
	}
}

func TestHumanSize(t *testing.T) {
	tests := []struct {
		size int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1 KB"},
		{1536, "1.5 KB"},
		{1073741824, "1 GB"},
		{1288490189, "1.2 GB"},
		{5 * 1024 * 1024 * 1024 * 1024, "5 TB"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, HumanSize(tt.size))
		})
	}
}

func TestProviderColor(t *testing.T) {
	for _, provider := range []string{"Unknown", "1337x", "RARBG", "", "Example"} {
		t.Run(provider, func(t *testing.T) {
			color := ProviderColor(provider)
			require.Regexp(t, `^FF[0-9A-F]{6}$`, color)
			assert.Equal(t, color, ProviderColor(provider), "color must be deterministic")

			for i := 2; i < 8; i += 2 {
				v, err := strconv.ParseUint(color[i:i+2], 16, 8)
				require.NoError(t, err)
				assert.GreaterOrEqual(t, int(v), providerColorMinBrightness, "channel %d", i/2)
			}
		})
	}
}
