// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package domain

// Config holds the application configuration as loaded from config.toml and
// BURST__ environment variables.
type Config struct {
	Version string `toml:"-" mapstructure:"-"`

	Host          string `toml:"host" mapstructure:"host"`
	Port          int    `toml:"port" mapstructure:"port"`
	BaseURL       string `toml:"baseUrl" mapstructure:"baseUrl"`
	LogLevel      string `toml:"logLevel" mapstructure:"logLevel"`
	LogPath       string `toml:"logPath" mapstructure:"logPath"`
	LogMaxSize    int    `toml:"logMaxSize" mapstructure:"logMaxSize"`
	LogMaxBackups int    `toml:"logMaxBackups" mapstructure:"logMaxBackups"`

	MetricsEnabled bool   `toml:"metricsEnabled" mapstructure:"metricsEnabled"`
	MetricsHost    string `toml:"metricsHost" mapstructure:"metricsHost"`
	MetricsPort    int    `toml:"metricsPort" mapstructure:"metricsPort"`

	// Jackett connection
	JackettHost    string `toml:"jackettHost" mapstructure:"jackettHost"`
	JackettAPIKey  string `toml:"jackettApiKey" mapstructure:"jackettApiKey"`
	JackettTimeout int    `toml:"jackettTimeout" mapstructure:"jackettTimeout"`

	// SettingsValidated is written back after every validation attempt.
	SettingsValidated string `toml:"settingsValidated" mapstructure:"settingsValidated"`

	// Search behaviour
	PreferredLanguage     string `toml:"preferredLanguage" mapstructure:"preferredLanguage"`
	SearchByIMDb          bool   `toml:"searchByImdb" mapstructure:"searchByImdb"`
	SearchSeasonOnEpisode bool   `toml:"searchSeasonOnEpisode" mapstructure:"searchSeasonOnEpisode"`
	SmartYearVariants     bool   `toml:"smartYearVariants" mapstructure:"smartYearVariants"`
	MaxResults            int    `toml:"maxResults" mapstructure:"maxResults"`
	SortBy                int    `toml:"sortBy" mapstructure:"sortBy"`
	ResolverConcurrency   int    `toml:"resolverConcurrency" mapstructure:"resolverConcurrency"`

	// Filters
	FilterKeywordsEnabled   bool     `toml:"filterKeywordsEnabled" mapstructure:"filterKeywordsEnabled"`
	KeywordsBlock           []string `toml:"keywordsBlock" mapstructure:"keywordsBlock"`
	KeywordsRequire         []string `toml:"keywordsRequire" mapstructure:"keywordsRequire"`
	FilterSizeEnabled       bool     `toml:"filterSizeEnabled" mapstructure:"filterSizeEnabled"`
	SizeIncludeUnknown      bool     `toml:"sizeIncludeUnknown" mapstructure:"sizeIncludeUnknown"`
	SizeMin                 float64  `toml:"sizeMin" mapstructure:"sizeMin"`
	SizeMax                 float64  `toml:"sizeMax" mapstructure:"sizeMax"`
	SizeMovieMin            float64  `toml:"sizeMovieMin" mapstructure:"sizeMovieMin"`
	SizeMovieMax            float64  `toml:"sizeMovieMax" mapstructure:"sizeMovieMax"`
	SizeSeasonMin           float64  `toml:"sizeSeasonMin" mapstructure:"sizeSeasonMin"`
	SizeSeasonMax           float64  `toml:"sizeSeasonMax" mapstructure:"sizeSeasonMax"`
	SizeEpisodeMin          float64  `toml:"sizeEpisodeMin" mapstructure:"sizeEpisodeMin"`
	SizeEpisodeMax          float64  `toml:"sizeEpisodeMax" mapstructure:"sizeEpisodeMax"`
	FilterResolutionEnabled bool     `toml:"filterResolutionEnabled" mapstructure:"filterResolutionEnabled"`
	IncludeResolutions      []string `toml:"includeResolutions" mapstructure:"includeResolutions"`
	FilterReleaseEnabled    bool     `toml:"filterReleaseEnabled" mapstructure:"filterReleaseEnabled"`
	IncludeReleaseTypes     []string `toml:"includeReleaseTypes" mapstructure:"includeReleaseTypes"`
	FilterExcludeNoSeed     bool     `toml:"filterExcludeNoSeed" mapstructure:"filterExcludeNoSeed"`
	FilterSmartMatch        bool     `toml:"filterSmartMatch" mapstructure:"filterSmartMatch"`
}
