// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"sync"
	"text/template"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/autobrr/burst/internal/domain"
	"github.com/autobrr/burst/internal/models"
)

var envPrefix = "BURST__"

type AppConfig struct {
	Config  *domain.Config
	viper   *viper.Viper
	version string

	// mu guards Config against reloads and validation write-backs.
	mu sync.RWMutex

	listenersMu sync.RWMutex
	listeners   []func(*domain.Config)

	// logMu guards the rotating log file shared across reloads.
	logMu      sync.Mutex
	logFile    *lumberjack.Logger
	logFileKey string
}

func New(configDirOrPath string, versions ...string) (*AppConfig, error) {
	version := "dev"
	if len(versions) > 0 && strings.TrimSpace(versions[0]) != "" {
		version = versions[0]
	}

	c := &AppConfig{
		viper:   viper.New(),
		Config:  &domain.Config{},
		version: version,
	}

	c.defaults()

	if err := c.load(configDirOrPath); err != nil {
		return nil, err
	}

	c.loadFromEnv()

	if err := c.viper.Unmarshal(c.Config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	c.Config.Version = c.version

	c.watchConfig()

	return c, nil
}

func (c *AppConfig) defaults() {
	host := "localhost"
	if detectContainer() {
		host = "0.0.0.0"
	}

	policy := models.DefaultFilterPolicy()

	c.viper.SetDefault("host", host)
	c.viper.SetDefault("port", 7480)
	c.viper.SetDefault("baseUrl", "/")
	c.viper.SetDefault("logLevel", "INFO")
	c.viper.SetDefault("logPath", "")
	c.viper.SetDefault("logMaxSize", 50)
	c.viper.SetDefault("logMaxBackups", 3)
	c.viper.SetDefault("metricsEnabled", false)
	c.viper.SetDefault("metricsHost", "127.0.0.1")
	c.viper.SetDefault("metricsPort", 9080)

	c.viper.SetDefault("jackettHost", "http://127.0.0.1:9117")
	c.viper.SetDefault("jackettApiKey", "")
	c.viper.SetDefault("jackettTimeout", 20)
	c.viper.SetDefault("settingsValidated", "")

	c.viper.SetDefault("preferredLanguage", "")
	c.viper.SetDefault("searchByImdb", policy.SearchByIMDb)
	c.viper.SetDefault("searchSeasonOnEpisode", policy.SeasonOnEpisode)
	c.viper.SetDefault("smartYearVariants", policy.SmartYearVariants)
	c.viper.SetDefault("maxResults", 20)
	c.viper.SetDefault("sortBy", int(models.SortBalanced))
	c.viper.SetDefault("resolverConcurrency", 0)

	c.viper.SetDefault("filterKeywordsEnabled", policy.KeywordsEnabled)
	c.viper.SetDefault("keywordsBlock", []string{})
	c.viper.SetDefault("keywordsRequire", []string{})
	c.viper.SetDefault("filterSizeEnabled", policy.SizeEnabled)
	c.viper.SetDefault("sizeIncludeUnknown", policy.IncludeUnknownSize)
	c.viper.SetDefault("sizeMin", policy.GeneralSize.MinGB)
	c.viper.SetDefault("sizeMax", policy.GeneralSize.MaxGB)
	c.viper.SetDefault("sizeMovieMin", policy.MovieSize.MinGB)
	c.viper.SetDefault("sizeMovieMax", policy.MovieSize.MaxGB)
	c.viper.SetDefault("sizeSeasonMin", policy.SeasonSize.MinGB)
	c.viper.SetDefault("sizeSeasonMax", policy.SeasonSize.MaxGB)
	c.viper.SetDefault("sizeEpisodeMin", policy.EpisodeSize.MinGB)
	c.viper.SetDefault("sizeEpisodeMax", policy.EpisodeSize.MaxGB)
	c.viper.SetDefault("filterResolutionEnabled", policy.ResolutionEnabled)
	c.viper.SetDefault("includeResolutions", resolutionNames(policy.AllowedResolutions))
	c.viper.SetDefault("filterReleaseEnabled", policy.ReleaseTypeEnabled)
	c.viper.SetDefault("includeReleaseTypes", releaseTypeNames(policy.AllowedReleaseTypes))
	c.viper.SetDefault("filterExcludeNoSeed", policy.ExcludeNoSeed)
	c.viper.SetDefault("filterSmartMatch", policy.SmartMatch)
}

func (c *AppConfig) load(configDirOrPath string) error {
	c.viper.SetConfigType("toml")

	if configDirOrPath != "" {
		configPath := c.resolveConfigPath(configDirOrPath)
		c.viper.SetConfigFile(configPath)

		if err := c.viper.ReadInConfig(); err != nil {
			// SetConfigFile reports a missing file as a plain fs error.
			if _, ok := err.(viper.ConfigFileNotFoundError); ok || os.IsNotExist(err) {
				if err := c.writeDefaultConfig(configPath); err != nil {
					return err
				}
				if err := c.viper.ReadInConfig(); err != nil {
					return fmt.Errorf("failed to read newly created config: %w", err)
				}
				return nil
			}
			return fmt.Errorf("failed to read config: %w", err)
		}
		return nil
	}

	c.viper.SetConfigName("config")
	c.viper.AddConfigPath(".")
	c.viper.AddConfigPath(GetDefaultConfigDir())

	if err := c.viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			defaultConfigPath := filepath.Join(GetDefaultConfigDir(), "config.toml")
			if err := c.writeDefaultConfig(defaultConfigPath); err != nil {
				return err
			}
			c.viper.SetConfigFile(defaultConfigPath)
			if err := c.viper.ReadInConfig(); err != nil {
				return fmt.Errorf("failed to read newly created config: %w", err)
			}
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}

	return nil
}

func (c *AppConfig) loadFromEnv() {
	// Only the variables below are bound. AutomaticEnv would pick up unrelated
	// variables in container environments.
	c.viper.BindEnv("host", envPrefix+"HOST")
	c.viper.BindEnv("port", envPrefix+"PORT")
	c.viper.BindEnv("baseUrl", envPrefix+"BASE_URL")
	c.viper.BindEnv("logLevel", envPrefix+"LOG_LEVEL")
	c.viper.BindEnv("logPath", envPrefix+"LOG_PATH")
	c.viper.BindEnv("logMaxSize", envPrefix+"LOG_MAX_SIZE")
	c.viper.BindEnv("logMaxBackups", envPrefix+"LOG_MAX_BACKUPS")
	c.viper.BindEnv("metricsEnabled", envPrefix+"METRICS_ENABLED")
	c.viper.BindEnv("metricsHost", envPrefix+"METRICS_HOST")
	c.viper.BindEnv("metricsPort", envPrefix+"METRICS_PORT")

	c.viper.BindEnv("jackettHost", envPrefix+"JACKETT_HOST")
	c.bindOrReadFromFile("jackettApiKey", envPrefix+"JACKETT_API_KEY")
	c.viper.BindEnv("jackettTimeout", envPrefix+"JACKETT_TIMEOUT")
	c.viper.BindEnv("preferredLanguage", envPrefix+"PREFERRED_LANGUAGE")
	c.viper.BindEnv("maxResults", envPrefix+"MAX_RESULTS")
	c.viper.BindEnv("sortBy", envPrefix+"SORT_BY")
	c.viper.BindEnv("resolverConcurrency", envPrefix+"RESOLVER_CONCURRENCY")
}

// bindOrReadFromFile sets viperVar from the file named by envVar_FILE when
// present, and binds envVar otherwise.
func (c *AppConfig) bindOrReadFromFile(viperVar string, envVar string) {
	if filePath := os.Getenv(envVar + "_FILE"); filePath != "" {
		content, err := os.ReadFile(filePath)
		if err != nil {
			log.Error().Err(err).Str("path", filePath).Msgf("Could not read %s_FILE", envVar)
			c.viper.BindEnv(viperVar, envVar)
			return
		}
		c.viper.Set(viperVar, strings.TrimSpace(string(content)))
		return
	}
	c.viper.BindEnv(viperVar, envVar)
}

func (c *AppConfig) watchConfig() {
	c.viper.WatchConfig()
	c.viper.OnConfigChange(func(e fsnotify.Event) {
		log.Info().Msgf("Config file changed: %s", e.Name)

		c.mu.Lock()
		err := c.viper.Unmarshal(c.Config)
		c.Config.Version = c.version
		c.mu.Unlock()
		if err != nil {
			log.Error().Err(err).Msg("Failed to reload configuration")
			return
		}

		c.ApplyLogConfig()
		c.notifyListeners()
	})
}

// RegisterReloadListener registers a callback that's invoked when the configuration file is reloaded.
func (c *AppConfig) RegisterReloadListener(fn func(*domain.Config)) {
	c.listenersMu.Lock()
	defer c.listenersMu.Unlock()
	c.listeners = append(c.listeners, fn)
}

func (c *AppConfig) notifyListeners() {
	c.listenersMu.RLock()
	listeners := append([]func(*domain.Config){}, c.listeners...)
	c.listenersMu.RUnlock()

	if len(listeners) == 0 {
		return
	}

	copied := c.Snapshot()
	for _, listener := range listeners {
		listener(&copied)
	}
}

// Snapshot returns a copy of the current configuration.
func (c *AppConfig) Snapshot() domain.Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	copied := *c.Config
	copied.KeywordsBlock = append([]string(nil), c.Config.KeywordsBlock...)
	copied.KeywordsRequire = append([]string(nil), c.Config.KeywordsRequire...)
	copied.IncludeResolutions = append([]string(nil), c.Config.IncludeResolutions...)
	copied.IncludeReleaseTypes = append([]string(nil), c.Config.IncludeReleaseTypes...)
	return copied
}

// FilterPolicy builds the filter policy from the current configuration.
// Unknown resolution and release type names are logged and skipped.
func (c *AppConfig) FilterPolicy() models.FilterPolicy {
	return filterPolicy(c.Snapshot())
}

func filterPolicy(cfg domain.Config) models.FilterPolicy {
	policy := models.FilterPolicy{
		KeywordsEnabled: cfg.FilterKeywordsEnabled,
		BlockKeywords:   cfg.KeywordsBlock,
		RequireKeywords: cfg.KeywordsRequire,

		SizeEnabled:        cfg.FilterSizeEnabled,
		IncludeUnknownSize: cfg.SizeIncludeUnknown,
		MovieSize:          models.SizeBounds{MinGB: cfg.SizeMovieMin, MaxGB: cfg.SizeMovieMax},
		SeasonSize:         models.SizeBounds{MinGB: cfg.SizeSeasonMin, MaxGB: cfg.SizeSeasonMax},
		EpisodeSize:        models.SizeBounds{MinGB: cfg.SizeEpisodeMin, MaxGB: cfg.SizeEpisodeMax},
		GeneralSize:        models.SizeBounds{MinGB: cfg.SizeMin, MaxGB: cfg.SizeMax},

		ResolutionEnabled:  cfg.FilterResolutionEnabled,
		ReleaseTypeEnabled: cfg.FilterReleaseEnabled,

		ExcludeNoSeed: cfg.FilterExcludeNoSeed,
		SmartMatch:    cfg.FilterSmartMatch,

		SearchByIMDb:      cfg.SearchByIMDb,
		SeasonOnEpisode:   cfg.SearchSeasonOnEpisode,
		SmartYearVariants: cfg.SmartYearVariants,
	}

	for _, name := range cfg.IncludeResolutions {
		r, ok := models.ParseResolutionClass(name)
		if !ok {
			log.Warn().Str("resolution", name).Msg("Ignoring unknown resolution in includeResolutions")
			continue
		}
		policy.AllowedResolutions = append(policy.AllowedResolutions, r)
	}
	for _, name := range cfg.IncludeReleaseTypes {
		t, ok := models.ParseReleaseType(name)
		if !ok {
			log.Warn().Str("release_type", name).Msg("Ignoring unknown release type in includeReleaseTypes")
			continue
		}
		policy.AllowedReleaseTypes = append(policy.AllowedReleaseTypes, t)
	}

	return policy
}

// SearchSettings returns the settings snapshot a single search runs with.
func (c *AppConfig) SearchSettings() models.SearchSettings {
	cfg := c.Snapshot()

	sort, err := models.ParseSortStrategy(cfg.SortBy)
	if err != nil {
		log.Warn().Err(err).Msgf("Falling back to %s sorting", sort)
	}

	return models.SearchSettings{
		JackettHost:         cfg.JackettHost,
		JackettAPIKey:       cfg.JackettAPIKey,
		JackettTimeout:      cfg.JackettTimeout,
		PreferredLanguage:   cfg.PreferredLanguage,
		Policy:              filterPolicy(cfg),
		Sort:                sort,
		MaxResults:          cfg.MaxResults,
		ResolverConcurrency: cfg.ResolverConcurrency,
	}
}

// SetValidationStatus stores status as settingsValidated and writes the
// config file. Nothing is written when the status is unchanged.
func (c *AppConfig) SetValidationStatus(status string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Config.SettingsValidated == status {
		return nil
	}

	c.Config.SettingsValidated = status

	path := c.viper.ConfigFileUsed()
	if path == "" {
		return nil
	}

	if err := writeConfigValue(path, "settingsValidated", status); err != nil {
		return fmt.Errorf("failed to write validation status: %w", err)
	}
	return nil
}

// writeConfigValue rewrites the top-level assignment of key in the TOML file at
// path and leaves every other line as it is. A missing key is added at the top.
func writeConfigValue(path, key, value string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	encoded, err := toml.Marshal(map[string]string{key: value})
	if err != nil {
		return err
	}
	line := strings.TrimRight(string(encoded), "\n")

	pattern := regexp.MustCompile(`(?m)^[ \t]*` + regexp.QuoteMeta(key) + `[ \t]*=.*$`)

	var updated []byte
	if loc := pattern.FindIndex(content); loc != nil {
		updated = make([]byte, 0, len(content)+len(line))
		updated = append(updated, content[:loc[0]]...)
		updated = append(updated, line...)
		updated = append(updated, content[loc[1]:]...)
	} else {
		updated = append([]byte(line+"\n"), content...)
	}

	return os.WriteFile(path, updated, info.Mode().Perm())
}

func resolutionNames(in []models.ResolutionClass) []string {
	out := make([]string, 0, len(in))
	for _, r := range in {
		out = append(out, string(r))
	}
	return out
}

func releaseTypeNames(in []models.ReleaseType) []string {
	out := make([]string, 0, len(in))
	for _, t := range in {
		out = append(out, string(t))
	}
	return out
}

func quoteList(in []string) string {
	quoted := make([]string, 0, len(in))
	for _, s := range in {
		quoted = append(quoted, fmt.Sprintf("%q", s))
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

const configTemplate = `# config.toml - Auto-generated on first run

# Hostname / IP
# Default: "localhost" (or "0.0.0.0" in containers)
host = "{{ .host }}"

# Port
# Default: 7480
port = {{ .port }}

# Base URL
# Set custom baseUrl eg /burst/ to serve in subdirectory.
# Optional
#baseUrl = "/burst/"

# Log file path
# If not defined, logs to stdout
# Optional
#logPath = "log/burst.log"

# Log rotation
# Maximum log file size in megabytes before rotation
# Default: {{ .logMaxSize }}
#logMaxSize = {{ .logMaxSize }}

# Number of rotated log files to retain (0 keeps all)
# Default: {{ .logMaxBackups }}
#logMaxBackups = {{ .logMaxBackups }}

# Log level
# Default: "INFO"
# Options: "ERROR", "DEBUG", "INFO", "WARN", "TRACE"
logLevel = "{{ .logLevel }}"

# Prometheus Metrics
# Enable Prometheus metrics on separate port (no authentication required)
# Default: false
#metricsEnabled = false

# Metrics server host
# Default: "127.0.0.1"
#metricsHost = "127.0.0.1"

# Metrics server port
# Default: 9080
#metricsPort = 9080

# Jackett
# Address of the Jackett server, including scheme
jackettHost = "{{ .jackettHost }}"

# API key shown on the Jackett dashboard (32 characters)
# Can also be supplied with BURST__JACKETT_API_KEY or BURST__JACKETT_API_KEY_FILE
jackettApiKey = ""

# Per-request timeout in seconds
# Default: {{ .jackettTimeout }}
#jackettTimeout = {{ .jackettTimeout }}

# Result of the last settings validation, written by burst
settingsValidated = ""

# Search
# Language code used to pick a localized title when one is available
#preferredLanguage = "de"

# Query indexers by IMDb id when they support it
# Default: {{ .searchByImdb }}
#searchByImdb = {{ .searchByImdb }}

# Query the whole season when searching for an episode
# Default: false
#searchSeasonOnEpisode = false

# Also query with the season and show years for episodes
# Default: false
#smartYearVariants = false

# Maximum number of results returned
# Default: {{ .maxResults }}
#maxResults = {{ .maxResults }}

# Sort order
# 0 = resolution, 1 = seeds, 2 = size, 3 = balanced
# Default: {{ .sortBy }}
#sortBy = {{ .sortBy }}

# Parallel download link resolutions (0 = four per CPU)
# Default: 0
#resolverConcurrency = 0

# Filters
#filterKeywordsEnabled = false
#keywordsBlock = []
#keywordsRequire = []

#filterSizeEnabled = false
#sizeIncludeUnknown = true
#sizeMin = {{ .sizeMin }}
#sizeMax = {{ .sizeMax }}
#sizeMovieMin = {{ .sizeMovieMin }}
#sizeMovieMax = {{ .sizeMovieMax }}
#sizeSeasonMin = {{ .sizeSeasonMin }}
#sizeSeasonMax = {{ .sizeSeasonMax }}
#sizeEpisodeMin = {{ .sizeEpisodeMin }}
#sizeEpisodeMax = {{ .sizeEpisodeMax }}

#filterResolutionEnabled = true
# Options: {{ .resolutionOptions }}
#includeResolutions = {{ .includeResolutions }}

#filterReleaseEnabled = true
# Options: {{ .releaseTypeOptions }}
#includeReleaseTypes = {{ .includeReleaseTypes }}

#filterExcludeNoSeed = true
#filterSmartMatch = false
`

func (c *AppConfig) writeDefaultConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		log.Debug().Msgf("Config file already exists at: %s", path)
		return nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory %s: %w", dir, err)
	}
	log.Debug().Msgf("Created config directory: %s", dir)

	data := map[string]any{
		"host":                c.viper.GetString("host"),
		"port":                c.viper.GetInt("port"),
		"logLevel":            c.viper.GetString("logLevel"),
		"logMaxSize":          c.viper.GetInt("logMaxSize"),
		"logMaxBackups":       c.viper.GetInt("logMaxBackups"),
		"jackettHost":         c.viper.GetString("jackettHost"),
		"jackettTimeout":      c.viper.GetInt("jackettTimeout"),
		"searchByImdb":        c.viper.GetBool("searchByImdb"),
		"maxResults":          c.viper.GetInt("maxResults"),
		"sortBy":              c.viper.GetInt("sortBy"),
		"sizeMin":             c.viper.GetFloat64("sizeMin"),
		"sizeMax":             c.viper.GetFloat64("sizeMax"),
		"sizeMovieMin":        c.viper.GetFloat64("sizeMovieMin"),
		"sizeMovieMax":        c.viper.GetFloat64("sizeMovieMax"),
		"sizeSeasonMin":       c.viper.GetFloat64("sizeSeasonMin"),
		"sizeSeasonMax":       c.viper.GetFloat64("sizeSeasonMax"),
		"sizeEpisodeMin":      c.viper.GetFloat64("sizeEpisodeMin"),
		"sizeEpisodeMax":      c.viper.GetFloat64("sizeEpisodeMax"),
		"includeResolutions":  quoteList(c.viper.GetStringSlice("includeResolutions")),
		"includeReleaseTypes": quoteList(c.viper.GetStringSlice("includeReleaseTypes")),
		"resolutionOptions":   strings.Join(resolutionNames(models.ResolutionClasses()), ", "),
		"releaseTypeOptions":  strings.Join(releaseTypeNames(models.ReleaseTypes()), ", "),
	}

	tmpl, err := template.New("config").Parse(configTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse config template: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	if err := tmpl.Execute(f, data); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	log.Info().Msgf("Created default config file: %s", path)
	return nil
}

// WriteDefaultConfig writes a fresh config file to path unless one exists.
func WriteDefaultConfig(path string) error {
	c := &AppConfig{
		viper: viper.New(),
	}

	c.defaults()

	return c.writeDefaultConfig(path)
}

// GetDefaultConfigDir returns the OS-specific config directory
func GetDefaultConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		// Containers mount /config directly.
		if xdgConfig == "/config" {
			return xdgConfig
		}
		return filepath.Join(xdgConfig, "burst")
	}

	switch runtime.GOOS {
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "burst")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "AppData", "Roaming", "burst")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "burst")
	}
}

func detectContainer() bool {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}
	if _, err := os.Stat("/dev/.lxc-boot-id"); err == nil {
		return true
	}
	return os.Getpid() == 1
}

// resolveConfigPath determines the actual config file path from the provided directory or file path
func (c *AppConfig) resolveConfigPath(configDirOrPath string) string {
	if strings.HasSuffix(strings.ToLower(configDirOrPath), ".toml") {
		return configDirOrPath
	}

	if info, err := os.Stat(configDirOrPath); err == nil && !info.IsDir() {
		return configDirOrPath
	}

	return filepath.Join(configDirOrPath, "config.toml")
}

// GetConfigDir returns the directory containing the config file
func (c *AppConfig) GetConfigDir() string {
	if c.viper.ConfigFileUsed() != "" {
		return filepath.Dir(c.viper.ConfigFileUsed())
	}
	return GetDefaultConfigDir()
}

func (c *AppConfig) ApplyLogConfig() {
	cfg := c.Snapshot()

	zerolog.TimeFieldFormat = time.RFC3339

	setLogLevel(cfg.LogLevel)

	writer := baseLogWriter(c.version)

	if rotator := c.logRotator(cfg.LogPath, cfg.LogMaxSize, cfg.LogMaxBackups); rotator != nil {
		writer = io.MultiWriter(writer, rotator)
	}

	log.Logger = log.Logger.Output(writer)
}

// logRotator returns the rotating writer for path, reusing the open one when the
// settings are unchanged and closing it when they are not.
func (c *AppConfig) logRotator(path string, maxSize, maxBackups int) *lumberjack.Logger {
	c.logMu.Lock()
	defer c.logMu.Unlock()

	key := fmt.Sprintf("%s|%d|%d", path, maxSize, maxBackups)
	if c.logFile != nil && c.logFileKey == key {
		return c.logFile
	}

	if c.logFile != nil {
		if err := c.logFile.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close previous log file")
		}
		c.logFile, c.logFileKey = nil, ""
	}

	if path == "" {
		return nil
	}

	rotator, err := setupLogFile(path, maxSize, maxBackups)
	if err != nil {
		log.Error().Err(err).Msg("Failed to setup log file")
		return nil
	}
	c.logFile, c.logFileKey = rotator, key
	return rotator
}

func setLogLevel(level string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Logger.Level(lvl)
}

func setupLogFile(path string, maxSize, maxBackups int) (*lumberjack.Logger, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	if maxSize <= 0 {
		maxSize = 50
	}

	if maxBackups < 0 {
		maxBackups = 0
	}

	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSize,
		MaxBackups: maxBackups,
	}, nil
}

func baseLogWriter(version string) io.Writer {
	if isDevBuild(version) {
		writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
		writer.PartsOrder = []string{zerolog.TimestampFieldName, zerolog.LevelFieldName, zerolog.MessageFieldName}
		return writer
	}
	return os.Stderr
}

// InitDefaultLogger configures zerolog with the default writer for this version.
// This is used by CLI entry points before a configuration file is loaded.
func InitDefaultLogger(version string) {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Logger.Output(baseLogWriter(version))
}

func isDevBuild(version string) bool {
	v := strings.ToLower(strings.TrimSpace(version))
	return v == "" || v == "dev" || strings.HasSuffix(v, "-dev")
}
