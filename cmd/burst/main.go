// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/autobrr/burst/internal/api"
	"github.com/autobrr/burst/internal/buildinfo"
	"github.com/autobrr/burst/internal/config"
	"github.com/autobrr/burst/internal/domain"
	"github.com/autobrr/burst/internal/metrics"
	"github.com/autobrr/burst/internal/notify"
	"github.com/autobrr/burst/internal/services/search"
)

func main() {
	config.InitDefaultLogger(buildinfo.Version)

	var rootCmd = &cobra.Command{
		Use:   "burst",
		Short: "Meta-search for Jackett indexers",
		Long: `burst - Searches every configured Jackett indexer at once, filters and
ranks the results and returns them as magnet links.`,
	}

	rootCmd.Version = buildinfo.Version

	rootCmd.AddCommand(RunServeCommand())
	rootCmd.AddCommand(RunSearchCommand())
	rootCmd.AddCommand(RunValidateCommand())
	rootCmd.AddCommand(RunIndexersCommand())
	rootCmd.AddCommand(RunVersionCommand(buildinfo.Version))
	rootCmd.AddCommand(RunGenerateConfigCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func RunServeCommand() *cobra.Command {
	var (
		configDir string
		logPath   string
	)

	var command = &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
	}

	command.Flags().StringVar(&configDir, "config-dir", "", "config directory path (default is OS-specific: ~/.config/burst/ or %APPDATA%\\burst\\). Can also be a direct path to a .toml file")
	command.Flags().StringVar(&logPath, "log-path", "", "log file path (default is stdout)")

	command.Run = func(cmd *cobra.Command, args []string) {
		app := NewApplication(configDir, logPath)
		app.runServer()
	}

	return command
}

func RunVersionCommand(version string) *cobra.Command {
	var command = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of burst",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	}

	return command
}

func RunGenerateConfigCommand() *cobra.Command {
	var configDir string

	command := &cobra.Command{
		Use:   "generate-config",
		Short: "Generate a default configuration file",
		Long: `Generate a default configuration file without starting the server.

If no --config-dir is specified, uses the OS-specific default location:
- Linux/macOS: ~/.config/burst/config.toml
- Windows: %APPDATA%\burst\config.toml

You can specify either a directory path or a direct file path:
- Directory: burst generate-config --config-dir /path/to/config/
- File: burst generate-config --config-dir /path/to/myconfig.toml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var configPath string
			if configDir != "" {
				if strings.HasSuffix(strings.ToLower(configDir), ".toml") {
					configPath = configDir
				} else if info, err := os.Stat(configDir); err == nil && !info.IsDir() {
					configPath = configDir
				} else {
					configPath = filepath.Join(configDir, "config.toml")
				}
			} else {
				configPath = filepath.Join(config.GetDefaultConfigDir(), "config.toml")
			}

			if _, err := os.Stat(configPath); err == nil {
				cmd.Printf("Configuration file already exists at: %s\n", configPath)
				cmd.Println("Skipping generation to avoid overwriting existing configuration.")
				return nil
			}

			if err := config.WriteDefaultConfig(configPath); err != nil {
				return fmt.Errorf("failed to create configuration file: %w", err)
			}

			cmd.Printf("Configuration file created successfully at: %s\n", configPath)
			return nil
		},
	}

	command.Flags().StringVar(&configDir, "config-dir", "",
		"config directory or file path (defaults to OS-specific location)")

	return command
}

type Application struct {
	configDir string
	logPath   string
}

func NewApplication(configDir, logPath string) *Application {
	return &Application{
		configDir: configDir,
		logPath:   logPath,
	}
}

func (app *Application) runServer() {
	cfg, err := config.New(app.configDir, buildinfo.Version)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize configuration")
	}

	if app.logPath != "" {
		cfg.Config.LogPath = app.logPath
	}

	cfg.ApplyLogConfig()

	log.Info().Str("version", buildinfo.Version).Str("config_dir", cfg.GetConfigDir()).Msg("Starting burst")

	snapshot := cfg.Snapshot()

	var recorder metrics.Recorder = metrics.Nop{}
	var metricsManager *metrics.Manager
	if snapshot.MetricsEnabled {
		metricsManager = metrics.NewManager()
		recorder = metricsManager
	}

	notifications := notify.NewBuffer(0, notify.NewLogNotifier())

	searchService := search.NewService(cfg,
		search.WithStatusSink(cfg),
		search.WithNotifier(notifications),
		search.WithRecorder(recorder),
	)

	// Re-check the connection when the Jackett settings change on disk.
	jackettHost, jackettKey := snapshot.JackettHost, snapshot.JackettAPIKey
	cfg.RegisterReloadListener(func(conf *domain.Config) {
		if conf.JackettHost == jackettHost && conf.JackettAPIKey == jackettKey {
			return
		}
		jackettHost, jackettKey = conf.JackettHost, conf.JackettAPIKey

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		status := searchService.Validate(ctx)
		log.Info().Bool("ok", status.OK).Str("status", status.Message).Msg("Jackett settings changed")
	})

	httpServer := api.NewServer(&api.Dependencies{
		Config:        cfg,
		Version:       buildinfo.Version,
		SearchService: searchService,
		Notifications: notifications,
	})

	errorChannel := make(chan error, 2)
	serverReady := make(chan struct{}, 1)
	go func() {
		if err := httpServer.ListenAndServeReady(serverReady); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errorChannel <- err
		}
	}()

	select {
	case <-serverReady:
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			status := searchService.Validate(ctx)
			log.Info().Bool("ok", status.OK).Str("status", status.Message).Msg("Validated Jackett settings")
		}()
	case err := <-errorChannel:
		log.Fatal().Err(err).Msg("failed to start HTTP server")
	}

	var metricsServer *metrics.Server
	if metricsManager != nil {
		metricsServer = metrics.NewMetricsServer(metricsManager, snapshot.MetricsHost, snapshot.MetricsPort)
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errorChannel <- err
			}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Msgf("got signal %v, shutting down server", sig.String())
	case err := <-errorChannel:
		log.Error().Err(err).Msg("got unexpected error from server")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if metricsServer != nil {
		if err := metricsServer.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("got error during metrics server shutdown")
		}
	}

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("got error during graceful http shutdown")
		os.Exit(1)
	}

	os.Exit(0)
}
