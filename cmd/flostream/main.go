package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	clientcmd "github.com/rzbill/flostream/internal/cmd/client"
	serverrun "github.com/rzbill/flostream/internal/cmd/server"
	logpkg "github.com/rzbill/flostream/pkg/log"
)

func main() {
	// initialize logger for CLI
	// Respect FLOSTREAM_LOG_LEVEL for both CLI and server start output
	level := os.Getenv("FLOSTREAM_LOG_LEVEL")
	parsed, err := logpkg.ParseLevel(level)
	if err != nil {
		parsed = logpkg.InfoLevel
	}
	logger := logpkg.NewLogger(
		logpkg.WithLevel(parsed),
		logpkg.WithFormatter(&logpkg.TextFormatter{}),
		logpkg.WithOutput(logpkg.NewConsoleOutput()),
	)

	// Redirect standard library logs to our logger
	logpkg.RedirectStdLog(logger)

	rootCmd := clientcmd.NewRoot(clientcmd.HTTPBaseFromEnv)
	rootCmd.Short = "flostream runtime CLI"
	rootCmd.Long = "flostream is an in-memory append-only stream server. This CLI manages the server and basic operations."
	rootCmd.SilenceUsage = true

	// server start
	serverCmd := &cobra.Command{Use: "server", Short: "Server commands"}
	serverStartCmd := &cobra.Command{
		Use:     "start",
		Short:   "Start flostream server (gRPC and HTTP)",
		Aliases: []string{"run"},
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			grpcAddr, _ := cmd.Flags().GetString("grpc")
			httpAddr, _ := cmd.Flags().GetString("http")
			backend, _ := cmd.Flags().GetString("backend")
			logLevel, _ := cmd.Flags().GetString("log-level")
			logFormat, _ := cmd.Flags().GetString("log-format")

			cfg, err := serverrun.ResolveConfig(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if backend != "" {
				cfg.Storage.Backend = backend
			}
			if logLevel != "" {
				cfg.Log.Level = logLevel
			}
			if logFormat != "" {
				cfg.Log.Format = logFormat
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			if err := serverrun.Run(ctx, serverrun.Options{
				GRPCAddr: grpcAddr,
				HTTPAddr: httpAddr,
				Config:   cfg,
			}); err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			// brief delay to allow logs flush
			time.Sleep(100 * time.Millisecond)
			return nil
		},
	}
	serverStartCmd.Flags().String("config", "", "Config file (.yaml, .yml or .json); defaults to FLOSTREAM_CONFIG or the usual locations")
	serverStartCmd.Flags().String("grpc", "", "gRPC listen address (default from config, :50051)")
	serverStartCmd.Flags().String("http", "", "HTTP listen address (default from config, :8080)")
	serverStartCmd.Flags().String("backend", "", "Storage backend: memory|pebble")
	serverStartCmd.Flags().String("log-level", "", "Log level: debug|info|warn|error")
	serverStartCmd.Flags().String("log-format", "", "Log format: text|json")
	serverCmd.AddCommand(serverStartCmd)
	rootCmd.AddCommand(serverCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
