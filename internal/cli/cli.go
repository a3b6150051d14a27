// ============================================================================
// Task Engine CLI - Command Line Interface
// ============================================================================
//
// Package: internal/cli
// File: cli.go
// Purpose: cobra-based command line interface - a root command with a
// persistent --config flag, run/enqueue/status subcommands, and
// signal-driven graceful shutdown - themed onto the task-dispatch engine.
//
// ============================================================================

package cli

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ChuLiYu/taskengine/internal/config"
	"github.com/ChuLiYu/taskengine/internal/engine"
	"github.com/ChuLiYu/taskengine/internal/logging"
	"github.com/ChuLiYu/taskengine/internal/metrics"
)

var configFile string

// BuildCLI assembles the root command and its subcommands.
func BuildCLI() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "taskengine",
		Short:   "An in-process background task-dispatch engine",
		Long:    "taskengine runs work queues, priority queues, an access queue, a conveyor, and a scheduler in one long-lived process.",
		Version: "0.1.0",
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "configs/default.yaml", "config file path")

	rootCmd.AddCommand(buildRunCommand())
	rootCmd.AddCommand(buildEnqueueCommand())
	rootCmd.AddCommand(buildStatusCommand())

	return rootCmd
}

func buildRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the task engine",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEngine()
		},
	}
}

func runEngine() error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := logging.New(logging.Options{Level: cfg.Logging.Level, JSON: cfg.Logging.JSON})
	logger.Info("starting task engine", "config", configFile)

	eng := engine.New(cfg, logger)
	eng.Start()

	if cfg.Metrics.Enabled {
		go func() {
			logger.Info("starting metrics server", "port", cfg.Metrics.Port)
			if err := metrics.StartServer(cfg.Metrics.Port); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server error", "error", err)
			}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	logger.Info("shutdown signal received, stopping")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := eng.Stop(ctx); err != nil {
		logger.Error("shutdown did not complete cleanly", "error", err)
	}
	logger.Info("task engine stopped")
	return nil
}

func buildEnqueueCommand() *cobra.Command {
	var file string
	var priority int

	cmd := &cobra.Command{
		Use:   "enqueue",
		Short: "Submit demo work items read from a newline-delimited text file",
		Long:  "Each line becomes one logged work item submitted to a running engine's demo priority queue via its HTTP admin surface would be ideal; this standalone form runs an ephemeral in-process engine for local testing of the submission path.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return fmt.Errorf("a --file is required")
			}
			return enqueueDemoWork(file, priority)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "path to a newline-delimited file of work descriptions")
	cmd.Flags().IntVar(&priority, "priority", 0, "priority lane for each submitted item")
	return cmd
}

func enqueueDemoWork(path string, priority int) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := logging.New(logging.Options{Level: cfg.Logging.Level, JSON: cfg.Logging.JSON})

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	eng := engine.New(cfg, logger)
	eng.Start()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = eng.Stop(ctx)
	}()

	scanner := bufio.NewScanner(f)
	count := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := eng.SubmitDemoWork(line, priority); err != nil {
			logger.Error("failed to enqueue line", "line", line, "error", err)
			continue
		}
		count++
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	logger.Info("enqueued demo work", "count", count)
	time.Sleep(500 * time.Millisecond) // let the demo worker drain before exit
	return nil
}

func buildStatusCommand() *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Report gauge metrics scraped from a running engine's metrics endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			return reportStatus(metricsAddr)
		},
	}
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "http://localhost:9090/metrics", "metrics endpoint of a running engine")
	return cmd
}

func reportStatus(addr string) error {
	resp, err := http.Get(addr)
	if err != nil {
		return fmt.Errorf("fetch %s: %w (is the engine running with metrics enabled?)", addr, err)
	}
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "taskengine_") && !strings.HasPrefix(line, "# ") {
			fmt.Println(line)
		}
	}
	return scanner.Err()
}
