package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/karpagadevi/templed/internal/agent"
	"github.com/karpagadevi/templed/internal/api"
	"github.com/karpagadevi/templed/internal/config"
	"github.com/karpagadevi/templed/internal/model"
	"github.com/karpagadevi/templed/internal/ollama"
	"github.com/karpagadevi/templed/internal/router"
	"github.com/karpagadevi/templed/internal/tavily"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the templed server (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running templed server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return stopServer()
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show templed system status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showStatus()
	},
}

func pidFilePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "templed", "templed.pid")
}

func writePIDFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644)
}

func readPIDFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

func removePIDFile(path string) {
	os.Remove(path)
}

func runServer() error {
	fmt.Fprintf(os.Stderr, "templed version %s\n", version)

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Initialize structured logging.
	logLevel := slog.LevelInfo
	if strings.EqualFold(cfg.Log.Level, "debug") {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	// Write PID file. Check if server is already running via health endpoint.
	pidPath := pidFilePath()
	healthURL := fmt.Sprintf("http://127.0.0.1:%d/health", cfg.Server.Port)
	healthClient := &http.Client{Timeout: 2 * time.Second}
	if resp, err := healthClient.Get(healthURL); err == nil {
		resp.Body.Close()
		if pid, pidErr := readPIDFile(pidPath); pidErr == nil {
			printWarning("templed is already running (PID %d)", pid)
			return fmt.Errorf("server already running (PID %d)", pid)
		}
		printWarning("templed is already running on port %d", cfg.Server.Port)
		return fmt.Errorf("server already running on port %d", cfg.Server.Port)
	}
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	defer removePIDFile(pidPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Build the search client.
	search, err := tavily.NewClient(tavily.Config{
		APIKey:      cfg.Tavily.APIKey,
		MaxResults:  cfg.Tavily.MaxResults,
		SearchDepth: cfg.Tavily.SearchDepth,
	})
	if err != nil {
		return fmt.Errorf("building search client: %w", err)
	}

	// Build the model provider if a model is configured. A missing or
	// unreachable model is not fatal: the router answers with a
	// placeholder and search keeps working.
	var provider router.ModelProvider
	if cfg.Ollama.Model != "" {
		oc := ollama.New(cfg.Ollama.BaseURL)
		if err := ollama.EnsureReady(ctx, oc, cfg.Ollama.Model, os.Stderr); err != nil {
			slog.Warn("temple model unavailable, continuing without it", "model", cfg.Ollama.Model, "error", err)
		} else {
			p, err := model.NewOllamaProvider(oc, cfg.Ollama.Model)
			if err != nil {
				return fmt.Errorf("building model provider: %w", err)
			}
			provider = p
		}
	} else {
		slog.Info("no model configured, historical answers use a placeholder")
	}

	rt := router.New(search, provider)
	ag := agent.New(rt, cfg.Agent.HistorySize, cfg.Agent.Verbose)

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: api.NewHandler(ag),
	}

	mcpAddr := fmt.Sprintf("127.0.0.1:%d", cfg.Server.MCPPort)
	sseSrv := server.NewSSEServer(api.NewMCPServer(ag))

	// Run both listeners until a signal arrives or one of them fails.
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		fmt.Fprintf(os.Stderr, "templed listening on %s\n", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		slog.Info("MCP server started (SSE transport)", "addr", mcpAddr)
		if err := sseSrv.Start(mcpAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("mcp server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		fmt.Fprintln(os.Stderr, "shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := sseSrv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("MCP server shutdown", "error", err)
		}
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func stopServer() error {
	pidPath := pidFilePath()
	pid, err := readPIDFile(pidPath)
	if err != nil {
		printError("templed is not running (no PID file)")
		return fmt.Errorf("not running: %w", err)
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		printError("could not find process %d", pid)
		return err
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		printError("could not stop templed (PID %d): %v", pid, err)
		removePIDFile(pidPath)
		return err
	}

	printSuccess("Sent stop signal to templed (PID %d)", pid)
	return nil
}

func showStatus() error {
	cfg, err := config.Load()
	if err != nil {
		// Still show partial status even if config fails.
		printError("config error: %v", err)
		return nil
	}

	// Check server health.
	serverURL := fmt.Sprintf("http://127.0.0.1:%d", cfg.Server.Port)
	client := &http.Client{Timeout: 2 * time.Second}

	running := false
	resp, err := client.Get(serverURL + "/health")
	if err != nil {
		printStatus("Server", "stopped")
	} else {
		resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			running = true
			printStatus("Server", "running on port %d", cfg.Server.Port)
		} else {
			printStatus("Server", "error (HTTP %d)", resp.StatusCode)
		}
	}

	// Check Ollama.
	if cfg.Ollama.Model == "" {
		printStatus("Model", "not configured (placeholder answers)")
	} else {
		ollamaResp, err := client.Get(cfg.Ollama.BaseURL + "/api/version")
		if err != nil {
			printStatus("Ollama", "not running")
		} else {
			ollamaResp.Body.Close()
			printStatus("Ollama", "running at %s", cfg.Ollama.BaseURL)
		}
		printStatus("Model", "%s", cfg.Ollama.Model)
	}

	// Show agent stats if the server is running.
	if running {
		statsResp, err := client.Get(serverURL + "/v1/stats")
		if err == nil {
			var stats agent.Stats
			if decodeErr := decodeJSON(statsResp, &stats); decodeErr == nil {
				printStatus("Queries", "%d", stats.TotalQueries)
				usage := stats.Router.TavilyUsage
				printStatus("Searches", "%d/%d (%.1f%%)", usage.SearchesUsed, usage.FreeTierLimit, usage.PercentUsed)
			}
		}
	}

	return nil
}
