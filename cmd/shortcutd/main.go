package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/freema/shortcutd/internal/config"
	"github.com/freema/shortcutd/internal/logger"
	"github.com/freema/shortcutd/internal/mcpserver"
	"github.com/freema/shortcutd/internal/server"
	"github.com/freema/shortcutd/internal/shortcuts"
	"github.com/freema/shortcutd/internal/shutdown"
	"github.com/freema/shortcutd/internal/tool"
	"github.com/freema/shortcutd/internal/tracing"
)

var version = "dev"

var errForcedShutdown = errors.New("grace period elapsed with work outstanding")

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "version":
		fmt.Println("shortcutd", version)
		return
	case "stdio":
		err = runStdio(os.Args[2:])
	case "http":
		err = runHTTP(os.Args[2:])
	case "run":
		err = runOnce(os.Args[2:])
	case "help", "-h", "--help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "shortcutd: unknown command %q\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}

	if err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprint(os.Stderr, `Usage: shortcutd <command> [flags]

Commands:
  stdio     serve MCP over stdin/stdout
  http      serve MCP over streamable HTTP
  run       run a single shortcut and print the result
  version   print the version

Run "shortcutd <command> -h" for command flags.
`)
}

// newRuntime wires the execution adapter, shutdown coordinator and tool
// façade from config.
func newRuntime(cfg *config.Config) (*shutdown.Coordinator, *tool.Handler) {
	runner := shortcuts.NewCLIRunner(cfg.Shortcuts.RunnerPath, shortcuts.Config{
		MaxOutputBytes: cfg.Shortcuts.MaxOutputBytes,
		KillGrace:      cfg.Shortcuts.KillGrace,
	})
	coord := shutdown.NewCoordinator(cfg.Shutdown.GracePeriod)
	handler := tool.NewHandler(runner, coord, tool.HandlerConfig{
		DefaultTimeout: cfg.Shortcuts.DefaultTimeout,
		MaxTimeout:     cfg.Shortcuts.MaxTimeout,
	})
	return coord, handler
}

func runStdio(args []string) error {
	fs := flag.NewFlagSet("stdio", flag.ContinueOnError)
	configPath := fs.String("config", os.Getenv("SHORTCUTD_CONFIG"), "path to config file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// stdout carries JSON-RPC frames; logs go to stderr.
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)
	slog.Info("starting shortcutd", "version", version, "transport", "stdio")

	tracingShutdown, err := setupTracing(cfg)
	if err != nil {
		return err
	}
	defer tracingShutdown(context.Background())

	coord, handler := newRuntime(cfg)
	mcpSrv := mcpserver.New(handler, version)

	srvCtx, srvCancel := context.WithCancel(context.Background())
	defer srvCancel()

	runErr := make(chan error, 1)
	go func() { runErr <- mcpserver.ServeStdio(srvCtx, mcpSrv) }()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutdown signal received", "signal", sig.String())
	case err := <-runErr:
		// Client closed the stream. Drain whatever is still running.
		if err != nil {
			slog.Warn("stdio transport closed", "error", err)
		}
	}

	return drain(coord)
}

func runHTTP(args []string) error {
	fs := flag.NewFlagSet("http", flag.ContinueOnError)
	configPath := fs.String("config", os.Getenv("SHORTCUTD_CONFIG"), "path to config file")
	host := fs.String("host", "", "host interface to bind")
	port := fs.Int("port", 0, "port to listen on")
	jsonResponse := fs.Bool("json-response", false, "return JSON responses instead of SSE streams")
	stateless := fs.Bool("stateless", false, "disable session reuse and treat every request independently")
	certFile := fs.String("certfile", "", "path to a TLS certificate for HTTPS")
	keyFile := fs.String("keyfile", "", "path to the TLS private key matching -certfile")
	authToken := fs.String("auth-token", "", "bearer token protecting the MCP endpoint")
	var allowedHosts, allowedOrigins stringSliceFlag
	fs.Var(&allowedHosts, "allowed-host", "allowed Host header when DNS rebinding protection is enabled (repeatable)")
	fs.Var(&allowedOrigins, "allowed-origin", "allowed Origin header when DNS rebinding protection is enabled (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Flags override file/env config, but only when actually set.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "host":
			cfg.Server.Host = *host
		case "port":
			cfg.Server.Port = *port
		case "json-response":
			cfg.Server.JSONResponse = *jsonResponse
		case "stateless":
			cfg.Server.Stateless = *stateless
		case "certfile":
			cfg.Server.TLSCertFile = *certFile
		case "keyfile":
			cfg.Server.TLSKeyFile = *keyFile
		case "auth-token":
			cfg.Server.AuthToken = *authToken
		case "allowed-host":
			cfg.Server.AllowedHosts = allowedHosts
		case "allowed-origin":
			cfg.Server.AllowedOrigins = allowedOrigins
		}
	})
	if (cfg.Server.TLSCertFile == "") != (cfg.Server.TLSKeyFile == "") {
		return errors.New("-certfile and -keyfile must be provided together")
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format, os.Stdout)
	slog.Info("starting shortcutd", "version", version, "transport", "http")

	tracingShutdown, err := setupTracing(cfg)
	if err != nil {
		return err
	}
	defer tracingShutdown(context.Background())

	coord, handler := newRuntime(cfg)
	mcpSrv := mcpserver.New(handler, version)
	mcpHandler := mcpserver.HTTPHandler(mcpSrv, cfg.Server.JSONResponse, cfg.Server.Stateless)

	srv := server.New(cfg, mcpHandler, version)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutdown signal received", "signal", sig.String())
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}

	// Cancel in-flight invocations first so open connections settle, then
	// stop accepting new ones.
	deadline := coord.RequestShutdown()
	shutdownCtx, cancel := context.WithDeadline(context.Background(), deadline)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	return drain(coord)
}

func runOnce(args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	configPath := fs.String("config", os.Getenv("SHORTCUTD_CONFIG"), "path to config file")
	input := fs.String("input", "", "text piped to the shortcut's standard input")
	timeout := fs.Float64("timeout", 0, "maximum seconds to wait for the shortcut")
	jsonOut := fs.Bool("json", false, "print the structured result as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	name := fs.Arg(0)
	if strings.TrimSpace(name) == "" {
		return errors.New("usage: shortcutd run [flags] <shortcut name>")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)

	coord, handler := newRuntime(cfg)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-quit
		coord.RequestShutdown()
	}()

	req := tool.Input{ShortcutName: name, TextInput: *input}
	if *timeout > 0 {
		req.TimeoutSeconds = timeout
	}

	out, err := handler.Invoke(context.Background(), req)
	if err != nil {
		return err
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return err
		}
	} else {
		fmt.Println(out.Summary)
	}

	switch shortcuts.Status(out.Status) {
	case shortcuts.StatusSucceeded:
		return nil
	case shortcuts.StatusTimedOut:
		return errors.New("shortcut timed out")
	case shortcuts.StatusCancelled:
		return errors.New("shortcut cancelled")
	default:
		code := -1
		if out.ExitCode != nil {
			code = *out.ExitCode
		}
		return fmt.Errorf("shortcut exited with return code %d", code)
	}
}

// drain waits for in-flight invocations within the grace period and turns a
// forced exit into a non-nil error.
func drain(coord *shutdown.Coordinator) error {
	if !coord.Drain() {
		slog.Error("forced termination: in-flight invocations abandoned", "in_flight", coord.InFlight())
		return errForcedShutdown
	}
	slog.Info("shutdown complete")
	return nil
}

func setupTracing(cfg *config.Config) (func(context.Context) error, error) {
	tracingShutdown, err := tracing.Setup(context.Background(), tracing.Config{
		Enabled:      cfg.Tracing.Enabled,
		Endpoint:     cfg.Tracing.Endpoint,
		SamplingRate: cfg.Tracing.SamplingRate,
		ServiceName:  "shortcutd",
		Version:      version,
	})
	if err != nil {
		return nil, fmt.Errorf("initializing tracing: %w", err)
	}
	return tracingShutdown, nil
}

// stringSliceFlag collects repeatable flag values.
type stringSliceFlag []string

func (s *stringSliceFlag) String() string { return strings.Join(*s, ",") }

func (s *stringSliceFlag) Set(v string) error {
	*s = append(*s, v)
	return nil
}
