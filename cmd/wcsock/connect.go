package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/wcsocket/wcsocket-go/cmd/wcsock/commands"
	"github.com/wcsocket/wcsocket-go/pkg/auth"
	"github.com/wcsocket/wcsocket-go/pkg/discovery"
	"github.com/wcsocket/wcsocket-go/pkg/log"
	"github.com/wcsocket/wcsocket-go/pkg/transport"
)

type connectOptions struct {
	configPath  string
	url         string
	discover    string
	tokenFile   string
	protocolLog string
	traceFrames bool
	metricsAddr string
	autoAck     bool
	showRaw     bool
	verbose     bool
}

func connectCmd() *cobra.Command {
	var opts connectOptions

	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Connect to a server and send events interactively",
		Long: `Connect opens a socket, runs the handshake, and starts a prompt.

Connection settings come from --config (YAML), then --url or --discover
override the endpoint. Type 'help' at the prompt for commands.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConnect(cmd.Context(), opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.configPath, "config", "c", "", "YAML config file")
	f.StringVarP(&opts.url, "url", "u", "", "Server URL (ws:// or wss://)")
	f.StringVar(&opts.discover, "discover", "", "Connect to a server found with mDNS (instance name, or \"any\")")
	f.StringVar(&opts.tokenFile, "token-file", "", "YAML file storing auth tokens (default ~/.wcsock/tokens.yaml)")
	f.StringVar(&opts.protocolLog, "protocol-log", "", "Write a protocol capture to this file")
	f.BoolVar(&opts.traceFrames, "trace", false, "Print protocol events to stderr")
	f.StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	f.BoolVar(&opts.autoAck, "auto-ack", false, "Answer inbound calls with an empty response")
	f.BoolVar(&opts.showRaw, "show-messages", false, "Print every raw inbound message")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")
	return cmd
}

func runConnect(ctx context.Context, opts connectOptions) error {
	fc := &commands.FileConfig{}
	if opts.configPath != "" {
		loaded, err := commands.LoadFileConfig(opts.configPath)
		if err != nil {
			return err
		}
		fc = loaded
	}
	if opts.url != "" {
		fc.URL = opts.url
	}
	if opts.protocolLog != "" {
		fc.ProtocolLog = opts.protocolLog
	}
	if opts.tokenFile != "" {
		fc.TokenFile = opts.tokenFile
	}

	if opts.discover != "" {
		instance := opts.discover
		if instance == "any" {
			instance = ""
		}
		findCtx, cancel := context.WithTimeout(ctx, discovery.BrowseTimeout)
		svc, err := discovery.NewBrowser(discovery.BrowserConfig{}).Find(findCtx, instance)
		cancel()
		if err != nil {
			return fmt.Errorf("discovery failed: %w", err)
		}
		fc.ApplyService(svc)
	}

	config, err := fc.TransportConfig()
	if err != nil {
		return err
	}
	codec, err := fc.NewCodec()
	if err != nil {
		return err
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "wcsock> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()

	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	config.Logger = slog.New(slog.NewTextHandler(rl.Stderr(), &slog.HandlerOptions{Level: level}))

	protocolLoggers, closeLogs, err := buildProtocolLoggers(fc.ProtocolLog, opts.traceFrames, rl.Stderr())
	if err != nil {
		return err
	}
	defer closeLogs()
	config.ProtocolLogger = protocolLoggers

	if opts.metricsAddr != "" {
		reg := prometheus.NewRegistry()
		config.Metrics = transport.NewMetrics(transport.WithRegistry(reg))
		srv := &http.Server{
			Addr:              opts.metricsAddr,
			Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				config.Logger.Error("metrics server failed", slog.Any("error", err))
			}
		}()
		defer srv.Close()
	}

	tokens, err := tokenEngine(fc.TokenFile)
	if err != nil {
		return err
	}

	printer := commands.NewPrinter(rl.Stdout())
	printer.AutoAck = opts.autoAck
	printer.ShowMessages = opts.showRaw
	config.Handler = printer

	tr, err := transport.New(tokens, codec, config)
	if err != nil {
		return err
	}
	fmt.Fprintf(rl.Stdout(), "Connecting to %s (id %s)\n", tr.URI(), tr.ID())

	session := commands.NewSession(tr, rl.Stdout())
	return runPrompt(ctx, rl, session, tr, printer)
}

// runPrompt reads commands until quit, EOF, or the transport closes.
func runPrompt(ctx context.Context, rl *readline.Instance, session *commands.Session, tr *transport.Transport, printer *commands.Printer) error {
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		for {
			line, err := rl.Readline()
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			if err != nil {
				readErr <- err
				return
			}
			lines <- line
		}
	}()

	for {
		select {
		case line := <-lines:
			if session.Exec(line) {
				return nil
			}
		case err := <-readErr:
			tr.Close(transport.CloseNormal, "")
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		case <-printer.Done():
			code, reason, _ := tr.CloseStatus()
			if code == transport.CloseNormal {
				return nil
			}
			return fmt.Errorf("connection closed: %d %s", code, reason)
		case <-ctx.Done():
			tr.Close(transport.CloseNormal, "")
			return nil
		}
	}
}

// buildProtocolLoggers combines the file capture and terminal trace.
func buildProtocolLoggers(path string, trace bool, stderr io.Writer) (log.Logger, func(), error) {
	var loggers []log.Logger
	closeFn := func() {}

	if path != "" {
		fl, err := log.NewFileLogger(path)
		if err != nil {
			return nil, nil, err
		}
		loggers = append(loggers, fl)
		closeFn = func() { _ = fl.Close() }
	}
	if trace {
		zl := zerolog.New(zerolog.ConsoleWriter{Out: stderr, TimeFormat: "15:04:05.000"}).
			With().Timestamp().Logger()
		loggers = append(loggers, log.NewZerologAdapter(zl))
	}

	switch len(loggers) {
	case 0:
		return log.NoopLogger{}, closeFn, nil
	case 1:
		return loggers[0], closeFn, nil
	default:
		return log.NewMultiLogger(loggers...), closeFn, nil
	}
}

// tokenEngine opens the token file, defaulting to ~/.wcsock/tokens.yaml.
func tokenEngine(path string) (auth.Engine, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return auth.NewMemoryEngine(), nil
		}
		path = filepath.Join(home, ".wcsock", "tokens.yaml")
	}
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to expand %s: %w", path, err)
		}
		path = filepath.Join(home, path[2:])
	}
	return auth.NewFileEngine(path), nil
}
