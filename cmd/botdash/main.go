package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"botdash/internal/api"
	"botdash/internal/audit"
	"botdash/internal/cli"
	"botdash/internal/config"
	"botdash/internal/console"
	"botdash/internal/dashboard"
	"botdash/internal/logging"
	"botdash/internal/poller"
	"botdash/internal/view"
)

const envConfigPath = "BOTDASH_CONFIG"

var subcommands = map[string]bool{
	"console":       true,
	"status":        true,
	"start":         true,
	"stop":          true,
	"config":        true,
	"personalities": true,
	"pdfs":          true,
	"accounts":      true,
	"logs":          true,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin *os.File, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		printUsage(stderr)
		return 2
	}

	cfgPath := configPath()
	if args[0] == "init" {
		return handleInit(cfgPath, args[1:], stdout, stderr)
	}
	if !subcommands[args[0]] {
		fmt.Fprintf(stderr, "unknown subcommand: %s\n\n", args[0])
		printUsage(stderr)
		return 2
	}

	cfg, err := config.LoadOrDefault(cfgPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	interactive := args[0] == "console"
	var in *bufio.Reader
	if interactive || console.Interactive(stdin) {
		in = bufio.NewReader(stdin)
	}
	a, err := newApp(cfg, in, stdout, stderr, interactive)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer a.Close()

	handlers := cli.Handlers{Controller: a.ctrl, Prompter: a.prompter, Out: stdout, Err: stderr}

	var code int
	switch args[0] {
	case "status":
		code = handlers.HandleStatus(ctx, args[1:])
	case "start":
		code = handlers.HandleStart(ctx, args[1:])
	case "stop":
		code = handlers.HandleStop(ctx, args[1:])
	case "config":
		code = handlers.HandleConfig(ctx, args[1:])
	case "personalities":
		code = handlers.HandlePersonalities(ctx, args[1:])
	case "pdfs":
		code = handlers.HandlePDFs(ctx, args[1:])
	case "accounts":
		code = handlers.HandleAccounts(ctx, args[1:])
	case "logs":
		code = handlers.HandleLogs(ctx, args[1:])
	case "console":
		code = a.runConsole(ctx, args[1:], stderr)
	}
	return code
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "usage: botdash <subcommand> [flags]")
	fmt.Fprintln(w, "subcommands: init, console, status, start, stop, config, personalities, pdfs, accounts, logs")
}

func configPath() string {
	if p := strings.TrimSpace(os.Getenv(envConfigPath)); p != "" {
		return p
	}
	return config.DefaultPath
}

func handleInit(path string, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	fs.SetOutput(stderr)
	force := fs.Bool("force", false, "overwrite an existing config")
	baseURL := fs.String("base-url", "", "dashboard base URL")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if _, err := os.Stat(path); err == nil && !*force {
		fmt.Fprintf(stderr, "%s already exists (use -force to overwrite)\n", path)
		return 1
	}
	cfg := config.Default()
	if *baseURL != "" {
		cfg.API.BaseURL = *baseURL
	}
	if err := config.Save(path, cfg); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	fmt.Fprintf(stdout, "wrote %s\n", path)
	return 0
}

// app holds everything one invocation wires together.
type app struct {
	cfg      config.Config
	logger   *zap.Logger
	audit    *audit.Logger
	prompter *console.Prompter
	in       *bufio.Reader
	out      io.Writer
	ctrl     *dashboard.Controller
	poller   *poller.Poller
}

// newApp builds the controller. With a session, the status poll doubles as
// the scheduler for the delayed refresh after start and stop; one-shot
// commands exit before it would fire, so they get none.
func newApp(cfg config.Config, in *bufio.Reader, stdout, stderr io.Writer, session bool) (*app, error) {
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, stderr, stderr)
	if err != nil {
		return nil, err
	}
	client, err := api.New(api.Options{
		BaseURL: cfg.API.BaseURL,
		Prefix:  cfg.API.Prefix,
		Timeout: cfg.RequestTimeout(),
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger, in: in, out: stdout}
	a.prompter = console.NewPrompter(in, stderr)
	a.prompter.AssumeYes = cfg.Console.AssumeYes

	opts := dashboard.Options{
		API:           client,
		Renderer:      view.NewText(stdout),
		Confirmer:     a.prompter,
		Logger:        logger,
		FollowupDelay: cfg.FollowupDelay(),
	}
	if cfg.Audit.Enabled {
		a.audit, err = audit.NewLogger(cfg.Audit.Path, nil)
		if err != nil {
			return nil, fmt.Errorf("open audit log: %w", err)
		}
		opts.Auditor = a.audit
	}
	if session {
		a.poller = poller.New(cfg.StatusInterval(), func(ctx context.Context) {
			_ = a.ctrl.UpdateBotStatus(ctx)
		})
		opts.Scheduler = a.poller
	}
	a.ctrl = dashboard.New(opts)
	return a, nil
}

func (a *app) runConsole(ctx context.Context, args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("console", flag.ContinueOnError)
	fs.SetOutput(stderr)
	section := fs.String("section", a.cfg.Console.DefaultSection, "section shown first")
	yes := fs.Bool("yes", false, "answer every confirmation with yes")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *yes {
		a.prompter.AssumeYes = true
	}

	opts := console.Options{
		Controller:     a.ctrl,
		In:             a.in,
		Out:            a.out,
		Logger:         a.logger,
		DefaultSection: *section,
	}
	if a.poller != nil {
		opts.Poller = a.poller
	}
	s, err := console.New(opts)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if err := s.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

func (a *app) Close() {
	if a.poller != nil {
		a.poller.Stop()
	}
	if a.audit != nil {
		if err := a.audit.Close(); err != nil {
			a.logger.Warn("close audit log", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}
