package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"botdash/internal/api"
	"botdash/internal/console"
	"botdash/internal/dashboard"
)

// Handlers runs one-shot subcommands against the dashboard API. Each handler
// loads what it needs, performs one operation and returns an exit code:
// 0 success, 1 operation failure, 2 usage error.
type Handlers struct {
	Controller *dashboard.Controller
	// Prompter answers confirmations; -yes on a destructive subcommand
	// switches it to assume yes.
	Prompter *console.Prompter

	Out io.Writer
	Err io.Writer
}

func (h Handlers) HandleStatus(ctx context.Context, args []string) int {
	if h.Controller == nil {
		return h.fail(errors.New("dashboard is not configured"))
	}
	fs := h.flagSet("status")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if err := h.Controller.UpdateBotStatus(ctx); err != nil {
		return h.fail(err)
	}
	return 0
}

func (h Handlers) HandleStart(ctx context.Context, args []string) int {
	return h.control(ctx, "start", args, h.startFn())
}

func (h Handlers) HandleStop(ctx context.Context, args []string) int {
	return h.control(ctx, "stop", args, h.stopFn())
}

func (h Handlers) startFn() func(context.Context) error {
	if h.Controller == nil {
		return nil
	}
	return h.Controller.StartBot
}

func (h Handlers) stopFn() func(context.Context) error {
	if h.Controller == nil {
		return nil
	}
	return h.Controller.StopBot
}

func (h Handlers) control(ctx context.Context, name string, args []string, fn func(context.Context) error) int {
	if fn == nil {
		return h.fail(errors.New("dashboard is not configured"))
	}
	fs := h.flagSet(name)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if err := fn(ctx); err != nil {
		return h.fail(err)
	}
	return 0
}

// HandleConfig supports "get [-json]" and "set field=value ...".
func (h Handlers) HandleConfig(ctx context.Context, args []string) int {
	if h.Controller == nil {
		return h.fail(errors.New("dashboard is not configured"))
	}
	cmd, rest := subcommand(args, "get")
	switch cmd {
	case "get":
		fs := h.flagSet("config get")
		asJSON := fs.Bool("json", false, "print the configuration as JSON")
		if err := fs.Parse(rest); err != nil {
			return 2
		}
		if err := h.Controller.LoadConfig(ctx); err != nil {
			return h.fail(err)
		}
		if *asJSON {
			return h.printJSON(h.Controller.State().Config())
		}
		return 0
	case "set":
		fs := h.flagSet("config set")
		if err := fs.Parse(rest); err != nil {
			return 2
		}
		if fs.NArg() == 0 {
			return h.usage(errors.New("config set needs at least one field=value"))
		}
		if err := h.Controller.LoadConfig(ctx); err != nil {
			return h.fail(err)
		}
		for _, kv := range fs.Args() {
			field, value, ok := strings.Cut(kv, "=")
			if !ok {
				return h.usage(fmt.Errorf("expected field=value, got %q", kv))
			}
			if err := h.Controller.SetConfigField(field, value); err != nil {
				return h.usage(err)
			}
		}
		if err := h.Controller.SaveConfig(ctx, h.Controller.State().ConfigForm()); err != nil {
			return h.fail(err)
		}
		return 0
	default:
		return h.usage(fmt.Errorf("unsupported config command: %s", cmd))
	}
}

// HandlePersonalities supports "list", "select <id>", "save" and
// "delete <id>".
func (h Handlers) HandlePersonalities(ctx context.Context, args []string) int {
	if h.Controller == nil {
		return h.fail(errors.New("dashboard is not configured"))
	}
	c := h.Controller
	cmd, rest := subcommand(args, "list")
	switch cmd {
	case "list":
		if err := c.LoadConfig(ctx); err != nil {
			return h.fail(err)
		}
		if err := c.LoadPersonalities(ctx); err != nil {
			return h.fail(err)
		}
		return 0
	case "select":
		if len(rest) != 1 {
			return h.usage(errors.New("usage: personalities select <id>"))
		}
		if err := c.LoadConfig(ctx); err != nil {
			return h.fail(err)
		}
		if err := c.LoadPersonalities(ctx); err != nil {
			return h.fail(err)
		}
		if err := c.SelectPersonality(ctx, rest[0]); err != nil {
			return h.fail(err)
		}
		return 0
	case "save":
		fs := h.flagSet("personalities save")
		id := fs.String("id", "", "id of the personality to overwrite (empty creates a new one)")
		name := fs.String("name", "", "display name")
		desc := fs.String("description", "", "short description")
		content := fs.String("content", "", "prompt text")
		contentFile := fs.String("content-file", "", "read the prompt text from a file")
		if err := fs.Parse(rest); err != nil {
			return 2
		}
		if *id == "" && *name == "" {
			return h.usage(errors.New("-name is required for a new personality"))
		}
		given := map[string]bool{}
		fs.Visit(func(f *flag.Flag) { given[f.Name] = true })
		if *contentFile != "" {
			data, err := os.ReadFile(*contentFile)
			if err != nil {
				return h.fail(err)
			}
			*content = string(data)
			given["content"] = true
		}
		if err := c.LoadPersonalities(ctx); err != nil {
			return h.fail(err)
		}
		if *id != "" {
			c.EditPersonality(*id)
		} else {
			c.NewPersonality()
		}
		// When editing, fields not given on the command line keep their
		// stored values.
		form := c.State().PersonalityForm()
		if given["name"] {
			form.Name = *name
		}
		if given["description"] {
			form.Description = *desc
		}
		if given["content"] {
			form.Content = *content
		}
		saved, err := c.SavePersonality(ctx, form)
		if err != nil {
			return h.fail(err)
		}
		_, _ = fmt.Fprintln(h.outWriter(), saved)
		return 0
	case "delete":
		fs := h.flagSet("personalities delete")
		yes := fs.Bool("yes", false, "do not ask for confirmation")
		if err := fs.Parse(rest); err != nil {
			return 2
		}
		if fs.NArg() != 1 {
			return h.usage(errors.New("usage: personalities delete [-yes] <id>"))
		}
		h.assumeYes(*yes)
		if err := c.DeletePersonality(ctx, fs.Arg(0)); err != nil {
			return h.fail(err)
		}
		return 0
	default:
		return h.usage(fmt.Errorf("unsupported personalities command: %s", cmd))
	}
}

// HandlePDFs supports "list", "upload <file>" and "delete <path>".
func (h Handlers) HandlePDFs(ctx context.Context, args []string) int {
	if h.Controller == nil {
		return h.fail(errors.New("dashboard is not configured"))
	}
	c := h.Controller
	cmd, rest := subcommand(args, "list")
	switch cmd {
	case "list":
		if err := c.LoadPDFs(ctx); err != nil {
			return h.fail(err)
		}
		return 0
	case "upload":
		if len(rest) != 1 {
			return h.usage(errors.New("usage: pdfs upload <file>"))
		}
		c.SelectPDF(rest[0])
		if err := c.UploadPDF(ctx); err != nil {
			return h.fail(err)
		}
		return 0
	case "delete":
		fs := h.flagSet("pdfs delete")
		yes := fs.Bool("yes", false, "do not ask for confirmation")
		if err := fs.Parse(rest); err != nil {
			return 2
		}
		if fs.NArg() != 1 {
			return h.usage(errors.New("usage: pdfs delete [-yes] <path>"))
		}
		h.assumeYes(*yes)
		if err := c.DeletePDF(ctx, fs.Arg(0)); err != nil {
			return h.fail(err)
		}
		return 0
	default:
		return h.usage(fmt.Errorf("unsupported pdfs command: %s", cmd))
	}
}

// accountFlag collects repeated -account api_id,api_hash,phone values.
type accountFlag []dashboard.AccountInput

func (a *accountFlag) String() string { return fmt.Sprint(len(*a)) }

func (a *accountFlag) Set(v string) error {
	parts := strings.Split(v, ",")
	if len(parts) != 3 {
		return fmt.Errorf("expected api_id,api_hash,phone, got %q", v)
	}
	*a = append(*a, dashboard.AccountInput{
		APIID:   strings.TrimSpace(parts[0]),
		APIHash: strings.TrimSpace(parts[1]),
		Phone:   strings.TrimSpace(parts[2]),
	})
	return nil
}

// HandleAccounts supports "list", "add" (append to the server's list) and
// "replace" (send exactly the given accounts).
func (h Handlers) HandleAccounts(ctx context.Context, args []string) int {
	if h.Controller == nil {
		return h.fail(errors.New("dashboard is not configured"))
	}
	c := h.Controller
	cmd, rest := subcommand(args, "list")
	switch cmd {
	case "list":
		if err := c.LoadAccounts(ctx); err != nil {
			return h.fail(err)
		}
		return 0
	case "add", "replace":
		var accounts accountFlag
		fs := h.flagSet("accounts " + cmd)
		fs.Var(&accounts, "account", "api_id,api_hash,phone (repeatable)")
		if err := fs.Parse(rest); err != nil {
			return 2
		}
		if len(accounts) == 0 && cmd == "add" {
			return h.usage(errors.New("-account is required"))
		}
		if cmd == "add" {
			if err := c.LoadAccounts(ctx); err != nil {
				return h.fail(err)
			}
		}
		for _, in := range accounts {
			if err := c.UpdateAccount(c.AddAccount(), in); err != nil {
				return h.fail(err)
			}
		}
		if err := c.SaveAccounts(ctx); err != nil {
			return h.fail(err)
		}
		return 0
	default:
		return h.usage(fmt.Errorf("unsupported accounts command: %s", cmd))
	}
}

func (h Handlers) HandleLogs(ctx context.Context, args []string) int {
	if h.Controller == nil {
		return h.fail(errors.New("dashboard is not configured"))
	}
	fs := h.flagSet("logs")
	asJSON := fs.Bool("json", false, "print log lines as JSON")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if err := h.Controller.RefreshLogs(ctx); err != nil {
		return h.fail(err)
	}
	if *asJSON {
		return h.printJSON(h.Controller.State().Logs().Lines)
	}
	return 0
}

// subcommand splits a leading non-flag word off args.
func subcommand(args []string, def string) (string, []string) {
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		return strings.ToLower(args[0]), args[1:]
	}
	return def, args
}

func (h Handlers) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(h.errorWriter())
	return fs
}

func (h Handlers) assumeYes(yes bool) {
	if yes && h.Prompter != nil {
		h.Prompter.AssumeYes = true
	}
}

func (h Handlers) printJSON(v any) int {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return h.fail(err)
	}
	_, _ = fmt.Fprintln(h.outWriter(), string(data))
	return 0
}

func (h Handlers) outWriter() io.Writer {
	if h.Out != nil {
		return h.Out
	}
	return io.Discard
}

func (h Handlers) errorWriter() io.Writer {
	if h.Err != nil {
		return h.Err
	}
	return io.Discard
}

func (h Handlers) fail(err error) int {
	var rejected *dashboard.RejectedError
	if errors.As(err, &rejected) && rejected.Message == "" {
		err = fmt.Errorf("%s: server did not report success", rejected.Op)
	}
	if api.IsTransport(err) {
		err = fmt.Errorf("dashboard unreachable: %w", err)
	}
	_, _ = fmt.Fprintln(h.errorWriter(), err)
	return 1
}

func (h Handlers) usage(err error) int {
	_, _ = fmt.Fprintln(h.errorWriter(), err)
	return 2
}
