package console

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"botdash/internal/dashboard"
)

type action struct {
	usage   string
	summary string
	minArgs int
	run     func(ctx context.Context, args []string) error
}

// table is the dispatch table keyed by command name. Account rows are
// addressed by the handle AddAccount returned, never by position.
func (s *Session) table() map[string]action {
	c := s.ctrl
	noCtx := func(fn func() error) func(context.Context, []string) error {
		return func(context.Context, []string) error { return fn() }
	}
	withCtx := func(fn func(context.Context) error) func(context.Context, []string) error {
		return func(ctx context.Context, _ []string) error { return fn(ctx) }
	}

	return map[string]action{
		"help": {summary: "list commands", run: noCtx(func() error { s.help(); return nil })},
		"quit": {summary: "leave the console", run: noCtx(func() error { return errQuit })},
		"exit": {summary: "leave the console", run: noCtx(func() error { return errQuit })},

		"section": {usage: "<name>", summary: "switch section (" + strings.Join(dashboard.Sections, ", ") + ")", minArgs: 1,
			run: func(_ context.Context, args []string) error {
				c.SwitchSection(args[0])
				return nil
			}},

		"config": {summary: "reload the configuration", run: withCtx(c.LoadConfig)},
		"set": {usage: "<field> <value>", summary: "edit a configuration field", minArgs: 2,
			run: func(_ context.Context, args []string) error {
				return c.SetConfigField(args[0], strings.Join(args[1:], " "))
			}},
		"save-config": {summary: "save the configuration form",
			run: func(ctx context.Context, _ []string) error {
				return c.SaveConfig(ctx, c.State().ConfigForm())
			}},

		"personalities": {summary: "reload personalities", run: withCtx(c.LoadPersonalities)},
		"select": {usage: "<id>", summary: "make a personality active", minArgs: 1,
			run: func(ctx context.Context, args []string) error {
				return c.SelectPersonality(ctx, args[0])
			}},
		"edit": {usage: "<id>", summary: "load a personality into the form", minArgs: 1,
			run: func(_ context.Context, args []string) error {
				c.EditPersonality(args[0])
				return nil
			}},
		"new":    {summary: "start a new personality", run: noCtx(func() error { c.NewPersonality(); return nil })},
		"cancel": {summary: "discard the personality form", run: noCtx(func() error { c.CancelPersonalityEdit(); return nil })},
		"field": {usage: "<name|description|content> <text>", summary: "edit the personality form", minArgs: 1,
			run: func(_ context.Context, args []string) error {
				return c.SetPersonalityField(args[0], strings.Join(args[1:], " "))
			}},
		"save-personality": {summary: "save the personality form",
			run: func(ctx context.Context, _ []string) error {
				id, err := c.SavePersonality(ctx, c.State().PersonalityForm())
				if err == nil {
					fmt.Fprintf(s.out, "saved %s\n", id)
				}
				return err
			}},
		"delete-personality": {usage: "<id>", summary: "delete a personality", minArgs: 1,
			run: func(ctx context.Context, args []string) error {
				return c.DeletePersonality(ctx, args[0])
			}},

		"pdfs": {summary: "reload documents", run: withCtx(c.LoadPDFs)},
		"pick": {usage: "<path>", summary: "choose a local file to upload", minArgs: 1,
			run: func(_ context.Context, args []string) error {
				c.SelectPDF(strings.Join(args, " "))
				return nil
			}},
		"upload": {summary: "upload the chosen file", run: withCtx(c.UploadPDF)},
		"delete-pdf": {usage: "<path>", summary: "delete a document", minArgs: 1,
			run: func(ctx context.Context, args []string) error {
				return c.DeletePDF(ctx, strings.Join(args, " "))
			}},

		"status": {summary: "refresh bot status", run: withCtx(c.UpdateBotStatus)},
		"start":  {summary: "start the bot", run: withCtx(c.StartBot)},
		"stop":   {summary: "stop the bot", run: withCtx(c.StopBot)},

		"accounts": {summary: "reload accounts", run: withCtx(c.LoadAccounts)},
		"add-account": {summary: "append an empty account row",
			run: noCtx(func() error {
				fmt.Fprintf(s.out, "row %s\n", c.AddAccount())
				return nil
			})},
		"update-account": {usage: "<row> <api_id> <api_hash> <phone>", summary: "fill an account row", minArgs: 1,
			run: func(_ context.Context, args []string) error {
				in := dashboard.AccountInput{}
				fields := []*string{&in.APIID, &in.APIHash, &in.Phone}
				for i, v := range args[1:] {
					if i < len(fields) {
						*fields[i] = v
					}
				}
				return c.UpdateAccount(args[0], in)
			}},
		"remove-account": {usage: "<row>", summary: "remove an account row", minArgs: 1,
			run: func(_ context.Context, args []string) error {
				return c.RemoveAccount(args[0])
			}},
		"save-accounts": {summary: "save complete account rows", run: withCtx(c.SaveAccounts)},

		"logs":       {summary: "refresh bot logs", run: withCtx(c.RefreshLogs)},
		"clear-logs": {summary: "clear the log view", run: noCtx(c.ClearLogs)},
		"save-all":   {summary: "save configuration and accounts", run: withCtx(c.SaveAll)},

		"toasts": {summary: "list notifications",
			run: noCtx(func() error {
				for _, t := range c.Notifications().Active() {
					fmt.Fprintf(s.out, "%s [%s] %s\n", t.ID, t.Style, t.Message)
				}
				return nil
			})},
		"dismiss": {usage: "<id|all>", summary: "dismiss notifications", minArgs: 1,
			run: func(_ context.Context, args []string) error {
				if args[0] == "all" {
					c.Notifications().DismissAll()
					return nil
				}
				if !c.Notifications().Dismiss(args[0]) {
					return fmt.Errorf("no notification %s", args[0])
				}
				return nil
			}},
	}
}

func (s *Session) help() {
	names := make([]string, 0, len(s.actions))
	for name := range s.actions {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		a := s.actions[name]
		fmt.Fprintf(s.out, "  %-40s %s\n", strings.TrimSpace(name+" "+a.usage), a.summary)
	}
}
