package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"botdash/internal/dashboard"
)

var errQuit = errors.New("quit")

// Poller is the page-lifetime status refresh. *poller.Poller satisfies it.
type Poller interface {
	Start()
	Stop()
}

type Options struct {
	Controller     *dashboard.Controller
	In             *bufio.Reader
	Out            io.Writer
	Poller         Poller
	Logger         *zap.Logger
	DefaultSection string
}

// Session is one interactive console lifetime: bootstrap, a running status
// poll, and a read-dispatch loop until quit or end of input.
type Session struct {
	ctrl    *dashboard.Controller
	in      *bufio.Reader
	out     io.Writer
	poller  Poller
	logger  *zap.Logger
	section string
	actions map[string]action
}

func New(opts Options) (*Session, error) {
	if opts.Controller == nil {
		return nil, errors.New("console: controller is required")
	}
	if opts.In == nil {
		return nil, errors.New("console: input is required")
	}
	s := &Session{
		ctrl:    opts.Controller,
		in:      opts.In,
		out:     opts.Out,
		poller:  opts.Poller,
		logger:  opts.Logger,
		section: opts.DefaultSection,
	}
	if s.out == nil {
		s.out = io.Discard
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.section == "" {
		s.section = dashboard.SectionOverview
	}
	s.actions = s.table()
	return s, nil
}

func (s *Session) Run(ctx context.Context) error {
	if err := s.ctrl.Bootstrap(ctx); err != nil {
		s.logger.Warn("initial load incomplete", zap.Error(err))
	}
	s.ctrl.SwitchSection(s.section)

	if s.poller != nil {
		s.poller.Start()
		defer s.poller.Stop()
	}

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		fmt.Fprint(s.out, "> ")
		line, err := s.in.ReadString('\n')
		if strings.TrimSpace(line) != "" {
			if derr := s.Dispatch(ctx, line); errors.Is(derr, errQuit) {
				return nil
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

// Dispatch runs one command line. Errors are reported to the operator and
// returned; unknown commands print the help text.
func (s *Session) Dispatch(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	name, args := strings.ToLower(fields[0]), fields[1:]
	a, ok := s.actions[name]
	if !ok {
		fmt.Fprintf(s.out, "unknown command %q\n", name)
		s.help()
		return fmt.Errorf("unknown command %q", name)
	}
	if len(args) < a.minArgs {
		fmt.Fprintf(s.out, "usage: %s %s\n", name, a.usage)
		return fmt.Errorf("%s: missing arguments", name)
	}
	err := a.run(ctx, args)
	switch {
	case err == nil, errors.Is(err, errQuit):
	case errors.Is(err, dashboard.ErrDeclined):
		fmt.Fprintln(s.out, "cancelled")
	default:
		s.logger.Debug("command failed", zap.String("command", name), zap.Error(err))
		fmt.Fprintf(s.out, "error: %v\n", err)
	}
	return err
}
