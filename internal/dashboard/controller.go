package dashboard

import (
	"context"
	"errors"
	"io"
	"time"

	"go.uber.org/zap"

	"botdash/internal/api"
	"botdash/internal/audit"
	"botdash/internal/notify"
)

const defaultFollowupDelay = 2 * time.Second

var (
	ErrDeclined   = errors.New("action not confirmed")
	ErrNoFile     = errors.New("no file selected")
	ErrProtected  = errors.New("default personality cannot be deleted")
	ErrUnknownRow = errors.New("unknown account row")
)

// RejectedError is a well-formed response whose status is not "success".
type RejectedError struct {
	Op      string
	Message string
}

func (e *RejectedError) Error() string {
	if e.Message == "" {
		return e.Op + ": rejected by server"
	}
	return e.Op + ": " + e.Message
}

// API is the dashboard REST surface the controller drives.
type API interface {
	GetConfig(ctx context.Context) (api.BotConfig, error)
	SaveConfig(ctx context.Context, cfg api.BotConfig) (api.StatusResponse, error)
	SaveConfigDocument(ctx context.Context, doc api.ConfigDocument) (api.StatusResponse, error)
	GetPersonalities(ctx context.Context) (api.Personalities, error)
	SavePersonalities(ctx context.Context, p api.Personalities) (api.StatusResponse, error)
	DeletePersonality(ctx context.Context, id string) (api.StatusResponse, error)
	ListPDFs(ctx context.Context) ([]api.Document, error)
	UploadPDF(ctx context.Context, filename string, r io.Reader) (api.StatusResponse, error)
	DeletePDF(ctx context.Context, path string) (api.StatusResponse, error)
	BotStatus(ctx context.Context) (api.BotStatus, error)
	StartBot(ctx context.Context) (api.StatusResponse, error)
	StopBot(ctx context.Context) (api.StatusResponse, error)
	GetAccounts(ctx context.Context) ([]api.Account, error)
	SaveAccounts(ctx context.Context, accounts []api.Account) (api.StatusResponse, error)
	Logs(ctx context.Context) (api.LogsResponse, error)
}

// Renderer receives each view region whenever it changes.
type Renderer interface {
	Section(SectionView)
	ConfigForm(ConfigForm)
	Personalities([]PersonalityCard)
	CurrentPersonality(PersonalitySummary)
	PersonalityForm(PersonalityForm)
	Documents([]DocumentCard)
	Status(StatusView)
	Accounts([]AccountRow)
	Logs(LogView)
	Toast(notify.Toast)
}

type Confirmer interface {
	Confirm(prompt string) bool
}

type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// Scheduler runs a one-shot call later. *poller.Poller satisfies it.
type Scheduler interface {
	After(d time.Duration, fn func(ctx context.Context))
}

type Auditor interface {
	LogEvent(ctx context.Context, eventType string, fields map[string]any) error
}

type Options struct {
	API       API
	Renderer  Renderer
	Confirmer Confirmer
	Scheduler Scheduler
	Auditor   Auditor
	Logger    *zap.Logger
	// FollowupDelay is how long after start/stop the status is refreshed.
	FollowupDelay time.Duration
	Now           func() time.Time
}

type Controller struct {
	api       API
	render    Renderer
	confirm   Confirmer
	scheduler Scheduler
	auditor   Auditor
	logger    *zap.Logger
	notes     *notify.Center
	state     *State
	followup  time.Duration
	nowFn     func() time.Time
}

func New(opts Options) *Controller {
	c := &Controller{
		api:       opts.API,
		render:    opts.Renderer,
		confirm:   opts.Confirmer,
		scheduler: opts.Scheduler,
		auditor:   opts.Auditor,
		logger:    opts.Logger,
		state:     NewState(),
		followup:  opts.FollowupDelay,
		nowFn:     opts.Now,
	}
	if c.render == nil {
		c.render = NopRenderer{}
	}
	if c.confirm == nil {
		c.confirm = ConfirmFunc(func(string) bool { return false })
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	if c.followup <= 0 {
		c.followup = defaultFollowupDelay
	}
	if c.nowFn == nil {
		c.nowFn = time.Now
	}
	c.notes = notify.NewCenter(c.render.Toast)
	return c
}

func (c *Controller) State() *State {
	return c.state
}

func (c *Controller) Notifications() *notify.Center {
	return c.notes
}

// failed surfaces a transport failure: operator log plus an error toast.
func (c *Controller) failed(op string, err error) error {
	c.logger.Error("api call failed", zap.String("op", op), zap.Error(err))
	c.notes.Error("API call failed: " + errorText(err))
	return err
}

// errorText is the message shown to the operator: the underlying cause of a
// transport failure without the operation prefix.
func errorText(err error) string {
	var te *api.TransportError
	if errors.As(err, &te) {
		return te.Err.Error()
	}
	return err.Error()
}

func (c *Controller) record(ctx context.Context, eventType string, fields map[string]any) {
	if c.auditor == nil {
		return
	}
	if err := c.auditor.LogEvent(ctx, eventType, fields); err != nil {
		c.logger.Warn("audit write failed", zap.String("event", eventType), zap.Error(err))
	}
}

func outcome(res api.StatusResponse) string {
	if res.OK() {
		return audit.OutcomeSuccess
	}
	return audit.OutcomeRejected
}

// NopRenderer discards every view update.
type NopRenderer struct{}

func (NopRenderer) Section(SectionView)                   {}
func (NopRenderer) ConfigForm(ConfigForm)                 {}
func (NopRenderer) Personalities([]PersonalityCard)       {}
func (NopRenderer) CurrentPersonality(PersonalitySummary) {}
func (NopRenderer) PersonalityForm(PersonalityForm)       {}
func (NopRenderer) Documents([]DocumentCard)              {}
func (NopRenderer) Status(StatusView)                     {}
func (NopRenderer) Accounts([]AccountRow)                 {}
func (NopRenderer) Logs(LogView)                          {}
func (NopRenderer) Toast(notify.Toast)                    {}
