package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"time"

	"botdash/internal/api"
	"botdash/internal/notify"
)

var okResponse = api.StatusResponse{Status: api.StatusSuccess}

type uploadCall struct {
	Filename string
	Body     []byte
}

// fakeAPI answers every call from its fields and records what was sent.
type fakeAPI struct {
	mu sync.Mutex

	config        api.BotConfig
	personalities api.Personalities
	documents     []api.Document
	status        api.BotStatus
	accounts      []api.Account
	logs          api.LogsResponse

	response api.StatusResponse
	err      error

	savedConfigs       []api.BotConfig
	savedDocuments     []api.ConfigDocument
	savedPersonalities []api.Personalities
	deletedIDs         []string
	uploads            []uploadCall
	deletedPaths       []string
	savedAccounts      [][]api.Account
	starts, stops      int
	statusCalls        int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{personalities: api.Personalities{}, response: okResponse}
}

func (f *fakeAPI) reply() (api.StatusResponse, error) {
	if f.err != nil {
		return api.StatusResponse{}, f.err
	}
	return f.response, nil
}

// GetConfig hands out config as it would arrive over the wire, so the raw
// document is populated.
func (f *fakeAPI) GetConfig(context.Context) (api.BotConfig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return api.BotConfig{}, f.err
	}
	data, err := json.Marshal(f.config)
	if err != nil {
		return api.BotConfig{}, err
	}
	var out api.BotConfig
	err = json.Unmarshal(data, &out)
	return out, err
}

func (f *fakeAPI) SaveConfigDocument(_ context.Context, doc api.ConfigDocument) (api.StatusResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.savedDocuments = append(f.savedDocuments, doc.Clone())
	return f.reply()
}

func (f *fakeAPI) SaveConfig(_ context.Context, cfg api.BotConfig) (api.StatusResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.savedConfigs = append(f.savedConfigs, cfg)
	return f.reply()
}

func (f *fakeAPI) GetPersonalities(context.Context) (api.Personalities, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.personalities.Clone(), f.err
}

func (f *fakeAPI) SavePersonalities(_ context.Context, p api.Personalities) (api.StatusResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.savedPersonalities = append(f.savedPersonalities, p.Clone())
	return f.reply()
}

func (f *fakeAPI) DeletePersonality(_ context.Context, id string) (api.StatusResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletedIDs = append(f.deletedIDs, id)
	return f.reply()
}

func (f *fakeAPI) ListPDFs(context.Context) ([]api.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.documents == nil {
		return []api.Document{}, f.err
	}
	return f.documents, f.err
}

func (f *fakeAPI) UploadPDF(_ context.Context, filename string, r io.Reader) (api.StatusResponse, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return api.StatusResponse{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, uploadCall{Filename: filename, Body: body})
	return f.reply()
}

func (f *fakeAPI) DeletePDF(_ context.Context, path string) (api.StatusResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletedPaths = append(f.deletedPaths, path)
	return f.reply()
}

func (f *fakeAPI) BotStatus(context.Context) (api.BotStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusCalls++
	return f.status, f.err
}

func (f *fakeAPI) StartBot(context.Context) (api.StatusResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts++
	return f.reply()
}

func (f *fakeAPI) StopBot(context.Context) (api.StatusResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
	return f.reply()
}

func (f *fakeAPI) GetAccounts(context.Context) ([]api.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.accounts, f.err
}

func (f *fakeAPI) SaveAccounts(_ context.Context, accounts []api.Account) (api.StatusResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.savedAccounts = append(f.savedAccounts, accounts)
	return f.reply()
}

func (f *fakeAPI) Logs(context.Context) (api.LogsResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.logs, f.err
}

// recorder keeps the last value rendered for every region.
type recorder struct {
	mu sync.Mutex

	section       []SectionView
	configForms   []ConfigForm
	personalities [][]PersonalityCard
	current       []PersonalitySummary
	forms         []PersonalityForm
	documents     [][]DocumentCard
	statuses      []StatusView
	accounts      [][]AccountRow
	logs          []LogView
	toasts        []notify.Toast
}

func (r *recorder) Section(v SectionView) {
	r.mu.Lock()
	r.section = append(r.section, v)
	r.mu.Unlock()
}

func (r *recorder) ConfigForm(v ConfigForm) {
	r.mu.Lock()
	r.configForms = append(r.configForms, v)
	r.mu.Unlock()
}

func (r *recorder) Personalities(v []PersonalityCard) {
	r.mu.Lock()
	r.personalities = append(r.personalities, v)
	r.mu.Unlock()
}

func (r *recorder) CurrentPersonality(v PersonalitySummary) {
	r.mu.Lock()
	r.current = append(r.current, v)
	r.mu.Unlock()
}

func (r *recorder) PersonalityForm(v PersonalityForm) {
	r.mu.Lock()
	r.forms = append(r.forms, v)
	r.mu.Unlock()
}

func (r *recorder) Documents(v []DocumentCard) {
	r.mu.Lock()
	r.documents = append(r.documents, v)
	r.mu.Unlock()
}

func (r *recorder) Status(v StatusView) {
	r.mu.Lock()
	r.statuses = append(r.statuses, v)
	r.mu.Unlock()
}

func (r *recorder) Accounts(v []AccountRow) {
	r.mu.Lock()
	r.accounts = append(r.accounts, v)
	r.mu.Unlock()
}

func (r *recorder) Logs(v LogView) {
	r.mu.Lock()
	r.logs = append(r.logs, v)
	r.mu.Unlock()
}

func (r *recorder) Toast(t notify.Toast) {
	r.mu.Lock()
	r.toasts = append(r.toasts, t)
	r.mu.Unlock()
}

func (r *recorder) toastMessages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.toasts))
	for _, t := range r.toasts {
		out = append(out, t.Message)
	}
	return out
}

func (r *recorder) lastToast() notify.Toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.toasts) == 0 {
		return notify.Toast{}
	}
	return r.toasts[len(r.toasts)-1]
}

type scheduled struct {
	delay time.Duration
	fn    func(ctx context.Context)
}

// manualScheduler holds one-shot calls until the test fires them.
type manualScheduler struct {
	mu    sync.Mutex
	calls []scheduled
}

func (s *manualScheduler) After(d time.Duration, fn func(ctx context.Context)) {
	s.mu.Lock()
	s.calls = append(s.calls, scheduled{delay: d, fn: fn})
	s.mu.Unlock()
}

func (s *manualScheduler) fire(ctx context.Context) {
	s.mu.Lock()
	calls := s.calls
	s.calls = nil
	s.mu.Unlock()
	for _, c := range calls {
		c.fn(ctx)
	}
}

type auditRecord struct {
	Type   string
	Fields map[string]any
}

type memAuditor struct {
	mu     sync.Mutex
	events []auditRecord
}

func (a *memAuditor) LogEvent(_ context.Context, eventType string, fields map[string]any) error {
	a.mu.Lock()
	a.events = append(a.events, auditRecord{Type: eventType, Fields: fields})
	a.mu.Unlock()
	return nil
}

var errConnRefused = errors.New("connection refused")

type harness struct {
	api     *fakeAPI
	render  *recorder
	sched   *manualScheduler
	audit   *memAuditor
	answers []string
	allow   bool
	ctrl    *Controller
}

func newHarness() *harness {
	h := &harness{api: newFakeAPI(), render: &recorder{}, sched: &manualScheduler{}, audit: &memAuditor{}, allow: true}
	h.ctrl = New(Options{
		API:      h.api,
		Renderer: h.render,
		Confirmer: ConfirmFunc(func(prompt string) bool {
			h.answers = append(h.answers, prompt)
			return h.allow
		}),
		Scheduler: h.sched,
		Auditor:   h.audit,
		Now:       func() time.Time { return time.UnixMilli(1700000000000) },
	})
	return h
}

func transportErr(op string) error {
	return &api.TransportError{Op: op, Err: errConnRefused}
}
