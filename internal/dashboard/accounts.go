package dashboard

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"botdash/internal/api"
	"botdash/internal/audit"
)

// AccountInput is what the operator typed into one account row.
type AccountInput struct {
	APIID   string
	APIHash string
	Phone   string
}

func (s *State) addAccount(in AccountInput) AccountRow {
	row := AccountRow{ID: uuid.NewString(), APIID: in.APIID, APIHash: in.APIHash, Phone: in.Phone}
	s.mu.Lock()
	s.accounts = append(s.accounts, row)
	s.mu.Unlock()
	return row
}

func (s *State) updateAccount(id string, in AccountInput) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.accounts {
		if s.accounts[i].ID == id {
			s.accounts[i].APIID, s.accounts[i].APIHash, s.accounts[i].Phone = in.APIID, in.APIHash, in.Phone
			return true
		}
	}
	return false
}

func (s *State) removeAccount(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.accounts {
		if s.accounts[i].ID == id {
			s.accounts = append(s.accounts[:i], s.accounts[i+1:]...)
			return true
		}
	}
	return false
}

func (s *State) replaceAccounts(rows []AccountRow) {
	s.mu.Lock()
	s.accounts = rows
	s.mu.Unlock()
}

// AddAccount appends an empty row and returns its handle.
func (c *Controller) AddAccount() string {
	row := c.state.addAccount(AccountInput{})
	c.render.Accounts(c.state.Accounts())
	return row.ID
}

func (c *Controller) UpdateAccount(id string, in AccountInput) error {
	if !c.state.updateAccount(id, in) {
		return ErrUnknownRow
	}
	c.render.Accounts(c.state.Accounts())
	return nil
}

func (c *Controller) RemoveAccount(id string) error {
	if !c.state.removeAccount(id) {
		return ErrUnknownRow
	}
	c.render.Accounts(c.state.Accounts())
	return nil
}

// LoadAccounts replaces the editable rows with the server's account list.
func (c *Controller) LoadAccounts(ctx context.Context) error {
	accounts, err := c.api.GetAccounts(ctx)
	if err != nil {
		return c.failed("get accounts", err)
	}
	rows := make([]AccountRow, 0, len(accounts))
	for _, a := range accounts {
		in := AccountInput{APIHash: a.APIHash, Phone: a.Phone}
		if a.APIID != nil {
			in.APIID = strconv.FormatInt(*a.APIID, 10)
		}
		rows = append(rows, AccountRow{ID: uuid.NewString(), APIID: in.APIID, APIHash: in.APIHash, Phone: in.Phone})
	}
	c.state.replaceAccounts(rows)
	c.render.Accounts(c.state.Accounts())
	return nil
}

// AccountsPayload converts rows to the wire list. A row with any empty field
// is left out; the returned count says how many were.
func AccountsPayload(rows []AccountRow) ([]api.Account, int) {
	out := make([]api.Account, 0, len(rows))
	skipped := 0
	for _, r := range rows {
		if r.APIID == "" || r.APIHash == "" || r.Phone == "" {
			skipped++
			continue
		}
		out = append(out, api.Account{APIID: ParseIntInput(r.APIID), APIHash: r.APIHash, Phone: r.Phone})
	}
	return out, skipped
}

// SaveAccounts replaces the server's account list with every complete row.
// Incomplete rows are dropped without telling the operator on screen.
func (c *Controller) SaveAccounts(ctx context.Context) error {
	accounts, skipped := AccountsPayload(c.state.Accounts())
	if skipped > 0 {
		c.logger.Warn("incomplete account rows left out of save", zap.Int("skipped", skipped), zap.Int("sent", len(accounts)))
	}

	res, err := c.api.SaveAccounts(ctx, accounts)
	if err != nil {
		c.record(ctx, audit.EventAccountsSave, map[string]any{"outcome": audit.OutcomeFailed, "error": err.Error()})
		return c.failed("save accounts", err)
	}
	c.record(ctx, audit.EventAccountsSave, map[string]any{"outcome": outcome(res), "sent": len(accounts), "skipped": skipped, "accounts": accountsForAudit(accounts)})
	if !res.OK() {
		return &RejectedError{Op: "save accounts", Message: res.Message}
	}
	c.notes.Success("Accounts saved successfully!")
	return nil
}

func accountsForAudit(accounts []api.Account) []map[string]any {
	out := make([]map[string]any, 0, len(accounts))
	for _, a := range accounts {
		var id any
		if a.APIID != nil {
			id = *a.APIID
		}
		out = append(out, map[string]any{"api_id": id, "api_hash": a.APIHash, "phone": a.Phone})
	}
	return out
}
