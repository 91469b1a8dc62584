package dashboard

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
)

// Bootstrap fires the initial loads together. Each one updates its own view
// region, so completion order does not matter. Failures have already been
// surfaced by the time the first of them is returned.
func (c *Controller) Bootstrap(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error { return c.LoadConfig(ctx) })
	g.Go(func() error { return c.LoadPersonalities(ctx) })
	g.Go(func() error { return c.LoadPDFs(ctx) })
	g.Go(func() error { return c.UpdateBotStatus(ctx) })
	g.Go(func() error { return c.LoadAccounts(ctx) })
	return g.Wait()
}

// SaveAll saves the configuration form and the account rows in turn, then
// reports completion whatever the individual outcomes were.
func (c *Controller) SaveAll(ctx context.Context) error {
	cfgErr := c.SaveConfig(ctx, c.state.ConfigForm())
	accErr := c.SaveAccounts(ctx)
	c.notes.Success("All settings saved!")
	return errors.Join(cfgErr, accErr)
}
