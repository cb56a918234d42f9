package cart

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/multierr"

	"github.com/toolyhq/tooly-storefront/internal/commerce"
	pkgerrors "github.com/toolyhq/tooly-storefront/pkg/errors"
	"github.com/toolyhq/tooly-storefront/pkg/logger"
)

// ErrBusy rejects a mutation while another one from this context is in
// flight. The caller may retry once the busy flag clears.
var ErrBusy = pkgerrors.New(pkgerrors.CodeBusy, "cart mutation already in flight")

type orderFacade interface {
	ActiveOrder(ctx context.Context) (*commerce.Order, error)
	AddItem(ctx context.Context, variantID string, quantity int) (*commerce.Order, error)
	AdjustLine(ctx context.Context, lineID string, quantity int) (*commerce.Order, error)
	RemoveLine(ctx context.Context, lineID string) (*commerce.Order, error)
}

// Context is the single source of truth for one session's cart. It holds the
// last-known order snapshot, a busy flag, the last error, and drawer
// visibility. Mutations are serialized: at most one in flight per context.
type Context struct {
	facade orderFacade
	logg   *logger.Logger

	mu         sync.Mutex
	order      *commerce.Order
	loading    bool
	lastErr    error
	drawerOpen bool
	lastActive time.Time
}

// NewContext builds a cart context bound to one storefront session.
func NewContext(facade orderFacade, logg *logger.Logger) (*Context, error) {
	if facade == nil {
		return nil, fmt.Errorf("order facade required")
	}
	return &Context{
		facade:     facade,
		logg:       logg,
		lastActive: time.Now(),
	}, nil
}

// begin claims the busy flag or reports ErrBusy.
func (c *Context) begin() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loading {
		return ErrBusy
	}
	c.loading = true
	c.lastActive = time.Now()
	return nil
}

func (c *Context) finish() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
}

// replace installs the server's snapshot wholesale. No field of the previous
// snapshot survives.
func (c *Context) replace(order *commerce.Order) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order = order
	c.lastErr = nil
}

func (c *Context) recordError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastErr = err
}

// ReplaceSnapshot installs a snapshot obtained by a collaborator (the
// checkout machine) so this context stays the only snapshot holder.
func (c *Context) ReplaceSnapshot(order *commerce.Order) {
	c.replace(order)
}

// Refresh fetches the active order and replaces the snapshot. It never
// returns an error: refresh is called opportunistically and must not crash
// the caller, so failures land in LastError instead.
func (c *Context) Refresh(ctx context.Context) {
	if err := c.begin(); err != nil {
		return
	}
	defer c.finish()

	order, err := c.facade.ActiveOrder(ctx)
	if err != nil {
		if c.logg != nil {
			c.logg.Warn(ctx, "cart refresh failed: "+err.Error())
		}
		c.recordError(err)
		return
	}
	c.replace(order)
}

// AddToCart adds quantity of a variant. On success the snapshot is replaced
// and the drawer opens; on failure the previous snapshot is untouched and the
// classified error is returned for inline display.
func (c *Context) AddToCart(ctx context.Context, variantID string, quantity int) error {
	if variantID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "variant id is required")
	}
	if quantity < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if err := c.begin(); err != nil {
		return err
	}
	defer c.finish()

	order, err := c.facade.AddItem(ctx, variantID, quantity)
	if err != nil {
		c.recordError(err)
		return err
	}
	c.replace(order)
	c.setDrawer(true)
	return nil
}

// UpdateQuantity sets the absolute quantity of a line. Zero means remove:
// the backend treats adjust-to-zero and remove as distinct intents, so the
// removal intent is dispatched instead.
func (c *Context) UpdateQuantity(ctx context.Context, lineID string, quantity int) error {
	if lineID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "line id is required")
	}
	if quantity < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must not be negative")
	}
	if quantity == 0 {
		return c.RemoveItem(ctx, lineID)
	}
	if err := c.begin(); err != nil {
		return err
	}
	defer c.finish()

	order, err := c.facade.AdjustLine(ctx, lineID, quantity)
	if err != nil {
		c.recordError(err)
		return err
	}
	c.replace(order)
	return nil
}

// RemoveItem removes a line. A line that is already gone (removed by another
// tab) counts as success; the snapshot is reconciled with a follow-up fetch.
func (c *Context) RemoveItem(ctx context.Context, lineID string) error {
	if lineID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "line id is required")
	}
	if err := c.begin(); err != nil {
		return err
	}
	defer c.finish()

	return c.removeLocked(ctx, lineID)
}

func (c *Context) removeLocked(ctx context.Context, lineID string) error {
	order, err := c.facade.RemoveLine(ctx, lineID)
	if err != nil {
		if commerce.IsLineMissing(err) {
			if fresh, ferr := c.facade.ActiveOrder(ctx); ferr == nil {
				c.replace(fresh)
			}
			return nil
		}
		c.recordError(err)
		return err
	}
	c.replace(order)
	return nil
}

// ClearCart sequentially removes every line (the backend has no batch
// primitive), then refreshes once to reconcile. Best effort: a failure mid
// sequence is surfaced but not rolled back, because removal has no undo.
func (c *Context) ClearCart(ctx context.Context) error {
	if err := c.begin(); err != nil {
		return err
	}
	defer c.finish()

	c.mu.Lock()
	lineIDs := make([]string, 0)
	if c.order != nil {
		for _, line := range c.order.Lines {
			lineIDs = append(lineIDs, line.ID)
		}
	}
	c.mu.Unlock()

	var errs error
	for _, lineID := range lineIDs {
		if err := c.removeLocked(ctx, lineID); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	if fresh, err := c.facade.ActiveOrder(ctx); err == nil {
		c.replace(fresh)
	} else {
		errs = multierr.Append(errs, err)
	}

	if errs != nil {
		c.recordError(errs)
	}
	return errs
}

// OpenDrawer shows the cart drawer. Local state only, no network effect.
func (c *Context) OpenDrawer() { c.setDrawer(true) }

// CloseDrawer hides the cart drawer.
func (c *Context) CloseDrawer() { c.setDrawer(false) }

// ToggleDrawer flips drawer visibility.
func (c *Context) ToggleDrawer() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.drawerOpen = !c.drawerOpen
	c.lastActive = time.Now()
}

func (c *Context) setDrawer(open bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.drawerOpen = open
	c.lastActive = time.Now()
}

// Order returns the current snapshot, which callers must treat as read-only.
func (c *Context) Order() *commerce.Order {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order
}

// LastActive reports when this context last served a call.
func (c *Context) LastActive() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastActive
}
