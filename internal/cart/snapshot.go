package cart

import (
	pkgerrors "github.com/toolyhq/tooly-storefront/pkg/errors"

	"github.com/toolyhq/tooly-storefront/internal/commerce"
)

// SnapshotError is the render-ready projection of the last failure.
type SnapshotError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Snapshot is the client-local projection of the cart for rendering. It is
// derived from the order snapshot on every access, never persisted.
type Snapshot struct {
	Order        *commerce.Order `json:"order"`
	ItemCount    int             `json:"item_count"`
	Subtotal     int64           `json:"subtotal"`
	CurrencyCode string          `json:"currency_code"`
	IsLoading    bool            `json:"is_loading"`
	LastError    *SnapshotError  `json:"last_error,omitempty"`
	DrawerOpen   bool            `json:"drawer_open"`
}

// Snapshot derives the current projection.
func (c *Context) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		Order:      c.order,
		IsLoading:  c.loading,
		DrawerOpen: c.drawerOpen,
		LastError:  projectError(c.lastErr),
	}
	if c.order != nil {
		snap.ItemCount = c.order.ItemCount()
		snap.Subtotal = c.order.SubtotalWithTax
		snap.CurrencyCode = c.order.CurrencyCode
	}
	return snap
}

func projectError(err error) *SnapshotError {
	if err == nil {
		return nil
	}
	if de, ok := commerce.AsDomainError(err); ok {
		return &SnapshotError{Code: de.Code, Message: de.Message}
	}
	if commerce.IsTransportError(err) {
		meta := pkgerrors.MetadataFor(pkgerrors.CodeDependency)
		return &SnapshotError{Code: string(pkgerrors.CodeDependency), Message: meta.PublicMessage}
	}
	if typed := pkgerrors.As(err); typed != nil {
		return &SnapshotError{Code: string(typed.Code()), Message: typed.Message()}
	}
	return &SnapshotError{Code: string(pkgerrors.CodeInternal), Message: err.Error()}
}
