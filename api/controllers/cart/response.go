package cart

import (
	cartsvc "github.com/toolyhq/tooly-storefront/internal/cart"
	"github.com/toolyhq/tooly-storefront/internal/commerce"
	"github.com/toolyhq/tooly-storefront/pkg/money"
)

type CartView struct {
	OrderCode         string                 `json:"order_code,omitempty"`
	State             string                 `json:"state,omitempty"`
	ItemCount         int                    `json:"item_count"`
	Subtotal          int64                  `json:"subtotal"`
	SubtotalFormatted string                 `json:"subtotal_formatted,omitempty"`
	CurrencyCode      string                 `json:"currency_code,omitempty"`
	Lines             []CartLineView         `json:"lines"`
	IsLoading         bool                   `json:"is_loading"`
	DrawerOpen        bool                   `json:"drawer_open"`
	LastError         *cartsvc.SnapshotError `json:"last_error,omitempty"`
}

type CartLineView struct {
	ID                 string  `json:"id"`
	Quantity           int     `json:"quantity"`
	LineTotal          int64   `json:"line_total"`
	LineTotalFormatted string  `json:"line_total_formatted"`
	VariantID          string  `json:"variant_id"`
	VariantName        string  `json:"variant_name"`
	SKU                string  `json:"sku"`
	UnitPrice          int64   `json:"unit_price"`
	UnitPriceFormatted string  `json:"unit_price_formatted"`
	PreviewImage       *string `json:"preview_image,omitempty"`
}

func newCartView(snap cartsvc.Snapshot) CartView {
	view := CartView{
		ItemCount:    snap.ItemCount,
		Subtotal:     snap.Subtotal,
		CurrencyCode: snap.CurrencyCode,
		Lines:        []CartLineView{},
		IsLoading:    snap.IsLoading,
		DrawerOpen:   snap.DrawerOpen,
		LastError:    snap.LastError,
	}
	if snap.Order == nil {
		return view
	}

	view.OrderCode = snap.Order.Code
	view.State = snap.Order.State
	view.SubtotalFormatted = money.FormatWithCode(snap.Subtotal, snap.CurrencyCode)
	for _, line := range snap.Order.Lines {
		view.Lines = append(view.Lines, newCartLineView(line, snap.CurrencyCode))
	}
	return view
}

func newCartLineView(line commerce.OrderLine, currencyCode string) CartLineView {
	return CartLineView{
		ID:                 line.ID,
		Quantity:           line.Quantity,
		LineTotal:          line.LinePriceWithTax,
		LineTotalFormatted: money.Format(line.LinePriceWithTax, currencyCode),
		VariantID:          line.Variant.ID,
		VariantName:        line.Variant.Name,
		SKU:                line.Variant.SKU,
		UnitPrice:          line.Variant.UnitPriceWithTax,
		UnitPriceFormatted: money.Format(line.Variant.UnitPriceWithTax, currencyCode),
		PreviewImage:       line.Variant.PreviewImage,
	}
}
