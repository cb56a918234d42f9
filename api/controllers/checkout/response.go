package checkout

import (
	checkoutsvc "github.com/toolyhq/tooly-storefront/internal/checkout"
	"github.com/toolyhq/tooly-storefront/internal/commerce"
	"github.com/toolyhq/tooly-storefront/pkg/money"
)

type CheckoutView struct {
	Step           string               `json:"step"`
	Submitting     bool                 `json:"submitting"`
	LastMessage    string               `json:"last_message,omitempty"`
	Customer       commerce.Customer    `json:"customer"`
	Address        commerce.Address     `json:"address"`
	Methods        []ShippingMethodView `json:"shipping_methods"`
	SelectedMethod string               `json:"selected_method,omitempty"`
	PlacedOrder    *PlacedOrderView     `json:"placed_order,omitempty"`
}

type ShippingMethodView struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description,omitempty"`
	Price          int64  `json:"price"`
	PriceFormatted string `json:"price_formatted"`
}

type PlacedOrderView struct {
	Code           string `json:"code"`
	State          string `json:"state"`
	Total          int64  `json:"total"`
	TotalFormatted string `json:"total_formatted"`
	CurrencyCode   string `json:"currency_code"`
}

func newCheckoutView(view checkoutsvc.View) CheckoutView {
	out := CheckoutView{
		Step:           string(view.Step),
		Submitting:     view.Submitting,
		LastMessage:    view.LastMessage,
		Customer:       view.Customer,
		Address:        view.Address,
		Methods:        []ShippingMethodView{},
		SelectedMethod: view.SelectedMethod,
	}

	currencyCode := view.CurrencyCode
	if currencyCode == "" {
		currencyCode = "USD"
	}
	for _, method := range view.Methods {
		out.Methods = append(out.Methods, ShippingMethodView{
			ID:             method.ID,
			Name:           method.Name,
			Description:    method.Description,
			Price:          method.PriceWithTax,
			PriceFormatted: money.Format(method.PriceWithTax, currencyCode),
		})
	}

	if view.PlacedOrder != nil {
		out.PlacedOrder = &PlacedOrderView{
			Code:           view.PlacedOrder.Code,
			State:          view.PlacedOrder.State,
			Total:          view.PlacedOrder.TotalWithTax,
			TotalFormatted: money.FormatWithCode(view.PlacedOrder.TotalWithTax, view.PlacedOrder.CurrencyCode),
			CurrencyCode:   view.PlacedOrder.CurrencyCode,
		}
	}
	return out
}
