package commerce

// Order is the client's read-only snapshot of the backend-owned order
// aggregate. It is always replaced wholesale after a successful mutation,
// never patched, so server-computed fields (totals, tax, state) can never
// drift from fields the client might otherwise guess.
type Order struct {
	ID              string         `json:"id"`
	Code            string         `json:"code"`
	State           string         `json:"state"`
	Lines           []OrderLine    `json:"lines"`
	SubtotalWithTax int64          `json:"subTotalWithTax"`
	ShippingWithTax int64          `json:"shippingWithTax"`
	TotalWithTax    int64          `json:"totalWithTax"`
	CurrencyCode    string         `json:"currencyCode"`
	Customer        *Customer      `json:"customer,omitempty"`
	ShippingAddress *Address       `json:"shippingAddress,omitempty"`
	ShippingLines   []ShippingLine `json:"shippingLines,omitempty"`
	Payments        []Payment      `json:"payments,omitempty"`
}

// Lifecycle states the backend reports. The client never invents these; it
// only requests transitions.
const (
	OrderStateAddingItems       = "AddingItems"
	OrderStateArrangingPayment  = "ArrangingPayment"
	OrderStatePaymentSettled    = "PaymentSettled"
	OrderStatePaymentAuthorized = "PaymentAuthorized"
)

type OrderLine struct {
	ID               string         `json:"id"`
	Quantity         int            `json:"quantity"`
	LinePriceWithTax int64          `json:"linePriceWithTax"`
	Variant          ProductVariant `json:"productVariant"`
}

type ProductVariant struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	SKU              string  `json:"sku"`
	UnitPriceWithTax int64   `json:"priceWithTax"`
	PreviewImage     *string `json:"previewImage,omitempty"`
}

type Customer struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	EmailAddress string `json:"emailAddress"`
	PhoneNumber  string `json:"phoneNumber,omitempty"`
}

type Address struct {
	FullName    string `json:"fullName,omitempty"`
	StreetLine1 string `json:"streetLine1"`
	StreetLine2 string `json:"streetLine2,omitempty"`
	City        string `json:"city"`
	Province    string `json:"province,omitempty"`
	PostalCode  string `json:"postalCode"`
	CountryCode string `json:"countryCode"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

type ShippingLine struct {
	MethodID     string `json:"methodId"`
	MethodName   string `json:"methodName"`
	PriceWithTax int64  `json:"priceWithTax"`
}

type ShippingMethod struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	PriceWithTax int64  `json:"priceWithTax"`
}

type Payment struct {
	ID            string `json:"id"`
	Method        string `json:"method"`
	State         string `json:"state"`
	Amount        int64  `json:"amount"`
	TransactionID string `json:"transactionId,omitempty"`
}

// HasLines reports whether the order carries at least one line.
func (o *Order) HasLines() bool {
	return o != nil && len(o.Lines) > 0
}

// HasPayment reports whether a payment entry in a non-declined state exists.
func (o *Order) HasPayment() bool {
	if o == nil {
		return false
	}
	for _, p := range o.Payments {
		if p.State != "Declined" && p.State != "Cancelled" {
			return true
		}
	}
	return false
}

// Line returns the line with the given id, or nil.
func (o *Order) Line(lineID string) *OrderLine {
	if o == nil {
		return nil
	}
	for i := range o.Lines {
		if o.Lines[i].ID == lineID {
			return &o.Lines[i]
		}
	}
	return nil
}

// ItemCount sums line quantities.
func (o *Order) ItemCount() int {
	if o == nil {
		return 0
	}
	total := 0
	for _, line := range o.Lines {
		total += line.Quantity
	}
	return total
}
