package checkout

import "github.com/toolyhq/tooly-storefront/internal/commerce"

type AddressRequest struct {
	FirstName    string `json:"first_name" validate:"required"`
	LastName     string `json:"last_name" validate:"required"`
	EmailAddress string `json:"email_address" validate:"required,email"`
	PhoneNumber  string `json:"phone_number"`

	FullName    string `json:"full_name"`
	StreetLine1 string `json:"street_line1" validate:"required"`
	StreetLine2 string `json:"street_line2"`
	City        string `json:"city" validate:"required"`
	Province    string `json:"province"`
	PostalCode  string `json:"postal_code" validate:"required"`
	CountryCode string `json:"country_code" validate:"required,min=2,max=2"`
}

func (r AddressRequest) customer() commerce.Customer {
	return commerce.Customer{
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		EmailAddress: r.EmailAddress,
		PhoneNumber:  r.PhoneNumber,
	}
}

func (r AddressRequest) address() commerce.Address {
	fullName := r.FullName
	if fullName == "" {
		fullName = r.FirstName + " " + r.LastName
	}
	return commerce.Address{
		FullName:    fullName,
		StreetLine1: r.StreetLine1,
		StreetLine2: r.StreetLine2,
		City:        r.City,
		Province:    r.Province,
		PostalCode:  r.PostalCode,
		CountryCode: r.CountryCode,
		PhoneNumber: r.PhoneNumber,
	}
}

type SelectShippingRequest struct {
	MethodID string `json:"method_id" validate:"required"`
}
