package models

import "strings"

// Client is a customer of the business. Quotes and invoices reference it
// through a required foreign key.
type Client struct {
	Base

	FirstName string `gorm:"size:100;not null" json:"first_name"`
	LastName  string `gorm:"size:100;not null;index" json:"last_name"`
	Company   string `gorm:"size:255" json:"company,omitempty"`

	// Contact
	Email string `gorm:"size:255;index" json:"email,omitempty"`
	Phone string `gorm:"size:50" json:"phone,omitempty"`

	// Address
	Street     string `gorm:"size:255" json:"street,omitempty"`
	PostalCode string `gorm:"size:20" json:"postal_code,omitempty"`
	City       string `gorm:"size:100" json:"city,omitempty"`
	Country    string `gorm:"size:100" json:"country,omitempty"`

	// Tax information, both optional
	VATNumber  string `gorm:"size:30" json:"vat_number,omitempty"`
	FiscalCode string `gorm:"size:30" json:"fiscal_code,omitempty"`

	Notes string `gorm:"type:text" json:"notes,omitempty"`
}

// FullName returns "First Last", or the company when both names are empty.
func (c *Client) FullName() string {
	name := strings.TrimSpace(c.FirstName + " " + c.LastName)
	if name == "" {
		return c.Company
	}
	return name
}

// FullAddress returns the formatted full address.
func (c *Client) FullAddress() string {
	addr := c.Street
	if c.PostalCode != "" || c.City != "" {
		if addr != "" {
			addr += "\n"
		}
		addr += strings.TrimSpace(c.PostalCode + " " + c.City)
	}
	if c.Country != "" {
		if addr != "" {
			addr += "\n"
		}
		addr += c.Country
	}
	return addr
}
