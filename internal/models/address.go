package models

import "strings"

type Address struct {
	ID        string `json:"id"`
	UserID    string `json:"userId,omitempty"`
	Recipient string `json:"recipient,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Street    string `json:"street"`
	Ward      string `json:"ward,omitempty"`
	District  string `json:"district,omitempty"`
	City      string `json:"city,omitempty"`
	IsDefault bool   `json:"isDefault,omitempty"`
}

// Line renders the address the way the geocoding endpoint expects it.
func (a Address) Line() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{a.Street, a.Ward, a.District, a.City} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
