package models

import "github.com/shopspring/decimal"

// Dish is a purchasable catalog item.
type Dish struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Description       string          `json:"description,omitempty"`
	Price             decimal.Decimal `json:"price"`
	ImageURL          string          `json:"imageUrl,omitempty"`
	Category          string          `json:"category,omitempty"`
	AvailableQuantity int             `json:"availableQuantity"`
	Rating            float64         `json:"rating,omitempty"`
	OptionGroups      []OptionGroup   `json:"optionGroups,omitempty"`
}

// OptionGroup is a set of sub-options for a dish (size, toppings, ...).
type OptionGroup struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Required  bool     `json:"required"`
	MaxSelect int      `json:"maxSelect"` // 0 means one choice
	Options   []Option `json:"options"`
}

type Option struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	AdditionalPrice decimal.Decimal `json:"additionalPrice"`
}

// Limit returns how many options may be picked from the group.
func (g OptionGroup) Limit() int {
	if g.MaxSelect <= 0 {
		return 1
	}
	return g.MaxSelect
}

// Find returns the option with the given id.
func (g OptionGroup) Find(optionID string) (Option, bool) {
	for _, o := range g.Options {
		if o.ID == optionID {
			return o, true
		}
	}
	return Option{}, false
}
