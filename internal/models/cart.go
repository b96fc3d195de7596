package models

import "github.com/shopspring/decimal"

// SelectedOption is the frozen snapshot of one chosen sub-option.
type SelectedOption struct {
	GroupID         string          `json:"groupId"`
	GroupName       string          `json:"groupName,omitempty"`
	OptionID        string          `json:"optionId"`
	OptionName      string          `json:"optionName,omitempty"`
	AdditionalPrice decimal.Decimal `json:"additionalPrice"`
}

// CartLineItem is one cart slot: a dish plus an exact option selection.
// AvailableQuantity is the stock observed when the slot was created.
type CartLineItem struct {
	DishID            string           `json:"dishId"`
	Name              string           `json:"name"`
	ImageURL          string           `json:"imageUrl,omitempty"`
	UnitPrice         decimal.Decimal  `json:"unitPrice"`
	SelectedOptions   []SelectedOption `json:"selectedOptions"`
	Quantity          int              `json:"quantity"`
	AvailableQuantity int              `json:"availableQuantity"`
}

// ItemPrice is the unit price plus every selected option.
func (i CartLineItem) ItemPrice() decimal.Decimal {
	price := i.UnitPrice
	for _, o := range i.SelectedOptions {
		price = price.Add(o.AdditionalPrice)
	}
	return price
}

// LineTotal is ItemPrice times quantity.
func (i CartLineItem) LineTotal() decimal.Decimal {
	return i.ItemPrice().Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// OptionIDs lists the chosen option ids in selection order.
func (i CartLineItem) OptionIDs() []string {
	ids := make([]string, 0, len(i.SelectedOptions))
	for _, o := range i.SelectedOptions {
		ids = append(ids, o.OptionID)
	}
	return ids
}
