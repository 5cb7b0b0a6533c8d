package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultTicketCap is the maximum total ticket quantity per booking
const DefaultTicketCap = 7

// CartLineItem represents one remote-cart entry tracked locally by
// variant id. LineItemKey is the server-assigned identity and stays
// empty until the item has been synced by an add.
type CartLineItem struct {
	LineItemKey         string `json:"line_item_key"`
	VariantID           int64  `json:"variant_id"`
	Quantity            int    `json:"quantity"`
	ExhibitionDateLabel string `json:"exhibition_date_label"`
}

// ParseQuantity parses user-entered quantity text. Non-numeric input
// parses as 0; range clamping is the caller's concern.
func ParseQuantity(text string) int {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0
	}
	return n
}

// CapAdvisoryMessage is the user-facing advisory shown when an add
// would exceed the ticket cap
func CapAdvisoryMessage(cap int) string {
	return fmt.Sprintf("You can book a maximum of %d tickets per visit.", cap)
}

// AddOne increments the quantity for a variant, appending a fresh line
// item when the variant is not yet in the ledger. The add is refused
// when it would push the aggregate quantity past the cap: the ledger is
// returned unchanged with the advisory message set. Refusal is a policy
// outcome, not an error.
func (s BookingState) AddOne(variantID int64, cap int) BookingState {
	if s.AggregateQuantity()+1 > cap {
		s.Message = CapAdvisoryMessage(cap)
		return s
	}

	items := cloneItems(s.Items)
	if idx := lineIndex(items, variantID); idx >= 0 {
		items[idx].Quantity++
	} else {
		items = append(items, CartLineItem{VariantID: variantID, Quantity: 1})
	}
	s.Items = items
	return s
}

// RemoveOne decrements the quantity for a variant, floored at zero.
// Zero-quantity line items are retained so the ledger remembers touched
// variants until the next sync. When the removal leaves no eligible
// gift-aid ticket the declaration flag is cleared in the same
// transition.
func (s BookingState) RemoveOne(variantID int64, variants []ProductVariant) BookingState {
	idx := lineIndex(s.Items, variantID)
	if idx < 0 || s.Items[idx].Quantity == 0 {
		return s
	}

	items := cloneItems(s.Items)
	items[idx].Quantity--
	s.Items = items
	return s.enforceGiftAidEligibility(variants)
}

// SetQuantity replaces a variant's quantity from user-entered text.
// The requested amount is clamped so the aggregate stays within the
// cap, floored at zero. An absent variant is appended in the same shape
// AddOne uses. Like RemoveOne, a reduction that removes the last
// eligible gift-aid ticket clears the declaration flag.
func (s BookingState) SetQuantity(variantID int64, requestedText string, cap int, variants []ProductVariant) BookingState {
	requested := ParseQuantity(requestedText)

	items := cloneItems(s.Items)
	idx := lineIndex(items, variantID)

	others := 0
	for i, item := range items {
		if i != idx {
			others += item.Quantity
		}
	}

	quantity := requested
	if quantity+others > cap {
		quantity = cap - others
	}
	if quantity < 0 {
		quantity = 0
	}

	if idx >= 0 {
		items[idx].Quantity = quantity
	} else {
		items = append(items, CartLineItem{VariantID: variantID, Quantity: quantity})
	}
	s.Items = items
	return s.enforceGiftAidEligibility(variants)
}

// AggregateQuantity returns the total ticket quantity across all line items
func (s BookingState) AggregateQuantity() int {
	total := 0
	for _, item := range s.Items {
		total += item.Quantity
	}
	return total
}

// ReachedCap reports whether the aggregate quantity has reached the cap
func (s BookingState) ReachedCap(cap int) bool {
	return s.AggregateQuantity() >= cap
}

func lineIndex(items []CartLineItem, variantID int64) int {
	for i, item := range items {
		if item.VariantID == variantID {
			return i
		}
	}
	return -1
}

func cloneItems(items []CartLineItem) []CartLineItem {
	cloned := make([]CartLineItem, len(items))
	copy(cloned, items)
	return cloned
}
