package domain

import "strings"

const giftAidMarker = "gift aid"

// HasEligibleTicket reports whether any line item with quantity above
// zero refers to a variant whose title contains "gift aid", matched
// case-insensitively.
func HasEligibleTicket(variants []ProductVariant, items []CartLineItem) bool {
	for _, item := range items {
		if item.Quantity == 0 {
			continue
		}
		for _, v := range variants {
			if v.ID == item.VariantID && strings.Contains(strings.ToLower(v.Title), giftAidMarker) {
				return true
			}
		}
	}
	return false
}

// ToggleGiftAid flips the gift-aid declaration flag
func (s BookingState) ToggleGiftAid() BookingState {
	s.GiftAidDeclared = !s.GiftAidDeclared
	return s
}

// enforceGiftAidEligibility clears the declaration flag when the ledger
// no longer holds an eligible ticket. A declaration cannot outlive the
// ticket it was made for.
func (s BookingState) enforceGiftAidEligibility(variants []ProductVariant) BookingState {
	if s.GiftAidDeclared && !HasEligibleTicket(variants, s.Items) {
		s.GiftAidDeclared = false
	}
	return s
}
