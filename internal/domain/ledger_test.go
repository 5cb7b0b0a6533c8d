package domain

import (
	"testing"
)

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"plain number", "3", 3},
		{"zero", "0", 0},
		{"whitespace trimmed", " 5 ", 5},
		{"non-numeric", "abc", 0},
		{"empty", "", 0},
		{"mixed", "2x", 0},
		{"negative passes through", "-3", -3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseQuantity(tt.text); got != tt.want {
				t.Errorf("ParseQuantity(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}

func TestBookingState_AddOne(t *testing.T) {
	t.Run("appends a new line item", func(t *testing.T) {
		state := BookingState{}

		next := state.AddOne(101, DefaultTicketCap)

		if len(next.Items) != 1 {
			t.Fatalf("len(Items) = %d, want 1", len(next.Items))
		}
		item := next.Items[0]
		if item.VariantID != 101 || item.Quantity != 1 {
			t.Errorf("Items[0] = %+v, want variant 101 quantity 1", item)
		}
		if item.LineItemKey != "" || item.ExhibitionDateLabel != "" {
			t.Errorf("new line item should have empty key and label, got %+v", item)
		}
	})

	t.Run("increments an existing line item", func(t *testing.T) {
		state := BookingState{Items: []CartLineItem{{VariantID: 101, Quantity: 2}}}

		next := state.AddOne(101, DefaultTicketCap)

		if len(next.Items) != 1 {
			t.Fatalf("len(Items) = %d, want 1 (no duplicate per variant)", len(next.Items))
		}
		if next.Items[0].Quantity != 3 {
			t.Errorf("Quantity = %d, want 3", next.Items[0].Quantity)
		}
	})

	t.Run("does not mutate the input state", func(t *testing.T) {
		state := BookingState{Items: []CartLineItem{{VariantID: 101, Quantity: 2}}}

		state.AddOne(101, DefaultTicketCap)

		if state.Items[0].Quantity != 2 {
			t.Errorf("input state mutated: Quantity = %d, want 2", state.Items[0].Quantity)
		}
	})
}

func TestBookingState_AddOne_CapRefusal(t *testing.T) {
	// Ledger already holds 6 units across two variants
	state := BookingState{Items: []CartLineItem{
		{VariantID: 101, Quantity: 4},
		{VariantID: 102, Quantity: 2},
	}}

	// Adding a new variant reaches the cap exactly
	state = state.AddOne(103, DefaultTicketCap)
	if got := state.AggregateQuantity(); got != 7 {
		t.Fatalf("AggregateQuantity() = %d, want 7", got)
	}
	if state.Message != "" {
		t.Errorf("Message = %q, want empty on a successful add", state.Message)
	}

	// One more add on any variant is refused with the ledger unchanged
	next := state.AddOne(101, DefaultTicketCap)

	if got := next.AggregateQuantity(); got != 7 {
		t.Errorf("AggregateQuantity() after refusal = %d, want 7", got)
	}
	if len(next.Items) != len(state.Items) {
		t.Errorf("len(Items) = %d, want %d (refusal leaves ledger unchanged)", len(next.Items), len(state.Items))
	}
	for i := range state.Items {
		if next.Items[i] != state.Items[i] {
			t.Errorf("Items[%d] = %+v, want %+v", i, next.Items[i], state.Items[i])
		}
	}
	if next.Message != CapAdvisoryMessage(DefaultTicketCap) {
		t.Errorf("Message = %q, want cap advisory", next.Message)
	}
}

func TestBookingState_RemoveOne(t *testing.T) {
	variants := []ProductVariant{{ID: 101, Title: "Adult"}}

	t.Run("decrements an existing line item", func(t *testing.T) {
		state := BookingState{Items: []CartLineItem{{VariantID: 101, Quantity: 3}}}

		next := state.RemoveOne(101, variants)

		if next.Items[0].Quantity != 2 {
			t.Errorf("Quantity = %d, want 2", next.Items[0].Quantity)
		}
	})

	t.Run("floors at zero and retains the line item", func(t *testing.T) {
		state := BookingState{Items: []CartLineItem{{VariantID: 101, Quantity: 1}}}

		next := state.RemoveOne(101, variants)
		if next.Items[0].Quantity != 0 {
			t.Fatalf("Quantity = %d, want 0", next.Items[0].Quantity)
		}
		if len(next.Items) != 1 {
			t.Fatal("zero-quantity line item must be retained, not deleted")
		}

		// Removing again never goes negative
		next = next.RemoveOne(101, variants)
		if next.Items[0].Quantity != 0 {
			t.Errorf("Quantity = %d, want 0 (never negative)", next.Items[0].Quantity)
		}
	})

	t.Run("absent variant leaves state unchanged", func(t *testing.T) {
		state := BookingState{Items: []CartLineItem{{VariantID: 101, Quantity: 1}}}

		next := state.RemoveOne(999, variants)

		if len(next.Items) != 1 || next.Items[0].Quantity != 1 {
			t.Errorf("Items = %+v, want unchanged", next.Items)
		}
	})

	t.Run("remove then add round-trips", func(t *testing.T) {
		state := BookingState{Items: []CartLineItem{{VariantID: 101, Quantity: 1}}}

		next := state.RemoveOne(101, variants).AddOne(101, DefaultTicketCap)

		if next.Items[0].Quantity != 1 {
			t.Errorf("Quantity = %d, want 1 after remove then add", next.Items[0].Quantity)
		}
	})
}

func TestBookingState_SetQuantity(t *testing.T) {
	variants := []ProductVariant{{ID: 101, Title: "Adult"}, {ID: 102, Title: "Concession"}}

	t.Run("sets an existing variant", func(t *testing.T) {
		state := BookingState{Items: []CartLineItem{{VariantID: 101, Quantity: 1}}}

		next := state.SetQuantity(101, "4", DefaultTicketCap, variants)

		if next.Items[0].Quantity != 4 {
			t.Errorf("Quantity = %d, want 4", next.Items[0].Quantity)
		}
	})

	t.Run("non-numeric behaves exactly like zero", func(t *testing.T) {
		state := BookingState{Items: []CartLineItem{{VariantID: 101, Quantity: 3}}}

		fromText := state.SetQuantity(101, "abc", DefaultTicketCap, variants)
		fromZero := state.SetQuantity(101, "0", DefaultTicketCap, variants)

		if len(fromText.Items) != len(fromZero.Items) {
			t.Fatalf("len mismatch: %d vs %d", len(fromText.Items), len(fromZero.Items))
		}
		for i := range fromText.Items {
			if fromText.Items[i] != fromZero.Items[i] {
				t.Errorf("Items[%d]: %+v vs %+v", i, fromText.Items[i], fromZero.Items[i])
			}
		}
	})

	t.Run("clamps so the aggregate stays within the cap", func(t *testing.T) {
		state := BookingState{Items: []CartLineItem{
			{VariantID: 101, Quantity: 1},
			{VariantID: 102, Quantity: 3},
		}}

		next := state.SetQuantity(101, "9", DefaultTicketCap, variants)

		if next.Items[0].Quantity != 4 {
			t.Errorf("Quantity = %d, want 4 (7 cap minus 3 held by others)", next.Items[0].Quantity)
		}
	})

	t.Run("negative request clamps to zero", func(t *testing.T) {
		state := BookingState{Items: []CartLineItem{{VariantID: 101, Quantity: 2}}}

		next := state.SetQuantity(101, "-5", DefaultTicketCap, variants)

		if next.Items[0].Quantity != 0 {
			t.Errorf("Quantity = %d, want 0", next.Items[0].Quantity)
		}
	})

	t.Run("other variants over cap clamp to zero not negative", func(t *testing.T) {
		state := BookingState{Items: []CartLineItem{
			{VariantID: 101, Quantity: 0},
			{VariantID: 102, Quantity: 7},
		}}

		next := state.SetQuantity(101, "2", DefaultTicketCap, variants)

		if next.Items[0].Quantity != 0 {
			t.Errorf("Quantity = %d, want 0 (no headroom left)", next.Items[0].Quantity)
		}
	})

	t.Run("absent variant is appended in the addOne shape", func(t *testing.T) {
		state := BookingState{}

		next := state.SetQuantity(202, "0", DefaultTicketCap, variants)

		if len(next.Items) != 1 {
			t.Fatalf("len(Items) = %d, want 1 (absent variant appends)", len(next.Items))
		}
		item := next.Items[0]
		if item.VariantID != 202 || item.Quantity != 0 {
			t.Errorf("Items[0] = %+v, want variant 202 quantity 0", item)
		}
		if item.LineItemKey != "" || item.ExhibitionDateLabel != "" {
			t.Errorf("appended line item should have empty key and label, got %+v", item)
		}
	})
}

func TestBookingState_AggregateQuantity(t *testing.T) {
	tests := []struct {
		name  string
		items []CartLineItem
		want  int
	}{
		{"empty ledger", nil, 0},
		{"single item", []CartLineItem{{VariantID: 101, Quantity: 3}}, 3},
		{"multiple items", []CartLineItem{{VariantID: 101, Quantity: 3}, {VariantID: 102, Quantity: 2}}, 5},
		{"zero-quantity lines count for zero", []CartLineItem{{VariantID: 101, Quantity: 0}, {VariantID: 102, Quantity: 2}}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := BookingState{Items: tt.items}
			if got := state.AggregateQuantity(); got != tt.want {
				t.Errorf("AggregateQuantity() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestBookingState_ReachedCap(t *testing.T) {
	state := BookingState{Items: []CartLineItem{{VariantID: 101, Quantity: 6}}}

	if state.ReachedCap(DefaultTicketCap) {
		t.Error("ReachedCap() = true at 6 of 7, want false")
	}

	state = state.AddOne(102, DefaultTicketCap)
	if !state.ReachedCap(DefaultTicketCap) {
		t.Error("ReachedCap() = false at 7 of 7, want true")
	}
}

func TestLedger_OneLineItemPerVariant(t *testing.T) {
	variants := []ProductVariant{{ID: 101, Title: "Adult"}}
	state := BookingState{}

	state = state.AddOne(101, DefaultTicketCap)
	state = state.AddOne(101, DefaultTicketCap)
	state = state.SetQuantity(101, "5", DefaultTicketCap, variants)
	state = state.RemoveOne(101, variants)
	state = state.AddOne(101, DefaultTicketCap)

	if len(state.Items) != 1 {
		t.Fatalf("len(Items) = %d, want 1 after repeated ops on one variant", len(state.Items))
	}
	if state.Items[0].Quantity != 5 {
		t.Errorf("Quantity = %d, want 5", state.Items[0].Quantity)
	}
}
