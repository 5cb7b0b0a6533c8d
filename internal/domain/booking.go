package domain

import "time"

// Phase is the visible state of the booking flow, derived from
// BookingState fields rather than stored
type Phase string

const (
	PhaseNoDateSelected Phase = "no_date_selected"
	PhaseDateSelected   Phase = "date_selected"
	PhaseAtCap          Phase = "at_cap"
)

// String returns the string representation of Phase
func (p Phase) String() string {
	return string(p)
}

// Line-item metadata property keys on the remote cart contract
const (
	PropertyExhibition = "Exhibition"
	PropertyDate       = "Date"
	PropertyGiftAid    = "Gift Aid"
	PropertyGiftAidYes = "Yes"
)

// CartSnapshotItem is one line of the remote cart as reported by the
// cart service
type CartSnapshotItem struct {
	Key        string            `json:"key"`
	VariantID  int64             `json:"variant_id"`
	Quantity   int               `json:"quantity"`
	Properties map[string]string `json:"properties,omitempty"`
}

// CartSnapshot is the remote cart state captured once at session start
type CartSnapshot struct {
	Items []CartSnapshotItem `json:"items"`
}

// IsEmpty reports whether the snapshot holds no line items
func (s CartSnapshot) IsEmpty() bool {
	return len(s.Items) == 0
}

// BookingState is the single source of truth for one visitor's booking
// session. All transitions are pure: operations take the state by value
// and return the successor state.
type BookingState struct {
	SessionID       string         `json:"session_id"`
	SelectedDate    *time.Time     `json:"selected_date,omitempty"`
	GiftAidDeclared bool           `json:"gift_aid_declared"`
	RemoteCartEmpty bool           `json:"remote_cart_empty"`
	Items           []CartLineItem `json:"items"`
	Message         string         `json:"message,omitempty"`
	SubmitInFlight  bool           `json:"submit_in_flight"`
	SubmitStartedAt *time.Time     `json:"submit_started_at,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// NewBookingState creates the session state from the initial remote
// cart snapshot. The remote-cart-empty flag is computed here, once, and
// never recomputed afterwards: the sync protocol branches on what the
// cart looked like when the session began.
func NewBookingState(sessionID string, snapshot CartSnapshot, now time.Time) BookingState {
	return BookingState{
		SessionID:       sessionID,
		RemoteCartEmpty: snapshot.IsEmpty(),
		Items:           SeedFromSnapshot(snapshot),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// SeedFromSnapshot builds the initial ledger from a remote cart
// snapshot. Lines sharing a variant id merge by summing quantities; the
// first line's key and label win, preserving the one-item-per-variant
// invariant.
func SeedFromSnapshot(snapshot CartSnapshot) []CartLineItem {
	items := []CartLineItem{}
	for _, line := range snapshot.Items {
		if idx := lineIndex(items, line.VariantID); idx >= 0 {
			items[idx].Quantity += line.Quantity
			continue
		}
		items = append(items, CartLineItem{
			LineItemKey:         line.Key,
			VariantID:           line.VariantID,
			Quantity:            line.Quantity,
			ExhibitionDateLabel: line.Properties[PropertyExhibition],
		})
	}
	return items
}

// Phase derives the visible booking phase
func (s BookingState) Phase(cap int) Phase {
	if s.SelectedDate == nil {
		return PhaseNoDateSelected
	}
	if s.ReachedCap(cap) {
		return PhaseAtCap
	}
	return PhaseDateSelected
}

// HasSelectedDate reports whether a visit date has been picked
func (s BookingState) HasSelectedDate() bool {
	return s.SelectedDate != nil
}

// SelectDate sets the visit date, truncated to day precision
func (s BookingState) SelectDate(date time.Time) BookingState {
	day := DayOf(date)
	s.SelectedDate = &day
	return s
}

// ResetDate clears the visit date. The ledger and the gift-aid flag are
// deliberately retained so the basket survives date reselection.
func (s BookingState) ResetDate() BookingState {
	s.SelectedDate = nil
	return s
}

// ClearItems empties the ledger after a successful init-time cart clear
func (s BookingState) ClearItems() BookingState {
	s.Items = []CartLineItem{}
	return s
}

// BeginSubmit arms the in-flight submit guard
func (s BookingState) BeginSubmit(now time.Time) BookingState {
	s.SubmitInFlight = true
	s.SubmitStartedAt = &now
	return s
}

// EndSubmit disarms the in-flight submit guard
func (s BookingState) EndSubmit() BookingState {
	s.SubmitInFlight = false
	s.SubmitStartedAt = nil
	return s
}

// SubmitGuardActive reports whether a submit is in flight and not yet
// stale. A guard older than the TTL no longer blocks: a crashed submit
// must not wedge the session forever.
func (s BookingState) SubmitGuardActive(now time.Time, ttl time.Duration) bool {
	if !s.SubmitInFlight || s.SubmitStartedAt == nil {
		return false
	}
	return now.Sub(*s.SubmitStartedAt) < ttl
}

// Touch updates the last-modified timestamp
func (s BookingState) Touch(now time.Time) BookingState {
	s.UpdatedAt = now
	return s
}
