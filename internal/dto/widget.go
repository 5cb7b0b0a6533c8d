package dto

import (
	"time"

	"github.com/oldgate-museum/booking-widget/internal/catalog"
	"github.com/oldgate-museum/booking-widget/internal/domain"
)

// StartSessionRequest optionally carries the remote cart snapshot the
// storefront page already rendered inline. When present it spares the
// service a cart read; when absent the service fetches cart.js itself.
type StartSessionRequest struct {
	Cart *domain.CartSnapshot `json:"cart"`
}

// SelectDateRequest represents a request to select a visit date
type SelectDateRequest struct {
	Date string `json:"date" binding:"required"`
}

// TicketRequest represents a single-step ticket adjustment for one variant
type TicketRequest struct {
	VariantID int64 `json:"variant_id" binding:"required"`
}

// SetQuantityRequest represents a direct quantity entry for one variant.
// Quantity arrives as the raw text of the input field and is parsed
// server-side, so non-numeric entries degrade to zero instead of failing.
type SetQuantityRequest struct {
	VariantID int64  `json:"variant_id" binding:"required"`
	Quantity  string `json:"quantity"`
}

// GiftAidRequest represents a gift aid declaration toggle
type GiftAidRequest struct {
	Declared bool `json:"declared"`
}

// StartSessionResponse represents response after opening a widget session
type StartSessionResponse struct {
	Token          string             `json:"token"`
	ExpiresAt      time.Time          `json:"expires_at"`
	ReloadRequired bool               `json:"reload_required"`
	View           WidgetViewResponse `json:"view"`
}

// SubmitResponse represents response after committing tickets to the cart
type SubmitResponse struct {
	Kind        string `json:"kind"`
	RedirectURL string `json:"redirect_url,omitempty"`
}

// AvailabilityDay represents the selectability of one candidate date
type AvailabilityDay struct {
	Date            string `json:"date"`
	Selectable      bool   `json:"selectable"`
	ExhibitionTitle string `json:"exhibition_title,omitempty"`
}

// AvailabilityResponse represents the calendar feed for a date range
type AvailabilityResponse struct {
	From string            `json:"from"`
	To   string            `json:"to"`
	Days []AvailabilityDay `json:"days"`
}

// TicketOptionResponse represents one bookable variant and its current quantity
type TicketOptionResponse struct {
	VariantID   int64  `json:"variant_id"`
	Title       string `json:"title"`
	Price       int64  `json:"price"`
	Description string `json:"description,omitempty"`
	Quantity    int    `json:"quantity"`
}

// GiftAidViewResponse represents the gift aid block of the widget view
type GiftAidViewResponse struct {
	Eligible         bool   `json:"eligible"`
	Declared         bool   `json:"declared"`
	Heading          string `json:"heading"`
	Info             string `json:"info"`
	DeclarationLabel string `json:"declaration_label"`
}

// WidgetViewResponse represents the full widget state for rendering
type WidgetViewResponse struct {
	SessionID       string                 `json:"session_id"`
	Phase           string                 `json:"phase"`
	SelectedDate    string                 `json:"selected_date,omitempty"`
	ExhibitionTitle string                 `json:"exhibition_title,omitempty"`
	Tickets         []TicketOptionResponse `json:"tickets"`
	TotalQuantity   int                    `json:"total_quantity"`
	TicketCap       int                    `json:"ticket_cap"`
	AtCap           bool                   `json:"at_cap"`
	SubmitInFlight  bool                   `json:"submit_in_flight"`
	Message         string                 `json:"message,omitempty"`
	GiftAid         GiftAidViewResponse    `json:"gift_aid"`
}

// NewWidgetView converts a booking state and the loaded catalog into the
// rendering view. Ticket rows follow catalog order; quantities come from
// the session ledger.
func NewWidgetView(state domain.BookingState, cat domain.Catalog, cap int) WidgetViewResponse {
	tickets := make([]TicketOptionResponse, 0, len(cat.Variants))
	for _, variant := range cat.Variants {
		quantity := 0
		for _, item := range state.Items {
			if item.VariantID == variant.ID {
				quantity = item.Quantity
				break
			}
		}
		tickets = append(tickets, TicketOptionResponse{
			VariantID:   variant.ID,
			Title:       variant.Title,
			Price:       variant.Price,
			Description: cat.Descriptions.ForVariant(variant.ID),
			Quantity:    quantity,
		})
	}

	view := WidgetViewResponse{
		SessionID:      state.SessionID,
		Phase:          state.Phase(cap).String(),
		Tickets:        tickets,
		TotalQuantity:  state.AggregateQuantity(),
		TicketCap:      cap,
		AtCap:          state.ReachedCap(cap),
		SubmitInFlight: state.SubmitInFlight,
		Message:        state.Message,
		GiftAid: GiftAidViewResponse{
			Eligible:         domain.HasEligibleTicket(cat.Variants, state.Items),
			Declared:         state.GiftAidDeclared,
			Heading:          cat.GiftAid.Heading,
			Info:             cat.GiftAid.Info,
			DeclarationLabel: cat.GiftAid.DeclarationLabel,
		},
	}

	if state.SelectedDate != nil {
		view.SelectedDate = state.SelectedDate.Format(catalog.DateLayout)
		view.ExhibitionTitle = domain.ExhibitionTitleForDate(*state.SelectedDate, cat.Exhibitions)
	}

	return view
}
