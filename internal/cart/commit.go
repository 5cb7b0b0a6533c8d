package cart

import (
	"strconv"
	"time"

	"github.com/oldgate-museum/booking-widget/internal/domain"
)

// DateDisplayLayout is the fixed textual format attendance dates are
// encoded with in line-item metadata
const DateDisplayLayout = "Monday 2 January 2006"

// SectionCartIconBubble is the section-refresh marker the cart service
// uses to re-render the cart badge
const SectionCartIconBubble = "cart-icon-bubble"

// CommitKind distinguishes the two remote sync operations
type CommitKind string

const (
	CommitAdd    CommitKind = "add"
	CommitUpdate CommitKind = "update"
)

// AddItem is one line of a bulk-add request
type AddItem struct {
	ID         int64             `json:"id"`
	Properties map[string]string `json:"properties"`
	Quantity   int               `json:"quantity"`
	Sections   []string          `json:"sections"`
}

// AddRequest is the body of POST /cart/add
type AddRequest struct {
	Items []AddItem `json:"items"`
}

// UpdateRequest is the body of POST /cart/update. Keys are variant ids
// as strings; zero values communicate removal.
type UpdateRequest struct {
	Updates map[string]int `json:"updates"`
}

// CommitRequest is the remote operation a submit translates into:
// exactly one of Add or Update is set, matching Kind.
type CommitRequest struct {
	Kind   CommitKind
	Add    *AddRequest
	Update *UpdateRequest
}

// ExhibitionDateLabel renders the combined exhibition-and-date label
// attached to synced line items
func ExhibitionDateLabel(title string, date time.Time) string {
	text := date.Format(DateDisplayLayout)
	if title == "" {
		return text
	}
	return title + " - " + text
}

// BuildCommit translates the session's ledger into the remote request
// for a submit. The branch is decided by the remote-cart-empty flag
// computed once at session start:
//
//   - empty cart: a bulk add of every positive-quantity line, carrying
//     the exhibition label, the attendance date, and the gift-aid
//     declaration (present only when declared) as line-item metadata.
//   - non-empty cart: a bulk update mapping every touched variant to
//     its absolute quantity, zeros included, since zero is how removal
//     is communicated to a cart keyed by variant.
func BuildCommit(state domain.BookingState, exhibitions []domain.Exhibition) (CommitRequest, error) {
	if state.SelectedDate == nil {
		return CommitRequest{}, domain.ErrNoDateSelected
	}

	if !state.RemoteCartEmpty {
		updates := make(map[string]int, len(state.Items))
		for _, item := range state.Items {
			updates[strconv.FormatInt(item.VariantID, 10)] = item.Quantity
		}
		return CommitRequest{
			Kind:   CommitUpdate,
			Update: &UpdateRequest{Updates: updates},
		}, nil
	}

	visitDate := *state.SelectedDate
	title := domain.ExhibitionTitleForDate(visitDate, exhibitions)
	label := ExhibitionDateLabel(title, visitDate)

	items := make([]AddItem, 0, len(state.Items))
	for _, item := range state.Items {
		if item.Quantity == 0 {
			continue
		}
		properties := map[string]string{
			domain.PropertyExhibition: label,
			domain.PropertyDate:       visitDate.Format(DateDisplayLayout),
		}
		if state.GiftAidDeclared {
			properties[domain.PropertyGiftAid] = domain.PropertyGiftAidYes
		}
		items = append(items, AddItem{
			ID:         item.VariantID,
			Properties: properties,
			Quantity:   item.Quantity,
			Sections:   []string{SectionCartIconBubble},
		})
	}

	if len(items) == 0 {
		return CommitRequest{}, domain.ErrNothingToSubmit
	}

	return CommitRequest{
		Kind: CommitAdd,
		Add:  &AddRequest{Items: items},
	}, nil
}
