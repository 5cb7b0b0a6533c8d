package cart

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/oldgate-museum/booking-widget/internal/domain"
)

func visitDate() time.Time {
	return time.Date(2026, time.April, 14, 0, 0, 0, 0, time.UTC)
}

func exhibitions() []domain.Exhibition {
	return []domain.Exhibition{
		{
			Title:     "Silk Roads",
			StartDate: time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2026, time.April, 20, 0, 0, 0, 0, time.UTC),
		},
	}
}

func TestExhibitionDateLabel(t *testing.T) {
	date := visitDate()

	if got := ExhibitionDateLabel("Silk Roads", date); got != "Silk Roads - Tuesday 14 April 2026" {
		t.Errorf("ExhibitionDateLabel() = %q", got)
	}
	if got := ExhibitionDateLabel("", date); got != "Tuesday 14 April 2026" {
		t.Errorf("ExhibitionDateLabel() without title = %q", got)
	}
}

func TestBuildCommit_AddBranch(t *testing.T) {
	date := visitDate()
	state := domain.BookingState{
		SelectedDate:    &date,
		RemoteCartEmpty: true,
		Items: []domain.CartLineItem{
			{VariantID: 101, Quantity: 3},
			{VariantID: 102, Quantity: 0},
		},
	}

	req, err := BuildCommit(state, exhibitions())
	if err != nil {
		t.Fatalf("BuildCommit() error = %v", err)
	}

	if req.Kind != CommitAdd {
		t.Fatalf("Kind = %v, want %v", req.Kind, CommitAdd)
	}
	if req.Add == nil || req.Update != nil {
		t.Fatal("add commit should carry an AddRequest and no UpdateRequest")
	}

	// Zero-quantity lines are filtered from adds
	if len(req.Add.Items) != 1 {
		t.Fatalf("len(Items) = %d, want 1", len(req.Add.Items))
	}

	item := req.Add.Items[0]
	if item.ID != 101 || item.Quantity != 3 {
		t.Errorf("item = %+v, want id 101 quantity 3", item)
	}
	if got := item.Properties[domain.PropertyExhibition]; got != "Silk Roads - Tuesday 14 April 2026" {
		t.Errorf("Exhibition property = %q", got)
	}
	if got := item.Properties[domain.PropertyDate]; got != "Tuesday 14 April 2026" {
		t.Errorf("Date property = %q", got)
	}
	if _, present := item.Properties[domain.PropertyGiftAid]; present {
		t.Error("Gift Aid property present without a declaration; omission encodes false")
	}
	if len(item.Sections) != 1 || item.Sections[0] != SectionCartIconBubble {
		t.Errorf("Sections = %v, want [%s]", item.Sections, SectionCartIconBubble)
	}
}

func TestBuildCommit_AddCarriesGiftAidWhenDeclared(t *testing.T) {
	date := visitDate()
	state := domain.BookingState{
		SelectedDate:    &date,
		RemoteCartEmpty: true,
		GiftAidDeclared: true,
		Items:           []domain.CartLineItem{{VariantID: 102, Quantity: 1}},
	}

	req, err := BuildCommit(state, exhibitions())
	if err != nil {
		t.Fatalf("BuildCommit() error = %v", err)
	}

	if got := req.Add.Items[0].Properties[domain.PropertyGiftAid]; got != domain.PropertyGiftAidYes {
		t.Errorf("Gift Aid property = %q, want %q", got, domain.PropertyGiftAidYes)
	}
}

func TestBuildCommit_AddWithoutMatchingExhibition(t *testing.T) {
	date := time.Date(2026, time.December, 1, 0, 0, 0, 0, time.UTC)
	state := domain.BookingState{
		SelectedDate:    &date,
		RemoteCartEmpty: true,
		Items:           []domain.CartLineItem{{VariantID: 101, Quantity: 1}},
	}

	req, err := BuildCommit(state, exhibitions())
	if err != nil {
		t.Fatalf("BuildCommit() error = %v", err)
	}

	// No exhibition covers the date: the label degrades to the date alone
	if got := req.Add.Items[0].Properties[domain.PropertyExhibition]; got != "Tuesday 1 December 2026" {
		t.Errorf("Exhibition property = %q", got)
	}
}

func TestBuildCommit_UpdateBranch(t *testing.T) {
	date := visitDate()
	state := domain.BookingState{
		SelectedDate:    &date,
		RemoteCartEmpty: false,
		Items: []domain.CartLineItem{
			{VariantID: 101, Quantity: 2},
			{VariantID: 202, Quantity: 0},
		},
	}

	req, err := BuildCommit(state, exhibitions())
	if err != nil {
		t.Fatalf("BuildCommit() error = %v", err)
	}

	if req.Kind != CommitUpdate {
		t.Fatalf("Kind = %v, want %v", req.Kind, CommitUpdate)
	}
	if req.Update == nil || req.Add != nil {
		t.Fatal("update commit should carry an UpdateRequest and no AddRequest")
	}

	// Zeros are included: they are how removal reaches the remote cart
	want := map[string]int{"101": 2, "202": 0}
	if len(req.Update.Updates) != len(want) {
		t.Fatalf("Updates = %v, want %v", req.Update.Updates, want)
	}
	for k, v := range want {
		if req.Update.Updates[k] != v {
			t.Errorf("Updates[%s] = %d, want %d", k, req.Update.Updates[k], v)
		}
	}
}

func TestBuildCommit_UpdateBodyEncoding(t *testing.T) {
	date := visitDate()
	state := domain.BookingState{
		SelectedDate:    &date,
		RemoteCartEmpty: false,
		Items:           []domain.CartLineItem{{VariantID: 202, Quantity: 0}},
	}

	req, err := BuildCommit(state, exhibitions())
	if err != nil {
		t.Fatalf("BuildCommit() error = %v", err)
	}

	body, err := json.Marshal(req.Update)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if got := string(body); got != `{"updates":{"202":0}}` {
		t.Errorf("body = %s, want {\"updates\":{\"202\":0}}", got)
	}
}

func TestBuildCommit_NoDateSelected(t *testing.T) {
	state := domain.BookingState{
		RemoteCartEmpty: true,
		Items:           []domain.CartLineItem{{VariantID: 101, Quantity: 1}},
	}

	_, err := BuildCommit(state, exhibitions())

	if !errors.Is(err, domain.ErrNoDateSelected) {
		t.Errorf("error = %v, want ErrNoDateSelected", err)
	}
}

func TestBuildCommit_NothingToAdd(t *testing.T) {
	date := visitDate()
	state := domain.BookingState{
		SelectedDate:    &date,
		RemoteCartEmpty: true,
		Items:           []domain.CartLineItem{{VariantID: 101, Quantity: 0}},
	}

	_, err := BuildCommit(state, exhibitions())

	if !errors.Is(err, domain.ErrNothingToSubmit) {
		t.Errorf("error = %v, want ErrNothingToSubmit", err)
	}
}
