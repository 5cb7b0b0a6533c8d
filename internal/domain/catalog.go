package domain

import (
	"strconv"
	"strings"
	"time"
)

// Exhibition represents a dated exhibition run at the venue
type Exhibition struct {
	Title     string    `json:"title"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

// Validate validates the exhibition date range
func (e *Exhibition) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return ErrInvalidExhibitionTitle
	}
	if DayOf(e.EndDate).Before(DayOf(e.StartDate)) {
		return ErrInvalidExhibitionRange
	}
	return nil
}

// ClosedDates is the set of calendar dates on which the venue is shut
type ClosedDates []time.Time

// Contains reports whether the given calendar date is a closed date
func (c ClosedDates) Contains(date time.Time) bool {
	day := DayOf(date)
	for _, closed := range c {
		if DayOf(closed).Equal(day) {
			return true
		}
	}
	return false
}

// ProductVariant represents a purchasable ticket type
type ProductVariant struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	// Price is in minor currency units
	Price int64 `json:"price"`
}

// VariantDescriptions maps variant ids to free-text descriptions.
// Entries are carried as colon-delimited "id:description" strings and
// parsed at load; lookup returns the first match with non-blank text.
type VariantDescriptions struct {
	entries []variantDescription
}

type variantDescription struct {
	variantID   int64
	description string
}

// ParseVariantDescriptions parses colon-delimited "id:description"
// strings. Malformed entries are skipped rather than failing the load.
func ParseVariantDescriptions(raw []string) VariantDescriptions {
	var d VariantDescriptions
	for _, entry := range raw {
		idText, description, found := strings.Cut(entry, ":")
		if !found {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimSpace(idText), 10, 64)
		if err != nil {
			continue
		}
		d.entries = append(d.entries, variantDescription{
			variantID:   id,
			description: strings.TrimSpace(description),
		})
	}
	return d
}

// ForVariant returns the first non-blank description for the variant id,
// or "" when none exists
func (d VariantDescriptions) ForVariant(variantID int64) string {
	for _, entry := range d.entries {
		if entry.variantID == variantID && entry.description != "" {
			return entry.description
		}
	}
	return ""
}

// Len returns the number of parsed description entries
func (d VariantDescriptions) Len() int {
	return len(d.entries)
}

// GiftAidCopy holds the static gift-aid section text
type GiftAidCopy struct {
	Heading          string `json:"heading"`
	Info             string `json:"info"`
	DeclarationLabel string `json:"declaration_label"`
}

// DefaultGiftAidCopy returns the placeholder copy used when the
// gift-aid payload is missing or malformed
func DefaultGiftAidCopy() GiftAidCopy {
	return GiftAidCopy{
		Heading:          "Gift Aid",
		Info:             "Boost your ticket at no extra cost to you.",
		DeclarationLabel: "I would like to add Gift Aid to my tickets",
	}
}

// Catalog bundles the five load-time payloads. It is immutable after
// load and swapped as a whole on refresh.
type Catalog struct {
	Exhibitions  []Exhibition        `json:"exhibitions"`
	ClosedDates  ClosedDates         `json:"closed_dates"`
	Variants     []ProductVariant    `json:"variants"`
	Descriptions VariantDescriptions `json:"-"`
	GiftAid      GiftAidCopy         `json:"gift_aid"`
}

// EmptyCatalog returns a catalog with safe empty defaults for every payload
func EmptyCatalog() Catalog {
	return Catalog{
		Exhibitions: []Exhibition{},
		ClosedDates: ClosedDates{},
		Variants:    []ProductVariant{},
		GiftAid:     DefaultGiftAidCopy(),
	}
}

// VariantByID returns the variant with the given id, or false when absent
func (c Catalog) VariantByID(variantID int64) (ProductVariant, bool) {
	for _, v := range c.Variants {
		if v.ID == variantID {
			return v, true
		}
	}
	return ProductVariant{}, false
}

// DayOf truncates a timestamp to its calendar date in UTC. All date
// comparisons in the booking flow are day-precision.
func DayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
