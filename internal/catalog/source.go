package catalog

import (
	"context"

	"github.com/oldgate-museum/booking-widget/internal/domain"
)

// Payload names reported in load results
const (
	PayloadExhibitions  = "exhibitions"
	PayloadClosedDates  = "closed_dates"
	PayloadVariants     = "variants"
	PayloadDescriptions = "variant_descriptions"
	PayloadGiftAid      = "gift_aid"
)

// PayloadResult is the tagged outcome of loading one catalog payload.
// A failed payload is substituted with its safe default; the catalog as
// a whole still loads.
type PayloadResult struct {
	Payload string
	OK      bool
	Err     error
}

// Source loads a catalog snapshot from a backing store. Implementations
// must degrade per payload: a malformed or unreadable payload yields
// its default plus a failed PayloadResult, never a partial catalog with
// missing fields.
type Source interface {
	Load(ctx context.Context) (domain.Catalog, []PayloadResult, error)
}

// FailedPayloads returns the names of payloads that fell back to defaults
func FailedPayloads(results []PayloadResult) []string {
	var failed []string
	for _, r := range results {
		if !r.OK {
			failed = append(failed, r.Payload)
		}
	}
	return failed
}
