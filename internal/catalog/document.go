package catalog

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/oldgate-museum/booking-widget/internal/domain"
)

// DateLayout is the wire format for calendar dates in catalog documents
const DateLayout = "2006-01-02"

// Document is the raw catalog document shape. Each payload decodes
// independently so one malformed section cannot take down the rest.
type Document struct {
	Exhibitions  json.RawMessage `json:"exhibitions"`
	ClosedDates  json.RawMessage `json:"closed_dates"`
	Variants     json.RawMessage `json:"variants"`
	Descriptions json.RawMessage `json:"variant_descriptions"`
	GiftAid      json.RawMessage `json:"gift_aid"`
}

type exhibitionRecord struct {
	Title     string `json:"title"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type variantRecord struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Price int64  `json:"price"`
}

type giftAidRecord struct {
	Heading          string `json:"heading"`
	Info             string `json:"info"`
	DeclarationLabel string `json:"declaration_label"`
}

// ParseDocument decodes each payload of the document, substituting the
// safe default for any payload that fails to decode. The returned
// results report the outcome per payload.
func ParseDocument(doc Document) (domain.Catalog, []PayloadResult) {
	catalog := domain.EmptyCatalog()
	results := make([]PayloadResult, 0, 5)

	exhibitions, err := parseExhibitions(doc.Exhibitions)
	if err == nil {
		catalog.Exhibitions = exhibitions
	}
	results = append(results, PayloadResult{Payload: PayloadExhibitions, OK: err == nil, Err: err})

	closed, err := parseClosedDates(doc.ClosedDates)
	if err == nil {
		catalog.ClosedDates = closed
	}
	results = append(results, PayloadResult{Payload: PayloadClosedDates, OK: err == nil, Err: err})

	variants, err := parseVariants(doc.Variants)
	if err == nil {
		catalog.Variants = variants
	}
	results = append(results, PayloadResult{Payload: PayloadVariants, OK: err == nil, Err: err})

	descriptions, err := parseDescriptions(doc.Descriptions)
	if err == nil {
		catalog.Descriptions = descriptions
	}
	results = append(results, PayloadResult{Payload: PayloadDescriptions, OK: err == nil, Err: err})

	giftAid, err := parseGiftAid(doc.GiftAid)
	if err == nil {
		catalog.GiftAid = giftAid
	}
	results = append(results, PayloadResult{Payload: PayloadGiftAid, OK: err == nil, Err: err})

	return catalog, results
}

// parseExhibitions decodes the exhibition list. Entries with unparseable
// dates or an invalid range are skipped; load order of the survivors is
// preserved because the title lookup depends on it.
func parseExhibitions(raw json.RawMessage) ([]domain.Exhibition, error) {
	if len(raw) == 0 {
		return []domain.Exhibition{}, nil
	}

	var records []exhibitionRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode exhibitions: %w", err)
	}

	exhibitions := make([]domain.Exhibition, 0, len(records))
	for _, r := range records {
		start, err := time.Parse(DateLayout, r.StartDate)
		if err != nil {
			continue
		}
		end, err := time.Parse(DateLayout, r.EndDate)
		if err != nil {
			continue
		}
		e := domain.Exhibition{Title: r.Title, StartDate: start, EndDate: end}
		if e.Validate() != nil {
			continue
		}
		exhibitions = append(exhibitions, e)
	}
	return exhibitions, nil
}

func parseClosedDates(raw json.RawMessage) (domain.ClosedDates, error) {
	if len(raw) == 0 {
		return domain.ClosedDates{}, nil
	}

	var records []string
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode closed dates: %w", err)
	}

	closed := make(domain.ClosedDates, 0, len(records))
	for _, r := range records {
		d, err := time.Parse(DateLayout, r)
		if err != nil {
			continue
		}
		closed = append(closed, d)
	}
	return closed, nil
}

func parseVariants(raw json.RawMessage) ([]domain.ProductVariant, error) {
	if len(raw) == 0 {
		return []domain.ProductVariant{}, nil
	}

	var records []variantRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode variants: %w", err)
	}

	variants := make([]domain.ProductVariant, 0, len(records))
	for _, r := range records {
		if r.ID == 0 {
			continue
		}
		variants = append(variants, domain.ProductVariant{ID: r.ID, Title: r.Title, Price: r.Price})
	}
	return variants, nil
}

func parseDescriptions(raw json.RawMessage) (domain.VariantDescriptions, error) {
	if len(raw) == 0 {
		return domain.VariantDescriptions{}, nil
	}

	var records []string
	if err := json.Unmarshal(raw, &records); err != nil {
		return domain.VariantDescriptions{}, fmt.Errorf("decode variant descriptions: %w", err)
	}

	return domain.ParseVariantDescriptions(records), nil
}

func parseGiftAid(raw json.RawMessage) (domain.GiftAidCopy, error) {
	if len(raw) == 0 {
		return domain.DefaultGiftAidCopy(), nil
	}

	var record giftAidRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return domain.GiftAidCopy{}, fmt.Errorf("decode gift aid copy: %w", err)
	}

	giftAid := domain.DefaultGiftAidCopy()
	if record.Heading != "" {
		giftAid.Heading = record.Heading
	}
	if record.Info != "" {
		giftAid.Info = record.Info
	}
	if record.DeclarationLabel != "" {
		giftAid.DeclarationLabel = record.DeclarationLabel
	}
	return giftAid, nil
}
