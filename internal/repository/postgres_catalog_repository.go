package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/oldgate-museum/booking-widget/internal/catalog"
	"github.com/oldgate-museum/booking-widget/internal/domain"
	"github.com/oldgate-museum/booking-widget/pkg/database"
	"github.com/oldgate-museum/booking-widget/pkg/telemetry"
)

// PostgresCatalogRepository loads the catalog from Postgres. It
// implements catalog.Source: a failing table degrades to that payload's
// default rather than failing the whole load.
type PostgresCatalogRepository struct {
	db *database.PostgresDB
}

// NewPostgresCatalogRepository creates a new PostgresCatalogRepository
func NewPostgresCatalogRepository(db *database.PostgresDB) *PostgresCatalogRepository {
	return &PostgresCatalogRepository{db: db}
}

// Load queries the five catalog tables, ordered by their position
// columns so the stored load order (which decides first-match title
// lookups) survives the round trip through Postgres.
func (r *PostgresCatalogRepository) Load(ctx context.Context) (domain.Catalog, []catalog.PayloadResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.catalog.load")
	defer span.End()

	loaded := domain.EmptyCatalog()
	results := make([]catalog.PayloadResult, 0, 5)

	exhibitions, err := r.loadExhibitions(ctx)
	if err == nil {
		loaded.Exhibitions = exhibitions
	}
	results = append(results, catalog.PayloadResult{Payload: catalog.PayloadExhibitions, OK: err == nil, Err: err})

	closed, err := r.loadClosedDates(ctx)
	if err == nil {
		loaded.ClosedDates = closed
	}
	results = append(results, catalog.PayloadResult{Payload: catalog.PayloadClosedDates, OK: err == nil, Err: err})

	variants, err := r.loadVariants(ctx)
	if err == nil {
		loaded.Variants = variants
	}
	results = append(results, catalog.PayloadResult{Payload: catalog.PayloadVariants, OK: err == nil, Err: err})

	descriptions, err := r.loadDescriptions(ctx)
	if err == nil {
		loaded.Descriptions = descriptions
	}
	results = append(results, catalog.PayloadResult{Payload: catalog.PayloadDescriptions, OK: err == nil, Err: err})

	giftAid, err := r.loadGiftAid(ctx)
	if err == nil {
		loaded.GiftAid = giftAid
	}
	results = append(results, catalog.PayloadResult{Payload: catalog.PayloadGiftAid, OK: err == nil, Err: err})

	failed := catalog.FailedPayloads(results)
	span.SetAttributes(
		attribute.Int("exhibitions", len(loaded.Exhibitions)),
		attribute.Int("variants", len(loaded.Variants)),
		attribute.Int("failed_payloads", len(failed)),
	)
	if len(failed) > 0 {
		span.SetStatus(codes.Error, fmt.Sprintf("%d payloads fell back to defaults", len(failed)))
	} else {
		span.SetStatus(codes.Ok, "")
	}

	return loaded, results, nil
}

func (r *PostgresCatalogRepository) loadExhibitions(ctx context.Context) ([]domain.Exhibition, error) {
	query := `
		SELECT title, start_date, end_date
		FROM exhibitions
		ORDER BY position, id
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query exhibitions: %w", err)
	}
	defer rows.Close()

	exhibitions := []domain.Exhibition{}
	for rows.Next() {
		var e domain.Exhibition
		if err := rows.Scan(&e.Title, &e.StartDate, &e.EndDate); err != nil {
			return nil, fmt.Errorf("failed to scan exhibition: %w", err)
		}
		if e.Validate() != nil {
			continue
		}
		exhibitions = append(exhibitions, e)
	}
	return exhibitions, rows.Err()
}

func (r *PostgresCatalogRepository) loadClosedDates(ctx context.Context) (domain.ClosedDates, error) {
	query := `
		SELECT closed_on
		FROM closed_dates
		ORDER BY closed_on
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query closed dates: %w", err)
	}
	defer rows.Close()

	closed := domain.ClosedDates{}
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("failed to scan closed date: %w", err)
		}
		closed = append(closed, d)
	}
	return closed, rows.Err()
}

func (r *PostgresCatalogRepository) loadVariants(ctx context.Context) ([]domain.ProductVariant, error) {
	query := `
		SELECT id, title, price
		FROM product_variants
		ORDER BY position, id
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query product variants: %w", err)
	}
	defer rows.Close()

	variants := []domain.ProductVariant{}
	for rows.Next() {
		var v domain.ProductVariant
		if err := rows.Scan(&v.ID, &v.Title, &v.Price); err != nil {
			return nil, fmt.Errorf("failed to scan product variant: %w", err)
		}
		variants = append(variants, v)
	}
	return variants, rows.Err()
}

func (r *PostgresCatalogRepository) loadDescriptions(ctx context.Context) (domain.VariantDescriptions, error) {
	query := `
		SELECT entry
		FROM variant_descriptions
		ORDER BY position, id
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return domain.VariantDescriptions{}, fmt.Errorf("failed to query variant descriptions: %w", err)
	}
	defer rows.Close()

	var entries []string
	for rows.Next() {
		var entry string
		if err := rows.Scan(&entry); err != nil {
			return domain.VariantDescriptions{}, fmt.Errorf("failed to scan variant description: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return domain.VariantDescriptions{}, err
	}
	return domain.ParseVariantDescriptions(entries), nil
}

func (r *PostgresCatalogRepository) loadGiftAid(ctx context.Context) (domain.GiftAidCopy, error) {
	query := `
		SELECT heading, info, declaration_label
		FROM gift_aid_copy
		WHERE id = 1
	`

	var giftAid domain.GiftAidCopy
	err := r.db.QueryRow(ctx, query).Scan(&giftAid.Heading, &giftAid.Info, &giftAid.DeclarationLabel)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Not configured yet; the placeholder copy applies
			return domain.DefaultGiftAidCopy(), nil
		}
		return domain.GiftAidCopy{}, fmt.Errorf("failed to query gift aid copy: %w", err)
	}
	return giftAid, nil
}

// Ensure PostgresCatalogRepository implements catalog.Source
var _ catalog.Source = (*PostgresCatalogRepository)(nil)
