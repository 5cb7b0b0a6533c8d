package metrics

import (
	"context"
	"sync"

	"github.com/oldgate-museum/booking-widget/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

var (
	// Session counters
	SessionsStarted *telemetry.Counter
	DatesSelected   *telemetry.Counter
	DatesReset      *telemetry.Counter

	// Ticket counters
	TicketsAdded   *telemetry.Counter
	TicketsRemoved *telemetry.Counter
	QuantitiesSet  *telemetry.Counter
	CapRefusals    *telemetry.Counter
	GiftAidToggles *telemetry.Counter

	// Cart sync counters
	Submissions      *telemetry.Counter
	SubmitConflicts  *telemetry.Counter
	CartSyncFailures *telemetry.Counter

	// Catalog counters
	CatalogRefreshes *telemetry.Counter

	// Histograms
	CartRoundTrip   *telemetry.Histogram
	RequestDuration *telemetry.Histogram

	// Gauges
	SubmitsInFlight *telemetry.UpDownCounter

	initOnce sync.Once
	initErr  error
)

// Init initializes all widget metrics
func Init() error {
	initOnce.Do(func() {
		initErr = initMetrics()
	})
	return initErr
}

func initMetrics() error {
	var err error

	SessionsStarted, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "widget_sessions_started_total",
		Description: "Total number of widget sessions opened",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	DatesSelected, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "widget_dates_selected_total",
		Description: "Total number of visit dates selected",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	DatesReset, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "widget_dates_reset_total",
		Description: "Total number of visit date resets",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	TicketsAdded, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "widget_tickets_added_total",
		Description: "Total number of single ticket increments",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	TicketsRemoved, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "widget_tickets_removed_total",
		Description: "Total number of single ticket decrements",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	QuantitiesSet, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "widget_quantities_set_total",
		Description: "Total number of direct quantity entries",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	CapRefusals, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "widget_cap_refusals_total",
		Description: "Total number of increments refused at the ticket cap",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	GiftAidToggles, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "widget_gift_aid_toggles_total",
		Description: "Total number of gift aid declaration changes",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	Submissions, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "widget_submissions_total",
		Description: "Total number of ticket commits to the remote cart",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	SubmitConflicts, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "widget_submit_conflicts_total",
		Description: "Total number of submits rejected while another was in flight",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	CartSyncFailures, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "widget_cart_sync_failures_total",
		Description: "Total number of failed remote cart calls",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	CatalogRefreshes, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "widget_catalog_refreshes_total",
		Description: "Total number of catalog reloads",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	CartRoundTrip, err = telemetry.NewHistogramWithBuckets(telemetry.MetricOpts{
		Name:        "widget_cart_roundtrip_seconds",
		Description: "Remote cart call duration in seconds",
		Unit:        "s",
	}, []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10})
	if err != nil {
		return err
	}

	RequestDuration, err = telemetry.NewHistogramWithBuckets(telemetry.MetricOpts{
		Name:        "widget_request_duration_seconds",
		Description: "HTTP request duration in seconds",
		Unit:        "s",
	}, []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5})
	if err != nil {
		return err
	}

	SubmitsInFlight, err = telemetry.NewUpDownCounter(telemetry.MetricOpts{
		Name:        "widget_submits_in_flight",
		Description: "Current number of cart commits in flight",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	return nil
}

// RecordSessionStarted records a new widget session
func RecordSessionStarted(ctx context.Context, seeded, cleared bool) {
	if SessionsStarted != nil {
		SessionsStarted.Inc(ctx,
			attribute.Bool("seeded", seeded),
			attribute.Bool("cart_cleared", cleared),
		)
	}
}

// RecordDateSelected records a visit date selection
func RecordDateSelected(ctx context.Context, exhibitionTitle string) {
	if DatesSelected != nil {
		DatesSelected.Inc(ctx,
			attribute.String("exhibition", exhibitionTitle),
		)
	}
}

// RecordDateReset records a visit date reset
func RecordDateReset(ctx context.Context) {
	if DatesReset != nil {
		DatesReset.Inc(ctx)
	}
}

// RecordTicketAdded records a single ticket increment
func RecordTicketAdded(ctx context.Context, variantID int64) {
	if TicketsAdded != nil {
		TicketsAdded.Inc(ctx,
			attribute.Int64("variant_id", variantID),
		)
	}
}

// RecordTicketRemoved records a single ticket decrement
func RecordTicketRemoved(ctx context.Context, variantID int64) {
	if TicketsRemoved != nil {
		TicketsRemoved.Inc(ctx,
			attribute.Int64("variant_id", variantID),
		)
	}
}

// RecordQuantitySet records a direct quantity entry
func RecordQuantitySet(ctx context.Context, variantID int64, quantity int) {
	if QuantitiesSet != nil {
		QuantitiesSet.Inc(ctx,
			attribute.Int64("variant_id", variantID),
			attribute.Int("quantity", quantity),
		)
	}
}

// RecordCapRefusal records an increment refused at the ticket cap
func RecordCapRefusal(ctx context.Context) {
	if CapRefusals != nil {
		CapRefusals.Inc(ctx)
	}
}

// RecordGiftAidToggle records a gift aid declaration change
func RecordGiftAidToggle(ctx context.Context, declared bool) {
	if GiftAidToggles != nil {
		GiftAidToggles.Inc(ctx,
			attribute.Bool("declared", declared),
		)
	}
}

// RecordSubmitStarted marks a cart commit as in flight
func RecordSubmitStarted(ctx context.Context) {
	if SubmitsInFlight != nil {
		SubmitsInFlight.Inc(ctx)
	}
}

// RecordSubmission records a completed cart commit
func RecordSubmission(ctx context.Context, kind string, durationSeconds float64) {
	if Submissions != nil {
		Submissions.Inc(ctx,
			attribute.String("kind", kind),
		)
	}
	if CartRoundTrip != nil {
		CartRoundTrip.Record(ctx, durationSeconds,
			attribute.String("operation", "submit"),
		)
	}
	if SubmitsInFlight != nil {
		SubmitsInFlight.Dec(ctx)
	}
}

// RecordSubmitConflict records a submit rejected while another was in flight
func RecordSubmitConflict(ctx context.Context) {
	if SubmitConflicts != nil {
		SubmitConflicts.Inc(ctx)
	}
}

// RecordCartSyncFailure records a failed remote cart call
func RecordCartSyncFailure(ctx context.Context, operation string) {
	if CartSyncFailures != nil {
		CartSyncFailures.Inc(ctx,
			attribute.String("operation", operation),
		)
	}
	if operation == "submit" && SubmitsInFlight != nil {
		SubmitsInFlight.Dec(ctx)
	}
}

// RecordCartRoundTrip records the duration of one remote cart call
func RecordCartRoundTrip(ctx context.Context, operation string, durationSeconds float64) {
	if CartRoundTrip != nil {
		CartRoundTrip.Record(ctx, durationSeconds,
			attribute.String("operation", operation),
		)
	}
}

// RecordCatalogRefresh records a catalog reload
func RecordCatalogRefresh(ctx context.Context, source string, failedPayloads int) {
	if CatalogRefreshes != nil {
		CatalogRefreshes.Inc(ctx,
			attribute.String("source", source),
			attribute.Int("failed_payloads", failedPayloads),
		)
	}
}

// RecordRequestDuration records HTTP request duration
func RecordRequestDuration(ctx context.Context, operation string, durationSeconds float64) {
	if RequestDuration != nil {
		RequestDuration.Record(ctx, durationSeconds,
			attribute.String("operation", operation),
		)
	}
}
