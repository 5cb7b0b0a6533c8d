package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/oldgate-museum/booking-widget/internal/cart"
	"github.com/oldgate-museum/booking-widget/internal/catalog"
	"github.com/oldgate-museum/booking-widget/internal/domain"
	"github.com/oldgate-museum/booking-widget/internal/dto"
	"github.com/oldgate-museum/booking-widget/internal/metrics"
	"github.com/oldgate-museum/booking-widget/internal/repository"
	"github.com/oldgate-museum/booking-widget/pkg/logger"
	"github.com/oldgate-museum/booking-widget/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var (
	// ErrInvalidToken indicates the session token failed validation
	ErrInvalidToken = errors.New("invalid session token")
	// ErrTokenExpired indicates the session token has expired
	ErrTokenExpired = errors.New("session token expired")
)

// WidgetService defines the interface for widget business logic
type WidgetService interface {
	// StartSession opens a widget session seeded from the remote cart.
	// The request may carry the snapshot inline; when it does not, the
	// snapshot is fetched from the storefront.
	StartSession(ctx context.Context, req *dto.StartSessionRequest) (*dto.StartSessionResponse, error)

	// GetView returns the current widget view for a session
	GetView(ctx context.Context, sessionID string) (*dto.WidgetViewResponse, error)

	// SelectDate sets the visit date after checking selectability
	SelectDate(ctx context.Context, sessionID string, req *dto.SelectDateRequest) (*dto.WidgetViewResponse, error)

	// ResetDate clears the visit date, keeping the ticket ledger
	ResetDate(ctx context.Context, sessionID string) (*dto.WidgetViewResponse, error)

	// AddTicket increments the quantity for a variant by one
	AddTicket(ctx context.Context, sessionID string, req *dto.TicketRequest) (*dto.WidgetViewResponse, error)

	// RemoveTicket decrements the quantity for a variant by one
	RemoveTicket(ctx context.Context, sessionID string, req *dto.TicketRequest) (*dto.WidgetViewResponse, error)

	// SetTicketQuantity sets the quantity for a variant from user-entered text
	SetTicketQuantity(ctx context.Context, sessionID string, req *dto.SetQuantityRequest) (*dto.WidgetViewResponse, error)

	// SetGiftAid sets the gift aid declaration flag
	SetGiftAid(ctx context.Context, sessionID string, req *dto.GiftAidRequest) (*dto.WidgetViewResponse, error)

	// Submit commits the ticket ledger to the remote cart
	Submit(ctx context.Context, sessionID string) (*dto.SubmitResponse, error)

	// CheckAvailability reports per-day selectability over a date range
	CheckAvailability(ctx context.Context, from, to string) (*dto.AvailabilityResponse, error)

	// ValidateSessionToken validates a session token and returns its session ID
	ValidateSessionToken(ctx context.Context, token string) (string, error)
}

// widgetService implements WidgetService
type widgetService struct {
	sessionRepo     repository.SessionRepository
	catalogStore    *catalog.Store
	cartClient      cart.Client
	eventPublisher  EventPublisher
	ticketCap       int
	sessionTTL      time.Duration
	submitGuardTTL  time.Duration
	tokenSecret     string
	tokenTTL        time.Duration
	tokenIssuer     string
	cartRedirectURL string
}

// WidgetServiceConfig contains configuration for the widget service
type WidgetServiceConfig struct {
	TicketCap       int
	SessionTTL      time.Duration
	SubmitGuardTTL  time.Duration
	TokenSecret     string
	TokenTTL        time.Duration
	TokenIssuer     string
	CartRedirectURL string
}

// NewWidgetService creates a new widget service
func NewWidgetService(
	sessionRepo repository.SessionRepository,
	catalogStore *catalog.Store,
	cartClient cart.Client,
	eventPublisher EventPublisher,
	cfg *WidgetServiceConfig,
) WidgetService {
	ticketCap := domain.DefaultTicketCap
	sessionTTL := 4 * time.Hour
	submitGuardTTL := 30 * time.Second
	tokenTTL := time.Duration(0)
	tokenSecret := ""
	tokenIssuer := "booking-widget"
	cartRedirectURL := ""
	if cfg != nil {
		if cfg.TicketCap > 0 {
			ticketCap = cfg.TicketCap
		}
		if cfg.SessionTTL > 0 {
			sessionTTL = cfg.SessionTTL
		}
		if cfg.SubmitGuardTTL > 0 {
			submitGuardTTL = cfg.SubmitGuardTTL
		}
		if cfg.TokenTTL > 0 {
			tokenTTL = cfg.TokenTTL
		}
		if cfg.TokenIssuer != "" {
			tokenIssuer = cfg.TokenIssuer
		}
		tokenSecret = cfg.TokenSecret
		cartRedirectURL = cfg.CartRedirectURL
	}
	if tokenTTL == 0 {
		tokenTTL = sessionTTL
	}
	// Use NoOp implementations if none provided
	if eventPublisher == nil {
		eventPublisher = NewNoOpEventPublisher()
	}
	if cartClient == nil {
		cartClient = cart.NewNoOpClient()
	}
	return &widgetService{
		sessionRepo:     sessionRepo,
		catalogStore:    catalogStore,
		cartClient:      cartClient,
		eventPublisher:  eventPublisher,
		ticketCap:       ticketCap,
		sessionTTL:      sessionTTL,
		submitGuardTTL:  submitGuardTTL,
		tokenSecret:     tokenSecret,
		tokenTTL:        tokenTTL,
		tokenIssuer:     tokenIssuer,
		cartRedirectURL: cartRedirectURL,
	}
}

// StartSession opens a widget session seeded from the remote cart
func (s *widgetService) StartSession(ctx context.Context, req *dto.StartSessionRequest) (*dto.StartSessionResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.widget.start_session")
	defer span.End()

	sessionID := uuid.New().String()
	span.SetAttributes(attribute.String("session_id", sessionID))

	now := time.Now()

	// The storefront page usually posts the cart it already rendered.
	// Without one the snapshot is fetched, and a failed fetch degrades to
	// an empty cart so the widget stays usable while the storefront is
	// unreachable.
	snapshot := domain.CartSnapshot{}
	if req != nil && req.Cart != nil {
		snapshot = *req.Cart
	} else {
		remote, err := s.cartClient.Snapshot(ctx)
		if err != nil {
			span.RecordError(err)
			metrics.RecordCartSyncFailure(ctx, "snapshot")
			logger.WarnCtx(ctx, "cart snapshot failed, starting with empty cart", zap.Error(err))
		} else if remote != nil {
			snapshot = *remote
		}
	}

	state := domain.NewBookingState(sessionID, snapshot, now)
	seeded := len(state.Items) > 0

	// A non-empty remote cart is cleared once at session start so stale
	// lines from an abandoned visit cannot leak into this booking. The
	// storefront reloads after a successful clear.
	cleared := false
	if !state.RemoteCartEmpty {
		if clearErr := s.cartClient.Clear(ctx); clearErr != nil {
			span.RecordError(clearErr)
			metrics.RecordCartSyncFailure(ctx, "clear")
			logger.WarnCtx(ctx, "cart clear failed, keeping seeded items", zap.Error(clearErr))
		} else {
			cleared = true
			state = state.ClearItems()
			state.RemoteCartEmpty = true
		}
	}

	if err := s.sessionRepo.Save(ctx, state, s.sessionTTL); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	token, expiresAt, err := s.mintSessionToken(sessionID, now)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	metrics.RecordSessionStarted(ctx, seeded, cleared)
	span.AddEvent("session_started", trace.WithAttributes(
		attribute.Bool("seeded", seeded),
		attribute.Bool("cart_cleared", cleared),
	))
	span.SetStatus(codes.Ok, "")

	return &dto.StartSessionResponse{
		Token:          token,
		ExpiresAt:      expiresAt,
		ReloadRequired: cleared,
		View:           dto.NewWidgetView(state, s.catalogStore.Get(), s.ticketCap),
	}, nil
}

// GetView returns the current widget view for a session
func (s *widgetService) GetView(ctx context.Context, sessionID string) (*dto.WidgetViewResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.widget.get_view")
	defer span.End()

	span.SetAttributes(attribute.String("session_id", sessionID))

	state, err := s.loadState(ctx, sessionID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	view := dto.NewWidgetView(state, s.catalogStore.Get(), s.ticketCap)
	span.SetStatus(codes.Ok, "")
	return &view, nil
}

// SelectDate sets the visit date after checking selectability
func (s *widgetService) SelectDate(ctx context.Context, sessionID string, req *dto.SelectDateRequest) (*dto.WidgetViewResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.widget.select_date")
	defer span.End()

	span.SetAttributes(attribute.String("session_id", sessionID))

	if req == nil || req.Date == "" {
		span.SetStatus(codes.Error, "invalid date")
		return nil, domain.ErrInvalidDate
	}
	date, err := time.Parse(catalog.DateLayout, req.Date)
	if err != nil {
		span.SetStatus(codes.Error, "invalid date")
		return nil, domain.ErrInvalidDate
	}

	state, err := s.loadState(ctx, sessionID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	cat := s.catalogStore.Get()
	today := time.Now()
	bound := domain.LastBookableExclusive(cat.Exhibitions, today)
	if !domain.IsDateSelectable(date, today, cat.ClosedDates, bound) {
		span.SetAttributes(attribute.String("visit_date", req.Date))
		span.SetStatus(codes.Error, "date not selectable")
		return nil, domain.ErrDateNotSelectable
	}

	state.Message = ""
	state = state.SelectDate(date)

	view, err := s.saveAndView(ctx, state)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	metrics.RecordDateSelected(ctx, domain.ExhibitionTitleForDate(date, cat.Exhibitions))
	span.SetAttributes(attribute.String("visit_date", req.Date))
	span.SetStatus(codes.Ok, "")
	return view, nil
}

// ResetDate clears the visit date, keeping the ticket ledger
func (s *widgetService) ResetDate(ctx context.Context, sessionID string) (*dto.WidgetViewResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.widget.reset_date")
	defer span.End()

	span.SetAttributes(attribute.String("session_id", sessionID))

	state, err := s.loadState(ctx, sessionID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	state.Message = ""
	state = state.ResetDate()

	view, err := s.saveAndView(ctx, state)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	metrics.RecordDateReset(ctx)
	span.SetStatus(codes.Ok, "")
	return view, nil
}

// AddTicket increments the quantity for a variant by one
func (s *widgetService) AddTicket(ctx context.Context, sessionID string, req *dto.TicketRequest) (*dto.WidgetViewResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.widget.add_ticket")
	defer span.End()

	span.SetAttributes(attribute.String("session_id", sessionID))

	if req == nil || req.VariantID == 0 {
		span.SetStatus(codes.Error, "invalid variant_id")
		return nil, domain.ErrInvalidVariantID
	}

	state, _, err := s.loadForTicketOp(ctx, sessionID, req.VariantID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	state.Message = ""
	state = state.AddOne(req.VariantID, s.ticketCap)

	refused := state.Message != ""
	view, err := s.saveAndView(ctx, state)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if refused {
		metrics.RecordCapRefusal(ctx)
		span.AddEvent("cap_refusal", trace.WithAttributes(
			attribute.Int64("variant_id", req.VariantID),
			attribute.Int("ticket_cap", s.ticketCap),
		))
	} else {
		metrics.RecordTicketAdded(ctx, req.VariantID)
	}

	span.SetAttributes(attribute.Int64("variant_id", req.VariantID))
	span.SetStatus(codes.Ok, "")
	return view, nil
}

// RemoveTicket decrements the quantity for a variant by one
func (s *widgetService) RemoveTicket(ctx context.Context, sessionID string, req *dto.TicketRequest) (*dto.WidgetViewResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.widget.remove_ticket")
	defer span.End()

	span.SetAttributes(attribute.String("session_id", sessionID))

	if req == nil || req.VariantID == 0 {
		span.SetStatus(codes.Error, "invalid variant_id")
		return nil, domain.ErrInvalidVariantID
	}

	state, cat, err := s.loadForTicketOp(ctx, sessionID, req.VariantID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	state.Message = ""
	state = state.RemoveOne(req.VariantID, cat.Variants)

	view, err := s.saveAndView(ctx, state)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	metrics.RecordTicketRemoved(ctx, req.VariantID)
	span.SetAttributes(attribute.Int64("variant_id", req.VariantID))
	span.SetStatus(codes.Ok, "")
	return view, nil
}

// SetTicketQuantity sets the quantity for a variant from user-entered text
func (s *widgetService) SetTicketQuantity(ctx context.Context, sessionID string, req *dto.SetQuantityRequest) (*dto.WidgetViewResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.widget.set_quantity")
	defer span.End()

	span.SetAttributes(attribute.String("session_id", sessionID))

	if req == nil || req.VariantID == 0 {
		span.SetStatus(codes.Error, "invalid variant_id")
		return nil, domain.ErrInvalidVariantID
	}

	state, cat, err := s.loadForTicketOp(ctx, sessionID, req.VariantID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	state.Message = ""
	state = state.SetQuantity(req.VariantID, req.Quantity, s.ticketCap, cat.Variants)

	applied := 0
	for _, item := range state.Items {
		if item.VariantID == req.VariantID {
			applied = item.Quantity
			break
		}
	}

	view, err := s.saveAndView(ctx, state)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	metrics.RecordQuantitySet(ctx, req.VariantID, applied)
	span.SetAttributes(
		attribute.Int64("variant_id", req.VariantID),
		attribute.Int("quantity", applied),
	)
	span.SetStatus(codes.Ok, "")
	return view, nil
}

// SetGiftAid sets the gift aid declaration flag
func (s *widgetService) SetGiftAid(ctx context.Context, sessionID string, req *dto.GiftAidRequest) (*dto.WidgetViewResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.widget.set_gift_aid")
	defer span.End()

	span.SetAttributes(attribute.String("session_id", sessionID))

	declared := req != nil && req.Declared

	state, err := s.loadState(ctx, sessionID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	cat := s.catalogStore.Get()
	if declared && !domain.HasEligibleTicket(cat.Variants, state.Items) {
		span.SetStatus(codes.Error, "no eligible ticket")
		return nil, domain.ErrNoEligibleTicket
	}

	toggled := state.GiftAidDeclared != declared
	if toggled {
		state = state.ToggleGiftAid()
	}

	view, err := s.saveAndView(ctx, state)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if toggled {
		metrics.RecordGiftAidToggle(ctx, declared)
	}
	span.SetAttributes(attribute.Bool("declared", declared))
	span.SetStatus(codes.Ok, "")
	return view, nil
}

// Submit commits the ticket ledger to the remote cart
func (s *widgetService) Submit(ctx context.Context, sessionID string) (*dto.SubmitResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.widget.submit")
	defer span.End()

	span.SetAttributes(attribute.String("session_id", sessionID))

	state, err := s.loadState(ctx, sessionID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	now := time.Now()
	if state.SubmitGuardActive(now, s.submitGuardTTL) {
		metrics.RecordSubmitConflict(ctx)
		span.SetStatus(codes.Error, "submit in progress")
		return nil, domain.ErrSubmitInProgress
	}

	cat := s.catalogStore.Get()
	commit, err := cart.BuildCommit(state, cat.Exhibitions)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	// Persist the guard before the remote call so a second submit from
	// another tab is rejected while this one is in flight
	state = state.BeginSubmit(now)
	if err := s.sessionRepo.Save(ctx, state, s.sessionTTL); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	metrics.RecordSubmitStarted(ctx)

	start := time.Now()
	var commitErr error
	switch commit.Kind {
	case cart.CommitAdd:
		commitErr = s.cartClient.Add(ctx, commit.Add)
	case cart.CommitUpdate:
		commitErr = s.cartClient.Update(ctx, commit.Update)
	}
	duration := time.Since(start).Seconds()

	state = state.EndSubmit()
	if commitErr != nil {
		if saveErr := s.sessionRepo.Save(ctx, state, s.sessionTTL); saveErr != nil {
			logger.ErrorCtx(ctx, "failed to release submit guard", zap.Error(saveErr))
		}
		metrics.RecordCartSyncFailure(ctx, "submit")
		span.RecordError(commitErr)
		span.SetStatus(codes.Error, commitErr.Error())
		return nil, commitErr
	}

	if saveErr := s.sessionRepo.Save(ctx, state, s.sessionTTL); saveErr != nil {
		logger.ErrorCtx(ctx, "failed to release submit guard", zap.Error(saveErr))
	}

	// Publish submitted event (async, don't block on failure)
	submitted := state
	go func() {
		if pubErr := s.eventPublisher.PublishBookingSubmitted(context.Background(), submitted, commit.Kind); pubErr != nil {
			logger.Error("failed to publish booking submitted event",
				zap.String("session_id", submitted.SessionID),
				zap.Error(pubErr),
			)
		}
	}()

	metrics.RecordSubmission(ctx, string(commit.Kind), duration)
	span.AddEvent("booking_submitted", trace.WithAttributes(
		attribute.String("commit_kind", string(commit.Kind)),
		attribute.Int("total_quantity", state.AggregateQuantity()),
		attribute.Float64("duration_seconds", duration),
	))
	span.SetStatus(codes.Ok, "")

	return &dto.SubmitResponse{
		Kind:        string(commit.Kind),
		RedirectURL: s.cartRedirectURL,
	}, nil
}

// CheckAvailability reports per-day selectability over a date range.
// Missing bounds default to today and the day before the last bookable
// bound, which is the full calendar the picker needs.
func (s *widgetService) CheckAvailability(ctx context.Context, from, to string) (*dto.AvailabilityResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.widget.check_availability")
	defer span.End()

	cat := s.catalogStore.Get()
	today := time.Now()
	bound := domain.LastBookableExclusive(cat.Exhibitions, today)

	first := domain.DayOf(today)
	if from != "" {
		parsed, err := time.Parse(catalog.DateLayout, from)
		if err != nil {
			span.SetStatus(codes.Error, "invalid from date")
			return nil, domain.ErrInvalidDate
		}
		first = domain.DayOf(parsed)
	}

	last := domain.DayOf(bound).AddDate(0, 0, -1)
	if to != "" {
		parsed, err := time.Parse(catalog.DateLayout, to)
		if err != nil {
			span.SetStatus(codes.Error, "invalid to date")
			return nil, domain.ErrInvalidDate
		}
		last = domain.DayOf(parsed)
	} else if last.Before(first) {
		// The booking window can sit entirely in the past once the final
		// exhibition ends. The default calendar still renders today then,
		// with every day unselectable.
		last = first
	}

	if last.Before(first) {
		span.SetStatus(codes.Error, "empty range")
		return nil, domain.ErrInvalidDate
	}
	// Cap the walk at a year so a stray range cannot produce an
	// unbounded response
	if limit := first.AddDate(1, 0, 0); last.After(limit) {
		last = limit
	}

	days := make([]dto.AvailabilityDay, 0, int(last.Sub(first).Hours()/24)+1)
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		days = append(days, dto.AvailabilityDay{
			Date:            day.Format(catalog.DateLayout),
			Selectable:      domain.IsDateSelectable(day, today, cat.ClosedDates, bound),
			ExhibitionTitle: domain.ExhibitionTitleForDate(day, cat.Exhibitions),
		})
	}

	span.SetAttributes(
		attribute.String("from", days[0].Date),
		attribute.String("to", days[len(days)-1].Date),
		attribute.Int("day_count", len(days)),
	)
	span.SetStatus(codes.Ok, "")
	return &dto.AvailabilityResponse{
		From: days[0].Date,
		To:   days[len(days)-1].Date,
		Days: days,
	}, nil
}

// ValidateSessionToken validates a session token and returns its session ID
func (s *widgetService) ValidateSessionToken(ctx context.Context, tokenString string) (string, error) {
	_, span := telemetry.StartSpan(ctx, "service.widget.validate_token")
	defer span.End()

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(s.tokenSecret), nil
	})
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, jwt.ErrTokenExpired) {
			span.SetStatus(codes.Error, "token expired")
			return "", ErrTokenExpired
		}
		span.SetStatus(codes.Error, "invalid token")
		return "", ErrInvalidToken
	}
	if !token.Valid {
		span.SetStatus(codes.Error, "invalid token")
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		span.SetStatus(codes.Error, "invalid claims")
		return "", ErrInvalidToken
	}
	sessionID, ok := claims["session_id"].(string)
	if !ok || sessionID == "" {
		span.SetStatus(codes.Error, "invalid claims")
		return "", ErrInvalidToken
	}

	span.SetAttributes(attribute.String("session_id", sessionID))
	span.SetStatus(codes.Ok, "")
	return sessionID, nil
}

// loadState fetches the booking state for a session
func (s *widgetService) loadState(ctx context.Context, sessionID string) (domain.BookingState, error) {
	if sessionID == "" {
		return domain.BookingState{}, domain.ErrInvalidSessionID
	}
	return s.sessionRepo.Get(ctx, sessionID)
}

// loadForTicketOp fetches state and catalog for a ticket mutation,
// enforcing the selected-date gate and variant existence
func (s *widgetService) loadForTicketOp(ctx context.Context, sessionID string, variantID int64) (domain.BookingState, domain.Catalog, error) {
	state, err := s.loadState(ctx, sessionID)
	if err != nil {
		return domain.BookingState{}, domain.Catalog{}, err
	}
	if !state.HasSelectedDate() {
		return domain.BookingState{}, domain.Catalog{}, domain.ErrNoDateSelected
	}
	cat := s.catalogStore.Get()
	if _, ok := cat.VariantByID(variantID); !ok {
		return domain.BookingState{}, domain.Catalog{}, domain.ErrUnknownVariant
	}
	return state, cat, nil
}

// saveAndView persists the state and builds the rendering view
func (s *widgetService) saveAndView(ctx context.Context, state domain.BookingState) (*dto.WidgetViewResponse, error) {
	state = state.Touch(time.Now())
	if err := s.sessionRepo.Save(ctx, state, s.sessionTTL); err != nil {
		return nil, err
	}
	view := dto.NewWidgetView(state, s.catalogStore.Get(), s.ticketCap)
	return &view, nil
}

// mintSessionToken signs a session-scoped JWT
func (s *widgetService) mintSessionToken(sessionID string, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(s.tokenTTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":        sessionID,
		"session_id": sessionID,
		"iss":        s.tokenIssuer,
		"exp":        expiresAt.Unix(),
		"iat":        now.Unix(),
	})
	signed, err := token.SignedString([]byte(s.tokenSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}
