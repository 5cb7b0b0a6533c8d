package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/oldgate-museum/booking-widget/internal/domain"
	"github.com/oldgate-museum/booking-widget/internal/dto"
	"github.com/oldgate-museum/booking-widget/internal/middleware"
	"github.com/oldgate-museum/booking-widget/internal/service"
	"github.com/oldgate-museum/booking-widget/pkg/logger"
	"github.com/oldgate-museum/booking-widget/pkg/response"
	"github.com/oldgate-museum/booking-widget/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// WidgetHandler handles widget HTTP requests
type WidgetHandler struct {
	widgetService service.WidgetService
}

// NewWidgetHandler creates a new widget handler
func NewWidgetHandler(widgetService service.WidgetService) *WidgetHandler {
	return &WidgetHandler{widgetService: widgetService}
}

// StartSession handles POST /sessions
func (h *WidgetHandler) StartSession(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.widget.start_session")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	// The body is optional and a malformed snapshot is not an error:
	// the session starts from an empty cart instead
	var req dto.StartSessionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			span.RecordError(err)
			logger.WarnCtx(ctx, "malformed cart snapshot in session start", zap.Error(err))
			req = dto.StartSessionRequest{}
		}
	}

	result, err := h.widgetService.StartSession(ctx, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Created(c, result)
}

// GetView handles GET /session
func (h *WidgetHandler) GetView(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.widget.get_view")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	sessionID := c.GetString(middleware.SessionIDKey)

	result, err := h.widgetService.GetView(ctx, sessionID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// SelectDate handles POST /session/date
func (h *WidgetHandler) SelectDate(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.widget.select_date")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	sessionID := c.GetString(middleware.SessionIDKey)

	var req dto.SelectDateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body", err.Error())
		return
	}

	span.SetAttributes(attribute.String("visit_date", req.Date))

	result, err := h.widgetService.SelectDate(ctx, sessionID, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// ResetDate handles DELETE /session/date
func (h *WidgetHandler) ResetDate(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.widget.reset_date")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	sessionID := c.GetString(middleware.SessionIDKey)

	result, err := h.widgetService.ResetDate(ctx, sessionID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// AddTicket handles POST /session/tickets/add
func (h *WidgetHandler) AddTicket(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.widget.add_ticket")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	sessionID := c.GetString(middleware.SessionIDKey)

	var req dto.TicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body", err.Error())
		return
	}

	span.SetAttributes(attribute.Int64("variant_id", req.VariantID))

	result, err := h.widgetService.AddTicket(ctx, sessionID, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// RemoveTicket handles POST /session/tickets/remove
func (h *WidgetHandler) RemoveTicket(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.widget.remove_ticket")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	sessionID := c.GetString(middleware.SessionIDKey)

	var req dto.TicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body", err.Error())
		return
	}

	span.SetAttributes(attribute.Int64("variant_id", req.VariantID))

	result, err := h.widgetService.RemoveTicket(ctx, sessionID, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// SetTicketQuantity handles PUT /session/tickets
func (h *WidgetHandler) SetTicketQuantity(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.widget.set_quantity")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	sessionID := c.GetString(middleware.SessionIDKey)

	var req dto.SetQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body", err.Error())
		return
	}

	span.SetAttributes(
		attribute.Int64("variant_id", req.VariantID),
		attribute.String("quantity", req.Quantity),
	)

	result, err := h.widgetService.SetTicketQuantity(ctx, sessionID, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// SetGiftAid handles POST /session/gift-aid
func (h *WidgetHandler) SetGiftAid(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.widget.set_gift_aid")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	sessionID := c.GetString(middleware.SessionIDKey)

	var req dto.GiftAidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body", err.Error())
		return
	}

	span.SetAttributes(attribute.Bool("declared", req.Declared))

	result, err := h.widgetService.SetGiftAid(ctx, sessionID, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// Submit handles POST /session/submit
func (h *WidgetHandler) Submit(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.widget.submit")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	sessionID := c.GetString(middleware.SessionIDKey)

	result, err := h.widgetService.Submit(ctx, sessionID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.handleError(c, err)
		return
	}

	span.SetAttributes(attribute.String("commit_kind", result.Kind))
	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// CheckAvailability handles GET /availability
func (h *WidgetHandler) CheckAvailability(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.widget.check_availability")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	from := c.Query("from")
	to := c.Query("to")
	span.SetAttributes(
		attribute.String("from", from),
		attribute.String("to", to),
	)

	result, err := h.widgetService.CheckAvailability(ctx, from, to)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// handleError maps domain errors to HTTP status codes
func (h *WidgetHandler) handleError(c *gin.Context, err error) {
	switch {
	case domain.IsNotFoundError(err):
		response.Error(c, http.StatusNotFound, "SESSION_NOT_FOUND", err.Error(), "")
	case domain.IsConflictError(err):
		response.Error(c, http.StatusConflict, "SUBMIT_IN_PROGRESS", err.Error(), "")
	case domain.IsRemoteCartError(err):
		response.Error(c, http.StatusBadGateway, "REMOTE_CART_FAILED", err.Error(), "")
	case domain.IsValidationError(err):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), "")
	default:
		response.InternalError(c, err)
	}
}
