package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"conveyease/internal/adapters/http/middleware"
	"conveyease/internal/core/domain"
	"conveyease/internal/core/services"
	"conveyease/internal/core/workflow"
	"conveyease/internal/pkg/pagination"
	"conveyease/internal/pkg/response"
)

// BillHandler handles bill endpoints
type BillHandler struct {
	billService *services.BillService
}

// NewBillHandler creates a new bill handler
func NewBillHandler(billService *services.BillService) *BillHandler {
	return &BillHandler{billService: billService}
}

// TransitionRequest represents a status change request body
type TransitionRequest struct {
	Status  string  `json:"status" validate:"required"`
	Comment *string `json:"comment" validate:"omitempty,max=1000"`
}

// CommentRequest is the body of the approve/reject shortcuts
type CommentRequest struct {
	Comment *string `json:"comment" validate:"omitempty,max=1000"`
}

// OptionResponse is one transition the caller may apply
type OptionResponse struct {
	Status          domain.BillStatus `json:"status"`
	StatusLabel     string            `json:"status_label"`
	CommentRequired bool              `json:"comment_required"`
}

// ListBills handles listing visible bills
// @Summary List bills
// @Description Bills visible to the caller, in creation order
// @Tags Bills
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /bills [get]
func (h *BillHandler) ListBills(c *fiber.Ctx) error {
	actor, ok := middleware.Actor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	params := pagination.GetParams(c)
	filter := services.BillFilter{Offset: params.Offset, Limit: params.Limit}
	if raw := c.Query("status"); raw != "" {
		status, err := domain.ParseBillStatus(raw)
		if err != nil {
			return response.BadRequest(c, err.Error())
		}
		filter.Status = &status
	}

	bills, total, err := h.billService.List(c.Context(), actor, filter)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, "Bills retrieved successfully",
		pagination.NewResponse(services.ToBillResponses(bills), params, total))
}

// CreateBill handles filing a new bill
// @Summary Create bill
// @Description File a conveyance bill. Amount may be omitted when items are given.
// @Tags Bills
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateBillInput true "Bill data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /bills [post]
func (h *BillHandler) CreateBill(c *fiber.Ctx) error {
	actor, ok := middleware.Actor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req services.CreateBillInput
	if err := bind(c, &req); err != nil {
		return response.BadRequest(c, err.Error())
	}

	bill, err := h.billService.Create(c.Context(), actor, &req)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Created(c, "Bill created successfully", services.ToBillResponse(bill))
}

// GetBill handles getting a bill by ID
// @Summary Get bill
// @Tags Bills
// @Produce json
// @Security BearerAuth
// @Param id path string true "Bill ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /bills/{id} [get]
func (h *BillHandler) GetBill(c *fiber.Ctx) error {
	actor, ok := middleware.Actor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	bill, err := h.billService.Get(c.Context(), actor, c.Params("id"))
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, "Bill retrieved successfully", services.ToBillResponse(bill))
}

// GetHistory handles the audit trail of a bill
// @Summary Bill history
// @Description Chronological status changes with actor names and comments
// @Tags Bills
// @Produce json
// @Security BearerAuth
// @Param id path string true "Bill ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /bills/{id}/history [get]
func (h *BillHandler) GetHistory(c *fiber.Ctx) error {
	actor, ok := middleware.Actor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	history, err := h.billService.History(c.Context(), actor, c.Params("id"))
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, "History retrieved successfully", history)
}

// GetActions lists the transitions the caller may apply
// @Summary Available actions
// @Tags Bills
// @Produce json
// @Security BearerAuth
// @Param id path string true "Bill ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /bills/{id}/actions [get]
func (h *BillHandler) GetActions(c *fiber.Ctx) error {
	actor, ok := middleware.Actor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	opts, err := h.billService.Options(c.Context(), actor, c.Params("id"))
	if err != nil {
		return response.FromError(c, err)
	}

	out := make([]OptionResponse, 0, len(opts))
	for _, o := range opts {
		out = append(out, OptionResponse{
			Status:          o.Target,
			StatusLabel:     o.Target.Label(),
			CommentRequired: o.CommentRequired,
		})
	}
	return response.Success(c, "Actions retrieved successfully", out)
}

// Transition handles a status change
// @Summary Change bill status
// @Description Apply a transition allowed by the approval workflow. Rejections need a comment.
// @Tags Bills
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Bill ID"
// @Param body body TransitionRequest true "Target status"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /bills/{id}/transitions [post]
func (h *BillHandler) Transition(c *fiber.Ctx) error {
	var req TransitionRequest
	if err := bind(c, &req); err != nil {
		return response.BadRequest(c, err.Error())
	}
	target, err := domain.ParseBillStatus(req.Status)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}
	return h.apply(c, target, req.Comment)
}

// Approve handles the approval shortcut for the caller's role
// @Summary Approve bill
// @Tags Bills
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Bill ID"
// @Param body body CommentRequest false "Optional comment"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /bills/{id}/approve [post]
func (h *BillHandler) Approve(c *fiber.Ctx) error {
	return h.shortcut(c, workflow.ApprovalFor)
}

// Reject handles the rejection shortcut for the caller's role
// @Summary Reject bill
// @Tags Bills
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Bill ID"
// @Param body body CommentRequest true "Rejection reason"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /bills/{id}/reject [post]
func (h *BillHandler) Reject(c *fiber.Ctx) error {
	return h.shortcut(c, workflow.RejectionFor)
}

// Pay marks a bill as paid
// @Summary Mark bill paid
// @Tags Bills
// @Produce json
// @Security BearerAuth
// @Param id path string true "Bill ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /bills/{id}/pay [post]
func (h *BillHandler) Pay(c *fiber.Ctx) error {
	return h.apply(c, domain.StatusPaid, nil)
}

// Resubmit sends a draft or rejected bill back into the pipeline
// @Summary Resubmit bill
// @Tags Bills
// @Produce json
// @Security BearerAuth
// @Param id path string true "Bill ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /bills/{id}/resubmit [post]
// @Router /bills/{id}/submit [post]
func (h *BillHandler) Resubmit(c *fiber.Ctx) error {
	return h.apply(c, domain.StatusSubmitted, nil)
}

func (h *BillHandler) shortcut(c *fiber.Ctx, targetFor func(domain.Role) (domain.BillStatus, bool)) error {
	actor, ok := middleware.Actor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req CommentRequest
	if len(c.Body()) > 0 {
		if err := bind(c, &req); err != nil {
			return response.BadRequest(c, err.Error())
		}
	}

	target, ok := targetFor(actor.Role)
	if !ok {
		return response.FromError(c, fmt.Errorf("%w: %s cannot take this action", domain.ErrUnauthorized, actor.Role))
	}
	return h.apply(c, target, req.Comment)
}

func (h *BillHandler) apply(c *fiber.Ctx, target domain.BillStatus, comment *string) error {
	actor, ok := middleware.Actor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	bill, err := h.billService.Transition(c.Context(), actor, c.Params("id"), target, comment)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, fmt.Sprintf("Bill moved to %s", bill.Status.Label()), services.ToBillResponse(bill))
}
