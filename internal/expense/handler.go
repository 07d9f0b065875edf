package expense

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/splitsmart/internal/expense/split"
	"github.com/fkhayef/splitsmart/internal/group"
	"github.com/fkhayef/splitsmart/pkg/middleware"
	"github.com/fkhayef/splitsmart/pkg/money"
	"github.com/fkhayef/splitsmart/pkg/response"
)

// Handler handles HTTP requests for expense operations
type Handler struct {
	service *Service
}

// NewHandler creates a new expense handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for expense endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequireMember)

	r.Post("/", h.Create)
	r.Get("/{id}", h.GetByID)

	// Group-based listing
	r.Get("/group/{groupId}", h.ListByGroup)

	return r
}

// Create handles POST /expenses
// @Summary      Record an expense
// @Description  Append an expense to the group ledger, splitting it with the EQUAL, PERCENTAGE, or EXACT strategy
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        X-Member-Email header string true "Acting member"
// @Param        request body CreateExpenseRequest true "Expense creation request"
// @Success      201 {object} response.APIResponse{data=ExpenseResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      422 {object} response.APIResponse
// @Router       /expenses [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetMemberEmail(r.Context())

	var req CreateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.service.RequireMember(r.Context(), req.GroupID, actor); err != nil {
		WriteError(w, err, "Failed to record expense")
		return
	}

	rr, err := req.ToRecordRequest(actor)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	e, err := h.service.Record(r.Context(), req.GroupID, rr)
	if err != nil {
		WriteError(w, err, "Failed to record expense")
		return
	}

	response.JSON(w, http.StatusCreated, e.ToResponse())
}

// GetByID handles GET /expenses/{id}
// @Summary      Get expense by ID
// @Description  Get a ledger entry with all its shares
// @Tags         expenses
// @Produce      json
// @Param        X-Member-Email header string true "Acting member"
// @Param        id path int true "Expense ID"
// @Success      200 {object} response.APIResponse{data=ExpenseResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /expenses/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid expense ID")
		return
	}

	e, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		WriteError(w, err, "Failed to get expense")
		return
	}

	actor, _ := middleware.GetMemberEmail(r.Context())
	if err := h.service.RequireMember(r.Context(), e.GroupID(), actor); err != nil {
		WriteError(w, err, "Failed to get expense")
		return
	}

	response.JSON(w, http.StatusOK, e.ToResponse())
}

// ListByGroup handles GET /expenses/group/{groupId}
// @Summary      List expenses by group
// @Description  Get a paginated list of a group's ledger entries, newest first
// @Tags         expenses
// @Produce      json
// @Param        X-Member-Email header string true "Acting member"
// @Param        groupId path int true "Group ID"
// @Param        page query int false "Page number" default(1)
// @Param        per_page query int false "Items per page" default(20)
// @Success      200 {object} response.APIResponse{data=[]ExpenseResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /expenses/group/{groupId} [get]
func (h *Handler) ListByGroup(w http.ResponseWriter, r *http.Request) {
	groupID, err := strconv.ParseInt(chi.URLParam(r, "groupId"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	actor, _ := middleware.GetMemberEmail(r.Context())
	if err := h.service.RequireMember(r.Context(), groupID, actor); err != nil {
		WriteError(w, err, "Failed to list expenses")
		return
	}

	page, perPage := response.Pagination(r)
	expenses, total, err := h.service.ListByGroup(r.Context(), groupID, page, perPage)
	if err != nil {
		response.InternalError(w, "Failed to list expenses")
		return
	}

	expenseResponses := make([]*ExpenseResponse, len(expenses))
	for i, e := range expenses {
		expenseResponses[i] = e.ToResponse()
	}

	response.JSONWithMeta(w, http.StatusOK, expenseResponses, response.NewMeta(page, perPage, total))
}

// WriteError maps ledger and roster errors onto HTTP responses
func WriteError(w http.ResponseWriter, err error, fallback string) {
	var invalid *split.InvalidSplitError
	switch {
	case errors.As(err, &invalid):
		response.UnprocessableEntity(w, invalid.Error())
	case errors.Is(err, ErrParticipantNotInGroup):
		response.UnprocessableEntity(w, err.Error())
	case errors.Is(err, ErrPayerRequired), errors.Is(err, ErrUnknownKind), errors.Is(err, money.ErrInvalidAmount):
		response.BadRequest(w, err.Error())
	case errors.Is(err, ErrExpenseNotFound), errors.Is(err, group.ErrGroupNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, group.ErrNotGroupMember):
		response.Forbidden(w, err.Error())
	default:
		response.InternalError(w, fallback)
	}
}
