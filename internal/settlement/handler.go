package settlement

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/splitsmart/internal/balance"
	"github.com/fkhayef/splitsmart/internal/expense"
	"github.com/fkhayef/splitsmart/pkg/middleware"
	"github.com/fkhayef/splitsmart/pkg/money"
	"github.com/fkhayef/splitsmart/pkg/response"
)

// Membership checks that a member may act on a group
type Membership interface {
	RequireMember(ctx context.Context, groupID int64, email string) error
}

// Handler handles HTTP requests for settlement operations
type Handler struct {
	service    *Service
	membership Membership
}

// NewHandler creates a new settlement handler
func NewHandler(service *Service, membership Membership) *Handler {
	return &Handler{service: service, membership: membership}
}

// Routes returns the router for settlement endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequireMember)

	r.Get("/overview", h.Overview)

	r.Route("/group/{groupId}", func(r chi.Router) {
		r.Use(h.groupAccess)
		r.Get("/balances", h.Balances)
		r.Get("/debts", h.Debts)
		r.Get("/summary", h.Summary)
		r.Post("/settle-up", h.SettleUp)
	})

	return r
}

type groupIDKey struct{}

// groupAccess parses the group id and rejects members outside the group
func (h *Handler) groupAccess(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		groupID, err := strconv.ParseInt(chi.URLParam(r, "groupId"), 10, 64)
		if err != nil {
			response.BadRequest(w, "Invalid group ID")
			return
		}

		actor, _ := middleware.GetMemberEmail(r.Context())
		if err := h.membership.RequireMember(r.Context(), groupID, actor); err != nil {
			writeError(w, err, "Failed to check group membership")
			return
		}

		ctx := context.WithValue(r.Context(), groupIDKey{}, groupID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func groupIDFrom(r *http.Request) int64 {
	id, _ := r.Context().Value(groupIDKey{}).(int64)
	return id
}

// Balances handles GET /settlements/group/{groupId}/balances
// @Summary      Group balances
// @Description  Net balance of every group member; positive means owed, negative means owes
// @Tags         settlements
// @Produce      json
// @Param        X-Member-Email header string true "Acting member"
// @Param        groupId path int true "Group ID"
// @Success      200 {object} response.APIResponse{data=[]BalanceResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      500 {object} response.APIResponse
// @Router       /settlements/group/{groupId}/balances [get]
func (h *Handler) Balances(w http.ResponseWriter, r *http.Request) {
	b, roster, err := h.service.Balances(r.Context(), groupIDFrom(r))
	if err != nil {
		writeError(w, err, "Failed to compute balances")
		return
	}

	response.JSON(w, http.StatusOK, toBalanceResponses(b, roster))
}

// Debts handles GET /settlements/group/{groupId}/debts
// @Summary      Simplified debts
// @Description  Payments that would bring every balance in the group to zero
// @Tags         settlements
// @Produce      json
// @Param        X-Member-Email header string true "Acting member"
// @Param        groupId path int true "Group ID"
// @Success      200 {object} response.APIResponse{data=[]DebtResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      500 {object} response.APIResponse
// @Router       /settlements/group/{groupId}/debts [get]
func (h *Handler) Debts(w http.ResponseWriter, r *http.Request) {
	debts, err := h.service.Debts(r.Context(), groupIDFrom(r))
	if err != nil {
		writeError(w, err, "Failed to simplify debts")
		return
	}

	response.JSON(w, http.StatusOK, toDebtResponses(debts))
}

// Summary handles GET /settlements/group/{groupId}/summary
// @Summary      Group summary
// @Description  Member count, total spent, balances, and simplified debts of a group
// @Tags         settlements
// @Produce      json
// @Param        X-Member-Email header string true "Acting member"
// @Param        groupId path int true "Group ID"
// @Success      200 {object} response.APIResponse{data=SummaryResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      500 {object} response.APIResponse
// @Router       /settlements/group/{groupId}/summary [get]
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.service.Summary(r.Context(), groupIDFrom(r))
	if err != nil {
		writeError(w, err, "Failed to summarize group")
		return
	}

	response.JSON(w, http.StatusOK, sum.ToResponse())
}

// SettleUp handles POST /settlements/group/{groupId}/settle-up
// @Summary      Settle up
// @Description  Record a cash payment from the acting member to another member of the group
// @Tags         settlements
// @Accept       json
// @Produce      json
// @Param        X-Member-Email header string true "Acting member"
// @Param        groupId path int true "Group ID"
// @Param        request body SettleUpRequest true "Payment to record"
// @Success      201 {object} response.APIResponse{data=expense.ExpenseResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Failure      422 {object} response.APIResponse
// @Router       /settlements/group/{groupId}/settle-up [post]
func (h *Handler) SettleUp(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetMemberEmail(r.Context())

	var req SettleUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	var amount int64
	if strings.TrimSpace(req.Amount) != "" {
		cents, err := money.Parse(req.Amount)
		if err != nil {
			response.BadRequest(w, "Invalid amount")
			return
		}
		amount = cents
	}

	to := strings.ToLower(strings.TrimSpace(req.ToEmail))
	payment, err := h.service.SettleUp(r.Context(), groupIDFrom(r), actor, to, amount)
	if err != nil {
		writeError(w, err, "Failed to settle up")
		return
	}

	response.JSON(w, http.StatusCreated, payment.ToResponse())
}

// Overview handles GET /settlements/overview
// @Summary      My overview
// @Description  The acting member's balance and debts in every group they belong to
// @Tags         settlements
// @Produce      json
// @Param        X-Member-Email header string true "Acting member"
// @Success      200 {object} response.APIResponse{data=[]PositionResponse}
// @Failure      500 {object} response.APIResponse
// @Router       /settlements/overview [get]
func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetMemberEmail(r.Context())

	positions, err := h.service.Overview(r.Context(), actor)
	if err != nil {
		writeError(w, err, "Failed to build overview")
		return
	}

	out := make([]*PositionResponse, len(positions))
	for i, p := range positions {
		out[i] = p.ToResponse()
	}
	response.JSON(w, http.StatusOK, out)
}

func writeError(w http.ResponseWriter, err error, fallback string) {
	var inconsistent *balance.InternalConsistencyError
	var unbalanced *UnbalancedLedgerError
	switch {
	case errors.As(err, &inconsistent), errors.As(err, &unbalanced):
		response.InternalError(w, err.Error())
	case errors.Is(err, ErrCannotSettleSelf):
		response.BadRequest(w, err.Error())
	case errors.Is(err, ErrNothingToSettle):
		response.Conflict(w, err.Error())
	default:
		expense.WriteError(w, err, fallback)
	}
}
