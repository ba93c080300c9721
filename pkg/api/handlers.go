package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/lisabeyy/loofta-pay-public-sub001/pkg/address"
	"github.com/lisabeyy/loofta-pay-public-sub001/pkg/fees"
	"github.com/lisabeyy/loofta-pay-public-sub001/pkg/parser"
	"github.com/lisabeyy/loofta-pay-public-sub001/pkg/repository"
	"github.com/lisabeyy/loofta-pay-public-sub001/pkg/status"
)

// Error codes returned alongside the error message
const (
	CodeInvalidInput       = "INVALID_INPUT"
	CodeBelowMinimumAmount = "BELOW_MINIMUM_AMOUNT"
)

// StatusGetter fetches and normalizes the status of a deposit address
type StatusGetter interface {
	Get(ctx context.Context, depositAddress string) (*status.NormalizedExecutionStatus, error)
}

// HistoryStore lists recorded snapshots
type HistoryStore interface {
	History(ctx context.Context, depositAddress string, limit int) ([]repository.Snapshot, error)
}

// DecimalsResolver looks up an asset's base-unit precision
type DecimalsResolver interface {
	AssetDecimals(ctx context.Context, symbol, chain string) (int32, error)
}

// Handlers groups all HTTP handler methods and their dependencies.
type Handlers struct {
	status          StatusGetter
	history         HistoryStore
	decimals        DecimalsResolver
	schedule        fees.FeeSchedule
	defaultDecimals int32
	log             *slog.Logger
}

// --- helpers ---

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("encode response", slog.Any("error", err))
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *Handlers) writeCodedError(w http.ResponseWriter, status int, code, msg string, extra map[string]any) {
	body := map[string]any{"error": msg, "code": code}
	for k, v := range extra {
		body[k] = v
	}
	h.writeJSON(w, status, body)
}

// --- GetStatus ---

func (h *Handlers) GetStatus(w http.ResponseWriter, r *http.Request) {
	depositAddress := strings.TrimSpace(r.URL.Query().Get("depositAddress"))
	if depositAddress == "" {
		h.writeError(w, http.StatusBadRequest, "depositAddress query parameter is required")
		return
	}

	st, err := h.status.Get(r.Context(), depositAddress)
	if err != nil {
		h.log.Error("status fetch failed",
			slog.String("deposit_address", depositAddress),
			slog.Any("error", err),
		)
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, st)
}

// --- GetStatusHistory ---

type historyResponse struct {
	DepositAddress string                `json:"depositAddress"`
	Snapshots      []repository.Snapshot `json:"snapshots"`
}

func (h *Handlers) GetStatusHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	depositAddress := strings.TrimSpace(q.Get("depositAddress"))
	if depositAddress == "" {
		h.writeError(w, http.StatusBadRequest, "depositAddress query parameter is required")
		return
	}
	if h.history == nil {
		h.writeError(w, http.StatusNotImplemented, "status history is not enabled")
		return
	}

	limit := 0
	if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			h.writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	snapshots, err := h.history.History(r.Context(), depositAddress, limit)
	if err != nil {
		h.log.Error("status history failed", slog.String("deposit_address", depositAddress), slog.Any("error", err))
		h.writeError(w, http.StatusInternalServerError, "failed to load status history")
		return
	}

	h.writeJSON(w, http.StatusOK, historyResponse{DepositAddress: depositAddress, Snapshots: snapshots})
}

// --- PlanWithdrawal ---

type planRequest struct {
	Amount    json.RawMessage `json:"amount"`
	Mode      string          `json:"mode"`
	Decimals  *int32          `json:"decimals"`
	Asset     string          `json:"asset"`
	Chain     string          `json:"chain"`
	Recipient string          `json:"recipient"`
}

type planResponse struct {
	Mode              fees.Mode        `json:"mode"`
	Asset             string           `json:"asset,omitempty"`
	Recipient         string           `json:"recipient,omitempty"`
	RequestedAmount   decimal.Decimal  `json:"requestedAmount"`
	GrossAmount       decimal.Decimal  `json:"grossAmount"`
	GrossBaseUnits    string           `json:"grossBaseUnits"`
	ImpliedFee        decimal.Decimal  `json:"impliedFee"`
	RecipientReceives decimal.Decimal  `json:"recipientReceives"`
	Decimals          int32            `json:"decimals"`
	Schedule          fees.FeeSchedule `json:"schedule"`
}

// amountText accepts the amount as a JSON string or number
func amountText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func (h *Handlers) PlanWithdrawal(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeCodedError(w, http.StatusBadRequest, CodeInvalidInput, "invalid JSON body: "+err.Error(), nil)
		return
	}

	amount, err := parser.ParseAmount(amountText(req.Amount))
	if err != nil {
		h.writeCodedError(w, http.StatusBadRequest, CodeInvalidInput, err.Error(), nil)
		return
	}

	mode, err := fees.ParseMode(req.Mode)
	if err != nil {
		h.writeCodedError(w, http.StatusBadRequest, CodeInvalidInput, err.Error(), nil)
		return
	}

	if req.Recipient != "" {
		if err := address.Validate(req.Chain, req.Recipient); err != nil {
			h.writeCodedError(w, http.StatusBadRequest, CodeInvalidInput, err.Error(), nil)
			return
		}
	}

	decimals := h.defaultDecimals
	switch {
	case req.Decimals != nil:
		decimals = *req.Decimals
	case req.Asset != "" && h.decimals != nil:
		decimals, err = h.decimals.AssetDecimals(r.Context(), req.Asset, req.Chain)
		if err != nil {
			h.writeCodedError(w, http.StatusBadRequest, CodeInvalidInput, err.Error(), nil)
			return
		}
	}

	plan, err := fees.Compute(mode, amount, h.schedule, decimals)
	switch {
	case errors.Is(err, fees.ErrBelowMinimumAmount):
		h.writeCodedError(w, http.StatusUnprocessableEntity, CodeBelowMinimumAmount, err.Error(),
			map[string]any{"minimum": h.schedule.MinimumNet})
		return
	case err != nil:
		h.writeCodedError(w, http.StatusBadRequest, CodeInvalidInput, err.Error(), nil)
		return
	}

	h.log.Info("withdrawal plan computed",
		slog.String("mode", string(plan.Mode)),
		slog.String("requested", plan.RequestedAmount.String()),
		slog.String("gross", plan.GrossAmount.String()),
		slog.String("implied_fee", plan.ImpliedFee.String()),
	)

	h.writeJSON(w, http.StatusOK, planResponse{
		Mode:              plan.Mode,
		Asset:             strings.ToUpper(req.Asset),
		Recipient:         req.Recipient,
		RequestedAmount:   plan.RequestedAmount,
		GrossAmount:       plan.GrossAmount,
		GrossBaseUnits:    plan.GrossBaseUnits.String(),
		ImpliedFee:        plan.ImpliedFee,
		RecipientReceives: plan.RecipientReceives,
		Decimals:          plan.Decimals,
		Schedule:          h.schedule,
	})
}

// --- Health ---

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
