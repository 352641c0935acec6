package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dkotenko/skinarb/internal/domain"
)

// OptionSource produces cross-marketplace arbitrage options for a game.
// Satisfied by integrator.Integrator.
type OptionSource interface {
	GetCrossPlatformArbitrage(ctx context.Context, game domain.Game, forceUpdate bool) []domain.SkinArbitrageOption
}

// HistorySource lists previously persisted opportunities. Satisfied by
// service.AnalysisService.
type HistorySource interface {
	Recent(ctx context.Context, limit int) ([]domain.Opportunity, error)
}

// OpportunityHandler serves opportunity discovery and history endpoints.
type OpportunityHandler struct {
	options OptionSource
	history HistorySource
	logger  *slog.Logger
}

// NewOpportunityHandler creates an OpportunityHandler.
func NewOpportunityHandler(options OptionSource, history HistorySource, logger *slog.Logger) *OpportunityHandler {
	return &OpportunityHandler{options: options, history: history, logger: logger}
}

// ListOptions returns current cross-marketplace arbitrage options for a game.
// GET /api/opportunities?game=a8db&force=true
func (h *OpportunityHandler) ListOptions(w http.ResponseWriter, r *http.Request) {
	game := domain.Game(r.URL.Query().Get("game"))
	if game == "" {
		game = domain.GameCS2
	}
	force := r.URL.Query().Get("force") == "true"

	opts := h.options.GetCrossPlatformArbitrage(r.Context(), game, force)
	if opts == nil {
		opts = []domain.SkinArbitrageOption{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"game":    game,
		"options": opts,
	})
}

// ListRecent returns the most recently persisted opportunities.
// GET /api/arbitrage/recent?limit=20
func (h *OpportunityHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	limit := queryLimit(r, 20, 200)

	opps, err := h.history.Recent(r.Context(), limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list recent opportunities failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list opportunities")
		return
	}
	if opps == nil {
		opps = []domain.Opportunity{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"opportunities": opps})
}
