package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dkotenko/skinarb/internal/allocator"
	"github.com/dkotenko/skinarb/internal/domain"
)

// AllocationHandler computes budget allocations for caller-supplied cycles.
type AllocationHandler struct {
	logger *slog.Logger
}

// NewAllocationHandler creates an AllocationHandler.
func NewAllocationHandler(logger *slog.Logger) *AllocationHandler {
	return &AllocationHandler{logger: logger}
}

// allocationRequest is the POST /api/allocation body.
type allocationRequest struct {
	Budget              float64             `json:"budget"`
	Cycles              []domain.TradeCycle `json:"cycles"`
	MaxRisk             float64             `json:"max_risk,omitempty"`
	MinAllocation       float64             `json:"min_allocation,omitempty"`
	MaxAllocationPerCyc float64             `json:"max_allocation_per_cycle,omitempty"`
}

// allocationResponse carries the computed plan.
type allocationResponse struct {
	Allocations map[string]float64       `json:"allocations"`
	Metrics     domain.AllocationMetrics `json:"metrics"`
}

// Allocate runs the greedy allocator over the submitted cycles.
// POST /api/allocation
func (h *AllocationHandler) Allocate(w http.ResponseWriter, r *http.Request) {
	var req allocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Budget <= 0 {
		writeError(w, http.StatusBadRequest, "budget must be positive")
		return
	}

	// Re-construct through the clamping constructor so hand-crafted request
	// bodies cannot smuggle negative costs or out-of-range risk scores.
	cycles := make([]domain.TradeCycle, 0, len(req.Cycles))
	for _, c := range req.Cycles {
		cycles = append(cycles, domain.NewTradeCycle(
			c.CycleID, c.Items, c.ProfitPercent, c.Cost, c.RiskScore, c.ExpectedDuration,
		))
	}

	allocations, metrics := allocator.GetOptimizedAllocation(cycles, req.Budget, allocator.Options{
		MaxRisk:             req.MaxRisk,
		MinAllocation:       req.MinAllocation,
		MaxAllocationPerCyc: req.MaxAllocationPerCyc,
	})

	h.logger.InfoContext(r.Context(), "handler: allocation computed",
		slog.Int("cycles", len(cycles)),
		slog.Float64("budget", req.Budget),
		slog.Float64("allocated", metrics.AllocatedBudget),
	)

	writeJSON(w, http.StatusOK, allocationResponse{
		Allocations: allocations,
		Metrics:     metrics,
	})
}
