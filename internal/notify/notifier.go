// Package notify delivers operator alerts about detected arbitrage. Senders
// are pluggable channels; the Notifier fans a message out to all of them and
// filters by event type.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dkotenko/skinarb/internal/domain"
)

// Event types emitted by the analysis service.
const (
	EventOpportunities = "opportunities"
	EventAllocation    = "allocation"
	EventError         = "error"
)

// Sender is one notification channel.
type Sender interface {
	Send(ctx context.Context, title, message string) error
	Name() string
}

// Notifier dispatches notifications to the configured senders. When an event
// allow-list is set, Notify drops events outside it.
type Notifier struct {
	senders []Sender
	events  map[string]bool
	logger  *slog.Logger
}

// NewNotifier creates a Notifier. An empty events list allows everything.
func NewNotifier(senders []Sender, events []string, logger *slog.Logger) *Notifier {
	allowed := make(map[string]bool, len(events))
	for _, e := range events {
		allowed[strings.TrimSpace(e)] = true
	}
	return &Notifier{
		senders: senders,
		events:  allowed,
		logger:  logger.With(slog.String("component", "notifier")),
	}
}

// Notify sends to all senders if the event type passes the filter.
func (n *Notifier) Notify(ctx context.Context, event, title, message string) error {
	if len(n.events) > 0 && !n.events[event] {
		n.logger.DebugContext(ctx, "event filtered out", slog.String("event", event))
		return nil
	}
	return n.dispatch(ctx, title, message)
}

// NotifyOpportunities formats and sends a summary of the top detected
// opportunities. Sends nothing when the slice is empty.
func (n *Notifier) NotifyOpportunities(ctx context.Context, game domain.Game, opps []domain.Opportunity) error {
	if len(opps) == 0 {
		return nil
	}
	title := fmt.Sprintf("Arbitrage: %d cycle(s) on %s", len(opps), game)
	return n.Notify(ctx, EventOpportunities, title, FormatOpportunities(opps, 3))
}

// FormatOpportunities renders a short plain-text summary of up to max
// opportunities, one line per cycle.
func FormatOpportunities(opps []domain.Opportunity, max int) string {
	if max <= 0 || max > len(opps) {
		max = len(opps)
	}
	var b strings.Builder
	for i := 0; i < max; i++ {
		opp := opps[i]
		fmt.Fprintf(&b, "%d. %s: +%.2f%% ($%.2f on $%.2f)\n",
			i+1,
			strings.Join(opp.Path, " -> "),
			opp.ProfitPercent,
			opp.ProfitValue,
			opp.InitialBudget,
		)
	}
	if len(opps) > max {
		fmt.Fprintf(&b, "... and %d more", len(opps)-max)
	}
	return strings.TrimRight(b.String(), "\n")
}

// dispatch fans the message out; one failing sender does not block the rest.
func (n *Notifier) dispatch(ctx context.Context, title, message string) error {
	if len(n.senders) == 0 {
		return nil
	}

	var errs []string
	for _, s := range n.senders {
		if err := s.Send(ctx, title, message); err != nil {
			n.logger.ErrorContext(ctx, "sender failed",
				slog.String("sender", s.Name()),
				slog.String("error", err.Error()),
			)
			errs = append(errs, fmt.Sprintf("%s: %v", s.Name(), err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("notify: %d sender(s) failed: %s", len(errs), strings.Join(errs, "; "))
	}
	return nil
}
