package observability

import (
	"log/slog"
	"strconv"

	"contribledger/core/events"
)

// Emitter publishes ledger events as structured log lines and feeds the
// minted/redeemed counters so dashboards track supply movement.
type Emitter struct {
	log     *slog.Logger
	metrics *LedgerMetrics
}

// NewEmitter wires an event sink backed by the supplied logger. A nil logger
// falls back to the process default.
func NewEmitter(log *slog.Logger) *Emitter {
	if log == nil {
		log = slog.Default()
	}
	return &Emitter{log: log, metrics: Ledger()}
}

func (e *Emitter) Emit(evt events.Event) {
	if evt == nil {
		return
	}
	attrs := evt.Attributes()
	args := make([]any, 0, len(attrs)*2)
	for k, v := range attrs {
		args = append(args, slog.String(k, v))
	}
	e.log.Info(evt.EventType(), args...)

	switch evt.EventType() {
	case events.TypePointsMinted:
		e.metrics.RecordMint(parsePoints(attrs["amount"]))
	case events.TypePointsRedeemed:
		e.metrics.RecordRedemption(parsePoints(attrs["amount"]))
	}
}

func parsePoints(raw string) uint64 {
	points, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0
	}
	return points
}
