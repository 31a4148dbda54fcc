package usecases

import (
	"log/slog"

	"github.com/samirrijal/tripplanner/internal/core/planner"
	"github.com/samirrijal/tripplanner/internal/pkg/metrics"
)

// NewPlannerObserver logs scheduling events at debug level and counts slot misses.
func NewPlannerObserver(logger *slog.Logger) planner.Observer {
	if logger == nil {
		logger = slog.Default()
	}
	return planner.ObserverFunc(func(e planner.Event) {
		switch e.Kind {
		case planner.EventSlotMissed:
			metrics.SlotMisses.WithLabelValues(e.Slot).Inc()
			logger.Debug("slot missed", "day", e.Day, "slot", e.Slot, "clock", e.Clock)
		case planner.EventSlotCommitted:
			logger.Debug("slot committed", "day", e.Day, "slot", e.Slot, "location_id", e.LocationID,
				"clock", e.Clock, "remaining", e.Remaining)
		case planner.EventPhaseStart, planner.EventPhaseEnd:
			logger.Debug(string(e.Kind), "day", e.Day, "phase", e.Phase, "clock", e.Clock)
		case planner.EventDayDone:
			logger.Debug("day scheduled", "day", e.Day, "remaining", e.Remaining)
		}
	})
}
