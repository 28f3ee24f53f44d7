package commands

import (
	"fmt"
	"io"

	"github.com/vsinha/prodplan/pkg/infrastructure/events"
	"go.uber.org/zap"
)

var runEventTypes = []string{
	events.OptimizationStartedEvent,
	events.ProductionPlannedEvent,
	events.OptimizationCompletedEvent,
	events.OptimizationRejectedEvent,
}

// subscribeEventLog forwards every run event to logger
func subscribeEventLog(store events.EventStore, logger *zap.Logger) error {
	return store.Subscribe(runEventTypes, &events.HandlerFunc{
		Types: runEventTypes,
		Fn: func(e events.Event) error {
			logger.Info("run event",
				zap.String("event_type", e.Type()),
				zap.String("run_id", e.StreamID()),
				zap.Int("version", e.Version()),
				zap.Any("data", e.Data()))
			return nil
		},
	})
}

// printRunEvents writes the recorded run events in append order
func printRunEvents(w io.Writer, store events.EventStore) error {
	recorded, err := store.ReadAllEvents(0)
	if err != nil {
		return fmt.Errorf("failed to read run events: %w", err)
	}
	if len(recorded) == 0 {
		return nil
	}

	fmt.Fprintf(w, "📜 Run Events:\n")
	for _, e := range recorded {
		fmt.Fprintf(w, "%3d  %-24s %s\n", e.Version(), e.Type(), describeEvent(e))
	}
	fmt.Fprintln(w)
	return nil
}

func describeEvent(e events.Event) string {
	switch data := e.Data().(type) {
	case events.OptimizationStarted:
		return fmt.Sprintf("source=%s raw_materials=%d products=%d", data.Source, data.RawMaterials, data.Products)
	case events.ProductionPlanned:
		return fmt.Sprintf("%s x%d = %s", data.Entry.ProductCode, data.Entry.Quantity, data.Entry.TotalValue.StringFixed(2))
	case events.OptimizationCompleted:
		return fmt.Sprintf("grand_total=%s units=%d", data.GrandTotal.StringFixed(2), data.TotalUnits)
	case events.OptimizationRejected:
		return fmt.Sprintf("reason=%s problems=%d", data.Reason, len(data.Errors))
	default:
		return ""
	}
}
