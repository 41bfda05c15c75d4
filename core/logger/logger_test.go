package logger

import (
	"testing"

	"log/slog"
)

func TestComponentLoggersUsableBeforeInit(t *testing.T) {
	components := map[string]*slog.Logger{
		"L":          L,
		"DB":         DB,
		"TG":         TG,
		"MIG":        MIG,
		"TWire":      TWire,
		"SEED":       SEED,
		"Flow":       Flow,
		"SVCCatalog": SVCCatalog,
		"SVCLedger":  SVCLedger,
		"SVCRoster":  SVCRoster,
		"Broadcast":  Broadcast,
	}
	for name, lg := range components {
		if lg == nil {
			t.Fatalf("logger %s is nil before InitLogger", name)
		}
	}

	// Logging before InitLogger must not panic; output is discarded.
	Flow.Info("pre-init", slog.String("event", "test"))
	SVCLedger.Warn("pre-init", slog.String("event", "test"))
}
