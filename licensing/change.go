package licensing

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
)

// CounterChange is the typed record of one committed change to a pool's
// counters, emitted by UpdateAvailability. Old and New carry the full
// before/after picture so consumers can derive per-counter movement without
// another pool read.
type CounterChange struct {
	PoolID     uuid.UUID `json:"pool_id"`
	Identifier string    `json:"identifier"`
	AsOf       time.Time `json:"as_of"`
	Old        Counters  `json:"old"`
	New        Counters  `json:"new"`
}

// PayloadJSON serializes the change for analytics pipelines.
func (c CounterChange) PayloadJSON() ([]byte, error) {
	return jsoniter.ConfigFastest.Marshal(c)
}

// LoggingChangeRecorder renders counter changes through a Logger, one
// key-value pair per counter that moved. It is the default ChangeRecorder
// for deployments without an analytics pipeline.
type LoggingChangeRecorder struct {
	logger Logger
}

// NewLoggingChangeRecorder creates a ChangeRecorder backed by the given Logger.
func NewLoggingChangeRecorder(logger Logger) *LoggingChangeRecorder {
	return &LoggingChangeRecorder{logger: logger}
}

// RecordCounterChange logs the changed counters at info level.
func (r *LoggingChangeRecorder) RecordCounterChange(change CounterChange) {
	if r.logger == nil {
		return
	}

	args := []any{"pool", change.Identifier}

	appendMovement := func(name string, oldValue int, newValue int) {
		if oldValue != newValue {
			args = append(args, name, counterMovement(oldValue, newValue))
		}
	}

	appendMovement("owned", change.Old.Owned, change.New.Owned)
	appendMovement("available", change.Old.Available, change.New.Available)
	appendMovement("reserved", change.Old.Reserved, change.New.Reserved)
	appendMovement("hold_queue", change.Old.HoldQueue, change.New.HoldQueue)

	r.logger.Info("license pool circulation changed", args...)
}

func counterMovement(oldValue int, newValue int) string {
	return strconv.Itoa(oldValue) + "=>" + strconv.Itoa(newValue)
}
