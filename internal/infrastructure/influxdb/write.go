package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// LifecycleMeasurement is the measurement lifecycle points are written to.
const LifecycleMeasurement = "shell_lifecycle"

// Lifecycle is one shell lifecycle occurrence as a metric point.
type Lifecycle struct {
	Session string
	Kind    string
	State   string

	// PID is written when non-zero.
	PID int

	// ExitCode is written when set.
	ExitCode *int

	Time time.Time
}

// WriteLifecycle queues a lifecycle point. Session and kind are tags; the
// count field is always 1 so kinds can be summed over time.
func (c *Client) WriteLifecycle(l Lifecycle) {
	if !c.isConnected() {
		return
	}

	fields := map[string]any{"count": 1}
	if l.PID != 0 {
		fields["pid"] = l.PID
	}
	if l.ExitCode != nil {
		fields["exit_code"] = *l.ExitCode
	}

	at := l.Time
	if at.IsZero() {
		at = time.Now()
	}

	tags := map[string]string{
		"session": l.Session,
		"kind":    l.Kind,
		"state":   l.State,
	}
	c.writeAPI.WritePoint(write.NewPoint(LifecycleMeasurement, tags, fields, at))
}
