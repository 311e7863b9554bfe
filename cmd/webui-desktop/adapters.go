package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nerrad567/webui-desktop/internal/infrastructure/influxdb"
	"github.com/nerrad567/webui-desktop/internal/infrastructure/mqtt"
	"github.com/nerrad567/webui-desktop/internal/shell"
)

// eventPublisher is the part of the MQTT client the sink uses.
type eventPublisher interface {
	Topics() mqtt.Topics
	QoS() byte
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// mqttSink adapts the infrastructure MQTT client to the shell's EventSink.
type mqttSink struct {
	client eventPublisher
}

// Record publishes ev as JSON on the event topic for its kind.
func (s *mqttSink) Record(ctx context.Context, ev shell.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}
	return s.client.Publish(s.client.Topics().Event(string(ev.Kind)), payload, s.client.QoS(), false)
}

// lifecycleWriter is the part of the InfluxDB client the sink uses.
type lifecycleWriter interface {
	WriteLifecycle(l influxdb.Lifecycle)
}

// influxSink adapts the InfluxDB client to the shell's EventSink.
type influxSink struct {
	client lifecycleWriter
}

// Record queues ev as a lifecycle point. The write itself is asynchronous.
func (s *influxSink) Record(ctx context.Context, ev shell.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.client.WriteLifecycle(influxdb.Lifecycle{
		Session:  ev.Session,
		Kind:     string(ev.Kind),
		State:    string(ev.State),
		PID:      ev.PID,
		ExitCode: ev.ExitCode,
		Time:     ev.Time,
	})
	return nil
}
