// Package mqtt publishes shell lifecycle telemetry to an MQTT broker.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Retained online/offline status with a Last Will for crash detection
//   - Publishing lifecycle events as JSON
//   - Connection health checks
//
// Telemetry is optional and publish-only. A broker that is down or
// unreachable never blocks the shell; publish errors are returned to the
// caller, which logs them.
//
// # Topics
//
//	<prefix>/<client_id>/status           retained online/offline
//	<prefix>/<client_id>/event/<kind>     one message per lifecycle event
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	topic := client.Topics().Event("backend_exited")
//	client.Publish(topic, payload, 1, false)
package mqtt
