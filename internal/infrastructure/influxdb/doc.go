// Package influxdb writes shell lifecycle metrics to InfluxDB.
//
// It wraps the official influxdb-client-go v2 library with connection
// management, batched non-blocking writes and a health check for the
// shell status endpoint.
//
// # Usage
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.WriteLifecycle(influxdb.Lifecycle{
//	    Session:  session,
//	    Kind:     "backend_exited",
//	    ExitCode: &code,
//	})
//
// # Error Handling
//
// Writes are batched and sent asynchronously; their errors reach the
// SetOnError callback. Connection and health check errors are returned
// directly.
package influxdb
