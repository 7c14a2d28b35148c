// Package influxdb records device readings in InfluxDB v2.
//
// It wraps the official influxdb-client-go v2 library. Two measurements are
// written:
//   - spark_variables: numeric variable values fetched live from the cloud,
//     tagged spark_id, core_id and variable
//   - spark_events: events received from the device event stream, tagged
//     core_id and event
//
// Cached reads are never written, so every point is a real observation.
//
// # Usage
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.WriteVariableReading("living-room", "53ff6f06", "temperature", 21.5, time.Now())
package influxdb
