// Package events forwards the device cloud event stream.
//
// Devices publish named events to the cloud; the cloud exposes them as a
// Server-Sent Events stream at {base}/devices/events/{prefix}. The Watcher
// subscribes to that stream and, for each event:
//   - publishes it as JSON to sparky/event/{core_id}/{name} over MQTT
//   - records it in the InfluxDB spark_events measurement
//
// Either destination is optional.
package events
