// Package mqtt publishes Sparky's diagnostics and device events to an MQTT broker.
//
// The client is publish-only. It manages:
//   - Connection to the broker with auto-reconnect
//   - A retained status on sparky/system/status, with a Last Will so
//     subscribers notice a crash
//   - Topic builders for the sparky/ tree
//
// # Topics
//
//	sparky/system/status              retained online/offline
//	sparky/diagnostics/{code}         one message per failed cloud call
//	sparky/event/{core_id}/{name}     device events from the cloud stream
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.PublishJSON(mqtt.Topics{}.Diagnostic("http_error"), report)
package mqtt
