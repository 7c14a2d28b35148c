// Package diagnostics collects failures reported by the device cloud client.
//
// The client calls Sink.Report(code, message) for every failed operation. The
// call is fire-and-forget: a sink must not block for long and never affects
// the Result the caller receives.
//
// Sinks:
//   - LogSink writes a warning per report
//   - MQTTSink publishes each report to sparky/diagnostics/{code}
//   - Collector keeps the most recent reports for the admin API
//   - Multi fans a report out to several sinks
package diagnostics
