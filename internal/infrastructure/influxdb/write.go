package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names written by Sparky.
const (
	MeasurementVariables = "spark_variables"
	MeasurementEvents    = "spark_events"
)

// WriteVariableReading records a live numeric variable read.
//
// Parameters:
//   - sparkID: Configured spark the read was made for
//   - coreID: Device the value came from
//   - variable: Variable name on the device
//   - value: The reading
//   - at: When the value was read
func (c *Client) WriteVariableReading(sparkID, coreID, variable string, value float64, at time.Time) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(variablePoint(sparkID, coreID, variable, value, at))
}

// WriteDeviceEvent records an event from the device cloud stream.
// The event payload is kept as a string field.
func (c *Client) WriteDeviceEvent(coreID, name, data string, at time.Time) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(eventPoint(coreID, name, data, at))
}

func variablePoint(sparkID, coreID, variable string, value float64, at time.Time) *write.Point {
	return write.NewPoint(
		MeasurementVariables,
		map[string]string{
			"spark_id": sparkID,
			"core_id":  coreID,
			"variable": variable,
		},
		map[string]interface{}{
			"value": value,
		},
		at,
	)
}

func eventPoint(coreID, name, data string, at time.Time) *write.Point {
	return write.NewPoint(
		MeasurementEvents,
		map[string]string{
			"core_id": coreID,
			"event":   name,
		},
		map[string]interface{}{
			"data": data,
		},
		at,
	)
}
