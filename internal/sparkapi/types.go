package sparkapi

// DeviceSummary is one entry of the device listing.
type DeviceSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	LastApp   string `json:"last_app,omitempty"`
	LastHeard string `json:"last_heard,omitempty"`
	Connected bool   `json:"connected"`
}

// DeviceList is the body of GET /devices.
type DeviceList []DeviceSummary

// Find returns the summary for the given device ID.
func (l DeviceList) Find(id string) (DeviceSummary, bool) {
	for _, d := range l {
		if d.ID == id {
			return d, true
		}
	}
	return DeviceSummary{}, false
}

// Device is the body of GET /devices/{id}.
type Device struct {
	ID                 string            `json:"id"`
	Name               string            `json:"name"`
	Connected          bool              `json:"connected"`
	Variables          map[string]string `json:"variables,omitempty"`
	Functions          []string          `json:"functions,omitempty"`
	CC3000PatchVersion string            `json:"cc3000_patch_version,omitempty"`
}

// CoreInfo describes the device that answered a variable read.
type CoreInfo struct {
	LastApp   string `json:"last_app,omitempty"`
	LastHeard string `json:"last_heard,omitempty"`
	Connected bool   `json:"connected"`
	DeviceID  string `json:"deviceID,omitempty"`
}

// VariableValue is the body of GET /devices/{id}/{variable}.
// Result holds whatever JSON type the firmware declared: number, string or bool.
type VariableValue struct {
	Cmd      string   `json:"cmd,omitempty"`
	Name     string   `json:"name"`
	Result   any      `json:"result"`
	CoreInfo CoreInfo `json:"coreInfo"`
}
