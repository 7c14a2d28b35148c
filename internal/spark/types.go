package spark

import "github.com/nerrad567/sparky-core/internal/humanize"

// Spark binds one variable on one device to a cache duration.
type Spark struct {
	// ID is the slug used in URLs, e.g. "garage-temperature".
	ID string `json:"id"`

	// Title is the display name. Defaults to ID.
	Title string `json:"title"`

	// CoreID is the device identifier in the cloud.
	CoreID string `json:"core_id"`

	// Variable is the variable name exposed by the firmware.
	Variable string `json:"variable"`

	// CacheSeconds is how long a read is reused; 0 reads live every time.
	CacheSeconds int `json:"cache_seconds"`
}

// Status strings rendered for a device.
const (
	StatusOnline  = "Online"
	StatusOffline = "Offline"
	StatusUnknown = "Unknown"
)

// CacheExpired is shown in a snapshot when the cached read fails.
const CacheExpired = "Cache expired."

// Snapshot compares a live read of a spark with the cached one.
type Snapshot struct {
	Spark Spark `json:"spark"`

	// CoreStatus is Online, Offline, Unknown, or the listing failure message.
	CoreStatus string `json:"core_status"`
	Online     bool   `json:"online"`

	// LiveValue is only read when the device is online.
	LiveValue string `json:"live_value,omitempty"`

	// CachedValue is the value within the cache window, or CacheExpired.
	CachedValue string `json:"cached_value"`
	CacheLabel  string `json:"cache_label"`
}

// CacheOption is one selectable cache duration.
type CacheOption struct {
	Seconds int    `json:"seconds"`
	Label   string `json:"label"`
}

// CacheOptions returns the standard cache durations, shortest first.
func CacheOptions() []CacheOption {
	return []CacheOption{
		{0, "None"},
		{60, "60 Seconds"},
		{300, "5 Minutes"},
		{600, "10 Minutes"},
		{3600, "1 Hour"},
		{21600, "6 Hours"},
		{86400, "1 Day"},
	}
}

// CacheLabel names a cache duration: the standard label when one matches,
// otherwise the humanized duration.
func CacheLabel(seconds int) string {
	for _, o := range CacheOptions() {
		if o.Seconds == seconds {
			return o.Label
		}
	}
	return humanize.Seconds(seconds)
}
