package spark

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/nerrad567/sparky-core/internal/sparkapi"
)

// DeviceClient is the subset of sparkapi.Client used by the Service.
type DeviceClient interface {
	ListDevices(ctx context.Context, cacheSeconds int) sparkapi.Result[sparkapi.DeviceList]
	GetVariable(ctx context.Context, deviceID, variable string, cacheSeconds int) sparkapi.Result[sparkapi.VariableValue]
}

// Recorder stores live numeric readings. Satisfied by *influxdb.Client.
type Recorder interface {
	WriteVariableReading(sparkID, coreID, variable string, value float64, at time.Time)
}

// Logger defines the logging interface used by the Service.
type Logger interface {
	Debug(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}

// Service renders sparks through the device cloud client.
type Service struct {
	client   DeviceClient
	registry *Registry
	recorder Recorder
	logger   Logger
	now      func() time.Time
}

// NewService creates a service over client and registry.
func NewService(client DeviceClient, registry *Registry) *Service {
	return &Service{
		client:   client,
		registry: registry,
		logger:   noopLogger{},
		now:      time.Now,
	}
}

// SetRecorder enables recording of live numeric reads. Nil disables it.
func (s *Service) SetRecorder(r Recorder) {
	s.recorder = r
}

// SetLogger sets the logger for the service.
func (s *Service) SetLogger(logger Logger) {
	s.logger = logger
}

// Registry returns the spark registry.
func (s *Service) Registry() *Registry {
	return s.registry
}

// Value renders the spark's variable using its cache duration. A failed read
// renders as "<variable> (<message>)" so a page still shows something.
//
// Returns:
//   - string: The rendered value
//   - error: ErrSparkNotFound for an unknown ID
func (s *Service) Value(ctx context.Context, sparkID string) (string, error) {
	sp, err := s.registry.Get(sparkID)
	if err != nil {
		return "", err
	}

	res := s.readVariable(ctx, sp, sp.CacheSeconds)
	if res.Err != nil {
		return sp.Variable + " (" + res.Err.Message + ")", nil
	}
	return FormatResult(res.Value.Result), nil
}

// Status renders whether the spark's device is online, using the spark's
// cache duration for the listing. A failed listing renders as its message.
func (s *Service) Status(ctx context.Context, sparkID string) (string, error) {
	sp, err := s.registry.Get(sparkID)
	if err != nil {
		return "", err
	}

	status, _ := s.coreStatus(ctx, sp, sp.CacheSeconds)
	return status, nil
}

// Snapshot reads the spark live and through the cache.
//
// The listing is always fetched live. The variable is read live only when
// the device is online. The cached read uses the spark's cache duration and
// shows CacheExpired when it fails.
func (s *Service) Snapshot(ctx context.Context, sparkID string) (Snapshot, error) {
	sp, err := s.registry.Get(sparkID)
	if err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{Spark: sp, CacheLabel: CacheLabel(sp.CacheSeconds)}
	snap.CoreStatus, snap.Online = s.coreStatus(ctx, sp, 0)

	if snap.Online {
		live := s.readVariable(ctx, sp, 0)
		if live.Err != nil {
			snap.LiveValue = live.Err.Message
		} else {
			snap.LiveValue = FormatResult(live.Value.Result)
		}
	}

	cached := s.readVariable(ctx, sp, sp.CacheSeconds)
	if cached.Err != nil {
		snap.CachedValue = CacheExpired
	} else {
		snap.CachedValue = FormatResult(cached.Value.Result)
	}

	return snap, nil
}

// coreStatus finds the spark's device in the listing.
func (s *Service) coreStatus(ctx context.Context, sp Spark, cacheSeconds int) (string, bool) {
	res := s.client.ListDevices(ctx, cacheSeconds)
	if res.Err != nil {
		return res.Err.Message, false
	}

	d, ok := res.Value.Find(sp.CoreID)
	switch {
	case !ok:
		return StatusUnknown, false
	case d.Connected:
		return StatusOnline, true
	default:
		return StatusOffline, false
	}
}

// readVariable reads the variable and records live numeric results.
func (s *Service) readVariable(ctx context.Context, sp Spark, cacheSeconds int) sparkapi.Result[sparkapi.VariableValue] {
	res := s.client.GetVariable(ctx, sp.CoreID, sp.Variable, cacheSeconds)
	if res.Err != nil || res.Cached || s.recorder == nil {
		return res
	}

	if v, ok := res.Value.Result.(float64); ok {
		s.recorder.WriteVariableReading(sp.ID, sp.CoreID, sp.Variable, v, s.now())
		s.logger.Debug("recorded reading", "spark", sp.ID, "value", v)
	}
	return res
}

// FormatResult renders a decoded variable result as text.
func FormatResult(v any) string {
	switch r := v.(type) {
	case nil:
		return ""
	case string:
		return r
	case float64:
		return strconv.FormatFloat(r, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(r)
	default:
		b, _ := json.Marshal(r) //nolint:errcheck // Decoded JSON always re-encodes
		return string(b)
	}
}
