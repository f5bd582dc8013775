package monitor

import (
	"time"

	"postured/pkg/types"
)

// Status builds a detailed status response for /status.
func (m *Monitor) Status() types.MonitorStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	return types.MonitorStatus{
		Active:          len(m.subs) > 0,
		Subscribers:     m.subscribersLocked(),
		IntervalSeconds: m.interval.Seconds(),
		CameraIndex:     m.cameraIndex,
		Sensitivity:     m.sensitivity,
		Strategy:        string(m.res.Strategy()),
		CaptureOpen:     m.res.HandleOpen(),
		TicksTotal:      m.ticks.Load(),
		FailuresTotal:   m.failures.Load(),
		LastError:       m.lastErr,
		UptimeSeconds:   int64(now.Sub(m.startTime).Seconds()),
		ServerTimeUnix:  now.Unix(),
	}
}
