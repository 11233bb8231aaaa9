package logger

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// MetricsManager manages performance and operational metrics
type MetricsManager struct {
	logMetrics    *LogMetrics
	systemMetrics *SystemMetrics
	domainMetrics *DomainMetrics

	enabled         bool
	collectionStart time.Time

	mutex sync.RWMutex
}

// LogMetrics tracks logging system performance
type LogMetrics struct {
	TotalLogs        int64            `json:"total_logs"`
	LogsByLevel      map[string]int64 `json:"logs_by_level"`
	LogsByComponent  map[string]int64 `json:"logs_by_component"`
	AsyncBufferSize  int32            `json:"async_buffer_size"`
	AsyncBufferUsage float64          `json:"async_buffer_usage_percent"`
	BufferOverflows  int64            `json:"buffer_overflows"`
	WriteErrors      int64            `json:"write_errors"`
	FlushCount       int64            `json:"flush_count"`
	LastFlushTime    time.Time        `json:"last_flush_time"`
	AverageWriteTime time.Duration    `json:"average_write_time"`
	FileSizes        map[string]int64 `json:"file_sizes"`
	RotationCount    int64            `json:"rotation_count"`
	CompressionSaved int64            `json:"compression_saved_bytes"`

	mutex sync.RWMutex
}

// SystemMetrics tracks system-level metrics
type SystemMetrics struct {
	StartTime          time.Time     `json:"start_time"`
	Uptime             time.Duration `json:"uptime"`
	MemoryUsage        int64         `json:"memory_usage_bytes"`
	GoroutineCount     int           `json:"goroutine_count"`
	DiskSpaceUsed      int64         `json:"disk_space_used_bytes"`
	DiskSpaceAvailable int64         `json:"disk_space_available_bytes"`

	mutex sync.RWMutex
}

// DomainMetrics tracks the rotation daemon's own operational counters:
// sentinel arrivals, rotations, triggers, and compression cycles, keyed
// by family name.
type DomainMetrics struct {
	SentinelsAccepted     int64            `json:"sentinels_accepted"`
	SentinelsAppended     int64            `json:"sentinels_appended"`
	SentinelsRotated      int64            `json:"sentinels_rotated"`
	TriggersRaised        int64            `json:"triggers_raised"`
	CompressionsCompleted int64            `json:"compressions_completed"`
	CompressionsFailed    int64            `json:"compressions_failed"`
	BytesArchived         int64            `json:"bytes_archived"`
	ByFamily              map[string]int64 `json:"compressions_by_family"`

	mutex sync.RWMutex
}

// NewMetricsManager creates a new metrics manager
func NewMetricsManager(enabled bool) *MetricsManager {
	return &MetricsManager{
		logMetrics: &LogMetrics{
			LogsByLevel:     make(map[string]int64),
			LogsByComponent: make(map[string]int64),
			FileSizes:       make(map[string]int64),
		},
		systemMetrics: &SystemMetrics{
			StartTime: time.Now(),
		},
		domainMetrics: &DomainMetrics{
			ByFamily: make(map[string]int64),
		},
		enabled:         enabled,
		collectionStart: time.Now(),
	}
}

// RecordLogEntry records metrics for a log entry
func (mm *MetricsManager) RecordLogEntry(level logrus.Level, component string, writeTime time.Duration) {
	if !mm.enabled {
		return
	}

	mm.logMetrics.mutex.Lock()
	defer mm.logMetrics.mutex.Unlock()

	atomic.AddInt64(&mm.logMetrics.TotalLogs, 1)

	levelStr := level.String()
	mm.logMetrics.LogsByLevel[levelStr]++

	if component != "" {
		mm.logMetrics.LogsByComponent[component]++
	}

	if writeTime > 0 {
		totalLogs := atomic.LoadInt64(&mm.logMetrics.TotalLogs)
		if totalLogs == 1 {
			mm.logMetrics.AverageWriteTime = writeTime
		} else {
			alpha := 0.1
			mm.logMetrics.AverageWriteTime = time.Duration(
				float64(mm.logMetrics.AverageWriteTime)*(1-alpha) +
					float64(writeTime)*alpha,
			)
		}
	}
}

// RecordAsyncMetrics records async logging metrics
func (mm *MetricsManager) RecordAsyncMetrics(bufferSize, bufferCapacity int32, overflows, flushes int64) {
	if !mm.enabled {
		return
	}

	mm.logMetrics.mutex.Lock()
	defer mm.logMetrics.mutex.Unlock()

	mm.logMetrics.AsyncBufferSize = bufferSize
	if bufferCapacity > 0 {
		mm.logMetrics.AsyncBufferUsage = float64(bufferSize) / float64(bufferCapacity) * 100
	}

	atomic.StoreInt64(&mm.logMetrics.BufferOverflows, overflows)
	atomic.StoreInt64(&mm.logMetrics.FlushCount, flushes)
	mm.logMetrics.LastFlushTime = time.Now()
}

// RecordRotationEvent records a log rotation event
func (mm *MetricsManager) RecordRotationEvent() {
	if !mm.enabled {
		return
	}

	atomic.AddInt64(&mm.logMetrics.RotationCount, 1)
}

// RecordCompressionSaved records bytes saved by compression
func (mm *MetricsManager) RecordCompressionSaved(bytesSaved int64) {
	if !mm.enabled {
		return
	}

	atomic.AddInt64(&mm.logMetrics.CompressionSaved, bytesSaved)
}

// UpdateFileSizes updates log file size metrics
func (mm *MetricsManager) UpdateFileSizes(fileSizes map[string]int64) {
	if !mm.enabled {
		return
	}

	mm.logMetrics.mutex.Lock()
	defer mm.logMetrics.mutex.Unlock()

	mm.logMetrics.FileSizes = fileSizes
}

// RecordSentinelAccepted records a sentinel that was promoted to .log.0.
func (mm *MetricsManager) RecordSentinelAccepted(family string) {
	if !mm.enabled {
		return
	}
	atomic.AddInt64(&mm.domainMetrics.SentinelsAccepted, 1)
}

// RecordSentinelAppended records a sentinel folded onto an existing .log.0.
func (mm *MetricsManager) RecordSentinelAppended(family string) {
	if !mm.enabled {
		return
	}
	atomic.AddInt64(&mm.domainMetrics.SentinelsAppended, 1)
}

// RecordSentinelRotated records a sentinel that drove a rotation chain shift.
func (mm *MetricsManager) RecordSentinelRotated(family string) {
	if !mm.enabled {
		return
	}
	atomic.AddInt64(&mm.domainMetrics.SentinelsRotated, 1)
}

// RecordTriggerRaised records a compression trigger raised for a family.
func (mm *MetricsManager) RecordTriggerRaised(family string) {
	if !mm.enabled {
		return
	}
	atomic.AddInt64(&mm.domainMetrics.TriggersRaised, 1)
}

// RecordCompressionCompleted records a successful archive cycle.
func (mm *MetricsManager) RecordCompressionCompleted(family string, bytesArchived int64) {
	if !mm.enabled {
		return
	}
	atomic.AddInt64(&mm.domainMetrics.CompressionsCompleted, 1)
	atomic.AddInt64(&mm.domainMetrics.BytesArchived, bytesArchived)

	mm.domainMetrics.mutex.Lock()
	defer mm.domainMetrics.mutex.Unlock()
	mm.domainMetrics.ByFamily[family]++
}

// RecordCompressionFailed records a failed archive cycle.
func (mm *MetricsManager) RecordCompressionFailed(family string) {
	if !mm.enabled {
		return
	}
	atomic.AddInt64(&mm.domainMetrics.CompressionsFailed, 1)
}

// GetLogMetrics returns current log metrics
func (mm *MetricsManager) GetLogMetrics() LogMetrics {
	mm.logMetrics.mutex.RLock()
	defer mm.logMetrics.mutex.RUnlock()

	metrics := LogMetrics{
		TotalLogs:        atomic.LoadInt64(&mm.logMetrics.TotalLogs),
		LogsByLevel:      make(map[string]int64),
		LogsByComponent:  make(map[string]int64),
		AsyncBufferSize:  mm.logMetrics.AsyncBufferSize,
		AsyncBufferUsage: mm.logMetrics.AsyncBufferUsage,
		BufferOverflows:  atomic.LoadInt64(&mm.logMetrics.BufferOverflows),
		WriteErrors:      atomic.LoadInt64(&mm.logMetrics.WriteErrors),
		FlushCount:       atomic.LoadInt64(&mm.logMetrics.FlushCount),
		LastFlushTime:    mm.logMetrics.LastFlushTime,
		AverageWriteTime: mm.logMetrics.AverageWriteTime,
		FileSizes:        make(map[string]int64),
		RotationCount:    atomic.LoadInt64(&mm.logMetrics.RotationCount),
		CompressionSaved: atomic.LoadInt64(&mm.logMetrics.CompressionSaved),
	}

	for k, v := range mm.logMetrics.LogsByLevel {
		metrics.LogsByLevel[k] = v
	}
	for k, v := range mm.logMetrics.LogsByComponent {
		metrics.LogsByComponent[k] = v
	}
	for k, v := range mm.logMetrics.FileSizes {
		metrics.FileSizes[k] = v
	}

	return metrics
}

// GetSystemMetrics returns current system metrics
func (mm *MetricsManager) GetSystemMetrics() SystemMetrics {
	mm.systemMetrics.mutex.RLock()
	defer mm.systemMetrics.mutex.RUnlock()

	metrics := *mm.systemMetrics
	metrics.Uptime = time.Since(metrics.StartTime)

	return metrics
}

// GetDomainMetrics returns current domain (rotation/compression) metrics
func (mm *MetricsManager) GetDomainMetrics() DomainMetrics {
	mm.domainMetrics.mutex.RLock()
	defer mm.domainMetrics.mutex.RUnlock()

	metrics := DomainMetrics{
		SentinelsAccepted:     atomic.LoadInt64(&mm.domainMetrics.SentinelsAccepted),
		SentinelsAppended:     atomic.LoadInt64(&mm.domainMetrics.SentinelsAppended),
		SentinelsRotated:      atomic.LoadInt64(&mm.domainMetrics.SentinelsRotated),
		TriggersRaised:        atomic.LoadInt64(&mm.domainMetrics.TriggersRaised),
		CompressionsCompleted: atomic.LoadInt64(&mm.domainMetrics.CompressionsCompleted),
		CompressionsFailed:    atomic.LoadInt64(&mm.domainMetrics.CompressionsFailed),
		BytesArchived:         atomic.LoadInt64(&mm.domainMetrics.BytesArchived),
		ByFamily:              make(map[string]int64),
	}

	for k, v := range mm.domainMetrics.ByFamily {
		metrics.ByFamily[k] = v
	}

	return metrics
}

// GetAllMetrics returns all metrics in a single structure
func (mm *MetricsManager) GetAllMetrics() map[string]interface{} {
	return map[string]interface{}{
		"logs":               mm.GetLogMetrics(),
		"system":             mm.GetSystemMetrics(),
		"domain":             mm.GetDomainMetrics(),
		"collection_enabled": mm.enabled,
		"collection_uptime":  time.Since(mm.collectionStart).String(),
	}
}

// ResetMetrics resets all collected metrics
func (mm *MetricsManager) ResetMetrics() {
	if !mm.enabled {
		return
	}

	mm.logMetrics.mutex.Lock()
	mm.systemMetrics.mutex.Lock()
	mm.domainMetrics.mutex.Lock()

	defer mm.logMetrics.mutex.Unlock()
	defer mm.systemMetrics.mutex.Unlock()
	defer mm.domainMetrics.mutex.Unlock()

	atomic.StoreInt64(&mm.logMetrics.TotalLogs, 0)
	atomic.StoreInt64(&mm.logMetrics.BufferOverflows, 0)
	atomic.StoreInt64(&mm.logMetrics.WriteErrors, 0)
	atomic.StoreInt64(&mm.logMetrics.FlushCount, 0)
	atomic.StoreInt64(&mm.logMetrics.RotationCount, 0)
	atomic.StoreInt64(&mm.logMetrics.CompressionSaved, 0)

	mm.logMetrics.LogsByLevel = make(map[string]int64)
	mm.logMetrics.LogsByComponent = make(map[string]int64)
	mm.logMetrics.FileSizes = make(map[string]int64)
	mm.logMetrics.AverageWriteTime = 0

	atomic.StoreInt64(&mm.domainMetrics.SentinelsAccepted, 0)
	atomic.StoreInt64(&mm.domainMetrics.SentinelsAppended, 0)
	atomic.StoreInt64(&mm.domainMetrics.SentinelsRotated, 0)
	atomic.StoreInt64(&mm.domainMetrics.TriggersRaised, 0)
	atomic.StoreInt64(&mm.domainMetrics.CompressionsCompleted, 0)
	atomic.StoreInt64(&mm.domainMetrics.CompressionsFailed, 0)
	atomic.StoreInt64(&mm.domainMetrics.BytesArchived, 0)
	mm.domainMetrics.ByFamily = make(map[string]int64)

	mm.collectionStart = time.Now()
}

// Enable enables metrics collection
func (mm *MetricsManager) Enable() {
	mm.mutex.Lock()
	defer mm.mutex.Unlock()

	mm.enabled = true
	mm.collectionStart = time.Now()
}

// Disable disables metrics collection
func (mm *MetricsManager) Disable() {
	mm.mutex.Lock()
	defer mm.mutex.Unlock()

	mm.enabled = false
}

// IsEnabled returns whether metrics collection is enabled
func (mm *MetricsManager) IsEnabled() bool {
	mm.mutex.RLock()
	defer mm.mutex.RUnlock()

	return mm.enabled
}
