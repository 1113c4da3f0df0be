package profiler

import (
	"log"
	"runtime"
	"time"
)

// Profiler samples frame pacing and Go runtime memory stats, logging a
// one-line summary once per reporting interval. It is driven by the render
// loop calling Tick every frame.
type Profiler struct {
	frameCount     int
	worstFrame     time.Duration
	lastFrameTime  time.Time
	lastReport     time.Time
	interval       time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
}

// NewProfiler creates a Profiler reporting once per second.
//
// Returns:
//   - *Profiler: the new profiler
func NewProfiler() *Profiler {
	now := time.Now()
	return &Profiler{
		lastFrameTime: now,
		lastReport:    now,
		interval:      time.Second,
	}
}

// SetInterval changes how often Tick emits a report.
//
// Parameters:
//   - interval: minimum time between log lines
func (p *Profiler) SetInterval(interval time.Duration) {
	if interval > 0 {
		p.interval = interval
	}
}

// Tick records one rendered frame and logs a summary when the reporting
// interval has elapsed. The summary covers average FPS, the worst frame time
// in the window, live heap, allocation rate and GC pause times.
//
// Returns:
//   - bool: true if a report was logged on this call
func (p *Profiler) Tick() bool {
	now := time.Now()
	frame := now.Sub(p.lastFrameTime)
	p.lastFrameTime = now
	p.frameCount++
	if frame > p.worstFrame {
		p.worstFrame = frame
	}

	elapsed := now.Sub(p.lastReport)
	if elapsed < p.interval {
		return false
	}

	fps := float64(p.frameCount) / elapsed.Seconds()

	runtime.ReadMemStats(&p.memStats)
	heapMB := float64(p.memStats.Alloc) / 1024 / 1024
	sysMB := float64(p.memStats.Sys) / 1024 / 1024
	allocRateMB := float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds()

	gcCount := p.memStats.NumGC
	var lastPauseUs, maxPauseUs uint64
	if gcCount > 0 {
		// PauseNs holds the most recent 256 pauses in a ring.
		lastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000
		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			pause := p.memStats.PauseNs[i%256] / 1000
			if pause > maxPauseUs {
				maxPauseUs = pause
			}
		}
	}

	log.Printf("[Profiler] FPS: %.2f | Worst frame: %.2f ms | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d (last: %d µs, max: %d µs) | Sys: %.2f MB",
		fps, float64(p.worstFrame.Microseconds())/1000, heapMB, allocRateMB, gcCount, lastPauseUs, maxPauseUs, sysMB)

	p.frameCount = 0
	p.worstFrame = 0
	p.lastReport = now
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}
