package core

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// ProgressReporter menampilkan progress collector
type ProgressReporter struct {
	out       io.Writer
	total     int
	completed int
	mu        sync.Mutex
	ticker    *time.Ticker
	done      chan bool
	exited    chan struct{}
	stopped   bool
	current   string
	status    string
	startTime time.Time
}

// NewProgressReporter membuat progress reporter baru (default ke stderr)
func NewProgressReporter(out io.Writer) *ProgressReporter {
	if out == nil {
		out = os.Stderr
	}
	return &ProgressReporter{
		out:    out,
		done:   make(chan bool),
		exited: make(chan struct{}),
	}
}

// SetTotal set total task
func (p *ProgressReporter) SetTotal(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.total = total
}

// Start memulai progress bar
func (p *ProgressReporter) Start() {
	p.mu.Lock()
	if p.ticker != nil {
		p.mu.Unlock()
		return
	}
	p.startTime = time.Now()
	t := time.NewTicker(200 * time.Millisecond)
	p.ticker = t
	p.mu.Unlock()

	// goroutine hanya pegang salinan lokal ticker
	go func() {
		defer close(p.exited)
		frames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
		frameIdx := 0

		for {
			select {
			case <-t.C:
				p.mu.Lock()
				frame := frames[frameIdx%len(frames)]
				frameIdx++

				percentage := 0
				if p.total > 0 {
					percentage = (p.completed * 100) / p.total
				}

				elapsed := time.Since(p.startTime).Round(time.Second)

				// Clear line and print progress
				fmt.Fprintf(p.out, "\r\033[K%s [%d/%d] (%d%%) | %s | %s | Elapsed: %s",
					Colorize(frame, ColorCyan),
					p.completed,
					p.total,
					percentage,
					p.current,
					statusLabel(p.status),
					elapsed,
				)
				p.mu.Unlock()

			case <-p.done:
				return
			}
		}
	}()
}

// Increment increment progress
func (p *ProgressReporter) Increment(taskID, status string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.completed++
	p.current = taskID
	p.status = status
}

// Stop menghentikan progress bar
// Aman dipanggil lebih dari sekali, atau tanpa Start.
func (p *ProgressReporter) Stop() {
	p.mu.Lock()
	if p.ticker == nil || p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	t := p.ticker
	p.mu.Unlock()

	t.Stop()
	close(p.done)
	<-p.exited // tunggu frame terakhir selesai ditulis

	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "\r\033[K")
	elapsed := time.Since(p.startTime).Round(time.Second)
	fmt.Fprintf(p.out, "✓ Collection completed: %d sections in %s\n", p.completed, elapsed)
}

// statusLabel returns colored status
func statusLabel(status string) string {
	switch status {
	case "ok":
		return Colorize("OK", ColorGreen)
	case "error":
		return Colorize("ERROR", ColorRed)
	case "timeout":
		return Colorize("TIMEOUT", ColorYellow)
	case "unsupported":
		return Colorize("N/A", ColorGray)
	default:
		return Colorize("RUN", ColorCyan)
	}
}

// ANSI color codes
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorCyan   = "\033[36m"
	ColorGray   = "\033[90m"
)

// Colorize wraps text with color
func Colorize(text, color string) string {
	return color + text + ColorReset
}
