package terminal

import (
	"strings"
	"sync"
)

// LogBuffer is a thread-safe circular buffer of log lines. It is an
// io.Writer so the logger can write straight into it while the terminal
// owns the screen.
type LogBuffer struct {
	entries []string
	size    int
	index   int
	count   int
	mutex   sync.RWMutex
}

// NewLogBuffer creates a new log buffer with the specified capacity
func NewLogBuffer(size int) *LogBuffer {
	return &LogBuffer{
		entries: make([]string, size),
		size:    size,
	}
}

// Write stores every non empty line of p.
func (lb *LogBuffer) Write(p []byte) (int, error) {
	for _, line := range strings.Split(string(p), "\n") {
		line = strings.TrimRight(line, "\r")
		if line != "" {
			lb.Add(line)
		}
	}
	return len(p), nil
}

// Add inserts a new line into the buffer
func (lb *LogBuffer) Add(line string) {
	lb.mutex.Lock()
	defer lb.mutex.Unlock()

	lb.entries[lb.index] = line
	lb.index = (lb.index + 1) % lb.size
	if lb.count < lb.size {
		lb.count++
	}
}

// GetRecent returns the most recent lines, newest first
func (lb *LogBuffer) GetRecent(maxCount int) []string {
	lb.mutex.RLock()
	defer lb.mutex.RUnlock()

	if lb.count == 0 {
		return nil
	}

	count := lb.count
	if maxCount > 0 && maxCount < count {
		count = maxCount
	}

	result := make([]string, count)
	for i := 0; i < count; i++ {
		result[i] = lb.entries[(lb.index-1-i+lb.size)%lb.size]
	}
	return result
}

// Clear removes all entries from the buffer
func (lb *LogBuffer) Clear() {
	lb.mutex.Lock()
	defer lb.mutex.Unlock()

	lb.count = 0
	lb.index = 0
}
