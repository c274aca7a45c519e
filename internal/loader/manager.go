package loader

import "sync"

// LoadingManager tracks loads started and finished across loaders.
// Callbacks run on the goroutine that finished the item, outside the lock.
type LoadingManager struct {
	mu      sync.Mutex
	loading bool
	loaded  int
	total   int
	failed  int

	OnStart    func(url string, loaded, total int)
	OnProgress func(url string, loaded, total int)
	OnLoad     func()
	OnError    func(url string)
}

// NewLoadingManager creates an idle manager.
func NewLoadingManager() *LoadingManager {
	return &LoadingManager{}
}

// ItemStart records a load that has begun.
func (m *LoadingManager) ItemStart(url string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.total++
	first := !m.loading
	m.loading = true
	loaded, total := m.loaded, m.total
	onStart := m.OnStart
	m.mu.Unlock()

	if first && onStart != nil {
		onStart(url, loaded, total)
	}
}

// ItemEnd records a load that has finished, successfully or not.
func (m *LoadingManager) ItemEnd(url string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.loaded++
	loaded, total := m.loaded, m.total
	done := loaded == total
	if done {
		m.loading = false
	}
	onProgress, onLoad := m.OnProgress, m.OnLoad
	m.mu.Unlock()

	if onProgress != nil {
		onProgress(url, loaded, total)
	}
	if done && onLoad != nil {
		onLoad()
	}
}

// ItemError records a failed load. ItemEnd is still expected.
func (m *LoadingManager) ItemError(url string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.failed++
	onError := m.OnError
	m.mu.Unlock()

	if onError != nil {
		onError(url)
	}
}

// Progress returns items finished and items started.
func (m *LoadingManager) Progress() (loaded, total int) {
	if m == nil {
		return 0, 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loaded, m.total
}

// Failed returns the number of items that reported an error.
func (m *LoadingManager) Failed() int {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.failed
}

// Loading reports whether any item is in flight.
func (m *LoadingManager) Loading() bool {
	if m == nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loading
}
