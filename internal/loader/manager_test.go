package loader

import (
	"sync"
	"testing"
)

func TestLoadingManagerCallbacks(t *testing.T) {
	m := NewLoadingManager()

	var starts, loads int
	var progress [][2]int
	var errs []string
	m.OnStart = func(string, int, int) { starts++ }
	m.OnProgress = func(_ string, loaded, total int) { progress = append(progress, [2]int{loaded, total}) }
	m.OnLoad = func() { loads++ }
	m.OnError = func(url string) { errs = append(errs, url) }

	m.ItemStart("a")
	m.ItemStart("b")
	if !m.Loading() {
		t.Error("expected loading after start")
	}
	m.ItemEnd("a")
	m.ItemError("b")
	m.ItemEnd("b")

	if starts != 1 {
		t.Errorf("OnStart called %d times, want 1", starts)
	}
	if loads != 1 {
		t.Errorf("OnLoad called %d times, want 1", loads)
	}
	if len(progress) != 2 || progress[1] != [2]int{2, 2} {
		t.Errorf("progress = %v", progress)
	}
	if len(errs) != 1 || errs[0] != "b" || m.Failed() != 1 {
		t.Errorf("errors = %v failed = %d", errs, m.Failed())
	}
	if m.Loading() {
		t.Error("expected idle after all items ended")
	}
}

func TestLoadingManagerConcurrent(t *testing.T) {
	m := NewLoadingManager()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.ItemStart("x")
			m.ItemEnd("x")
		}()
	}
	wg.Wait()

	if loaded, total := m.Progress(); loaded != 50 || total != 50 {
		t.Errorf("progress = %d/%d", loaded, total)
	}
}

func TestNilManagerIsNoop(t *testing.T) {
	var m *LoadingManager
	m.ItemStart("a")
	m.ItemError("a")
	m.ItemEnd("a")
	if m.Loading() || m.Failed() != 0 {
		t.Error("nil manager should report nothing")
	}
}
