// Package gui holds the sketch's control-panel state.
// The panel is a named parameter bag with no fixed schema; components
// add the values they want to expose.
package gui

import (
	"fmt"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// DefaultWidth is the panel width in pixels.
const DefaultWidth = 300

// Panel is an open mapping of parameter name to value.
type Panel struct {
	Width int

	mu       sync.RWMutex
	values   map[string]any
	order    []string
	onChange []func(name string, value any)
}

// NewPanel creates an empty panel. Non-positive widths use DefaultWidth.
func NewPanel(width int) *Panel {
	if width <= 0 {
		width = DefaultWidth
	}
	return &Panel{
		Width:  width,
		values: make(map[string]any),
	}
}

// Set stores value under name and notifies change listeners.
func (p *Panel) Set(name string, value any) {
	p.mu.Lock()
	if _, ok := p.values[name]; !ok {
		p.order = append(p.order, name)
	}
	p.values[name] = value
	listeners := p.onChange
	p.mu.Unlock()

	for _, fn := range listeners {
		fn(name, value)
	}
}

// Get returns the value stored under name.
func (p *Panel) Get(name string) (any, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.values[name]
	return v, ok
}

// Float returns a numeric value as float64.
func (p *Panel) Float(name string) (float64, bool) {
	v, ok := p.Get(name)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// Bool returns a boolean value.
func (p *Panel) Bool(name string) (bool, bool) {
	v, ok := p.Get(name)
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// Delete removes name from the panel.
func (p *Panel) Delete(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.values[name]; !ok {
		return
	}
	delete(p.values, name)
	for i, n := range p.order {
		if n == name {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
}

// Keys returns parameter names in insertion order.
func (p *Panel) Keys() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]string(nil), p.order...)
}

// Len returns the number of parameters.
func (p *Panel) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.values)
}

// OnChange registers fn to run after every Set.
func (p *Panel) OnChange(fn func(name string, value any)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onChange = append(p.onChange, fn)
}

// DumpYAML renders the panel as a YAML mapping with sorted keys.
func (p *Panel) DumpYAML() ([]byte, error) {
	p.mu.RLock()
	snapshot := make(map[string]any, len(p.values))
	for k, v := range p.values {
		snapshot[k] = v
	}
	p.mu.RUnlock()

	data, err := yaml.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("marshaling panel: %w", err)
	}
	return data, nil
}

// LoadYAML merges a YAML mapping into the panel. Keys are applied in sorted order.
func (p *Panel) LoadYAML(data []byte) error {
	var values map[string]any
	if err := yaml.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("parsing panel: %w", err)
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		p.Set(k, values[k])
	}
	return nil
}
