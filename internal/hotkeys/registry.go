// Package hotkeys turns symbolic key-combo strings ("Alt-h",
// "Super-Shift-1") into platform.Backend hotkey registrations and
// dispatches fired hotkey ids back to their callbacks. It implements
// eventpump.HotkeyRegistry.
package hotkeys

import (
	"fmt"
	"strings"
	"sync"

	"github.com/tesserawm/tessera/internal/platform"
)

// keyResolver and modResolver are optional backend extensions: a
// platform.Backend that wants to support symbolic combos implements
// both. Neither is part of the platform.Backend interface itself,
// mirroring termtile's own x11Accessor optional-interface pattern.
type keyResolver interface {
	ResolveKey(name string) (uint32, error)
}

type modResolver interface {
	ResolveMod(name string) (uint32, error)
}

// Registry binds symbolic key combos to callbacks through a backend.
type Registry struct {
	backend platform.Backend

	mu        sync.Mutex
	callbacks map[platform.HotkeyID]func()
}

// New constructs a Registry over backend. backend must additionally
// implement keyResolver and modResolver for Bind to succeed; both the
// Linux and Windows backends do.
func New(backend platform.Backend) *Registry {
	return &Registry{backend: backend, callbacks: make(map[platform.HotkeyID]func())}
}

// Bind parses combo (e.g. "Alt-Shift-h") and registers it with the
// backend, invoking fn when it fires. The last segment is the key
// name; every preceding segment is a modifier name.
func (r *Registry) Bind(combo string, fn func()) (platform.HotkeyID, error) {
	parts := strings.Split(combo, "-")
	if len(parts) == 0 {
		return 0, fmt.Errorf("hotkeys: empty combo")
	}
	keyName := parts[len(parts)-1]
	modNames := parts[:len(parts)-1]

	kr, ok := r.backend.(keyResolver)
	if !ok {
		return 0, fmt.Errorf("hotkeys: backend does not support symbolic key resolution")
	}
	mr, ok := r.backend.(modResolver)
	if !ok {
		return 0, fmt.Errorf("hotkeys: backend does not support symbolic modifier resolution")
	}

	key, err := kr.ResolveKey(keyName)
	if err != nil {
		return 0, fmt.Errorf("hotkeys: bind %q: %w", combo, err)
	}

	var modMask uint32
	for _, name := range modNames {
		m, err := mr.ResolveMod(name)
		if err != nil {
			return 0, fmt.Errorf("hotkeys: bind %q: %w", combo, err)
		}
		modMask |= m
	}

	id, err := r.backend.RegisterHotkey(modMask, key)
	if err != nil {
		return 0, fmt.Errorf("hotkeys: register %q: %w", combo, err)
	}

	r.mu.Lock()
	r.callbacks[id] = fn
	r.mu.Unlock()
	return id, nil
}

// Unbind unregisters a previously bound hotkey.
func (r *Registry) Unbind(id platform.HotkeyID) error {
	r.mu.Lock()
	delete(r.callbacks, id)
	r.mu.Unlock()
	return r.backend.UnregisterHotkey(id)
}

// Lookup satisfies eventpump.HotkeyRegistry.
func (r *Registry) Lookup(id platform.HotkeyID) (func(), bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn, ok := r.callbacks[id]
	return fn, ok
}
