// Package navmenu coordinates navigation menus so that at most one is open
// at a time. A Coordinator is shared explicitly by every menu instance that
// should take part.
package navmenu

import (
	"errors"
	"sync"
)

// ErrUnknownMenu is returned for ids that were never registered.
var ErrUnknownMenu = errors.New("menu not registered")

// Coordinator tracks the registered menus and which one is open.
type Coordinator struct {
	mu     sync.Mutex
	menus  map[string]func()
	active string
}

// NewCoordinator creates an empty Coordinator.
func NewCoordinator() *Coordinator {
	return &Coordinator{menus: make(map[string]func())}
}

// Register adds a menu. onClose runs, outside the lock, whenever the menu is
// closed by another menu opening; it may be nil. Registering an existing id
// replaces its callback.
func (c *Coordinator) Register(id string, onClose func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.menus[id] = onClose
}

// Unregister removes a menu, clearing it as active if it was open.
func (c *Coordinator) Unregister(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.menus, id)
	if c.active == id {
		c.active = ""
	}
}

// Open marks id as the open menu and closes the previously open one.
func (c *Coordinator) Open(id string) error {
	c.mu.Lock()
	if _, ok := c.menus[id]; !ok {
		c.mu.Unlock()
		return ErrUnknownMenu
	}
	var closeFn func()
	if c.active != "" && c.active != id {
		closeFn = c.menus[c.active]
	}
	c.active = id
	c.mu.Unlock()

	if closeFn != nil {
		closeFn()
	}
	return nil
}

// Close closes id if it is the open menu. Its own callback is not run.
func (c *Coordinator) Close(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == id {
		c.active = ""
	}
}

// Toggle opens id when it is closed and closes it when it is open. It
// reports whether id is open afterwards.
func (c *Coordinator) Toggle(id string) (bool, error) {
	c.mu.Lock()
	open := c.active == id && id != ""
	c.mu.Unlock()

	if open {
		c.Close(id)
		return false, nil
	}
	if err := c.Open(id); err != nil {
		return false, err
	}
	return true, nil
}

// Active returns the open menu, if any.
func (c *Coordinator) Active() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active, c.active != ""
}

// IsOpen reports whether id is the open menu.
func (c *Coordinator) IsOpen(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return id != "" && c.active == id
}
