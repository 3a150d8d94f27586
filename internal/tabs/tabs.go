// Package tabs keeps the exclusive active state of the dashboard tabs.
package tabs

import "sync"

// PanelSuffix is appended to a tab identifier to form its panel id.
const PanelSuffix = "-tab"

// PanelID returns the id of the panel paired with tab.
func PanelID(tab string) string {
	return tab + PanelSuffix
}

// Tab is the render state of one tab button.
type Tab struct {
	ID     string `json:"id"`
	Panel  string `json:"panel"`
	Active bool   `json:"active"`
}

// Controller switches between mutually exclusive panels. Exactly one button
// and its paired panel are active whenever at least one button has a panel.
type Controller struct {
	mu      sync.Mutex
	buttons []string
	panels  map[string]bool
	active  string
}

// New registers the tab buttons and the panel ids present on the page. The
// initial tab is initial when its panel exists, otherwise the first button
// that has one.
func New(buttons []string, panels []string, initial string) *Controller {
	c := &Controller{
		buttons: append([]string(nil), buttons...),
		panels:  make(map[string]bool, len(panels)),
	}
	for _, p := range panels {
		c.panels[p] = true
	}

	if c.switchable(initial) {
		c.active = initial
		return c
	}
	for _, b := range c.buttons {
		if c.switchable(b) {
			c.active = b
			break
		}
	}
	return c
}

// Click activates the button id and its panel, deactivating every other one.
// A button that is not registered or has no panel leaves the current tab
// active and Click returns false.
func (c *Controller) Click(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.switchable(id) {
		return false
	}
	c.active = id
	return true
}

// Active returns the active tab, or "" when no button has a panel.
func (c *Controller) Active() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// IsActive reports whether id is the active button.
func (c *Controller) IsActive(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active != "" && c.active == id
}

// PanelVisible reports whether panelID is the visible panel.
func (c *Controller) PanelVisible(panelID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active != "" && PanelID(c.active) == panelID
}

// Tabs returns every registered button in order.
func (c *Controller) Tabs() []Tab {
	c.mu.Lock()
	defer c.mu.Unlock()

	tabs := make([]Tab, 0, len(c.buttons))
	for _, b := range c.buttons {
		tabs = append(tabs, Tab{ID: b, Panel: PanelID(b), Active: b == c.active})
	}
	return tabs
}

func (c *Controller) switchable(id string) bool {
	if id == "" || !c.panels[PanelID(id)] {
		return false
	}
	for _, b := range c.buttons {
		if b == id {
			return true
		}
	}
	return false
}
