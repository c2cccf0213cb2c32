package kb

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/signalsfoundry/motorstart/model"
)

var (
	ErrMotorExists   = errors.New("motor already exists")
	ErrMotorNotFound = errors.New("motor not found")
	ErrInvalidEntry  = errors.New("invalid motor entry")
)

// EventType indicates what kind of change happened in the catalog.
type EventType int

const (
	EventMotorAdded EventType = iota
	EventMotorUpdated
	EventMotorRemoved
)

func (t EventType) String() string {
	switch t {
	case EventMotorAdded:
		return "added"
	case EventMotorUpdated:
		return "updated"
	case EventMotorRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Event is emitted to subscribers when an entry changes.
type Event struct {
	Type  EventType
	Entry Entry
}

// Entry is one motor in a study together with everything needed to analyse
// it: the driven load, the starting method and the branch circuit.
type Entry struct {
	ID     string                   `json:"id" yaml:"id"`
	Name   string                   `json:"name,omitempty" yaml:"name,omitempty"`
	Motor  model.MotorSpecification `json:"motor" yaml:"motor"`
	Load   model.LoadType           `json:"load" yaml:"load"`
	Method model.StartingMethod     `json:"method" yaml:"method"`
	Run    model.CircuitRun         `json:"circuit" yaml:"circuit"`

	// TargetPowerFactor is the correction target; zero means the engine
	// default.
	TargetPowerFactor float64 `json:"targetPowerFactor,omitempty" yaml:"targetPowerFactor,omitempty"`
}

// MotorCatalog is an in-memory, thread-safe store of study entries keyed by
// motor ID.
type MotorCatalog struct {
	mu sync.RWMutex

	entries map[string]Entry

	subs   map[int]func(Event)
	nextID int
}

// NewMotorCatalog constructs an empty catalog.
func NewMotorCatalog() *MotorCatalog {
	return &MotorCatalog{
		entries: make(map[string]Entry),
		subs:    make(map[int]func(Event)),
	}
}

// Add stores a new entry. It fails if the ID is empty or already present.
func (c *MotorCatalog) Add(e Entry) error {
	if e.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidEntry)
	}
	c.mu.Lock()
	if _, exists := c.entries[e.ID]; exists {
		c.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrMotorExists, e.ID)
	}
	c.entries[e.ID] = e
	subs := c.snapshotSubsLocked()
	c.mu.Unlock()

	notify(subs, Event{Type: EventMotorAdded, Entry: e})
	return nil
}

// Get returns the entry with the given ID.
func (c *MotorCatalog) Get(id string) (Entry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[id]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %q", ErrMotorNotFound, id)
	}
	return e, nil
}

// List returns a snapshot of all entries ordered by ID.
func (c *MotorCatalog) List() []Entry {
	c.mu.RLock()
	res := make([]Entry, 0, len(c.entries))
	for _, e := range c.entries {
		res = append(res, e)
	}
	c.mu.RUnlock()

	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res
}

// Len returns the number of entries.
func (c *MotorCatalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Update replaces an existing entry and notifies subscribers.
func (c *MotorCatalog) Update(e Entry) error {
	c.mu.Lock()
	if _, ok := c.entries[e.ID]; !ok {
		c.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrMotorNotFound, e.ID)
	}
	c.entries[e.ID] = e
	subs := c.snapshotSubsLocked()
	c.mu.Unlock()

	notify(subs, Event{Type: EventMotorUpdated, Entry: e})
	return nil
}

// Remove deletes an entry and notifies subscribers.
func (c *MotorCatalog) Remove(id string) error {
	c.mu.Lock()
	e, ok := c.entries[id]
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrMotorNotFound, id)
	}
	delete(c.entries, id)
	subs := c.snapshotSubsLocked()
	c.mu.Unlock()

	notify(subs, Event{Type: EventMotorRemoved, Entry: e})
	return nil
}

// Subscribe registers a callback for catalog events. It returns an
// unsubscribe function that is safe to call more than once.
func (c *MotorCatalog) Subscribe(fn func(Event)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs, id)
	}
}

func (c *MotorCatalog) snapshotSubsLocked() []func(Event) {
	ids := make([]int, 0, len(c.subs))
	for id := range c.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]func(Event), 0, len(ids))
	for _, id := range ids {
		out = append(out, c.subs[id])
	}
	return out
}

// notify runs outside the lock so subscribers may call back into the catalog.
func notify(subs []func(Event), ev Event) {
	for _, sub := range subs {
		sub(ev)
	}
}
