package events

import (
	"log"
	"sort"
)

// Observer reacts to case events. Observers are invoked synchronously in
// ascending priority order (lower number runs earlier); a failing observer
// never prevents the remaining ones from running.
type Observer interface {
	Name() string
	Priority() int
	CanHandle(e Event) bool
	Handle(e Event) error
}

// Dispatcher holds the observer registry and fans events out to it.
// Constructed once at startup; registration is dynamic.
type Dispatcher struct {
	observers []Observer
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Register adds an observer, keeping the registry priority-ordered
func (d *Dispatcher) Register(o Observer) {
	d.observers = append(d.observers, o)
	sort.SliceStable(d.observers, func(i, j int) bool {
		return d.observers[i].Priority() < d.observers[j].Priority()
	})
	log.Printf("registered observer %s (priority=%d)", o.Name(), o.Priority())
}

// Unregister removes every observer with the given name
func (d *Dispatcher) Unregister(name string) {
	kept := d.observers[:0]
	removed := 0
	for _, o := range d.observers {
		if o.Name() == name {
			removed++
			continue
		}
		kept = append(kept, o)
	}
	d.observers = kept
	log.Printf("unregistered %d observer(s) named %s", removed, name)
}

// Observers returns the current registry in notification order
func (d *Dispatcher) Observers() []Observer {
	out := make([]Observer, len(d.observers))
	copy(out, d.observers)
	return out
}

// Notify delivers an event to every interested observer. Each observer runs
// inside its own fault boundary: errors and panics are logged and swallowed
// so side-effect failures never fail the parent mutation.
func (d *Dispatcher) Notify(e Event) {
	log.Printf("notifying observers of %s", e)
	for _, o := range d.observers {
		d.deliver(o, e)
	}
}

func (d *Dispatcher) deliver(o Observer, e Event) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[ERROR] observer %s panicked on %s: %v", o.Name(), e.Type, r)
		}
	}()

	if !o.CanHandle(e) {
		return
	}
	if err := o.Handle(e); err != nil {
		log.Printf("[ERROR] observer %s failed on %s: %v", o.Name(), e.Type, err)
	}
}
