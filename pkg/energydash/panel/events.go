package panel

import (
	"sync"
	"time"

	"github.com/energyconsortium/energydash-go/pkg/energydash/models"
)

// EventType names a shell lifecycle transition.
type EventType string

const (
	EventMounted    EventType = "mounted"
	EventRendered   EventType = "rendered"
	EventExported   EventType = "exported"
	EventFullscreen EventType = "fullscreen"
	EventUnmounted  EventType = "unmounted"
)

// Event describes one transition of a shell.
type Event struct {
	Type       EventType           `json:"type"`
	PanelID    string              `json:"panel_id"`
	Variant    string              `json:"variant,omitempty"`
	Theme      string              `json:"theme,omitempty"`
	Fullscreen bool                `json:"fullscreen"`
	HandleID   string              `json:"handle_id,omitempty"`
	Format     models.ExportFormat `json:"format,omitempty"`
	FileName   string              `json:"file_name,omitempty"`
	Time       time.Time           `json:"time"`
}

// Listener receives events synchronously on the goroutine that caused them.
// It must not block; it may call back into the shell.
type Listener func(Event)

type listeners struct {
	mu   sync.Mutex
	next int
	fns  map[int]Listener
}

func (l *listeners) add(fn Listener) func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fns == nil {
		l.fns = make(map[int]Listener)
	}
	id := l.next
	l.next++
	l.fns[id] = fn
	return func() {
		l.mu.Lock()
		delete(l.fns, id)
		l.mu.Unlock()
	}
}

func (l *listeners) emit(events ...Event) {
	if len(events) == 0 {
		return
	}
	l.mu.Lock()
	fns := make([]Listener, 0, len(l.fns))
	for i := 0; i < l.next; i++ {
		if fn, ok := l.fns[i]; ok {
			fns = append(fns, fn)
		}
	}
	l.mu.Unlock()

	for _, e := range events {
		for _, fn := range fns {
			fn(e)
		}
	}
}
