package godc

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// EventKind tags the variant carried by Event (spec §6 Context interface).
type EventKind int

const (
	EventWaiting EventKind = iota
	EventProgress
	EventDevInfo
	EventClock
	EventVendor
)

// Progress reports monotone non-decreasing download progress within one
// Device.Foreach/Dump session (spec §4.1, §5).
type Progress struct {
	Current uint64
	Maximum uint64
}

// DevInfo identifies the physical unit once per session, as soon as its
// identity is known (spec §4.1).
type DevInfo struct {
	Model    uint32
	Firmware uint32
	Serial   uint32
}

// ClockSnapshot pairs the host clock with the device's own clock, taken at
// the same instant, for families that expose one (spec §3 Device.clock).
type ClockSnapshot struct {
	SysTime time.Time
	DevTime time.Time
}

// Vendor carries an opaque, family-defined blob through the event sink
// (e.g. a raw status packet a caller-side UI wants to display verbatim).
type Vendor struct {
	Data []byte
}

// Event is the tagged union emitted by device code during Foreach/Dump.
// Exactly one of the typed fields is populated per Kind.
type Event struct {
	Kind     EventKind
	Waiting  struct{}
	Progress Progress
	DevInfo  DevInfo
	Clock    ClockSnapshot
	Vendor   Vendor
}

// EventListener receives Events as they are emitted. Implementations must
// be safe to call from the owning thread of the Device that emits them
// (spec §5 shared-resource policy); the Context itself does not add
// cross-goroutine synchronization beyond protecting its listener list.
type EventListener func(Event)

// Severity mirrors spec §6's logger severity levels, mapped onto zerolog's.
type Severity int

const (
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityWarning
	SeverityError
)

// Context bundles logging and event subscription that would otherwise be
// process-wide globals; cancellation is tracked per Device by BaseDevice
// (spec §9 design note: "pass an explicit Context handle to every
// constructor; avoid process-wide state"). One Context may be shared by
// multiple Devices (spec §5), provided the caller does not also share a
// Transport between them.
type Context struct {
	log zerolog.Logger

	mu        sync.Mutex
	listeners []EventListener
}

// NewContext builds a Context around the given logger. A zero Logger
// (zerolog.Logger{}) behaves as a no-op sink, matching zerolog.Nop().
func NewContext(logger zerolog.Logger) *Context {
	return &Context{log: logger}
}

// NopContext returns a Context that logs nothing and has no listeners,
// useful for tests and for callers that don't care about progress.
func NopContext() *Context {
	return NewContext(zerolog.Nop())
}

// Subscribe registers a listener for every Event this Context's Devices
// emit. It returns an unsubscribe function.
func (c *Context) Subscribe(l EventListener) (cancel func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, l)
	idx := len(c.listeners) - 1
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.listeners[idx] = nil
	}
}

// emit fans an Event out to every live listener.
func (c *Context) emit(e Event) {
	c.mu.Lock()
	listeners := make([]EventListener, len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()
	for _, l := range listeners {
		if l != nil {
			l(e)
		}
	}
}

func (c *Context) emitWaiting() {
	c.emit(Event{Kind: EventWaiting})
}

func (c *Context) emitProgress(current, maximum uint64) {
	c.emit(Event{Kind: EventProgress, Progress: Progress{Current: current, Maximum: maximum}})
}

func (c *Context) emitDevInfo(info DevInfo) {
	c.emit(Event{Kind: EventDevInfo, DevInfo: info})
}

func (c *Context) emitClock(clock ClockSnapshot) {
	c.emit(Event{Kind: EventClock, Clock: clock})
}

func (c *Context) emitVendor(data []byte) {
	c.emit(Event{Kind: EventVendor, Vendor: Vendor{Data: data}})
}

// Log returns the zerolog event builder for the given severity, e.g.
// ctx.Log(SeverityDebug).Str("family", "hw_ostc").Msg("sending init").
func (c *Context) Log(sev Severity) *zerolog.Event {
	switch sev {
	case SeverityDebug:
		return c.log.Debug()
	case SeverityWarning:
		return c.log.Warn()
	case SeverityError:
		return c.log.Error()
	default:
		return c.log.Info()
	}
}
