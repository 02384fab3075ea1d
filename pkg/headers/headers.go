// Package headers provides the ordered, case-insensitive header collection
// plugin code reads and mutates, together with the name comparator it is
// built on.
//
// A collection lives in exactly one mode: attached, viewing live engine
// field storage through a handle pair with every mutation written through
// immediately, or detached, a private in-memory store for messages that
// have no engine buffer. The mode is fixed at initialization.
package headers

import (
	"iter"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/net/http/httpguts"

	"github.com/proxytools/go-proxybind/pkg/engine"
	"github.com/proxytools/go-proxybind/pkg/errors"
)

// Mode is the backing store of a collection.
type Mode int

const (
	// ModeUnbound is the state before initialization; every operation on an
	// unbound collection is a precondition error.
	ModeUnbound Mode = iota

	// ModeAttached views live engine field storage.
	ModeAttached

	// ModeDetached operates on a private in-memory store.
	ModeDetached
)

func (m Mode) String() string {
	switch m {
	case ModeAttached:
		return "attached"
	case ModeDetached:
		return "detached"
	default:
		return "unbound"
	}
}

// Entry is one header field as seen by enumeration.
type Entry struct {
	Name  string
	Value string
}

// Headers is an ordered multimap from field name to values. Names compare
// case-insensitively (see Compare); a name can repeat, and repeats keep
// their insertion order.
type Headers struct {
	mu      sync.RWMutex
	mode    Mode
	eng     engine.Engine
	ref     engine.Ref
	entries []Entry
	log     *zap.Logger
}

// NewDetached creates an initialized, empty detached collection.
func NewDetached() *Headers {
	h := &Headers{}
	h.InitDetached()
	return h
}

// SetLogger replaces the collection's logger. A nil logger restores the nop
// default.
func (h *Headers) SetLogger(log *zap.Logger) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.log = log
}

func (h *Headers) logger() *zap.Logger {
	if h.log == nil {
		return zap.NewNop()
	}
	return h.log
}

// Init attaches the collection to engine field storage. A collection can be
// initialized once; a second Init is logged and ignored.
func (h *Headers) Init(eng engine.Engine, ref engine.Ref) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.mode != ModeUnbound {
		err := errors.New(errors.KindPrecondition, "headers.Init", "collection already initialized")
		h.logger().Error("header collection reinitialization ignored",
			zap.Stringer("mode", h.mode))
		return err
	}
	h.mode = ModeAttached
	h.eng = eng
	h.ref = ref
	return nil
}

// InitDetached puts the collection in detached mode. Like Init, it is
// permitted once.
func (h *Headers) InitDetached() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.mode != ModeUnbound {
		err := errors.New(errors.KindPrecondition, "headers.InitDetached", "collection already initialized")
		h.logger().Error("header collection reinitialization ignored",
			zap.Stringer("mode", h.mode))
		return err
	}
	h.mode = ModeDetached
	return nil
}

// Mode returns the collection's mode.
func (h *Headers) Mode() Mode {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.mode
}

func (h *Headers) usable(op string) error {
	switch h.mode {
	case ModeUnbound:
		return errors.New(errors.KindPrecondition, op, "collection not initialized")
	case ModeAttached:
		if !h.ref.IsSet() {
			return errors.New(errors.KindPrecondition, op, "attached collection has no usable handle")
		}
	}
	return nil
}

// Values returns every value of the named field in insertion order, nil if
// the field is absent. Reading a collection in an invalid state logs a
// precondition error and returns nil.
func (h *Headers) Values(name string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if err := h.usable("headers.Values"); err != nil {
		h.logger().Error("header read in invalid state", zap.Error(err))
		return nil
	}
	if h.mode == ModeAttached {
		values, err := h.eng.FieldValues(h.ref, name)
		if err != nil {
			h.logger().Error("engine field read failed", zap.String("name", name), zap.Error(err))
			return nil
		}
		return values
	}
	var values []string
	for _, e := range h.entries {
		if Equal(e.Name, name) {
			values = append(values, e.Value)
		}
	}
	return values
}

// Get returns the first value of the named field, "" if absent.
func (h *Headers) Get(name string) string {
	values := h.Values(name)
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// Has reports whether the named field is present.
func (h *Headers) Has(name string) bool {
	return len(h.Values(name)) > 0
}

func validate(op, name, value string) error {
	if !httpguts.ValidHeaderFieldName(name) {
		return errors.New(errors.KindParse, op, "invalid header field name")
	}
	if !httpguts.ValidHeaderFieldValue(value) {
		return errors.New(errors.KindParse, op, "invalid header field value")
	}
	return nil
}

// Append adds a value after any existing values for the name. In attached
// mode the write goes through to the engine immediately.
func (h *Headers) Append(name, value string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.usable("headers.Append"); err != nil {
		h.logger().Error("header write in invalid state", zap.Error(err))
		return err
	}
	if err := validate("headers.Append", name, value); err != nil {
		h.logger().Error("header field rejected", zap.String("name", name), zap.Error(err))
		return err
	}
	if h.mode == ModeAttached {
		if err := h.eng.AppendField(h.ref, name, value); err != nil {
			h.logger().Error("engine field append failed", zap.String("name", name), zap.Error(err))
			return errors.Wrap(errors.KindPrecondition, "headers.Append", "write-through failed", err)
		}
		return nil
	}
	h.entries = append(h.entries, Entry{Name: name, Value: value})
	return nil
}

// Set replaces every value of the named field with the single value given.
func (h *Headers) Set(name, value string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.usable("headers.Set"); err != nil {
		h.logger().Error("header write in invalid state", zap.Error(err))
		return err
	}
	if err := validate("headers.Set", name, value); err != nil {
		h.logger().Error("header field rejected", zap.String("name", name), zap.Error(err))
		return err
	}
	if h.mode == ModeAttached {
		if err := h.eng.SetField(h.ref, name, value); err != nil {
			h.logger().Error("engine field set failed", zap.String("name", name), zap.Error(err))
			return errors.Wrap(errors.KindPrecondition, "headers.Set", "write-through failed", err)
		}
		return nil
	}
	h.entries = removeName(h.entries, name)
	h.entries = append(h.entries, Entry{Name: name, Value: value})
	return nil
}

// Remove deletes every value of the named field. Removing an absent field
// is not an error.
func (h *Headers) Remove(name string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.usable("headers.Remove"); err != nil {
		h.logger().Error("header write in invalid state", zap.Error(err))
		return err
	}
	if h.mode == ModeAttached {
		if err := h.eng.RemoveField(h.ref, name); err != nil {
			h.logger().Error("engine field remove failed", zap.String("name", name), zap.Error(err))
			return errors.Wrap(errors.KindPrecondition, "headers.Remove", "write-through failed", err)
		}
		return nil
	}
	h.entries = removeName(h.entries, name)
	return nil
}

// All returns every field in document order.
func (h *Headers) All() []Entry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if err := h.usable("headers.All"); err != nil {
		h.logger().Error("header read in invalid state", zap.Error(err))
		return nil
	}
	if h.mode == ModeAttached {
		fields, err := h.eng.Fields(h.ref)
		if err != nil {
			h.logger().Error("engine field enumeration failed", zap.Error(err))
			return nil
		}
		entries := make([]Entry, len(fields))
		for i, f := range fields {
			entries[i] = Entry{Name: f.Name, Value: f.Value}
		}
		return entries
	}
	entries := make([]Entry, len(h.entries))
	copy(entries, h.entries)
	return entries
}

// Entries produces (name, value) pairs lazily, in document order: repeats
// of a name keep their insertion order, distinct names appear in first-seen
// order. The sequence iterates over a snapshot, so mutating the collection
// from inside the loop is safe.
func (h *Headers) Entries() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, e := range h.All() {
			if !yield(e.Name, e.Value) {
				return
			}
		}
	}
}

// Len returns the number of fields, counting repeats.
func (h *Headers) Len() int {
	return len(h.All())
}

func removeName(entries []Entry, name string) []Entry {
	kept := entries[:0]
	for _, e := range entries {
		if !Equal(e.Name, name) {
			kept = append(kept, e)
		}
	}
	return kept
}
