// Package engine defines the surface this library consumes from the proxy
// engine that owns HTTP message storage, plus Membuf, an in-memory engine
// used for standalone messages and tests.
//
// The engine hands out opaque handles: a Buffer identifies one message
// buffer, a Loc identifies a position inside it (a header, a URL, a field).
// A Loc is meaningless without the Buffer it was issued for.
package engine

// Buffer is an opaque handle to an engine-owned message buffer.
// The zero value means "no buffer".
type Buffer uint32

// Loc is an opaque handle to a location inside a buffer.
// The zero value means "no location".
type Loc uint32

// Ref pairs a buffer handle with a location handle inside it. It never owns
// the storage it points at; it is a coordinate into engine memory.
type Ref struct {
	Buf Buffer
	Loc Loc
}

// IsSet reports whether both handles are present.
func (r Ref) IsSet() bool {
	return r.Buf != 0 && r.Loc != 0
}

// Field is one header field as stored by the engine.
type Field struct {
	Name  string
	Value string
}

// URLComponent selects one component of a URL location.
type URLComponent int

const (
	URLScheme URLComponent = iota
	URLHost
	URLPort
	URLPath
	URLQuery
	URLFragment
)

// Engine is the call surface the wrapper objects need from the proxy engine.
//
// Locations form a parent/child tree inside a buffer: a URL location
// resolved from a header location must be released against that header
// location, while a URL location created directly in a buffer is released
// against a zero parent.
type Engine interface {
	// CreateBuffer allocates a new, empty message buffer.
	CreateBuffer() (Buffer, error)

	// DestroyBuffer frees a buffer and everything inside it.
	DestroyBuffer(buf Buffer) error

	// CreateURL allocates an empty URL location rooted directly in buf.
	CreateURL(buf Buffer) (Loc, error)

	// ParseURL parses raw into the URL location. On failure the location
	// keeps its previous contents.
	ParseURL(buf Buffer, loc Loc, raw string) error

	// ReleaseLoc releases loc against its parent location, or against a
	// zero parent for buffer-rooted locations. It never frees the buffer.
	ReleaseLoc(buf Buffer, parent, loc Loc) error

	// HeaderURLLoc resolves the URL location embedded in a header location.
	HeaderURLLoc(ref Ref) (Loc, error)

	// MethodToken returns the raw method token of a header location.
	MethodToken(ref Ref) (string, error)

	// VersionToken returns the raw protocol version token (e.g. "HTTP/1.1").
	VersionToken(ref Ref) (string, error)

	// StatusToken returns the status code and reason phrase of a response
	// header location.
	StatusToken(ref Ref) (int, string, error)

	// URLComponent reads one component of a URL location. Absent components
	// read as "".
	URLComponent(buf Buffer, loc Loc, c URLComponent) (string, error)

	// SetURLComponent writes one component of a URL location.
	SetURLComponent(buf Buffer, loc Loc, c URLComponent, value string) error

	// FieldValues returns all values of the named field in insertion order.
	// Name lookup is case-insensitive. Absent fields return nil.
	FieldValues(ref Ref, name string) ([]string, error)

	// AppendField appends a field after any existing values for the name.
	AppendField(ref Ref, name, value string) error

	// SetField replaces every value of the named field with the one given.
	SetField(ref Ref, name, value string) error

	// RemoveField removes every value of the named field.
	RemoveField(ref Ref, name string) error

	// Fields enumerates every field in insertion order.
	Fields(ref Ref) ([]Field, error)
}
