package engine

import (
	"net/url"
	"sync"

	"github.com/proxytools/go-proxybind/pkg/errors"
)

type locKind int

const (
	locHeader locKind = iota
	locURL
)

type memLoc struct {
	kind   locKind
	parent Loc

	// header locations
	method  string
	version string
	status  int
	reason  string
	urlLoc  Loc
	fields  []Field

	// URL locations, indexed by URLComponent
	url [URLFragment + 1]string
}

type memBuffer struct {
	locs map[Loc]*memLoc
}

// Membuf is a reference in-memory Engine. It backs standalone messages
// (which need a private buffer allocator) and every test in this module.
// Handle bookkeeping follows the same record-per-handle shape real engine
// bindings use.
type Membuf struct {
	mu      sync.Mutex
	nextBuf Buffer
	nextLoc Loc
	bufs    map[Buffer]*memBuffer
}

var _ Engine = (*Membuf)(nil)

// NewMembuf creates an empty in-memory engine.
func NewMembuf() *Membuf {
	return &Membuf{bufs: make(map[Buffer]*memBuffer)}
}

func (m *Membuf) buffer(op string, buf Buffer) (*memBuffer, error) {
	b, ok := m.bufs[buf]
	if !ok {
		return nil, errors.New(errors.KindEngine, op, "unknown buffer handle")
	}
	return b, nil
}

func (m *Membuf) loc(op string, buf Buffer, loc Loc, kind locKind) (*memLoc, error) {
	b, err := m.buffer(op, buf)
	if err != nil {
		return nil, err
	}
	l, ok := b.locs[loc]
	if !ok {
		return nil, errors.New(errors.KindEngine, op, "unknown or released location handle")
	}
	if l.kind != kind {
		return nil, errors.New(errors.KindEngine, op, "location handle has the wrong kind")
	}
	return l, nil
}

func (m *Membuf) CreateBuffer() (Buffer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextBuf++
	m.bufs[m.nextBuf] = &memBuffer{locs: make(map[Loc]*memLoc)}
	return m.nextBuf, nil
}

func (m *Membuf) DestroyBuffer(buf Buffer) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.buffer("DestroyBuffer", buf); err != nil {
		return err
	}
	delete(m.bufs, buf)
	return nil
}

func (m *Membuf) CreateURL(buf Buffer) (Loc, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, err := m.buffer("CreateURL", buf)
	if err != nil {
		return 0, err
	}
	m.nextLoc++
	b.locs[m.nextLoc] = &memLoc{kind: locURL}
	return m.nextLoc, nil
}

func (m *Membuf) ParseURL(buf Buffer, loc Loc, raw string) error {
	components, err := splitURL(raw)
	if err != nil {
		return errors.Wrap(errors.KindParse, "ParseURL", "invalid url", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	l, err := m.loc("ParseURL", buf, loc, locURL)
	if err != nil {
		return err
	}
	l.url = components
	return nil
}

func (m *Membuf) ReleaseLoc(buf Buffer, parent, loc Loc) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, err := m.buffer("ReleaseLoc", buf)
	if err != nil {
		return err
	}
	l, ok := b.locs[loc]
	if !ok {
		return errors.New(errors.KindEngine, "ReleaseLoc", "unknown or released location handle")
	}
	if l.parent != parent {
		return errors.New(errors.KindEngine, "ReleaseLoc", "released against the wrong parent location")
	}
	delete(b.locs, loc)
	return nil
}

// NewRequestHeader creates a request header location inside buf, with an
// embedded URL location when rawURL parses. An empty rawURL creates a header
// with no URL, like a malformed request the engine accepted anyway.
func (m *Membuf) NewRequestHeader(buf Buffer, method, version, rawURL string) (Loc, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, err := m.buffer("NewRequestHeader", buf)
	if err != nil {
		return 0, err
	}

	m.nextLoc++
	hdr := m.nextLoc
	b.locs[hdr] = &memLoc{kind: locHeader, method: method, version: version}

	if rawURL != "" {
		components, err := splitURL(rawURL)
		if err != nil {
			return hdr, errors.Wrap(errors.KindParse, "NewRequestHeader", "invalid url", err)
		}
		m.nextLoc++
		b.locs[m.nextLoc] = &memLoc{kind: locURL, parent: hdr, url: components}
		b.locs[hdr].urlLoc = m.nextLoc
	}
	return hdr, nil
}

// NewResponseHeader creates a response header location inside buf.
func (m *Membuf) NewResponseHeader(buf Buffer, version string, status int, reason string) (Loc, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, err := m.buffer("NewResponseHeader", buf)
	if err != nil {
		return 0, err
	}
	m.nextLoc++
	b.locs[m.nextLoc] = &memLoc{kind: locHeader, version: version, status: status, reason: reason}
	return m.nextLoc, nil
}

// SetMethodToken rewrites the method token of a header location, the way a
// remap rule or another plugin might behind a wrapper's back.
func (m *Membuf) SetMethodToken(ref Ref, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, err := m.loc("SetMethodToken", ref.Buf, ref.Loc, locHeader)
	if err != nil {
		return err
	}
	l.method = token
	return nil
}

func (m *Membuf) HeaderURLLoc(ref Ref) (Loc, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, err := m.loc("HeaderURLLoc", ref.Buf, ref.Loc, locHeader)
	if err != nil {
		return 0, err
	}
	if l.urlLoc == 0 {
		return 0, errors.New(errors.KindEngine, "HeaderURLLoc", "header has no embedded url")
	}
	return l.urlLoc, nil
}

func (m *Membuf) MethodToken(ref Ref) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, err := m.loc("MethodToken", ref.Buf, ref.Loc, locHeader)
	if err != nil {
		return "", err
	}
	return l.method, nil
}

func (m *Membuf) VersionToken(ref Ref) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, err := m.loc("VersionToken", ref.Buf, ref.Loc, locHeader)
	if err != nil {
		return "", err
	}
	return l.version, nil
}

func (m *Membuf) StatusToken(ref Ref) (int, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, err := m.loc("StatusToken", ref.Buf, ref.Loc, locHeader)
	if err != nil {
		return 0, "", err
	}
	return l.status, l.reason, nil
}

func (m *Membuf) URLComponent(buf Buffer, loc Loc, c URLComponent) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, err := m.loc("URLComponent", buf, loc, locURL)
	if err != nil {
		return "", err
	}
	if c < URLScheme || c > URLFragment {
		return "", errors.New(errors.KindEngine, "URLComponent", "unknown url component")
	}
	return l.url[c], nil
}

func (m *Membuf) SetURLComponent(buf Buffer, loc Loc, c URLComponent, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, err := m.loc("SetURLComponent", buf, loc, locURL)
	if err != nil {
		return err
	}
	if c < URLScheme || c > URLFragment {
		return errors.New(errors.KindEngine, "SetURLComponent", "unknown url component")
	}
	l.url[c] = value
	return nil
}

func (m *Membuf) FieldValues(ref Ref, name string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, err := m.loc("FieldValues", ref.Buf, ref.Loc, locHeader)
	if err != nil {
		return nil, err
	}
	var values []string
	for _, f := range l.fields {
		if foldEqual(f.Name, name) {
			values = append(values, f.Value)
		}
	}
	return values, nil
}

func (m *Membuf) AppendField(ref Ref, name, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, err := m.loc("AppendField", ref.Buf, ref.Loc, locHeader)
	if err != nil {
		return err
	}
	l.fields = append(l.fields, Field{Name: name, Value: value})
	return nil
}

func (m *Membuf) SetField(ref Ref, name, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, err := m.loc("SetField", ref.Buf, ref.Loc, locHeader)
	if err != nil {
		return err
	}
	kept := l.fields[:0]
	for _, f := range l.fields {
		if !foldEqual(f.Name, name) {
			kept = append(kept, f)
		}
	}
	l.fields = append(kept, Field{Name: name, Value: value})
	return nil
}

func (m *Membuf) RemoveField(ref Ref, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, err := m.loc("RemoveField", ref.Buf, ref.Loc, locHeader)
	if err != nil {
		return err
	}
	kept := l.fields[:0]
	for _, f := range l.fields {
		if !foldEqual(f.Name, name) {
			kept = append(kept, f)
		}
	}
	l.fields = kept
	return nil
}

func (m *Membuf) Fields(ref Ref) ([]Field, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, err := m.loc("Fields", ref.Buf, ref.Loc, locHeader)
	if err != nil {
		return nil, err
	}
	fields := make([]Field, len(l.fields))
	copy(fields, l.fields)
	return fields, nil
}

// foldEqual compares two field names with ASCII case folding only, matching
// the comparator header collections use.
func foldEqual(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

func splitURL(raw string) ([URLFragment + 1]string, error) {
	var components [URLFragment + 1]string

	u, err := url.Parse(raw)
	if err != nil {
		return components, err
	}
	components[URLScheme] = u.Scheme
	components[URLHost] = u.Hostname()
	components[URLPort] = u.Port()
	components[URLPath] = u.Path
	components[URLQuery] = u.RawQuery
	components[URLFragment] = u.Fragment
	return components, nil
}
