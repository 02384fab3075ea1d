package headers_test

import (
	"testing"

	"go.uber.org/zap"

	"github.com/proxytools/go-proxybind/internal/assert"
	"github.com/proxytools/go-proxybind/pkg/engine"
	"github.com/proxytools/go-proxybind/pkg/errors"
	"github.com/proxytools/go-proxybind/pkg/headers"
)

func TestDetachedAppendAndValues(t *testing.T) {
	h := headers.NewDetached()

	assert.OK(t, h.Append("X-A", "1"))
	assert.OK(t, h.Append("X-A", "2"))

	assert.EqualAll(t, h.Values("X-A"), []string{"1", "2"})
	assert.EqualAll(t, h.Values("x-a"), []string{"1", "2"})

	assert.OK(t, h.Set("X-A", "3"))
	assert.EqualAll(t, h.Values("X-A"), []string{"3"})
}

func TestDetachedRemove(t *testing.T) {
	h := headers.NewDetached()
	assert.OK(t, h.Append("X-A", "1"))
	assert.OK(t, h.Append("X-B", "2"))
	assert.OK(t, h.Remove("x-a"))

	if h.Has("X-A") {
		t.Fatal("X-A should be gone")
	}
	assert.EqualAll(t, h.Values("X-B"), []string{"2"})

	// Removing an absent field is fine.
	assert.OK(t, h.Remove("X-A"))
}

func TestDetachedEntriesOrder(t *testing.T) {
	h := headers.NewDetached()
	assert.OK(t, h.Append("Host", "example.com"))
	assert.OK(t, h.Append("Set-Cookie", "a=1"))
	assert.OK(t, h.Append("set-cookie", "b=2"))
	assert.OK(t, h.Append("Accept", "*/*"))

	var names, values []string
	for name, value := range h.Entries() {
		names = append(names, name)
		values = append(values, value)
	}
	assert.EqualAll(t, names, []string{"Host", "Set-Cookie", "set-cookie", "Accept"})
	assert.EqualAll(t, values, []string{"example.com", "a=1", "b=2", "*/*"})
	assert.Equal(t, h.Len(), 4)
}

func TestEntriesEarlyStop(t *testing.T) {
	h := headers.NewDetached()
	assert.OK(t, h.Append("A", "1"))
	assert.OK(t, h.Append("B", "2"))

	count := 0
	for range h.Entries() {
		count++
		break
	}
	assert.Equal(t, count, 1)
}

func TestUnboundCollectionFailsPrecondition(t *testing.T) {
	var h headers.Headers

	err := h.Append("X-A", "1")
	assert.True(t, errors.IsPrecondition(err), "append on unbound collection must be a precondition error")
	if got := h.Values("X-A"); got != nil {
		t.Fatalf("expected nil values, got %v", got)
	}
}

func TestReinitIsLoggedNoOp(t *testing.T) {
	h := headers.NewDetached()
	assert.OK(t, h.Append("X-A", "1"))

	err := h.Init(engine.NewMembuf(), engine.Ref{Buf: 1, Loc: 1})
	assert.True(t, errors.IsPrecondition(err), "mode switch must be a precondition error")
	assert.Equal(t, h.Mode(), headers.ModeDetached)
	assert.EqualAll(t, h.Values("X-A"), []string{"1"})
}

func TestInvalidFieldRejected(t *testing.T) {
	h := headers.NewDetached()

	err := h.Append("Bad Name", "v")
	assert.True(t, errors.IsParse(err), "invalid name must be a parse error")

	err = h.Set("X-A", "bad\x00value")
	assert.True(t, errors.IsParse(err), "invalid value must be a parse error")

	assert.Equal(t, h.Len(), 0)
}

func attachedPair(t *testing.T) (*engine.Membuf, engine.Ref) {
	t.Helper()
	eng := engine.NewMembuf()
	buf, err := eng.CreateBuffer()
	assert.OK(t, err)
	loc, err := eng.NewRequestHeader(buf, "GET", "HTTP/1.1", "http://example.com/")
	assert.OK(t, err)
	return eng, engine.Ref{Buf: buf, Loc: loc}
}

func TestAttachedWriteThrough(t *testing.T) {
	eng, ref := attachedPair(t)

	var h headers.Headers
	assert.OK(t, h.Init(eng, ref))
	assert.Equal(t, h.Mode(), headers.ModeAttached)

	assert.OK(t, h.Append("X-A", "1"))

	// A second collection over the same handles observes the mutation:
	// attached mode buffers nothing.
	var h2 headers.Headers
	assert.OK(t, h2.Init(eng, ref))
	assert.EqualAll(t, h2.Values("x-a"), []string{"1"})

	assert.OK(t, h2.Set("X-A", "3"))
	assert.EqualAll(t, h.Values("X-A"), []string{"3"})

	assert.OK(t, h.Remove("X-A"))
	assert.Equal(t, h2.Len(), 0)
}

func TestAttachedReleasedHandleFails(t *testing.T) {
	eng, ref := attachedPair(t)

	var h headers.Headers
	assert.OK(t, h.Init(eng, ref))
	assert.OK(t, eng.ReleaseLoc(ref.Buf, 0, ref.Loc))

	err := h.Append("X-A", "1")
	assert.True(t, errors.IsPrecondition(err), "write through a released handle must be a precondition error")
	if got := h.Values("X-A"); got != nil {
		t.Fatalf("expected nil values, got %v", got)
	}
}

func TestParseDetached(t *testing.T) {
	raw := []byte("Host: example.com\r\nX-A: 1\r\nbroken line without colon\r\nX-A: 2\r\n\r\nNot-A-Header: past the blank line\r\n")

	h := headers.Parse(raw, zap.NewNop())
	assert.Equal(t, h.Mode(), headers.ModeDetached)
	assert.Equal(t, h.Get("Host"), "example.com")
	assert.EqualAll(t, h.Values("X-A"), []string{"1", "2"})
	assert.Equal(t, h.Len(), 3)
}

func TestParseBareNewlines(t *testing.T) {
	h := headers.Parse([]byte("A: 1\nB: 2\n\n"), nil)
	assert.Equal(t, h.Get("A"), "1")
	assert.Equal(t, h.Get("B"), "2")
}
