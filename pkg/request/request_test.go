package request_test

import (
	"testing"

	"github.com/proxytools/go-proxybind/internal/assert"
	"github.com/proxytools/go-proxybind/pkg/engine"
	"github.com/proxytools/go-proxybind/pkg/errors"
	"github.com/proxytools/go-proxybind/pkg/message"
	"github.com/proxytools/go-proxybind/pkg/request"
)

// countingEngine counts token reads so tests can pin the at-most-once
// caching behavior.
type countingEngine struct {
	*engine.Membuf
	methodReads  int
	versionReads int
}

func (c *countingEngine) MethodToken(ref engine.Ref) (string, error) {
	c.methodReads++
	return c.Membuf.MethodToken(ref)
}

func (c *countingEngine) VersionToken(ref engine.Ref) (string, error) {
	c.versionReads++
	return c.Membuf.VersionToken(ref)
}

func attached(t *testing.T, method, version, rawURL string) (*countingEngine, *request.Request, engine.Ref) {
	t.Helper()
	eng := &countingEngine{Membuf: engine.NewMembuf()}
	buf, err := eng.CreateBuffer()
	assert.OK(t, err)
	hdr, err := eng.NewRequestHeader(buf, method, version, rawURL)
	assert.OK(t, err)

	ref := engine.Ref{Buf: buf, Loc: hdr}
	req := request.New(eng)
	assert.OK(t, req.Init(ref))
	return eng, req, ref
}

func TestStandaloneNeedsNoEngineQuery(t *testing.T) {
	eng := &countingEngine{Membuf: engine.NewMembuf()}
	req := request.NewStandalone(eng, "http://example.com/x", message.MethodPost, message.Version11)
	defer req.Destroy()

	assert.Equal(t, req.Method(), message.MethodPost)
	assert.Equal(t, req.Version(), message.Version11)
	assert.Equal(t, eng.methodReads, 0)
	assert.Equal(t, eng.versionReads, 0)

	assert.True(t, req.URL().Materialized(), "url view must materialize")
	assert.Equal(t, req.URL().Host(), "example.com")
	assert.Equal(t, req.URL().Path(), "/x")
}

func TestStandaloneWithBadURL(t *testing.T) {
	eng := engine.NewMembuf()
	req := request.NewStandalone(eng, "::::not a url", message.MethodGet, message.Version11)
	defer req.Destroy()

	assert.True(t, !req.URL().Materialized(), "url view must stay unset")
	assert.Equal(t, req.Method(), message.MethodGet)
	assert.Equal(t, req.Version(), message.Version11)

	// Headers are detached and fully usable.
	assert.OK(t, req.Headers().Append("X-A", "1"))
	assert.EqualAll(t, req.Headers().Values("x-a"), []string{"1"})
}

func TestStandaloneDestroyReleasesPrivateBuffer(t *testing.T) {
	eng := engine.NewMembuf()
	req := request.NewStandalone(eng, "http://example.com/x", message.MethodGet, message.Version11)
	req.Destroy()

	// The private buffer is gone; destroying again must not double-free.
	req.Destroy()
}

func TestAttachedLazyMethod(t *testing.T) {
	eng, req, _ := attached(t, "POST", "HTTP/1.1", "http://example.com/x")

	assert.Equal(t, req.Method(), message.MethodPost)
	assert.Equal(t, req.Method(), message.MethodPost)
	assert.Equal(t, eng.methodReads, 1)

	assert.Equal(t, req.Version(), message.Version11)
	assert.Equal(t, req.Version(), message.Version11)
	assert.Equal(t, eng.versionReads, 1)
}

func TestUnknownMethodCachedAfterOneQuery(t *testing.T) {
	eng, req, _ := attached(t, "BREW", "HTTP/1.1", "http://example.com/x")

	assert.Equal(t, req.Method(), message.MethodUnknown)
	assert.Equal(t, req.Method(), message.MethodUnknown)
	assert.Equal(t, eng.methodReads, 1)
}

func TestCachedMethodIgnoresLaterHandleChanges(t *testing.T) {
	eng, req, ref := attached(t, "GET", "HTTP/1.1", "http://example.com/x")
	assert.Equal(t, req.Method(), message.MethodGet)

	// The engine-side token changing out-of-band does not invalidate the
	// cache; staleness is the accepted tradeoff of the caching policy.
	assert.OK(t, eng.SetMethodToken(ref, "DELETE"))
	assert.Equal(t, req.Method(), message.MethodGet)
	assert.Equal(t, eng.methodReads, 1)
}

func TestDefaultDescriptorReportsUnknown(t *testing.T) {
	eng := &countingEngine{Membuf: engine.NewMembuf()}
	req := request.New(eng)

	assert.True(t, !req.Attached(), "fresh descriptor must be unattached")
	assert.Equal(t, req.Method(), message.MethodUnknown)
	assert.Equal(t, req.Version(), message.VersionUnknown)
	assert.Equal(t, eng.methodReads, 0)
	assert.True(t, !req.URL().Materialized(), "url view must be unset")
}

func TestReinitIsLoggedNoOp(t *testing.T) {
	eng, req, _ := attached(t, "GET", "HTTP/1.1", "http://example.com/x")
	assert.Equal(t, req.Method(), message.MethodGet)

	buf, err := eng.CreateBuffer()
	assert.OK(t, err)
	hdr, err := eng.NewRequestHeader(buf, "DELETE", "HTTP/1.0", "http://other.test/")
	assert.OK(t, err)

	err = req.Init(engine.Ref{Buf: buf, Loc: hdr})
	assert.True(t, errors.IsPrecondition(err), "reinit must be a precondition error")

	// Original handle and cached fields are untouched.
	assert.Equal(t, req.Method(), message.MethodGet)
	assert.Equal(t, req.URL().Host(), "example.com")
}

func TestAttachWithoutURL(t *testing.T) {
	eng := engine.NewMembuf()
	buf, err := eng.CreateBuffer()
	assert.OK(t, err)
	hdr, err := eng.NewRequestHeader(buf, "GET", "HTTP/1.1", "")
	assert.OK(t, err)

	req := request.New(eng)
	assert.OK(t, req.Init(engine.Ref{Buf: buf, Loc: hdr}))

	assert.True(t, !req.URL().Materialized(), "url view must stay unset")
	assert.Equal(t, req.Method(), message.MethodGet)
	assert.OK(t, req.Headers().Append("Host", "example.com"))
}

func TestAttachedHeadersWriteThrough(t *testing.T) {
	eng, req, ref := attached(t, "GET", "HTTP/1.1", "http://example.com/x")

	assert.OK(t, req.Headers().Set("X-Trace", "on"))

	values, err := eng.FieldValues(ref, "x-trace")
	assert.OK(t, err)
	assert.EqualAll(t, values, []string{"on"})
}
