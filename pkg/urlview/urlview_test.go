package urlview_test

import (
	"testing"

	"github.com/proxytools/go-proxybind/internal/assert"
	"github.com/proxytools/go-proxybind/pkg/engine"
	"github.com/proxytools/go-proxybind/pkg/errors"
	"github.com/proxytools/go-proxybind/pkg/urlview"
)

func materialized(t *testing.T, raw string) (*engine.Membuf, *urlview.URL) {
	t.Helper()
	eng := engine.NewMembuf()
	buf, err := eng.CreateBuffer()
	assert.OK(t, err)
	loc, err := eng.CreateURL(buf)
	assert.OK(t, err)
	assert.OK(t, eng.ParseURL(buf, loc, raw))

	u := &urlview.URL{}
	assert.OK(t, u.Init(eng, buf, loc))
	return eng, u
}

func TestUnsetViewReportsEmpty(t *testing.T) {
	var u urlview.URL
	assert.True(t, !u.Materialized(), "zero view must be unmaterialized")
	assert.Equal(t, u.Scheme(), "")
	assert.Equal(t, u.Host(), "")
	assert.Equal(t, u.Path(), "")
	assert.Equal(t, u.String(), "")

	err := u.SetHost("example.com")
	assert.True(t, errors.IsPrecondition(err), "write on unset view must be a precondition error")
}

func TestComponents(t *testing.T) {
	_, u := materialized(t, "https://example.com:8443/a/b?x=1&y=2#frag")
	assert.Equal(t, u.Scheme(), "https")
	assert.Equal(t, u.Host(), "example.com")
	assert.Equal(t, u.Port(), "8443")
	assert.Equal(t, u.Path(), "/a/b")
	assert.Equal(t, u.Query(), "x=1&y=2")
	assert.Equal(t, u.Fragment(), "frag")
	assert.Equal(t, u.String(), "https://example.com:8443/a/b?x=1&y=2#frag")
}

func TestSettersWriteThrough(t *testing.T) {
	_, u := materialized(t, "http://example.com/x")
	assert.OK(t, u.SetHost("origin.internal"))
	assert.OK(t, u.SetPath("/y"))
	assert.OK(t, u.SetQuery("a=b"))
	assert.Equal(t, u.Host(), "origin.internal")
	assert.Equal(t, u.String(), "http://origin.internal/y?a=b")
}

func TestReinitIsLoggedNoOp(t *testing.T) {
	eng, u := materialized(t, "http://example.com/x")

	buf, err := eng.CreateBuffer()
	assert.OK(t, err)
	loc, err := eng.CreateURL(buf)
	assert.OK(t, err)

	err = u.Init(eng, buf, loc)
	assert.True(t, errors.IsPrecondition(err), "reinit must be a precondition error")
	assert.Equal(t, u.Host(), "example.com")
}
