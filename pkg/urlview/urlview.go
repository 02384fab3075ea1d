// Package urlview exposes a lazily materialized view over the URL location
// of an engine buffer. Before materialization every accessor reports unset;
// after it, reads and writes go through to the engine handle.
package urlview

import (
	"strings"

	"go.uber.org/zap"

	"github.com/proxytools/go-proxybind/pkg/engine"
	"github.com/proxytools/go-proxybind/pkg/errors"
)

// URL is a component-level accessor over one engine URL location. The zero
// value is an unmaterialized view.
type URL struct {
	eng engine.Engine
	buf engine.Buffer
	loc engine.Loc
	log *zap.Logger
}

// SetLogger replaces the view's logger.
func (u *URL) SetLogger(log *zap.Logger) {
	u.log = log
}

func (u *URL) logger() *zap.Logger {
	if u.log == nil {
		return zap.NewNop()
	}
	return u.log
}

// Init materializes the view over a URL location. Permitted once; a second
// Init is logged and ignored.
func (u *URL) Init(eng engine.Engine, buf engine.Buffer, loc engine.Loc) error {
	if u.Materialized() {
		err := errors.New(errors.KindPrecondition, "urlview.Init", "view already materialized")
		u.logger().Error("url view reinitialization ignored")
		return err
	}
	u.eng = eng
	u.buf = buf
	u.loc = loc
	return nil
}

// Materialized reports whether the view is backed by an engine location.
func (u *URL) Materialized() bool {
	return u.eng != nil && u.buf != 0 && u.loc != 0
}

func (u *URL) component(c engine.URLComponent) string {
	if !u.Materialized() {
		return ""
	}
	value, err := u.eng.URLComponent(u.buf, u.loc, c)
	if err != nil {
		u.logger().Error("url component read failed", zap.Error(err))
		return ""
	}
	return value
}

func (u *URL) setComponent(op string, c engine.URLComponent, value string) error {
	if !u.Materialized() {
		err := errors.New(errors.KindPrecondition, op, "view not materialized")
		u.logger().Error("url component write on unset view", zap.Error(err))
		return err
	}
	if err := u.eng.SetURLComponent(u.buf, u.loc, c, value); err != nil {
		u.logger().Error("url component write failed", zap.Error(err))
		return errors.Wrap(errors.KindEngine, op, "write-through failed", err)
	}
	return nil
}

// Scheme returns the URL scheme, "" when unset.
func (u *URL) Scheme() string { return u.component(engine.URLScheme) }

// Host returns the host without any port, "" when unset.
func (u *URL) Host() string { return u.component(engine.URLHost) }

// Port returns the port as written in the URL, "" when absent.
func (u *URL) Port() string { return u.component(engine.URLPort) }

// Path returns the URL path, "" when unset.
func (u *URL) Path() string { return u.component(engine.URLPath) }

// Query returns the raw query string without the leading "?".
func (u *URL) Query() string { return u.component(engine.URLQuery) }

// Fragment returns the fragment without the leading "#".
func (u *URL) Fragment() string { return u.component(engine.URLFragment) }

func (u *URL) SetScheme(v string) error { return u.setComponent("urlview.SetScheme", engine.URLScheme, v) }
func (u *URL) SetHost(v string) error   { return u.setComponent("urlview.SetHost", engine.URLHost, v) }
func (u *URL) SetPort(v string) error   { return u.setComponent("urlview.SetPort", engine.URLPort, v) }
func (u *URL) SetPath(v string) error   { return u.setComponent("urlview.SetPath", engine.URLPath, v) }
func (u *URL) SetQuery(v string) error  { return u.setComponent("urlview.SetQuery", engine.URLQuery, v) }
func (u *URL) SetFragment(v string) error {
	return u.setComponent("urlview.SetFragment", engine.URLFragment, v)
}

// String reassembles the URL from its components. An unmaterialized view
// renders as "".
func (u *URL) String() string {
	if !u.Materialized() {
		return ""
	}
	var b strings.Builder
	if scheme := u.Scheme(); scheme != "" {
		b.WriteString(scheme)
		b.WriteString("://")
	}
	b.WriteString(u.Host())
	if port := u.Port(); port != "" {
		b.WriteString(":")
		b.WriteString(port)
	}
	b.WriteString(u.Path())
	if query := u.Query(); query != "" {
		b.WriteString("?")
		b.WriteString(query)
	}
	if fragment := u.Fragment(); fragment != "" {
		b.WriteString("#")
		b.WriteString(fragment)
	}
	return b.String()
}
