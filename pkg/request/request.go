// Package request wraps one HTTP request owned by the proxy engine behind
// value-oriented accessors: a header collection, a URL view, and cached
// method and version fields, each materialized from the engine handles on
// first access.
package request

import (
	"go.uber.org/zap"

	"github.com/proxytools/go-proxybind/pkg/engine"
	"github.com/proxytools/go-proxybind/pkg/errors"
	"github.com/proxytools/go-proxybind/pkg/headers"
	"github.com/proxytools/go-proxybind/pkg/message"
	"github.com/proxytools/go-proxybind/pkg/urlview"
)

// Option configures a Request at construction.
type Option func(*Request)

// WithLogger sets the logger for the request and the sub-objects it creates.
func WithLogger(log *zap.Logger) Option {
	return func(r *Request) { r.log = log }
}

// Request is the request message descriptor. Create it empty with New and
// attach it to engine handles with Init, or build it standalone with
// NewStandalone, which allocates a private buffer.
type Request struct {
	eng     engine.Engine
	ref     engine.Ref
	urlLoc  engine.Loc
	url     urlview.URL
	headers headers.Headers
	method  message.Value[message.Method]
	version message.Value[message.Version]

	// ownsBuffer selects the destruction path: a standalone request created
	// its own buffer and must destroy it, an attached request borrows the
	// engine's and must not.
	ownsBuffer bool

	log *zap.Logger
}

// New creates an empty, unattached request descriptor.
func New(eng engine.Engine, opts ...Option) *Request {
	r := &Request{
		eng:     eng,
		method:  message.NewValue(message.MethodUnknown),
		version: message.NewValue(message.VersionUnknown),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.headers.SetLogger(r.log)
	r.url.SetLogger(r.log)
	return r
}

// NewStandalone builds a request with no engine message behind it: a
// private buffer holds the parsed URL, headers are detached, and method and
// version are already initialized so no lazy lookup ever runs. An
// unparseable URL (or a failed allocation) leaves the URL view unset; the
// descriptor is still valid for header and method access.
func NewStandalone(eng engine.Engine, rawURL string, method message.Method, version message.Version, opts ...Option) *Request {
	r := New(eng, opts...)
	r.method.Set(method)
	r.version.Set(version)
	r.ownsBuffer = true
	r.headers.InitDetached()

	buf, err := eng.CreateBuffer()
	if err != nil {
		r.logger().Error("buffer allocation failed", zap.Error(err))
		return r
	}
	r.ref.Buf = buf

	loc, err := eng.CreateURL(buf)
	if err != nil {
		r.logger().Error("url location allocation failed", zap.Error(err))
		return r
	}
	r.urlLoc = loc

	if err := eng.ParseURL(buf, loc, rawURL); err != nil {
		r.logger().Error("url does not parse", zap.String("url", rawURL), zap.Error(err))
		return r
	}
	r.url.Init(eng, buf, loc)
	return r
}

func (r *Request) logger() *zap.Logger {
	if r.log == nil {
		return zap.NewNop()
	}
	return r.log
}

// Init attaches the descriptor to an engine header location. Permitted once
// on a descriptor that has no handle; reinitialization is logged and
// ignored, leaving the original handle and all cached fields unchanged.
//
// A header whose URL location cannot be resolved still attaches; only the
// URL view stays unset.
func (r *Request) Init(ref engine.Ref) error {
	if r.ref.Buf != 0 || r.ref.Loc != 0 {
		err := errors.New(errors.KindPrecondition, "request.Init", "descriptor already attached")
		r.logger().Error("request reinitialization ignored",
			zap.Uint32("buf", uint32(r.ref.Buf)),
			zap.Uint32("loc", uint32(r.ref.Loc)))
		return err
	}
	r.ref = ref
	r.headers.Init(r.eng, ref)

	urlLoc, err := r.eng.HeaderURLLoc(ref)
	if err != nil {
		r.logger().Error("header has no resolvable url location", zap.Error(err))
		return nil
	}
	r.urlLoc = urlLoc
	r.url.Init(r.eng, ref.Buf, urlLoc)
	return nil
}

// Attached reports whether the descriptor is backed by engine handles.
func (r *Request) Attached() bool {
	return r.ref.IsSet()
}

// Method returns the request method. The first call on an attached
// descriptor reads the engine's method token and caches the decoded value;
// unrecognized tokens cache as MethodUnknown and are not re-decoded. With
// no handle and no prior initialization it returns MethodUnknown.
func (r *Request) Method() message.Method {
	if !r.method.Initialized() && r.ref.IsSet() {
		token, err := r.eng.MethodToken(r.ref)
		switch {
		case err != nil:
			r.logger().Error("engine method token read failed", zap.Error(err))
		case token == "":
			r.logger().Error("engine returned an empty method token")
		default:
			r.method.Set(message.ParseMethodToken(token))
		}
	}
	return r.method.Get()
}

// Version returns the protocol version, following the same lazy caching
// policy as Method.
func (r *Request) Version() message.Version {
	if !r.version.Initialized() && r.ref.IsSet() {
		token, err := r.eng.VersionToken(r.ref)
		switch {
		case err != nil:
			r.logger().Error("engine version token read failed", zap.Error(err))
		case token == "":
			r.logger().Error("engine returned an empty version token")
		default:
			r.version.Set(message.ParseVersionToken(token))
		}
	}
	return r.version.Get()
}

// Headers returns the request's header collection.
func (r *Request) Headers() *headers.Headers {
	return &r.headers
}

// URL returns the request's URL view, unset if no URL materialized.
func (r *Request) URL() *urlview.URL {
	return &r.url
}

// Destroy releases what the descriptor acquired. A standalone request
// releases its URL location against a zero parent and destroys the private
// buffer; an attached request releases the URL location against the shared
// header location and leaves the buffer to its owner.
func (r *Request) Destroy() {
	if r.urlLoc != 0 {
		if r.ownsBuffer {
			if err := r.eng.ReleaseLoc(r.ref.Buf, 0, r.urlLoc); err != nil {
				r.logger().Error("url location release failed", zap.Error(err))
			}
		} else {
			if err := r.eng.ReleaseLoc(r.ref.Buf, r.ref.Loc, r.urlLoc); err != nil {
				r.logger().Error("url location release failed", zap.Error(err))
			}
		}
		r.urlLoc = 0
	}
	if r.ownsBuffer && r.ref.Buf != 0 {
		if err := r.eng.DestroyBuffer(r.ref.Buf); err != nil {
			r.logger().Error("buffer destroy failed", zap.Error(err))
		}
		r.ref = engine.Ref{}
	}
}
