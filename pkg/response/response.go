// Package response wraps one HTTP response owned by the proxy engine:
// header collection plus cached version, status code, and reason phrase,
// lazily materialized from the engine handles on first access.
package response

import (
	"go.uber.org/zap"

	"github.com/proxytools/go-proxybind/pkg/engine"
	"github.com/proxytools/go-proxybind/pkg/errors"
	"github.com/proxytools/go-proxybind/pkg/headers"
	"github.com/proxytools/go-proxybind/pkg/message"
)

// Option configures a Response at construction.
type Option func(*Response)

// WithLogger sets the logger for the response and its header collection.
func WithLogger(log *zap.Logger) Option {
	return func(r *Response) { r.log = log }
}

// Response is the response message descriptor. Unlike requests, responses
// are always attached: the engine creates them, so there is no standalone
// construction path and the descriptor never owns a buffer.
type Response struct {
	eng     engine.Engine
	ref     engine.Ref
	headers headers.Headers
	version message.Value[message.Version]
	status  message.Value[int]
	reason  message.Value[string]

	log *zap.Logger
}

// New creates an empty, unattached response descriptor.
func New(eng engine.Engine, opts ...Option) *Response {
	r := &Response{
		eng:     eng,
		version: message.NewValue(message.VersionUnknown),
		status:  message.NewValue(0),
		reason:  message.NewValue(""),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.headers.SetLogger(r.log)
	return r
}

func (r *Response) logger() *zap.Logger {
	if r.log == nil {
		return zap.NewNop()
	}
	return r.log
}

// Init attaches the descriptor to an engine header location. Permitted
// once; reinitialization is logged and ignored.
func (r *Response) Init(ref engine.Ref) error {
	if r.ref.Buf != 0 || r.ref.Loc != 0 {
		err := errors.New(errors.KindPrecondition, "response.Init", "descriptor already attached")
		r.logger().Error("response reinitialization ignored",
			zap.Uint32("buf", uint32(r.ref.Buf)),
			zap.Uint32("loc", uint32(r.ref.Loc)))
		return err
	}
	r.ref = ref
	r.headers.Init(r.eng, ref)
	return nil
}

// Attached reports whether the descriptor is backed by engine handles.
func (r *Response) Attached() bool {
	return r.ref.IsSet()
}

// Version returns the protocol version, computed from the engine at most
// once and cached, VersionUnknown when nothing is attached.
func (r *Response) Version() message.Version {
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

func (r *Response) readStatus() {
	code, reason, err := r.eng.StatusToken(r.ref)
	if err != nil {
		r.logger().Error("engine status read failed", zap.Error(err))
		return
	}
	r.status.Set(code)
	r.reason.Set(reason)
}

// StatusCode returns the response status code, 0 when nothing is attached.
func (r *Response) StatusCode() int {
	if !r.status.Initialized() && r.ref.IsSet() {
		r.readStatus()
	}
	return r.status.Get()
}

// ReasonPhrase returns the response reason phrase, "" when nothing is
// attached.
func (r *Response) ReasonPhrase() string {
	if !r.reason.Initialized() && r.ref.IsSet() {
		r.readStatus()
	}
	return r.reason.Get()
}

// Headers returns the response's header collection.
func (r *Response) Headers() *headers.Headers {
	return &r.headers
}
