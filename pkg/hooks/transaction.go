package hooks

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/proxytools/go-proxybind/pkg/errors"
	"github.com/proxytools/go-proxybind/pkg/request"
	"github.com/proxytools/go-proxybind/pkg/response"
)

// Continuation is how the engine is told to proceed with or abort an
// exchange after a phase firing completes.
type Continuation interface {
	Continue(phase Phase)
	Abort(phase Phase)
}

// Resumer is the capability handed to one plugin invocation. It is consumed
// by exactly one Resume or Terminate call; any later call through the same
// Resumer is logged and ignored, and cannot complete an invocation that
// belongs to another plugin. Safe to call from any goroutine.
type Resumer struct {
	txn *Transaction
	seq uint64
}

// Resume completes this invocation. When further plugins are registered for
// the phase the next one is invoked; when this was the last, the engine is
// told to continue.
func (r *Resumer) Resume() {
	r.txn.resume(r.seq)
}

// Terminate aborts the exchange instead of resuming it. Plugins still
// queued for the phase are discarded.
func (r *Resumer) Terminate() {
	r.txn.terminate(r.seq)
}

// Transaction is one in-flight HTTP exchange: its request and response
// descriptors, the engine continuation, and the suspended-firing state the
// resume contract operates on.
//
// Phases of a transaction execute strictly one at a time; the engine never
// acts on the same transaction from two threads concurrently. Resumers may
// be used from any goroutine, which is the one place this type needs its
// own synchronization.
type Transaction struct {
	id   uuid.UUID
	req  *request.Request
	cont Continuation
	log  *zap.Logger

	mu      sync.Mutex
	resp    *response.Response
	phase   Phase
	queue   []Plugin
	seq     uint64
	pending bool
	plugins map[Phase][]Plugin
}

// NewTransaction creates a transaction around an engine continuation and a
// request descriptor. The response descriptor is attached later, when the
// exchange reaches its response phases. A nil logger means no logging.
func NewTransaction(cont Continuation, req *request.Request, log *zap.Logger) *Transaction {
	if log == nil {
		log = zap.NewNop()
	}
	return &Transaction{
		id:      uuid.New(),
		req:     req,
		cont:    cont,
		log:     log,
		plugins: make(map[Phase][]Plugin),
	}
}

// ID is the transaction's correlation id.
func (t *Transaction) ID() uuid.UUID {
	return t.id
}

// Request returns the request descriptor.
func (t *Transaction) Request() *request.Request {
	return t.req
}

// Response returns the response descriptor, nil during request-only phases.
func (t *Transaction) Response() *response.Response {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.resp
}

// AttachResponse sets the response descriptor. Permitted once; a second
// attach is logged and ignored.
func (t *Transaction) AttachResponse(resp *response.Response) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.resp != nil {
		err := errors.New(errors.KindPrecondition, "hooks.AttachResponse", "response already attached")
		t.log.Error("response reattachment ignored", zap.Stringer("txn", t.id))
		return err
	}
	t.resp = resp
	return nil
}

// AddPlugin registers a per-transaction plugin for one phase. It fires
// after the global plugins of that phase and is discarded with the
// transaction.
func (t *Transaction) AddPlugin(phase Phase, p Plugin) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.plugins[phase] = append(t.plugins[phase], p)
}

func (t *Transaction) phasePlugins(phase Phase) []Plugin {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Plugin(nil), t.plugins[phase]...)
}

// dispatch runs the plugins of one phase firing. Plugins run one at a
// time: each is invoked with a fresh Resumer, and the next starts only once
// the previous invocation's Resumer has been consumed. With no plugins the
// phase completes immediately. Dispatching while a firing is still
// suspended is logged and dropped without signalling the engine.
func (t *Transaction) dispatch(phase Phase, plugins []Plugin) {
	t.mu.Lock()
	if t.pending {
		t.log.Error("phase dispatched while a firing is still suspended",
			zap.Stringer("txn", t.id),
			zap.Stringer("suspended", t.phase),
			zap.Stringer("phase", phase))
		t.mu.Unlock()
		return
	}
	if len(plugins) == 0 {
		t.mu.Unlock()
		t.cont.Continue(phase)
		return
	}
	t.phase = phase
	t.queue = plugins
	t.pending = true
	t.seq++
	next := t.queue[0]
	r := &Resumer{txn: t, seq: t.seq}
	t.mu.Unlock()

	t.invoke(phase, next, r)
}

func (t *Transaction) resume(seq uint64) {
	t.mu.Lock()
	if !t.pending {
		t.log.Error("resume without a suspended firing",
			zap.Stringer("txn", t.id))
		t.mu.Unlock()
		return
	}
	if seq != t.seq {
		t.log.Error("resume on a consumed invocation",
			zap.Stringer("txn", t.id),
			zap.Stringer("phase", t.phase))
		t.mu.Unlock()
		return
	}
	phase := t.phase
	t.queue = t.queue[1:]
	if len(t.queue) == 0 {
		t.pending = false
		t.mu.Unlock()
		t.cont.Continue(phase)
		return
	}
	t.seq++
	next := t.queue[0]
	r := &Resumer{txn: t, seq: t.seq}
	t.mu.Unlock()

	t.invoke(phase, next, r)
}

func (t *Transaction) terminate(seq uint64) {
	t.mu.Lock()
	if !t.pending {
		t.log.Error("terminate without a suspended firing",
			zap.Stringer("txn", t.id))
		t.mu.Unlock()
		return
	}
	if seq != t.seq {
		t.log.Error("terminate on a consumed invocation",
			zap.Stringer("txn", t.id),
			zap.Stringer("phase", t.phase))
		t.mu.Unlock()
		return
	}
	phase := t.phase
	t.queue = nil
	t.pending = false
	t.mu.Unlock()

	t.cont.Abort(phase)
}

func (t *Transaction) invoke(phase Phase, p Plugin, r *Resumer) {
	switch phase {
	case PhaseReadRequestHeadersPreRemap:
		p.HandleReadRequestHeadersPreRemap(t, r)
	case PhaseReadRequestHeadersPostRemap:
		p.HandleReadRequestHeadersPostRemap(t, r)
	case PhaseSendRequestHeaders:
		p.HandleSendRequestHeaders(t, r)
	case PhaseReadResponseHeaders:
		p.HandleReadResponseHeaders(t, r)
	case PhaseSendResponseHeaders:
		p.HandleSendResponseHeaders(t, r)
	case PhaseOSDNS:
		p.HandleOSDNS(t, r)
	default:
		t.log.Error("unknown phase dropped", zap.Stringer("txn", t.id), zap.Stringer("phase", phase))
		r.Resume()
	}
}

// Destroy tears the transaction down: the request descriptor releases its
// handles and per-transaction registrations are discarded. The engine
// calls this when the exchange completes or aborts.
func (t *Transaction) Destroy() {
	t.mu.Lock()
	t.plugins = make(map[Phase][]Plugin)
	t.queue = nil
	t.pending = false
	t.mu.Unlock()

	if t.req != nil {
		t.req.Destroy()
	}
}
