package hooks

import (
	"go.uber.org/zap"
)

// Dispatcher routes engine-delivered phase firings to registered plugins.
// It holds the global registration tables and nothing else: transactions
// are created and destroyed by the engine-driven lifecycle, and the resume
// contract hands control back to the engine.
//
// Register all global plugins before the first Fire. The tables are not
// synchronized; mutation during active dispatch is not supported.
type Dispatcher struct {
	log    *zap.Logger
	global map[Phase][]Plugin
}

// NewDispatcher creates an empty dispatcher. A nil logger means no logging.
func NewDispatcher(log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{
		log:    log,
		global: make(map[Phase][]Plugin),
	}
}

// Register adds a global plugin for one phase. Global plugins fire for
// every transaction, in registration order, before any per-transaction
// plugins of the same phase.
func (d *Dispatcher) Register(phase Phase, p Plugin) {
	d.global[phase] = append(d.global[phase], p)
}

// Fire delivers one phase firing to every plugin registered for it, global
// first, then per-transaction. The phase completes (the engine is told to
// continue) once every invoked plugin has resumed; with synchronous
// plugins that happens before Fire returns.
func (d *Dispatcher) Fire(phase Phase, txn *Transaction) {
	plugins := append([]Plugin(nil), d.global[phase]...)
	plugins = append(plugins, txn.phasePlugins(phase)...)

	d.log.Debug("firing phase",
		zap.Stringer("txn", txn.ID()),
		zap.Stringer("phase", phase),
		zap.Int("plugins", len(plugins)))

	txn.dispatch(phase, plugins)
}
