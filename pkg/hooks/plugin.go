package hooks

// Plugin receives phase callbacks. Implement it by embedding PluginBase and
// overriding only the phases you care about; every PluginBase handler
// resumes its invocation immediately, so an un-overridden phase passes
// straight through.
//
// Each handler invocation receives its own Resumer and owes it exactly one
// Resume or Terminate call, either before the handler returns or from a
// later, separately scheduled point.
type Plugin interface {
	HandleReadRequestHeadersPreRemap(txn *Transaction, r *Resumer)
	HandleReadRequestHeadersPostRemap(txn *Transaction, r *Resumer)
	HandleSendRequestHeaders(txn *Transaction, r *Resumer)
	HandleReadResponseHeaders(txn *Transaction, r *Resumer)
	HandleSendResponseHeaders(txn *Transaction, r *Resumer)
	HandleOSDNS(txn *Transaction, r *Resumer)
}

// PluginBase is the default Plugin: every handler resumes immediately.
type PluginBase struct{}

var _ Plugin = PluginBase{}

func (PluginBase) HandleReadRequestHeadersPreRemap(txn *Transaction, r *Resumer)  { r.Resume() }
func (PluginBase) HandleReadRequestHeadersPostRemap(txn *Transaction, r *Resumer) { r.Resume() }
func (PluginBase) HandleSendRequestHeaders(txn *Transaction, r *Resumer)          { r.Resume() }
func (PluginBase) HandleReadResponseHeaders(txn *Transaction, r *Resumer)         { r.Resume() }
func (PluginBase) HandleSendResponseHeaders(txn *Transaction, r *Resumer)         { r.Resume() }
func (PluginBase) HandleOSDNS(txn *Transaction, r *Resumer)                       { r.Resume() }
