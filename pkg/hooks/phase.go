// Package hooks delivers control to plugin code at fixed points in message
// processing. The engine drives: it fires a phase on a transaction, the
// registered plugins run, and each firing must be resumed (or terminated)
// exactly once before the exchange proceeds.
package hooks

// Phase is one named point in HTTP exchange processing at which plugin
// handlers may run.
type Phase int

const (
	// PhaseReadRequestHeadersPreRemap fires before remap has occurred.
	PhaseReadRequestHeadersPreRemap Phase = iota

	// PhaseReadRequestHeadersPostRemap fires directly after remap.
	PhaseReadRequestHeadersPostRemap

	// PhaseSendRequestHeaders fires before request headers go to the origin.
	PhaseSendRequestHeaders

	// PhaseReadResponseHeaders fires after response headers arrive from the
	// origin.
	PhaseReadResponseHeaders

	// PhaseSendResponseHeaders fires before response headers go to the
	// client.
	PhaseSendResponseHeaders

	// PhaseOSDNS fires after the OS DNS lookup. It is out-of-band: not
	// ordered relative to the phases above.
	PhaseOSDNS
)

var phaseStrings = [...]string{
	PhaseReadRequestHeadersPreRemap:  "read-request-headers-pre-remap",
	PhaseReadRequestHeadersPostRemap: "read-request-headers-post-remap",
	PhaseSendRequestHeaders:          "send-request-headers",
	PhaseReadResponseHeaders:         "read-response-headers",
	PhaseSendResponseHeaders:         "send-response-headers",
	PhaseOSDNS:                       "os-dns",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseStrings) {
		return "unknown"
	}
	return phaseStrings[p]
}

// OrderedPhases lists the phases of one exchange in the order the engine
// fires them. PhaseOSDNS is absent: it has no position in this sequence.
func OrderedPhases() []Phase {
	return []Phase{
		PhaseReadRequestHeadersPreRemap,
		PhaseReadRequestHeadersPostRemap,
		PhaseSendRequestHeaders,
		PhaseReadResponseHeaders,
		PhaseSendResponseHeaders,
	}
}
