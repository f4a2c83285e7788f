package lsdl

import "fmt"

// Sessionize wires the derived session/epoch signals plus a
// sessionized_<member> companion for every member passed in, per
// spec.md §4.B. Schema.Sessionize must be called first to name the
// session-identifying member; its companion clock doubles as the
// epoch every sessionized_<m> measures recency against.
//
// Grounded on the video-metrics demo's create_session_signal /
// create_epoch_signal pair (lsp_model demos/video-metrics/schema.py):
// epoch_signal is session_id.clock() and session_signal is
// session_id.count_changes() -- not a derived boolean liveness edge.
// The session-identifying member's own clock already ticks exactly
// once per patch that re-sends it, so it IS the session boundary
// signal; layering a separate liveness boolean on top would only
// reintroduce the value-vs-patch-presence confusion sessionizedMember
// is built to avoid.
func (b *Builder) Sessionize(members ...Handle) (sessionSignal, epochSignal Handle, sessionized []Handle) {
	if !b.Schema.Sessionized {
		panic("lsdl: Sessionize requires Schema.Sessionize to be called first")
	}
	epochSignal = b.InputClock(b.Schema.SessionSignalKey)
	sessionSignal = b.CountChanges(epochSignal)
	scopeStarts := b.EdgeTriggeredLatch(sessionSignal, epochSignal, -1, "")

	sessionized = make([]Handle, len(members))
	for i, m := range members {
		sessionized[i] = b.sessionizedMember(scopeStarts, epochSignal, m)
	}
	return sessionSignal, epochSignal, sessionized
}

// sessionizedMember holds m while m has been refreshed at or after the
// session's current epoch, and reverts to m's type default once the
// session has moved on without m itself having been re-sent yet --
// the epoch-comparison pattern from lsp_model/schema.py's
// _ScopeContext.scoped: latch the epoch at the most recent session
// boundary (scopeStarts) and the epoch at m's own most recent update
// (eventStarts), and keep m only while the latter hasn't fallen behind
// the former.
func (b *Builder) sessionizedMember(scopeStarts, epochSignal, m Handle) Handle {
	memberKey := mustInputSignalName(m, "Sessionize")
	eventStarts := b.EdgeTriggeredLatch(b.InputClock(memberKey), epochSignal, -1, "")

	def := m.typ.DefaultValue()
	defaultConst := b.Const(def, m.typ)
	return mapN(b, "a0 <= a1 ? a2 : a3", m.typ, scopeStarts, eventStarts, m, defaultConst)
}

func mustInputSignalName(h Handle, who string) string {
	if h.ref.Kind != RefInputSignal {
		panic(fmt.Sprintf("lsdl: %s requires a raw schema input member, got a %s handle", who, h.ref.Kind))
	}
	return h.ref.InputName
}
