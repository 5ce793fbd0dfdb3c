package cover

import "github.com/Faultbox/covergen/pkg/math"

// EventKind identifies a generation event.
type EventKind int

// Event kinds.
const (
	EventEdge EventKind = iota
	EventProbeMiss
	EventNodeCreated
	EventNodeExtended
	EventNodeMerged
	EventNodeFiltered
	EventChainRoot
	EventNodePruned
	EventTransition
)

var eventNames = [...]string{
	EventEdge:         "edge",
	EventProbeMiss:    "probe_miss",
	EventNodeCreated:  "node_created",
	EventNodeExtended: "node_extended",
	EventNodeMerged:   "node_merged",
	EventNodeFiltered: "node_filtered",
	EventChainRoot:    "chain_root",
	EventNodePruned:   "node_pruned",
	EventTransition:   "transition",
}

func (k EventKind) String() string {
	if int(k) < len(eventNames) {
		return eventNames[k]
	}
	return "unknown"
}

// Event is a structured record of something the pipeline did, for debug
// drawing or tracing.
type Event struct {
	Kind   EventKind
	Object string
	Node   int       // node index, -1 when not applicable
	From   math.Vec3 // edge start, probe origin or node position
	To     math.Vec3 // edge end, probe target or transition center
	Normal math.Vec3
}

// Observer receives generation events. Observe may be called from several
// workers at once.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

// Observe calls f(e).
func (f ObserverFunc) Observe(e Event) { f(e) }

type nopObserver struct{}

func (nopObserver) Observe(Event) {}
