package cover

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/covergen/pkg/math"
)

// OptimizeResult summarizes one Optimize call.
type OptimizeResult struct {
	Roots    int // chain roots, 1 plus one per recovered hole
	Accepted int // nodes linked into the chain
	Pruned   int
	Attempts int // total growth attempts
	Aborted  bool

	pruned []*Node
}

// Optimize orders obj's nodes into chains of spatially adjacent,
// similarly facing nodes and then prunes interior nodes that add nothing.
//
// Growth starts at node 0. Each attempt looks for the first unaccepted node
// within the search distance whose normal differs by less than the tolerance
// on X and Y. Failed attempts widen the search and, past Spacing times
// SearchLimitFactor, relax the tolerance. After MaxAttempts failures in a
// row the chain restarts from the first unaccepted node. A restart node only
// becomes a root once it links to something; when no candidate is left the
// object keeps the chain built so far and ErrChainAborted is returned.
func Optimize(obj *Object, p OptimizeParams, log *zap.Logger) (OptimizeResult, error) {
	if log == nil {
		log = zap.NewNop()
	}

	var res OptimizeResult
	nodes := obj.Nodes()
	n := len(nodes)
	if n == 0 {
		return res, nil
	}

	accepted := make([]*Node, 0, n)
	inChain := make([]bool, n)
	exhausted := make([]bool, n) // restart candidates that linked to nothing
	accept := func(i int) {
		accepted = append(accepted, nodes[i])
		inChain[i] = true
	}

	current := 0
	nodes[0].IsChainRoot = true
	accept(0)
	res.Roots = 1
	pending := false

	search, tol, attempts := p.SearchStep, p.BaseTolerance, 0
	for len(accepted) < n {
		if attempts >= p.MaxAttempts {
			if pending {
				exhausted[current] = true
			}
			next := restartCandidate(inChain, exhausted, current)
			if next < 0 {
				obj.ReplaceNodes(accepted)
				res.Accepted = len(accepted)
				res.Aborted = true
				log.Warn("hole in geometry and no node left to restart the chain",
					zap.String("object", obj.Name),
					zap.Int("accepted", len(accepted)),
					zap.Int("dropped", n-len(accepted)),
					zap.Int("nodes", n))
				return res, fmt.Errorf("%s: %w", obj.Name, ErrChainAborted)
			}

			log.Debug("hole in geometry, restarting chain",
				zap.String("object", obj.Name),
				zap.Int("node", next))
			current, pending = next, true
			search, tol, attempts = p.SearchStep, p.BaseTolerance, 0
		}

		attempts++
		res.Attempts++

		match := -1
		for i, cand := range nodes {
			if i == current || inChain[i] {
				continue
			}
			if nodes[current].Position.Distance(cand.Position) <= search &&
				normalWithin(nodes[current].Normal.Sub(cand.Normal), tol) {
				match = i
				break
			}
		}

		if match < 0 {
			search += p.SearchStep
			if search > p.Spacing*p.SearchLimitFactor {
				tol += p.ToleranceStep
				search = p.SearchStep
			}
			continue
		}

		if pending {
			nodes[current].IsChainRoot = true
			accept(current)
			res.Roots++
			pending = false
		}
		nodes[current].ConnectedToNext = true
		accept(match)
		current = match
		search, tol, attempts = p.SearchStep, p.BaseTolerance, 0
	}

	obj.ReplaceNodes(accepted)
	res.Accepted = len(accepted)
	res.pruned = prune(obj, p)
	res.Pruned = len(res.pruned)
	return res, nil
}

// restartCandidate returns the first node that is not chained, not current
// and not already tried as a restart, or -1.
func restartCandidate(inChain, exhausted []bool, current int) int {
	for i := range inChain {
		if i != current && !inChain[i] && !exhausted[i] {
			return i
		}
	}
	return -1
}

// normalWithin compares only the planar components of a normal delta.
func normalWithin(delta math.Vec3, tol float32) bool {
	return absf(delta.X) < tol && absf(delta.Y) < tol
}

// prune removes interior chain nodes that match both neighbors in spacing,
// facing, top height and floor height. Roots, segment tails and the two ends
// are kept. Neighbors are taken from the order before any removal.
func prune(obj *Object, p OptimizeParams) []*Node {
	nodes := obj.Nodes()
	maxDist := p.Spacing * p.PruneDistanceFactor

	var remove []*Node
	for i := 1; i < len(nodes)-1; i++ {
		prev, cur, next := nodes[i-1], nodes[i], nodes[i+1]
		if cur.IsChainRoot || !cur.ConnectedToNext {
			continue
		}
		if cur.Position.DistanceXY(prev.Position) > maxDist || cur.Position.DistanceXY(next.Position) > maxDist {
			continue
		}
		if prev.Normal.Dot(cur.Normal) <= p.PruneMinDot || next.Normal.Dot(cur.Normal) <= p.PruneMinDot {
			continue
		}
		if absf(cur.Height-prev.Height) >= p.PruneHeightDelta || absf(cur.Height-next.Height) >= p.PruneHeightDelta {
			continue
		}
		if absf(prev.Position.Z-cur.Position.Z) >= p.PruneZDelta || absf(next.Position.Z-cur.Position.Z) >= p.PruneZDelta {
			continue
		}
		remove = append(remove, cur)
	}

	obj.RemoveNodes(remove)
	return remove
}

func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
