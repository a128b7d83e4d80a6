package analysis

import "github.com/0xPolygonMiden/compiler-sub007/pkg/hir"

// Loop is a natural loop: for a back-edge (tail -> head) where head
// dominates tail, Loop.Blocks is {head} union every block reachable
// backward from tail without crossing head.
type Loop struct {
	Header *hir.Block
	Blocks map[*hir.Block]bool
	Parent *Loop
	Depth  int
}

// Loops computes the natural-loop forest of cfg using dom.
func Loops(cfg *CFG, dom *DomTree) map[*hir.Block]*Loop {
	headers := make(map[*hir.Block]*Loop)

	// Find back-edges: (tail -> head) where head dominates tail.
	for _, b := range cfg.Blocks() {
		for _, e := range cfg.Successors(b) {
			head := e.Block
			tail := b

			if !dom.Dominates(head, tail) {
				continue
			}

			loop, ok := headers[head]
			if !ok {
				loop = &Loop{Header: head, Blocks: map[*hir.Block]bool{head: true}}
				headers[head] = loop
			}

			collectBackward(cfg, tail, head, loop.Blocks)
		}
	}

	// Determine containment (a loop L1 contains L2 if L1's header
	// dominates L2's header and L1 != L2 and L1.Blocks contains L2.Blocks).
	for _, l1 := range headers {
		for _, l2 := range headers {
			if l1 == l2 {
				continue
			}

			if l1.Blocks[l2.Header] && dom.Dominates(l1.Header, l2.Header) {
				if l2.Parent == nil || l1.Blocks[l2.Parent.Header] {
					l2.Parent = l1
				}
			}
		}
	}

	for _, l := range headers {
		depth := 0

		for p := l.Parent; p != nil; p = p.Parent {
			depth++
		}

		l.Depth = depth
	}

	// Map every block to its innermost containing loop.
	blockLoop := make(map[*hir.Block]*Loop)

	for _, l := range headers {
		for b := range l.Blocks {
			if cur, ok := blockLoop[b]; !ok || l.Depth > cur.Depth {
				blockLoop[b] = l
			}
		}
	}

	return blockLoop
}

func collectBackward(cfg *CFG, from, head *hir.Block, into map[*hir.Block]bool) {
	if into[from] {
		return
	}

	into[from] = true

	if from == head {
		return
	}

	for _, e := range cfg.Predecessors(from) {
		collectBackward(cfg, e.Block, head, into)
	}
}
