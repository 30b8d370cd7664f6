package lower

import "github.com/Translit-INC/translit/internal/ir"

// phiEdge connects an incoming slot to the cell of a PHI that reads it.
type phiEdge struct {
	cell int // PHI result slot
	at   int // PHI instruction index
}

// phiGraph records, for every slot, the PHI cells that merge it. A PHI
// holds the value most recently written to any of its incoming slots
// before the PHI itself, so every such write also stores into the cell.
//
// Only writes earlier in program order count. A SET to an incoming cell
// placed after the PHI, such as at the bottom of a loop body, does not
// reach the PHI on the next iteration; read the cell directly instead.
type phiGraph map[int][]phiEdge

func newPhiGraph(s *ir.Snapshot, slots []ir.Slot) phiGraph {
	g := make(phiGraph)
	result := make(map[int]int)
	for idx, sl := range slots {
		if sl.Kind == ir.SlotCell {
			result[sl.Inst] = idx
		}
	}
	for i := 0; i < s.Len(); i++ {
		in := s.Instruction(i)
		if in.Op != ir.OpPHI {
			continue
		}
		cell := result[i]
		for _, o := range in.Operands {
			if v, ok := o.(ir.Variable); ok {
				g[v.Slot] = append(g[v.Slot], phiEdge{cell: cell, at: i})
			}
		}
	}
	return g
}

// sinks returns the PHI cells that must receive a write to slot made at
// instruction index at, following PHIs of PHIs. The order is stable.
func (g phiGraph) sinks(slot, at int) []int {
	if len(g[slot]) == 0 {
		return nil
	}
	var out []int
	seen := map[int]bool{}
	queue := []int{slot}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, e := range g[cur] {
			if e.at <= at || seen[e.cell] {
				continue
			}
			seen[e.cell] = true
			out = append(out, e.cell)
			queue = append(queue, e.cell)
		}
	}
	return out
}
