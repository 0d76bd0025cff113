package document

// Offset converts p into a linear offset that survives run splits and
// wrapper removal. Line breaks and block ends count as one unit each, so
// positions on empty lines stay distinct.
func (d *Document) Offset(p Position) (int, bool) {
	if !d.Valid(p) {
		return 0, false
	}
	starts := d.runStarts()
	return starts[p.Run] + p.Offset, true
}

// PositionAt converts a linear offset back to a position. On a boundary
// shared by two runs the earlier run wins. Offsets past the end clamp to
// End.
func (d *Document) PositionAt(off int) Position {
	runs := d.Runs()
	if len(runs) == 0 || off <= 0 {
		return Position{}
	}
	starts := d.runStarts()
	for i, r := range runs {
		if off <= starts[i]+len(r.Text.Value) {
			if off < starts[i] {
				return Position{Run: i}
			}
			return Position{Run: i, Offset: off - starts[i]}
		}
	}
	return d.End()
}

func (d *Document) runStarts() []int {
	starts := make([]int, 0, d.RunCount())
	n := 0
	var walk func(c Container)
	walk = func(c Container) {
		for _, node := range c.Nodes() {
			switch v := node.(type) {
			case *Text:
				starts = append(starts, n)
				n += len(v.Value)
			case *LineBreak:
				n++
			case *Inline:
				walk(v)
			case *Block:
				walk(v)
				n++
			}
		}
	}
	walk(d.root)
	return starts
}
