package stowage

// Revision returns the registry's current revision: the count of logical
// mutations observed since creation. Decoding and snapshotting do not advance
// it.
func (r *Registry) Revision() uint64 {
	return r.revision
}

// DirtySince returns, in registration order, the nodes mutated after the
// given registry revision. Stores use it for incremental saves: remember the
// revision at the last completed save, then rewrite only what DirtySince
// reports.
func (r *Registry) DirtySince(rev uint64) []*Node {
	var out []*Node
	for _, n := range r.nodes {
		if n.revision > rev {
			out = append(out, n)
		}
	}
	return out
}
