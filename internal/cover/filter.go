package cover

// RemoveUpDown removes nodes whose normal is closer to vertical than
// threshold. Such nodes sit on tops, bottoms or ramps and give no lateral
// cover. It returns the number of removed nodes.
func RemoveUpDown(obj *Object, threshold float32) int {
	return len(removeUpDown(obj, threshold))
}

func removeUpDown(obj *Object, threshold float32) []*Node {
	var removed []*Node
	for _, n := range obj.Nodes() {
		if n.Normal.Z > threshold || n.Normal.Z < -threshold {
			removed = append(removed, n)
		}
	}
	obj.RemoveNodes(removed)
	return removed
}
