package trees

// NamedNode is the name/value/children shape consumed by hierarchical charts.
// Leaves carry Value. Interior nodes carry Children, and also Value when the
// directory itself holds files, so values always sum to the file count.
type NamedNode struct {
	Name     string      `json:"name"`
	Value    *int        `json:"value,omitempty"`
	Children []NamedNode `json:"children,omitempty"`
}

// Flatten converts the children of root into named nodes, keeping insertion
// order.
func Flatten(root *Node) []NamedNode {
	if root == nil {
		return []NamedNode{}
	}
	out := make([]NamedNode, 0, len(root.Children))
	for _, c := range root.Children {
		out = append(out, toNamed(c))
	}
	return out
}

func toNamed(n *Node) NamedNode {
	node := NamedNode{Name: n.Name}
	if n.IsLeaf() || n.Count > 0 {
		count := n.Count
		node.Value = &count
	}
	if !n.IsLeaf() {
		node.Children = make([]NamedNode, 0, len(n.Children))
		for _, c := range n.Children {
			node.Children = append(node.Children, toNamed(c))
		}
	}
	return node
}

// SumValues adds up every Value in nodes and their descendants.
func SumValues(nodes []NamedNode) int {
	total := 0
	for _, n := range nodes {
		if n.Value != nil {
			total += *n.Value
		}
		total += SumValues(n.Children)
	}
	return total
}
