package hierarchy

import "sort"

// TreeNode là Node kèm con đã lồng và độ sâu (root = 0)
type TreeNode struct {
	*Node
	Depth    int         `json:"depth"`
	Children []*TreeNode `json:"children"`
}

// BuildForest dựng cây từ danh sách phẳng đã fetch sẵn, không query thêm.
// Root là node có parent_id null; anh em sắp theo (sort_order, name), hòa thì theo id.
// Node không nối được về root nào bị bỏ qua.
func BuildForest(nodes []*Node) []*TreeNode {
	byParent := make(map[int64][]*Node)
	roots := make([]*Node, 0)
	for _, n := range nodes {
		if n.ParentID == nil {
			roots = append(roots, n)
			continue
		}
		byParent[*n.ParentID] = append(byParent[*n.ParentID], n)
	}

	visited := make(map[int64]struct{}, len(nodes))

	var build func(n *Node, depth int) *TreeNode
	build = func(n *Node, depth int) *TreeNode {
		visited[n.ID] = struct{}{}
		tn := &TreeNode{Node: n, Depth: depth, Children: make([]*TreeNode, 0)}

		children := byParent[n.ID]
		SortSiblings(children)
		for _, child := range children {
			if _, seen := visited[child.ID]; seen {
				continue
			}
			tn.Children = append(tn.Children, build(child, depth+1))
		}
		return tn
	}

	SortSiblings(roots)
	forest := make([]*TreeNode, 0, len(roots))
	for _, r := range roots {
		forest = append(forest, build(r, 0))
	}
	return forest
}

// SortSiblings sắp xếp tại chỗ theo (sort_order, name, id)
func SortSiblings(nodes []*Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		a, b := nodes[i], nodes[j]
		if a.SortOrder != b.SortOrder {
			return a.SortOrder < b.SortOrder
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
}

// Flatten duyệt pre-order
func Flatten(forest []*TreeNode) []*TreeNode {
	out := make([]*TreeNode, 0)
	var walk func([]*TreeNode)
	walk = func(level []*TreeNode) {
		for _, tn := range level {
			out = append(out, tn)
			walk(tn.Children)
		}
	}
	walk(forest)
	return out
}
