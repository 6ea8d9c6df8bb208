package category

import "sort"

// BuildTree nests a flat list of categories of one type. Categories whose
// parent is missing from the list are dropped. Siblings are ordered by
// position, then name.
func BuildTree(flat []Category) []Node {
	children := make(map[string][]Category, len(flat))
	var roots []Category
	for _, c := range flat {
		if c.Tier == Primary {
			roots = append(roots, c)
			continue
		}
		pid := c.ParentID()
		children[pid] = append(children[pid], c)
	}

	var build func(cs []Category) []Node
	build = func(cs []Category) []Node {
		if len(cs) == 0 {
			return nil
		}
		SortSiblings(cs)
		out := make([]Node, 0, len(cs))
		for _, c := range cs {
			out = append(out, Node{Category: c, Children: build(children[c.ID])})
		}
		return out
	}
	return build(roots)
}

// SortSiblings orders categories by position, then name.
func SortSiblings(cs []Category) {
	sort.SliceStable(cs, func(i, j int) bool {
		if cs[i].Position != cs[j].Position {
			return cs[i].Position < cs[j].Position
		}
		return cs[i].Name < cs[j].Name
	})
}
