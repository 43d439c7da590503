package tree

import (
	"sort"

	"github.com/sreevasthav1710/study10/model"
)

// TreeNode is one curriculum node with its children nested and the calling
// student's completion mark annotated.
type TreeNode struct {
	ID        uint        `json:"id"`
	Name      string      `json:"name"`
	NodeLevel int         `json:"node_level"`
	SortOrder int         `json:"sort_order"`
	ParentID  *uint       `json:"parent_id,omitempty"`
	Completed bool        `json:"completed"`
	Children  []*TreeNode `json:"children"`
}

// IsLeaf reports whether the node has no children. Only leaves count toward
// progress percentages.
func (n *TreeNode) IsLeaf() bool {
	return len(n.Children) == 0
}

// BuildForest nests flat study nodes into ordered trees. Completion defaults
// to false for nodes absent from the completion map. Nodes whose parent id
// points at a missing node are dropped along with their whole branch.
func BuildForest(nodes []model.StudyNode, completion map[uint]bool) []*TreeNode {
	byID := make(map[uint]*TreeNode, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = &TreeNode{
			ID:        n.ID,
			Name:      n.Name,
			NodeLevel: n.NodeLevel,
			SortOrder: n.SortOrder,
			ParentID:  n.ParentID,
			Completed: completion[n.ID],
			Children:  []*TreeNode{},
		}
	}

	var roots []*TreeNode
	for _, n := range nodes {
		node := byID[n.ID]
		if n.ParentID == nil {
			roots = append(roots, node)
			continue
		}
		parent, ok := byID[*n.ParentID]
		if !ok {
			// Dangling parent reference: the branch stays invisible.
			continue
		}
		parent.Children = append(parent.Children, node)
	}

	sortForest(roots)
	return roots
}

func sortForest(nodes []*TreeNode) {
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].SortOrder != nodes[j].SortOrder {
			return nodes[i].SortOrder < nodes[j].SortOrder
		}
		return nodes[i].ID < nodes[j].ID
	})
	for _, n := range nodes {
		sortForest(n.Children)
	}
}

// LeafStats counts completion units in a forest. Only childless nodes are
// units; a chapter with topics under it never counts itself.
func LeafStats(forest []*TreeNode) (completed, total int) {
	for _, n := range forest {
		c, t := leafStatsNode(n)
		completed += c
		total += t
	}
	return completed, total
}

func leafStatsNode(n *TreeNode) (completed, total int) {
	if n.IsLeaf() {
		if n.Completed {
			return 1, 1
		}
		return 0, 1
	}
	for _, child := range n.Children {
		c, t := leafStatsNode(child)
		completed += c
		total += t
	}
	return completed, total
}

// Progress returns the rounded percentage of completed leaves across the
// forest. A forest with no leaves is 0 percent, never a division error.
func Progress(forest []*TreeNode) int {
	completed, total := LeafStats(forest)
	if total == 0 {
		return 0
	}
	// Integer half-up rounding of 100*completed/total.
	return (100*completed + total/2) / total
}
