package tree

import (
	"testing"

	"github.com/sreevasthav1710/study10/model"
)

func uintPtr(v uint) *uint { return &v }

func sampleNodes() []model.StudyNode {
	// Chapter 1 with two subtopic-bearing topics, chapter 2 childless.
	return []model.StudyNode{
		{ID: 1, Name: "Algebra", NodeLevel: 0, SortOrder: 0},
		{ID: 2, Name: "Linear Equations", NodeLevel: 1, SortOrder: 0, ParentID: uintPtr(1)},
		{ID: 3, Name: "Quadratics", NodeLevel: 1, SortOrder: 1, ParentID: uintPtr(1)},
		{ID: 4, Name: "Factoring", NodeLevel: 2, SortOrder: 0, ParentID: uintPtr(3)},
		{ID: 5, Name: "Geometry", NodeLevel: 0, SortOrder: 1},
	}
}

func TestBuildForestNesting(t *testing.T) {
	forest := BuildForest(sampleNodes(), nil)

	if len(forest) != 2 {
		t.Fatalf("expected 2 root chapters, got %d", len(forest))
	}
	if forest[0].Name != "Algebra" || forest[1].Name != "Geometry" {
		t.Fatalf("roots out of order: %s, %s", forest[0].Name, forest[1].Name)
	}
	if len(forest[0].Children) != 2 {
		t.Fatalf("expected 2 topics under Algebra, got %d", len(forest[0].Children))
	}
	if len(forest[0].Children[1].Children) != 1 {
		t.Fatalf("expected 1 subtopic under Quadratics, got %d", len(forest[0].Children[1].Children))
	}
}

func TestBuildForestSortOrder(t *testing.T) {
	nodes := []model.StudyNode{
		{ID: 1, Name: "Second", SortOrder: 5},
		{ID: 2, Name: "First", SortOrder: 1},
		{ID: 3, Name: "Third", SortOrder: 5}, // ties break by id
	}
	forest := BuildForest(nodes, nil)

	got := []string{forest[0].Name, forest[1].Name, forest[2].Name}
	want := []string{"First", "Second", "Third"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order mismatch at %d: got %v, want %v", i, got, want)
		}
	}
}

func TestBuildForestDropsOrphanBranch(t *testing.T) {
	nodes := []model.StudyNode{
		{ID: 1, Name: "Chapter"},
		{ID: 2, Name: "Orphan Topic", ParentID: uintPtr(99)},
		{ID: 3, Name: "Orphan Child", ParentID: uintPtr(2)},
	}
	forest := BuildForest(nodes, nil)

	if len(forest) != 1 {
		t.Fatalf("expected only the valid chapter, got %d roots", len(forest))
	}
	if _, total := LeafStats(forest); total != 1 {
		t.Fatalf("orphan branch leaked into leaf count: total=%d", total)
	}
}

func TestProgressLeafOnly(t *testing.T) {
	// Leaves are 2 (Linear Equations), 4 (Factoring), 5 (Geometry).
	// Completing parents 1 and 3 must not move the needle.
	forest := BuildForest(sampleNodes(), map[uint]bool{1: true, 3: true})
	if got := Progress(forest); got != 0 {
		t.Fatalf("parent completion counted: got %d%%, want 0%%", got)
	}

	forest = BuildForest(sampleNodes(), map[uint]bool{2: true, 4: true})
	if got := Progress(forest); got != 67 {
		t.Fatalf("got %d%%, want 67%% for 2 of 3 leaves", got)
	}
}

func TestProgressRecomputesWhenLeavesChange(t *testing.T) {
	completion := map[uint]bool{2: true, 4: true}

	forest := BuildForest(sampleNodes(), completion)
	if got := Progress(forest); got != 67 {
		t.Fatalf("got %d%%, want 67%%", got)
	}

	// Adding a fourth leaf dilutes the same two completions to 50%.
	nodes := append(sampleNodes(), model.StudyNode{
		ID: 6, Name: "Trigonometry", NodeLevel: 1, SortOrder: 2, ParentID: uintPtr(1),
	})
	forest = BuildForest(nodes, completion)
	if got := Progress(forest); got != 50 {
		t.Fatalf("got %d%%, want 50%% after adding a leaf", got)
	}
}

func TestProgressZeroLeaves(t *testing.T) {
	if got := Progress(nil); got != 0 {
		t.Fatalf("empty forest: got %d%%, want 0%%", got)
	}
}

func TestProgressFullCompletion(t *testing.T) {
	forest := BuildForest(sampleNodes(), map[uint]bool{2: true, 4: true, 5: true})
	if got := Progress(forest); got != 100 {
		t.Fatalf("got %d%%, want 100%%", got)
	}
}

func TestCollectSubtreeIDs(t *testing.T) {
	ids := collectSubtreeIDs(sampleNodes(), 1)

	want := map[uint]bool{1: true, 2: true, 3: true, 4: true}
	if len(ids) != len(want) {
		t.Fatalf("got %d ids, want %d", len(ids), len(want))
	}
	for _, id := range ids {
		if !want[id] {
			t.Fatalf("unexpected id %d in subtree", id)
		}
	}

	// Rebuilding without the deleted subtree leaves only Geometry.
	var remaining []model.StudyNode
	deleted := make(map[uint]bool)
	for _, id := range ids {
		deleted[id] = true
	}
	for _, n := range sampleNodes() {
		if !deleted[n.ID] {
			remaining = append(remaining, n)
		}
	}
	forest := BuildForest(remaining, nil)
	if len(forest) != 1 || forest[0].Name != "Geometry" {
		t.Fatalf("rebuilt forest still contains deleted nodes: %+v", forest)
	}
}
