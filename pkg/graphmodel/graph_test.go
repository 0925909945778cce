package graphmodel

import (
	"context"
	"errors"
	"image"
	"math/rand"
	"slices"
	"testing"
)

// testBehavior implements Behavior for testing.
type testBehavior struct{ name string }

func (b testBehavior) DisplayName() string                  { return b.name }
func (b testBehavior) OnEnter(context.Context, *Node) error { return nil }
func (b testBehavior) OnExit(context.Context, *Node) error  { return nil }

func testFactory() *Node       { return NewNode("test", testBehavior{name: "T"}) }
func nilFactory() *Node        { return nil }
func noBehaviorFactory() *Node { return NewNode("test", nil) }

// testSized implements Spatial for testing.
type testSized struct{ X, Y, W, H int }

func (n testSized) Pos() image.Point  { return image.Pt(n.X, n.Y) }
func (n testSized) Size() image.Point { return image.Pt(n.W, n.H) }

func mustNode(t *testing.T, g *Graph, x, y int) *Node {
	t.Helper()
	n, err := g.CreateNode(testFactory, image.Pt(x, y))
	if err != nil {
		t.Fatalf("CreateNode: %v", err)
	}
	return n
}

func mustEdge(t *testing.T, g *Graph, p, c *Node) {
	t.Helper()
	if err := g.CreateEdge(p, c); err != nil {
		t.Fatalf("CreateEdge: %v", err)
	}
}

// ── Spatial helpers ──

func TestCenterOf(t *testing.T) {
	n := testSized{X: 10, Y: 20, W: 8, H: 4}
	if c := CenterOf(n); c != image.Pt(14, 22) {
		t.Errorf("CenterOf: expected (14,22), got %v", c)
	}
}

func TestBoundsOf(t *testing.T) {
	n := testSized{X: 10, Y: 20, W: 8, H: 4}
	want := image.Rect(10, 20, 18, 24)
	if b := BoundsOf(n); b != want {
		t.Errorf("BoundsOf: expected %v, got %v", want, b)
	}
}

// ── CreateNode ──

func TestCreateNodeAssignsIDAndPosition(t *testing.T) {
	g := New("g")
	a := mustNode(t, g, 3, 7)
	b := mustNode(t, g, 0, 0)
	if a.ID == "" || b.ID == "" || a.ID == b.ID {
		t.Errorf("expected distinct non-empty IDs, got %q and %q", a.ID, b.ID)
	}
	if a.Position != image.Pt(3, 7) {
		t.Errorf("expected position (3,7), got %v", a.Position)
	}
	if g.Node(a.ID) != a {
		t.Error("Node() did not return the created node")
	}
}

func TestCreateNodeInvalidFactory(t *testing.T) {
	g := New("g")
	for name, f := range map[string]Factory{"nil": nil, "nil node": nilFactory, "no behavior": noBehaviorFactory} {
		_, err := g.CreateNode(f, image.Pt(0, 0))
		if !errors.Is(err, ErrInvalidFactory) {
			t.Errorf("%s: expected ErrInvalidFactory, got %v", name, err)
		}
	}
	if g.Len() != 0 {
		t.Errorf("failed creates must not add nodes, got %d", g.Len())
	}
}

func TestNodesInsertionOrder(t *testing.T) {
	g := New("g")
	a := mustNode(t, g, 30, 0)
	b := mustNode(t, g, 10, 0)
	c := mustNode(t, g, 20, 0)
	nodes := g.Nodes()
	if len(nodes) != 3 || nodes[0] != a || nodes[1] != b || nodes[2] != c {
		t.Error("Nodes() not in insertion order")
	}
}

// ── Edges ──

func TestCreateEdgeIdempotent(t *testing.T) {
	g := New("g")
	a := mustNode(t, g, 0, 0)
	b := mustNode(t, g, 0, 10)
	mustEdge(t, g, a, b)
	mustEdge(t, g, a, b)
	if got := a.Children(); !slices.Equal(got, []string{b.ID}) {
		t.Errorf("expected children [b], got %v", got)
	}
	if got := b.Parents(); !slices.Equal(got, []string{a.ID}) {
		t.Errorf("expected parents [a], got %v", got)
	}
}

func TestCreateRemoveEdgeRoundTrip(t *testing.T) {
	g := New("g")
	a := mustNode(t, g, 0, 0)
	b := mustNode(t, g, 0, 10)
	c := mustNode(t, g, 0, 20)
	mustEdge(t, g, a, c)
	mustEdge(t, g, c, b)

	beforeA, beforeB := a.Children(), b.Parents()
	mustEdge(t, g, a, b)
	if err := g.RemoveEdge(a, b); err != nil {
		t.Fatalf("RemoveEdge: %v", err)
	}
	if !slices.Equal(a.Children(), beforeA) || !slices.Equal(b.Parents(), beforeB) {
		t.Errorf("round trip changed adjacency: children %v, parents %v", a.Children(), b.Parents())
	}
}

func TestRemoveAbsentEdgeNoop(t *testing.T) {
	g := New("g")
	a := mustNode(t, g, 0, 0)
	b := mustNode(t, g, 0, 10)
	if err := g.RemoveEdge(a, b); err != nil {
		t.Errorf("RemoveEdge on absent edge: %v", err)
	}
}

func TestCreateEdgeForeignNode(t *testing.T) {
	g := New("g")
	other := New("other")
	a := mustNode(t, g, 0, 0)
	b := mustNode(t, other, 0, 0)
	if err := g.CreateEdge(a, b); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("expected ErrNodeNotFound, got %v", err)
	}
	if a.ChildCount() != 0 {
		t.Error("rejected edge must not touch adjacency")
	}
}

func TestSelfEdgeAndCyclesAllowed(t *testing.T) {
	g := New("g")
	a := mustNode(t, g, 0, 0)
	b := mustNode(t, g, 0, 10)
	mustEdge(t, g, a, b)
	mustEdge(t, g, b, a)
	mustEdge(t, g, a, a)
	if err := g.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

// ── DeleteNode ──

func TestDeleteNodeWithEdgesIsDangling(t *testing.T) {
	g := New("g")
	a := mustNode(t, g, 0, 0)
	b := mustNode(t, g, 0, 10)
	d := mustNode(t, g, 0, 20)
	mustEdge(t, g, a, b)
	mustEdge(t, g, b, d)

	if err := g.DeleteNode(b); !errors.Is(err, ErrDanglingReference) {
		t.Fatalf("expected ErrDanglingReference, got %v", err)
	}
	if g.Node(b.ID) == nil {
		t.Fatal("failed delete must keep the node")
	}

	if err := g.RemoveEdge(a, b); err != nil {
		t.Fatal(err)
	}
	if err := g.RemoveEdge(b, d); err != nil {
		t.Fatal(err)
	}
	if err := g.DeleteNode(b); err != nil {
		t.Fatalf("DeleteNode after detaching: %v", err)
	}
	if a.HasChild(b.ID) || d.HasParent(b.ID) {
		t.Error("neighbours still reference deleted node")
	}
	if g.Len() != 2 {
		t.Errorf("expected 2 nodes, got %d", g.Len())
	}
}

func TestDeleteForeignNode(t *testing.T) {
	g := New("g")
	n := NewNode("x", testBehavior{})
	if err := g.DeleteNode(n); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("expected ErrNodeNotFound, got %v", err)
	}
}

// ── Sorting ──

func TestSortIsStable(t *testing.T) {
	g := New("g")
	r := mustNode(t, g, 0, 0)
	c0 := mustNode(t, g, 0, 5)
	c1 := mustNode(t, g, 0, 5)
	c2 := mustNode(t, g, 0, 2)
	mustEdge(t, g, r, c0)
	mustEdge(t, g, r, c1)
	mustEdge(t, g, r, c2)

	if err := g.SortAdjacency(r); err != nil {
		t.Fatal(err)
	}
	want := []string{c2.ID, c0.ID, c1.ID}
	if got := r.Children(); !slices.Equal(got, want) {
		t.Errorf("expected [c2 c0 c1], got %v", got)
	}
}

func TestSortChildrenByVerticalPosition(t *testing.T) {
	g := New("g")
	r := mustNode(t, g, 0, -10)
	a := mustNode(t, g, 0, 0)
	b := mustNode(t, g, 0, 10)
	c := mustNode(t, g, 0, 5)
	mustEdge(t, g, r, a)
	mustEdge(t, g, r, b)
	mustEdge(t, g, r, c)

	if err := g.SortAll(); err != nil {
		t.Fatal(err)
	}
	want := []string{a.ID, c.ID, b.ID}
	if got := r.Children(); !slices.Equal(got, want) {
		t.Errorf("expected [A C B], got %v", got)
	}
}

func TestSortParents(t *testing.T) {
	g := New("g")
	child := mustNode(t, g, 0, 50)
	low := mustNode(t, g, 0, 30)
	high := mustNode(t, g, 0, 1)
	mustEdge(t, g, low, child)
	mustEdge(t, g, high, child)

	if err := g.SortAdjacency(child); err != nil {
		t.Fatal(err)
	}
	if got := child.Parents(); !slices.Equal(got, []string{high.ID, low.ID}) {
		t.Errorf("expected [high low], got %v", got)
	}
}

func TestMoveNodeDoesNotResort(t *testing.T) {
	g := New("g")
	r := mustNode(t, g, 0, 0)
	a := mustNode(t, g, 0, 10)
	b := mustNode(t, g, 0, 20)
	mustEdge(t, g, r, a)
	mustEdge(t, g, r, b)

	if err := g.MoveNode(b, image.Pt(0, -5)); err != nil {
		t.Fatal(err)
	}
	if got := r.Children(); !slices.Equal(got, []string{a.ID, b.ID}) {
		t.Errorf("move must not reorder, got %v", got)
	}
	if err := g.SortAdjacency(r); err != nil {
		t.Fatal(err)
	}
	if got := r.Children(); !slices.Equal(got, []string{b.ID, a.ID}) {
		t.Errorf("expected [b a] after sort, got %v", got)
	}
}

// ── Clone ──

func TestCloneIsIndependent(t *testing.T) {
	g := New("g")
	a := mustNode(t, g, 0, 0)
	b := mustNode(t, g, 0, 10)
	mustEdge(t, g, a, b)

	c := g.Clone()
	ca, cb := c.Node(a.ID), c.Node(b.ID)
	if ca == nil || cb == nil || ca == a {
		t.Fatal("clone must own fresh nodes with the same IDs")
	}
	if !ca.HasChild(b.ID) || !cb.HasParent(a.ID) {
		t.Error("clone lost adjacency")
	}

	if err := c.RemoveEdge(ca, cb); err != nil {
		t.Fatal(err)
	}
	if !a.HasChild(b.ID) {
		t.Error("mutating the clone changed the original")
	}
}

// ── Snapshots ──

func TestStateRestore(t *testing.T) {
	g := New("g")
	a := mustNode(t, g, 0, 0)
	b := mustNode(t, g, 0, 10)
	before := a.State()
	mustEdge(t, g, a, b)
	_ = g.MoveNode(a, image.Pt(4, 4))

	if err := a.RestoreState(before); err != nil {
		t.Fatal(err)
	}
	if a.ChildCount() != 0 || a.Position != image.Pt(0, 0) {
		t.Errorf("restore failed: %v children, pos %v", a.ChildCount(), a.Position)
	}
}

func TestMembershipRestore(t *testing.T) {
	g := New("g")
	a := mustNode(t, g, 0, 0)
	before := g.Membership()
	b := mustNode(t, g, 0, 10)

	g.RestoreMembership(before)
	if g.Node(b.ID) != nil || g.Node(a.ID) != a || g.Len() != 1 {
		t.Error("membership restore failed")
	}
}

func TestAdoptDuplicate(t *testing.T) {
	g := New("g")
	a := mustNode(t, g, 0, 0)
	if err := g.Adopt(Restore(a.ID, "x", testBehavior{}, image.Pt(0, 0), nil, nil)); !errors.Is(err, ErrDuplicateNode) {
		t.Errorf("expected ErrDuplicateNode, got %v", err)
	}
}

func TestValidateDetectsAsymmetry(t *testing.T) {
	g := New("g")
	if err := g.Adopt(Restore("a", "x", testBehavior{}, image.Pt(0, 0), nil, []string{"b"})); err != nil {
		t.Fatal(err)
	}
	if err := g.Adopt(Restore("b", "x", testBehavior{}, image.Pt(0, 0), nil, nil)); err != nil {
		t.Fatal(err)
	}
	if err := g.Validate(); !errors.Is(err, ErrAsymmetricEdge) {
		t.Errorf("expected ErrAsymmetricEdge, got %v", err)
	}
}

// ── Randomized presence symmetry ──

func TestPresenceSymmetryUnderRandomOps(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	g := New("g")
	for step := 0; step < 2000; step++ {
		nodes := g.Nodes()
		switch op := rng.Intn(10); {
		case op < 3 || len(nodes) < 2:
			mustNode(t, g, rng.Intn(100), rng.Intn(100))
		case op < 6:
			_ = g.CreateEdge(nodes[rng.Intn(len(nodes))], nodes[rng.Intn(len(nodes))])
		case op < 8:
			_ = g.RemoveEdge(nodes[rng.Intn(len(nodes))], nodes[rng.Intn(len(nodes))])
		case op < 9:
			_ = g.SortAdjacency(nodes[rng.Intn(len(nodes))])
		default:
			n := nodes[rng.Intn(len(nodes))]
			for _, pid := range n.Parents() {
				_ = g.RemoveEdge(g.Node(pid), n)
			}
			for _, cid := range n.Children() {
				_ = g.RemoveEdge(n, g.Node(cid))
			}
			if err := g.DeleteNode(n); err != nil {
				t.Fatalf("step %d: delete after detach: %v", step, err)
			}
		}
		if err := g.Validate(); err != nil {
			t.Fatalf("step %d: %v", step, err)
		}
	}
}
