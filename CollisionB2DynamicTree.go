package box2d

import "math"

/// B2TreeQueryCallback is called for every leaf whose fat AABB overlaps the
/// query box. Returning false ends the query.
type B2TreeQueryCallback func(proxyId int) bool

/// B2RayCastVerdict is what a ray cast callback answers for one proxy:
/// stop the whole cast, or continue with the ray clipped to a fraction.
type B2RayCastVerdict struct {
	stop     bool
	fraction float64
}

/// B2RayCastContinue keeps casting with the ray clipped to fraction. Pass the
/// input MaxFraction to continue unclipped.
func B2RayCastContinue(fraction float64) B2RayCastVerdict {
	return B2RayCastVerdict{fraction: fraction}
}

func B2RayCastStop() B2RayCastVerdict { return B2RayCastVerdict{stop: true} }

func (v B2RayCastVerdict) IsStop() bool { return v.stop }
func (v B2RayCastVerdict) Fraction() float64 { return v.fraction }

type B2TreeRayCastCallback func(input B2RayCastInput, proxyId int) B2RayCastVerdict

const B2_nullNode = -1

/// B2TreeNode is a slot in the node arena. Leaves carry user data, internal
/// nodes carry two children. Free slots chain through Next.
type B2TreeNode struct {
	Aabb     B2AABB
	UserData interface{}

	Parent         int
	Next           int
	Child1, Child2 int

	Free bool
}

func (node B2TreeNode) IsLeaf() bool { return node.Child1 == B2_nullNode }

/// B2DynamicTree is a bounding volume hierarchy over fattened leaf boxes.
/// Leaves are padded by B2_aabbExtension so small motions do not touch the
/// tree. Nodes live in one slice and are addressed by index, so proxy ids
/// stay valid when the arena grows.
type B2DynamicTree struct {
	M_root           int
	M_nodes          []B2TreeNode
	M_nodeCount      int
	M_freeList       int
	M_path           uint32 // bit walk for Rebalance
	M_insertionCount int
}

func MakeB2DynamicTree() B2DynamicTree {
	tree := B2DynamicTree{M_root: B2_nullNode, M_freeList: B2_nullNode}
	tree.grow(16)
	return tree
}

func (tree *B2DynamicTree) at(id int) *B2TreeNode {
	B2Assert(0 <= id && id < len(tree.M_nodes))
	return &tree.M_nodes[id]
}

func (tree B2DynamicTree) GetUserData(proxyId int) interface{} { return tree.at(proxyId).UserData }
func (tree B2DynamicTree) GetFatAABB(proxyId int) B2AABB { return tree.at(proxyId).Aabb }

// grow appends n free slots and links them in front of the free list.
func (tree *B2DynamicTree) grow(n int) {
	first := len(tree.M_nodes)
	tree.M_nodes = append(tree.M_nodes, make([]B2TreeNode, n)...)
	for i := first; i < len(tree.M_nodes); i++ {
		tree.M_nodes[i] = B2TreeNode{Next: i + 1, Free: true}
	}
	tree.M_nodes[len(tree.M_nodes)-1].Next = tree.M_freeList
	tree.M_freeList = first
}

/// AllocateNode takes a slot off the free list, doubling the arena when it
/// runs dry.
func (tree *B2DynamicTree) AllocateNode() int {
	if tree.M_freeList == B2_nullNode {
		B2Assert(tree.M_nodeCount == len(tree.M_nodes))
		tree.grow(len(tree.M_nodes))
	}

	id := tree.M_freeList
	tree.M_freeList = tree.M_nodes[id].Next
	tree.M_nodes[id] = B2TreeNode{
		Parent: B2_nullNode,
		Next:   B2_nullNode,
		Child1: B2_nullNode,
		Child2: B2_nullNode,
	}
	tree.M_nodeCount++
	return id
}

func (tree *B2DynamicTree) FreeNode(id int) {
	B2Assert(tree.M_nodeCount > 0)
	node := tree.at(id)
	node.Next = tree.M_freeList
	node.UserData = nil
	node.Free = true
	tree.M_freeList = id
	tree.M_nodeCount--
}

func fatten(aabb B2AABB) B2AABB {
	r := B2Vec2{B2_aabbExtension, B2_aabbExtension}
	return B2AABB{LowerBound: B2Vec2Sub(aabb.LowerBound, r), UpperBound: B2Vec2Add(aabb.UpperBound, r)}
}

/// CreateProxy inserts a leaf for aabb and returns its node index.
func (tree *B2DynamicTree) CreateProxy(aabb B2AABB, userData interface{}) int {
	id := tree.AllocateNode()
	leaf := tree.at(id)
	leaf.Aabb = fatten(aabb)
	leaf.UserData = userData
	tree.InsertLeaf(id)
	return id
}

func (tree *B2DynamicTree) DestroyProxy(proxyId int) {
	B2Assert(tree.at(proxyId).IsLeaf())
	tree.RemoveLeaf(proxyId)
	tree.FreeNode(proxyId)
}

/// MoveProxy reinserts the leaf when aabb has left its fat box. The new fat
/// box is stretched along the displacement so the next few steps fit.
/// Returns true if the leaf was reinserted.
func (tree *B2DynamicTree) MoveProxy(proxyId int, aabb B2AABB, displacement B2Vec2) bool {
	B2Assert(tree.at(proxyId).IsLeaf())
	if tree.M_nodes[proxyId].Aabb.Contains(aabb) {
		return false
	}

	tree.RemoveLeaf(proxyId)

	fat := fatten(aabb)
	d := B2Vec2MulScalar(B2_aabbMultiplier, displacement)
	if d.X < 0 {
		fat.LowerBound.X += d.X
	} else {
		fat.UpperBound.X += d.X
	}
	if d.Y < 0 {
		fat.LowerBound.Y += d.Y
	} else {
		fat.UpperBound.Y += d.Y
	}
	tree.M_nodes[proxyId].Aabb = fat

	tree.InsertLeaf(proxyId)
	return true
}

// closerChild picks the child of an internal node whose center is nearer
// (in Manhattan distance) to p.
func (tree *B2DynamicTree) closerChild(node *B2TreeNode, p B2Vec2) int {
	manhattan := func(id int) float64 {
		d := B2Vec2Abs(B2Vec2Sub(tree.M_nodes[id].Aabb.GetCenter(), p))
		return d.X + d.Y
	}
	if manhattan(node.Child1) < manhattan(node.Child2) {
		return node.Child1
	}
	return node.Child2
}

// replaceChild points parent's slot for old at repl.
func (tree *B2DynamicTree) replaceChild(parent, old, repl int) {
	p := &tree.M_nodes[parent]
	if p.Child1 == old {
		p.Child1 = repl
	} else {
		p.Child2 = repl
	}
}

// refit recomputes node's box from its children.
func (tree *B2DynamicTree) refit(id int) {
	n := &tree.M_nodes[id]
	n.Aabb.CombineTwoInPlace(tree.M_nodes[n.Child1].Aabb, tree.M_nodes[n.Child2].Aabb)
}

func (tree *B2DynamicTree) InsertLeaf(leaf int) {
	tree.M_insertionCount++

	if tree.M_root == B2_nullNode {
		tree.M_root = leaf
		tree.M_nodes[leaf].Parent = B2_nullNode
		return
	}

	center := tree.M_nodes[leaf].Aabb.GetCenter()
	sibling := tree.M_root
	for !tree.M_nodes[sibling].IsLeaf() {
		sibling = tree.closerChild(&tree.M_nodes[sibling], center)
	}

	// New internal node adopts the sibling and the leaf.
	grand := tree.M_nodes[sibling].Parent
	parent := tree.AllocateNode()
	tree.M_nodes[parent].Parent = grand
	tree.M_nodes[parent].Child1 = sibling
	tree.M_nodes[parent].Child2 = leaf
	tree.refit(parent)
	tree.M_nodes[sibling].Parent = parent
	tree.M_nodes[leaf].Parent = parent

	if grand == B2_nullNode {
		tree.M_root = parent
		return
	}
	tree.replaceChild(grand, sibling, parent)

	// Grow ancestors until one already encloses the new subtree.
	child := parent
	for up := grand; up != B2_nullNode; up = tree.M_nodes[up].Parent {
		if tree.M_nodes[up].Aabb.Contains(tree.M_nodes[child].Aabb) {
			break
		}
		tree.refit(up)
		child = up
	}
}

func (tree *B2DynamicTree) RemoveLeaf(leaf int) {
	if leaf == tree.M_root {
		tree.M_root = B2_nullNode
		return
	}

	parent := tree.M_nodes[leaf].Parent
	grand := tree.M_nodes[parent].Parent
	sibling := tree.M_nodes[parent].Child1
	if sibling == leaf {
		sibling = tree.M_nodes[parent].Child2
	}

	// The sibling takes the parent's place.
	tree.M_nodes[sibling].Parent = grand
	tree.FreeNode(parent)
	if grand == B2_nullNode {
		tree.M_root = sibling
		return
	}
	tree.replaceChild(grand, parent, sibling)

	// Shrink ancestors until one stops changing.
	for up := grand; up != B2_nullNode; up = tree.M_nodes[up].Parent {
		before := tree.M_nodes[up].Aabb
		tree.refit(up)
		if before.Contains(tree.M_nodes[up].Aabb) {
			break
		}
	}
}

/// Rebalance reinserts iterations leaves, choosing each by walking down from
/// the root along the bits of a running counter.
func (tree *B2DynamicTree) Rebalance(iterations int) {
	if tree.M_root == B2_nullNode {
		return
	}

	for i := 0; i < iterations; i++ {
		id := tree.M_root
		for bit := uint32(0); !tree.M_nodes[id].IsLeaf(); bit = (bit + 1) & 31 {
			if tree.M_path>>bit&1 == 0 {
				id = tree.M_nodes[id].Child1
			} else {
				id = tree.M_nodes[id].Child2
			}
		}
		tree.M_path++

		tree.RemoveLeaf(id)
		tree.InsertLeaf(id)
	}
}

/// Query walks the tree with an explicit stack and reports every leaf whose
/// fat box overlaps aabb.
func (tree *B2DynamicTree) Query(queryCallback B2TreeQueryCallback, aabb B2AABB) {
	if tree.M_root == B2_nullNode {
		return
	}

	stack := NewB2GrowableStack[int](64)
	stack.Push(tree.M_root)
	for stack.GetCount() > 0 {
		id, _ := stack.Pop()
		node := &tree.M_nodes[id]
		switch {
		case !B2TestOverlapBoundingBoxes(node.Aabb, aabb):
		case node.IsLeaf():
			if !queryCallback(id) {
				return
			}
		default:
			stack.Push(node.Child1)
			stack.Push(node.Child2)
		}
	}
}

/// RayCast visits leaves the segment may hit. Subtrees are pruned by the
/// segment's bounding box and by the separating axis perpendicular to the
/// segment. The callback does the exact test and can clip or stop the ray.
func (tree B2DynamicTree) RayCast(rayCastCallback B2TreeRayCastCallback, input B2RayCastInput) {
	if tree.M_root == B2_nullNode {
		return
	}

	p1, p2 := input.P1, input.P2
	dir := B2Vec2Sub(p2, p1)
	if dir.LengthSquared() <= 0 {
		return
	}
	dir.Normalize()
	perp := B2Vec2CrossScalarVector(1.0, dir)
	absPerp := B2Vec2Abs(perp)

	maxFraction := input.MaxFraction
	bounds := func() B2AABB {
		end := B2Vec2Add(p1, B2Vec2MulScalar(maxFraction, B2Vec2Sub(p2, p1)))
		return MakeB2AABBFromBounds(B2Vec2Min(p1, end), B2Vec2Max(p1, end))
	}
	segment := bounds()

	stack := NewB2GrowableStack[int](64)
	stack.Push(tree.M_root)
	for stack.GetCount() > 0 {
		id, _ := stack.Pop()
		node := &tree.M_nodes[id]
		if !B2TestOverlapBoundingBoxes(node.Aabb, segment) {
			continue
		}

		// |dot(perp, p1 - c)| > dot(|perp|, h) means the line misses the box.
		c, h := node.Aabb.GetCenter(), node.Aabb.GetExtents()
		if math.Abs(B2Vec2Dot(perp, B2Vec2Sub(p1, c)))-B2Vec2Dot(absPerp, h) > 0 {
			continue
		}

		if !node.IsLeaf() {
			stack.Push(node.Child1)
			stack.Push(node.Child2)
			continue
		}

		verdict := rayCastCallback(B2RayCastInput{P1: p1, P2: p2, MaxFraction: maxFraction}, id)
		if verdict.IsStop() {
			return
		}
		if verdict.Fraction() < maxFraction {
			maxFraction = verdict.Fraction()
			segment = bounds()
		}
	}
}

/// GetHeight walks the whole tree. A lone leaf has height zero.
func (tree B2DynamicTree) GetHeight() int {
	if tree.M_root == B2_nullNode {
		return 0
	}
	return tree.ComputeHeight(tree.M_root)
}

func (tree B2DynamicTree) ComputeHeight(id int) int {
	node := tree.at(id)
	if node.IsLeaf() {
		return 0
	}
	return 1 + max(tree.ComputeHeight(node.Child1), tree.ComputeHeight(node.Child2))
}

// ValidateStructure checks parent links below id.
func (tree B2DynamicTree) ValidateStructure(id int) {
	if id == B2_nullNode {
		return
	}
	node := tree.at(id)
	B2Assert(!node.Free)
	if id == tree.M_root {
		B2Assert(node.Parent == B2_nullNode)
	}
	if node.IsLeaf() {
		B2Assert(node.Child2 == B2_nullNode)
		return
	}
	B2Assert(tree.at(node.Child1).Parent == id)
	B2Assert(tree.at(node.Child2).Parent == id)
	tree.ValidateStructure(node.Child1)
	tree.ValidateStructure(node.Child2)
}

// ValidateMetrics checks that every internal box encloses its children.
// Early-exit refits may leave ancestors looser than the exact union.
func (tree B2DynamicTree) ValidateMetrics(id int) {
	if id == B2_nullNode {
		return
	}
	node := tree.at(id)
	if node.IsLeaf() {
		return
	}
	var union B2AABB
	union.CombineTwoInPlace(tree.M_nodes[node.Child1].Aabb, tree.M_nodes[node.Child2].Aabb)
	B2Assert(node.Aabb.Contains(union))
	tree.ValidateMetrics(node.Child1)
	tree.ValidateMetrics(node.Child2)
}

/// Validate panics through B2Assert if the tree or its free list is corrupt.
func (tree B2DynamicTree) Validate() {
	tree.ValidateStructure(tree.M_root)
	tree.ValidateMetrics(tree.M_root)

	free := 0
	for id := tree.M_freeList; id != B2_nullNode; id = tree.M_nodes[id].Next {
		B2Assert(tree.at(id).Free)
		free++
	}
	B2Assert(tree.M_nodeCount+free == len(tree.M_nodes))
}
