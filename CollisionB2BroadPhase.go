package box2d

import (
	"cmp"
	"slices"
)

type B2BroadPhaseAddPairCallback func(userDataA interface{}, userDataB interface{})

/// B2Pair is a candidate pair with ProxyIdA < ProxyIdB.
type B2Pair struct {
	ProxyIdA int
	ProxyIdB int
}

func comparePairs(a, b B2Pair) int {
	if c := cmp.Compare(a.ProxyIdA, b.ProxyIdA); c != 0 {
		return c
	}
	return cmp.Compare(a.ProxyIdB, b.ProxyIdB)
}

const E_nullProxy = -1

/// B2BroadPhaseInterface is the spatial index the world depends on.
/// B2BroadPhase is the default and another index can be supplied through
/// B2WorldDef.
type B2BroadPhaseInterface interface {
	/// CreateProxy buffers the new proxy. Its pairs show up on the next
	/// UpdatePairs.
	CreateProxy(aabb B2AABB, userData interface{}) int

	/// DestroyProxy leaves existing pairs to the caller.
	DestroyProxy(proxyId int)

	/// MoveProxy reports whether the proxy was buffered for pair search.
	MoveProxy(proxyId int, aabb B2AABB, displacement B2Vec2) bool

	/// TouchProxy buffers a proxy without moving it.
	TouchProxy(proxyId int)

	GetUserData(proxyId int) interface{}
	GetFatAABB(proxyId int) B2AABB
	TestOverlap(proxyIdA, proxyIdB int) bool

	/// UpdatePairs reports each new candidate pair once. It never reports
	/// pairs that stopped overlapping.
	UpdatePairs(callback B2BroadPhaseAddPairCallback)

	Query(callback B2TreeQueryCallback, aabb B2AABB)
	RayCast(callback B2TreeRayCastCallback, input B2RayCastInput)
	Rebalance(iterations int)
	Validate()
	GetProxyCount() int
}

/// B2BroadPhase keeps a dynamic tree plus the proxies moved since the last
/// pair update. It does not persist pairs.
type B2BroadPhase struct {
	M_tree       B2DynamicTree
	M_proxyCount int
	M_moveBuffer []int
	M_pairBuffer []B2Pair
}

var _ B2BroadPhaseInterface = (*B2BroadPhase)(nil)

func MakeB2BroadPhase() B2BroadPhase {
	return B2BroadPhase{
		M_tree:       MakeB2DynamicTree(),
		M_moveBuffer: make([]int, 0, 16),
		M_pairBuffer: make([]B2Pair, 0, 16),
	}
}

func NewB2BroadPhase() *B2BroadPhase {
	bp := MakeB2BroadPhase()
	return &bp
}

func (bp B2BroadPhase) GetUserData(proxyId int) interface{} { return bp.M_tree.GetUserData(proxyId) }
func (bp B2BroadPhase) GetFatAABB(proxyId int) B2AABB { return bp.M_tree.GetFatAABB(proxyId) }
func (bp B2BroadPhase) GetProxyCount() int { return bp.M_proxyCount }
func (bp B2BroadPhase) GetTreeHeight() int { return bp.M_tree.GetHeight() }

func (bp B2BroadPhase) TestOverlap(proxyIdA, proxyIdB int) bool {
	return B2TestOverlapBoundingBoxes(bp.M_tree.GetFatAABB(proxyIdA), bp.M_tree.GetFatAABB(proxyIdB))
}

func (bp *B2BroadPhase) CreateProxy(aabb B2AABB, userData interface{}) int {
	id := bp.M_tree.CreateProxy(aabb, userData)
	bp.M_proxyCount++
	bp.M_moveBuffer = append(bp.M_moveBuffer, id)
	return id
}

func (bp *B2BroadPhase) DestroyProxy(proxyId int) {
	// Blank out buffered moves so UpdatePairs skips the dead id.
	for i, id := range bp.M_moveBuffer {
		if id == proxyId {
			bp.M_moveBuffer[i] = E_nullProxy
		}
	}
	bp.M_proxyCount--
	bp.M_tree.DestroyProxy(proxyId)
}

func (bp *B2BroadPhase) MoveProxy(proxyId int, aabb B2AABB, displacement B2Vec2) bool {
	if !bp.M_tree.MoveProxy(proxyId, aabb, displacement) {
		return false
	}
	bp.M_moveBuffer = append(bp.M_moveBuffer, proxyId)
	return true
}

func (bp *B2BroadPhase) TouchProxy(proxyId int) {
	bp.M_moveBuffer = append(bp.M_moveBuffer, proxyId)
}

/// UpdatePairs queries the tree with the fat box of every buffered proxy,
/// then sorts and dedups the hits before calling back.
func (bp *B2BroadPhase) UpdatePairs(callback B2BroadPhaseAddPairCallback) {
	bp.M_pairBuffer = bp.M_pairBuffer[:0]

	for _, moved := range bp.M_moveBuffer {
		if moved == E_nullProxy {
			continue
		}
		// The fat box catches pairs that may touch before the next move.
		bp.M_tree.Query(func(other int) bool {
			if other != moved {
				bp.M_pairBuffer = append(bp.M_pairBuffer, B2Pair{min(moved, other), max(moved, other)})
			}
			return true
		}, bp.M_tree.GetFatAABB(moved))
	}
	bp.M_moveBuffer = bp.M_moveBuffer[:0]

	slices.SortFunc(bp.M_pairBuffer, comparePairs)
	bp.M_pairBuffer = slices.Compact(bp.M_pairBuffer)

	for _, pair := range bp.M_pairBuffer {
		callback(bp.M_tree.GetUserData(pair.ProxyIdA), bp.M_tree.GetUserData(pair.ProxyIdB))
	}

	bp.M_tree.Rebalance(4)
}

func (bp *B2BroadPhase) Query(callback B2TreeQueryCallback, aabb B2AABB) {
	bp.M_tree.Query(callback, aabb)
}

func (bp *B2BroadPhase) RayCast(callback B2TreeRayCastCallback, input B2RayCastInput) {
	bp.M_tree.RayCast(callback, input)
}

func (bp *B2BroadPhase) Rebalance(iterations int) { bp.M_tree.Rebalance(iterations) }
func (bp B2BroadPhase) Validate() { bp.M_tree.Validate() }
