package box2d

/// B2DestructionListenerInterface hears about joints and fixtures removed
/// implicitly by B2World.DestroyBody, so references to them can be cleared.
type B2DestructionListenerInterface interface {
	SayGoodbyeToFixture(fixture *B2Fixture)
	SayGoodbyeToJoint(joint B2JointInterface)
}

/// B2ContactFilterInterface decides whether two fixtures get a contact. It
/// is consulted when their fat boxes start to overlap and again after
/// B2Contact.FlagForFiltering.
type B2ContactFilterInterface interface {
	ShouldCollide(fixtureA *B2Fixture, fixtureB *B2Fixture) bool
}

/// B2ContactImpulse lists the solver impulses of one contact, index aligned
/// with the manifold points. Impulses rather than forces because TOI
/// sub-steps can be arbitrarily short.
type B2ContactImpulse struct {
	NormalImpulses  [B2_maxManifoldPoints]float64
	TangentImpulses [B2_maxManifoldPoints]float64
	Count           int
}

/// B2ContactListenerInterface receives contact events. Every callback runs
/// inside Step while the world is locked, and a contact may be reported
/// more than once per step because of TOI sub-steps.
type B2ContactListenerInterface interface {
	BeginContact(contact *B2Contact)
	EndContact(contact *B2Contact)

	/// PreSolve sees touching, non-sensor contacts after their manifold is
	/// refreshed. oldManifold is the previous one. Disable the contact here
	/// to skip it for this step.
	PreSolve(contact *B2Contact, oldManifold B2Manifold)

	/// PostSolve reports the impulses applied by the solver, TOI impulses
	/// included.
	PostSolve(contact *B2Contact, impulse *B2ContactImpulse)
}

/// B2BroadPhaseQueryCallback returns false to stop a query.
type B2BroadPhaseQueryCallback func(fixture *B2Fixture) bool

/// B2RaycastCallback is called for every fixture the ray hits. Return
/// B2RayCastStop to finish, B2RayCastContinue(fraction) to clip the ray to
/// this hit or B2RayCastContinue(1) to keep going unclipped.
type B2RaycastCallback func(fixture *B2Fixture, point B2Vec2, normal B2Vec2, fraction float64) B2RayCastVerdict

/// B2ContactFilter is the default filter. A shared non-zero group decides
/// first: positive always collides, negative never does. Otherwise the
/// category and mask bits must agree both ways.
type B2ContactFilter struct{}

var _ B2ContactFilterInterface = (*B2ContactFilter)(nil)

func (cf *B2ContactFilter) ShouldCollide(fixtureA *B2Fixture, fixtureB *B2Fixture) bool {
	a, b := fixtureA.GetFilterData(), fixtureB.GetFilterData()
	if a.GroupIndex != 0 && a.GroupIndex == b.GroupIndex {
		return a.GroupIndex > 0
	}
	return a.MaskBits&b.CategoryBits != 0 && a.CategoryBits&b.MaskBits != 0
}
