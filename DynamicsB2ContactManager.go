package box2d

/// B2ContactManager owns the broad-phase and the world's contacts. It turns
/// new broad-phase pairs into contacts and retires contacts whose fat boxes
/// separate.
type B2ContactManager struct {
	M_broadPhase      B2BroadPhaseInterface
	M_contacts        []*B2Contact
	M_contactFilter   B2ContactFilterInterface
	M_contactListener B2ContactListenerInterface
}

/// MakeB2ContactManager uses a tree broad-phase when broadPhase is nil.
func MakeB2ContactManager(broadPhase B2BroadPhaseInterface) B2ContactManager {
	if broadPhase == nil {
		broadPhase = NewB2BroadPhase()
	}
	return B2ContactManager{
		M_broadPhase:    broadPhase,
		M_contacts:      make([]*B2Contact, 0, 64),
		M_contactFilter: &B2ContactFilter{},
	}
}

func NewB2ContactManager(broadPhase B2BroadPhaseInterface) *B2ContactManager {
	mgr := MakeB2ContactManager(broadPhase)
	return &mgr
}

func (mgr B2ContactManager) GetContactCount() int { return len(mgr.M_contacts) }

// accepts runs the body rules and then the user filter.
func (mgr *B2ContactManager) accepts(fixtureA, fixtureB *B2Fixture) bool {
	if !fixtureB.GetBody().ShouldCollide(fixtureA.GetBody()) {
		return false
	}
	return mgr.M_contactFilter == nil || mgr.M_contactFilter.ShouldCollide(fixtureA, fixtureB)
}

/// Destroy ends the contact, unlinks it from both bodies and swap-removes it
/// from the contact slice.
func (mgr *B2ContactManager) Destroy(c *B2Contact) {
	if mgr.M_contactListener != nil && c.IsTouching() {
		mgr.M_contactListener.EndContact(c)
	}

	last := len(mgr.M_contacts) - 1
	tail := mgr.M_contacts[last]
	mgr.M_contacts[c.M_index] = tail
	tail.M_index = c.M_index
	mgr.M_contacts[last] = nil
	mgr.M_contacts = mgr.M_contacts[:last]
	c.M_index = -1

	c.GetFixtureA().GetBody().removeContactEdge(c.M_edgeA)
	c.GetFixtureB().GetBody().removeContactEdge(c.M_edgeB)
	c.M_edgeA, c.M_edgeB = -1, -1

	B2ContactDestroy(c)
}

// awakeMover reports whether b can drive a contact update this step.
func awakeMover(b *B2Body) bool {
	return b.IsAwake() && b.M_type != B2BodyType.B2_staticBody
}

/// Collide refilters flagged contacts, drops contacts whose fat boxes no
/// longer overlap and updates the manifolds of the rest. Contacts between
/// two sleeping or static bodies are skipped.
func (mgr *B2ContactManager) Collide() {
	for i := 0; i < len(mgr.M_contacts); {
		c := mgr.M_contacts[i]
		fA, fB := c.GetFixtureA(), c.GetFixtureB()

		if !awakeMover(fA.GetBody()) && !awakeMover(fB.GetBody()) {
			i++
			continue
		}

		if c.M_flags&B2Contact_Flag.E_filterFlag != 0 {
			if !mgr.accepts(fA, fB) {
				// Destroy moves the last contact into slot i.
				mgr.Destroy(c)
				continue
			}
			c.M_flags &^= B2Contact_Flag.E_filterFlag
		}

		if !mgr.M_broadPhase.TestOverlap(fA.M_proxy.ProxyId, fB.M_proxy.ProxyId) {
			mgr.Destroy(c)
			continue
		}

		c.Update(mgr.M_contactListener)
		i++
	}
}

func (mgr *B2ContactManager) FindNewContacts() {
	mgr.M_broadPhase.UpdatePairs(mgr.AddPair)
}

// existing reports whether bodyB already has a contact for the two fixtures.
func existing(bodyB *B2Body, fixtureA, fixtureB *B2Fixture) bool {
	for _, edge := range bodyB.M_contactEdges {
		if edge.Other != fixtureA.GetBody() {
			continue
		}
		cA, cB := edge.Contact.GetFixtureA(), edge.Contact.GetFixtureB()
		if (cA == fixtureA && cB == fixtureB) || (cA == fixtureB && cB == fixtureA) {
			return true
		}
	}
	return false
}

/// AddPair is the broad-phase callback. It creates a contact unless the
/// fixtures share a body, already have one, or are filtered out.
func (mgr *B2ContactManager) AddPair(proxyUserDataA interface{}, proxyUserDataB interface{}) {
	fixtureA := proxyUserDataA.(*B2FixtureProxy).Fixture
	fixtureB := proxyUserDataB.(*B2FixtureProxy).Fixture
	if fixtureA.GetBody() == fixtureB.GetBody() || existing(fixtureB.GetBody(), fixtureA, fixtureB) {
		return
	}
	if !mgr.accepts(fixtureA, fixtureB) {
		return
	}

	c := B2ContactFactory(fixtureA, fixtureB)
	if c == nil {
		return
	}

	// The factory may have swapped the fixtures.
	bodyA, bodyB := c.GetFixtureA().GetBody(), c.GetFixtureB().GetBody()
	c.M_index = len(mgr.M_contacts)
	mgr.M_contacts = append(mgr.M_contacts, c)
	c.M_edgeA = bodyA.addContactEdge(bodyB, c)
	c.M_edgeB = bodyB.addContactEdge(bodyA, c)

	if !c.GetFixtureA().IsSensor() && !c.GetFixtureB().IsSensor() {
		bodyA.SetAwake(true)
		bodyB.SetAwake(true)
	}
}
