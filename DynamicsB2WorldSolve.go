package box2d

// islandBuilder grows one island across solid touching contacts and joints
// with active bodies. Reached bodies are queued in pending.
type islandBuilder struct {
	island  *B2Island
	pending []*B2Body

	// Zero means unbounded.
	maxContacts int
	maxJoints   int

	// reach runs once for each body the search claims.
	reach func(other *B2Body)
}

func (ib *islandBuilder) full(count, limit int) bool {
	return limit > 0 && count == limit
}

func (ib *islandBuilder) claim(other *B2Body) {
	if other.hasFlag(B2Body_Flags.E_islandFlag) {
		return
	}
	if ib.reach != nil {
		ib.reach(other)
	}
	other.setFlag(B2Body_Flags.E_islandFlag, true)
	ib.pending = append(ib.pending, other)
}

// link adds b's unvisited constraints to the island.
func (ib *islandBuilder) link(b *B2Body) {
	for _, edge := range b.M_contactEdges {
		if ib.full(ib.island.GetContactCount(), ib.maxContacts) {
			break
		}
		c := edge.Contact
		if c.hasFlag(B2Contact_Flag.E_islandFlag) || c.IsSensor() || !c.IsEnabled() || !c.IsTouching() {
			continue
		}
		ib.island.AddContact(c)
		c.setFlag(B2Contact_Flag.E_islandFlag, true)
		ib.claim(edge.Other)
	}

	for _, edge := range b.M_jointEdges {
		if ib.full(ib.island.GetJointCount(), ib.maxJoints) {
			break
		}
		if edge.Joint.GetIslandFlag() || !edge.Other.IsActive() {
			continue
		}
		ib.island.AddJoint(edge.Joint)
		edge.Joint.SetIslandFlag(true)
		ib.claim(edge.Other)
	}
}

func (world *B2World) resetIslandFlags() {
	for _, b := range world.M_bodies {
		b.setFlag(B2Body_Flags.E_islandFlag, false)
	}
	for _, c := range world.M_contactManager.M_contacts {
		c.setFlag(B2Contact_Flag.E_islandFlag, false)
	}
	for _, j := range world.M_joints {
		j.SetIslandFlag(false)
	}
}

/// Solve builds islands from every awake non-static body and solves each
/// one. Islands never grow through static bodies, so a static body may sit
/// in several islands.
func (world *B2World) Solve(step B2TimeStep) {
	world.M_profile.SolveInit = 0
	world.M_profile.SolveVelocity = 0
	world.M_profile.SolvePosition = 0

	island := MakeB2Island(len(world.M_bodies), world.M_contactManager.GetContactCount(),
		len(world.M_joints), world.M_contactManager.M_contactListener)
	ib := islandBuilder{island: &island, pending: make([]*B2Body, 0, len(world.M_bodies))}

	world.resetIslandFlags()

	for _, seed := range world.M_bodies {
		if seed.hasFlag(B2Body_Flags.E_islandFlag) || !seed.IsAwake() || !seed.IsActive() ||
			seed.M_type == B2BodyType.B2_staticBody {
			continue
		}

		island.Clear()
		ib.pending = append(ib.pending[:0], seed)
		seed.setFlag(B2Body_Flags.E_islandFlag, true)

		// Depth first.
		for len(ib.pending) > 0 {
			b := ib.pending[len(ib.pending)-1]
			ib.pending = ib.pending[:len(ib.pending)-1]
			B2Assert(b.IsActive())
			island.AddBody(b)

			// Keeps the sleep timer.
			b.setFlag(B2Body_Flags.E_awakeFlag, true)

			if b.M_type != B2BodyType.B2_staticBody {
				ib.link(b)
			}
		}

		island.Solve(&world.M_profile, step, world.M_gravity, world.M_allowSleep)

		for _, b := range island.M_bodies {
			if b.M_type == B2BodyType.B2_staticBody {
				b.setFlag(B2Body_Flags.E_islandFlag, false)
			}
		}
	}

	timer := MakeB2Timer()
	for _, b := range world.M_bodies {
		// Bodies outside every island did not move.
		if b.hasFlag(B2Body_Flags.E_islandFlag) && b.M_type != B2BodyType.B2_staticBody {
			b.SynchronizeFixtures()
		}
	}
	world.M_contactManager.FindNewContacts()
	world.M_profile.Broadphase = timer.GetMilliseconds()
}

// contactTOI brings both sweeps to a common start time and returns the
// impact time as a fraction of the whole step. 1 means no impact.
func (world *B2World) contactTOI(c *B2Contact) float64 {
	sA := &c.GetFixtureA().GetBody().M_sweep
	sB := &c.GetFixtureB().GetBody().M_sweep

	t0 := max(sA.T0, sB.T0)
	switch {
	case sA.T0 < t0:
		sA.Advance(t0)
	case sB.T0 < t0:
		sB.Advance(t0)
	}

	toi := c.ComputeTOI(*sA, *sB)
	if toi > 0 && toi < 1 {
		toi = min(t0+toi*(1-t0), 1)
	}
	return toi
}

// earliestImpact returns the continuous contact with the smallest cached or
// fresh TOI, or nil when nothing hits before the end of the step.
func (world *B2World) earliestImpact() (*B2Contact, float64) {
	var first *B2Contact
	minTOI := 1.0

	for _, c := range world.M_contactManager.M_contacts {
		if !c.IsEnabled() || c.IsSensor() || !c.IsContinuous() || c.M_toiCount > B2_maxSubSteps {
			continue
		}
		if !awakeMover(c.GetFixtureA().GetBody()) && !awakeMover(c.GetFixtureB().GetBody()) {
			continue
		}

		if !c.hasFlag(B2Contact_Flag.E_toiFlag) {
			c.M_toi = world.contactTOI(c)
			c.setFlag(B2Contact_Flag.E_toiFlag, true)
		}
		if c.M_toi > B2_epsilon && c.M_toi < minTOI {
			first, minTOI = c, c.M_toi
		}
	}

	if first == nil || minTOI > 1-100*B2_epsilon {
		return nil, 1
	}
	return first, minTOI
}

/// SolveTOI handles time of impact events in time order. Each event
/// advances its bodies to the impact, solves a small island over the rest
/// of the step and refreshes the broad-phase.
func (world *B2World) SolveTOI(step B2TimeStep) {
	listener := world.M_contactManager.M_contactListener
	island := MakeB2Island(2*B2_maxTOIContactsPerIsland, B2_maxTOIContactsPerIsland,
		B2_maxTOIJointsPerIsland, listener)

	world.resetIslandFlags()
	for _, b := range world.M_bodies {
		b.M_sweep.T0 = 0
	}
	for _, c := range world.M_contactManager.M_contacts {
		c.setFlag(B2Contact_Flag.E_toiFlag, false)
		c.M_toiCount = 0
	}

	var minTOI float64
	ib := islandBuilder{
		island:      &island,
		pending:     make([]*B2Body, 0, 2*B2_maxTOIContactsPerIsland),
		maxContacts: B2_maxTOIContactsPerIsland,
		maxJoints:   B2_maxTOIJointsPerIsland,
		reach: func(other *B2Body) {
			if other.M_type != B2BodyType.B2_staticBody {
				other.Advance(minTOI)
				other.SetAwake(true)
			}
		},
	}

	events := 0
	for {
		var hit *B2Contact
		if hit, minTOI = world.earliestImpact(); hit == nil {
			break
		}
		events++

		bA, bB := hit.GetFixtureA().GetBody(), hit.GetFixtureB().GetBody()
		backupA, backupB := bA.M_sweep, bB.M_sweep
		bA.Advance(minTOI)
		bB.Advance(minTOI)

		hit.Update(listener)
		hit.setFlag(B2Contact_Flag.E_toiFlag, false)
		hit.M_toiCount++

		if !hit.IsEnabled() || !hit.IsTouching() {
			// A near miss. Put the bodies back and disable the contact for
			// the rest of the step.
			hit.SetEnabled(false)
			bA.M_sweep, bB.M_sweep = backupA, backupB
			bA.SynchronizeTransform()
			bB.SynchronizeTransform()
			continue
		}

		seed := bA
		if seed.M_type != B2BodyType.B2_dynamicBody {
			seed = bB
		}
		island.Clear()
		ib.pending = append(ib.pending[:0], seed)
		seed.setFlag(B2Body_Flags.E_islandFlag, true)

		// Breadth first. Only dynamic bodies spread the island.
		for head := 0; head < len(ib.pending); head++ {
			b := ib.pending[head]
			island.AddBody(b)
			b.SetAwake(true)
			if b.M_type == B2BodyType.B2_dynamicBody {
				ib.link(b)
			}
		}

		subStep := MakeB2TimeStep()
		subStep.Dt = (1 - minTOI) * step.Dt
		subStep.Inv_dt = 1 / subStep.Dt
		subStep.VelocityIterations = step.VelocityIterations
		subStep.PositionIterations = step.PositionIterations
		subStep.BlockSolve = step.BlockSolve
		island.SolveTOI(subStep)

		for _, b := range island.M_bodies {
			b.setFlag(B2Body_Flags.E_islandFlag, false)
			if b.M_type != B2BodyType.B2_dynamicBody {
				continue
			}
			b.SynchronizeFixtures()

			// Contacts outside the island moved too.
			for _, edge := range b.M_contactEdges {
				edge.Contact.setFlag(B2Contact_Flag.E_toiFlag, false)
			}
		}
		for _, c := range island.M_contacts {
			c.setFlag(B2Contact_Flag.E_toiFlag|B2Contact_Flag.E_islandFlag, false)
		}
		for _, j := range island.M_joints {
			j.SetIslandFlag(false)
		}

		// Pairs created by the moved proxies become contacts, and contacts
		// may be destroyed.
		world.M_contactManager.FindNewContacts()
	}

	if events > 0 {
		world.M_logger.Debug("solved time of impact events", "events", events)
	}
}
