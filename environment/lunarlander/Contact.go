package lunarlander

import "github.com/ByteArena/box2d"

// contactDetector tracks which lander bodies touch the ground
type contactDetector struct {
	env *LunarLander
}

func newContactDetector(e *LunarLander) *contactDetector {
	return &contactDetector{e}
}

func touches(body *box2d.B2Body, contact box2d.B2ContactInterface) bool {
	return body == contact.GetFixtureA().GetBody() ||
		body == contact.GetFixtureB().GetBody()
}

func (c *contactDetector) BeginContact(contact box2d.B2ContactInterface) {
	// The ship should be landed gently, on its legs
	if touches(c.env.lander, contact) {
		c.env.gameOver = true
	}
	if touches(c.env.legs[0], contact) {
		c.env.leg1GroundContact = true
	}
	if touches(c.env.legs[1], contact) {
		c.env.leg2GroundContact = true
	}
}

func (c *contactDetector) EndContact(contact box2d.B2ContactInterface) {
	if touches(c.env.legs[0], contact) {
		c.env.leg1GroundContact = false
	}
	if touches(c.env.legs[1], contact) {
		c.env.leg2GroundContact = false
	}
}

func (c *contactDetector) PreSolve(contact box2d.B2ContactInterface,
	oldManifold box2d.B2Manifold) {
}

func (c *contactDetector) PostSolve(contact box2d.B2ContactInterface,
	impulse *box2d.B2ContactImpulse) {
}
