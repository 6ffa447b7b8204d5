// Package lunarlander provides an implementation of the Lunar Lander
// environment with discrete actions, simulated with box2d.
package lunarlander

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"

	"github.com/ByteArena/box2d"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	env "github.com/samuelfneumann/replaydqn/environment"
	ts "github.com/samuelfneumann/replaydqn/timestep"
)

const (
	FPS float64 = 50

	// speed of game, adjusts forces as well
	Scale float64 = 30.0

	XGravity float64 = 0.0
	YGravity float64 = -10.0

	MainEnginePower float64 = 13.0
	SideEnginePower float64 = 0.6

	LegAway         float64 = 20.0
	LegDown         float64 = 18.0
	LegW            float64 = 2.0
	LegH            float64 = 8.0
	LegSpringTorque float64 = 40.0

	SideEngineHeight float64 = 14.0
	SideEngineAway   float64 = 12.0

	Chunks int = 11

	ViewportW float64 = 600
	ViewportH float64 = 400

	// Box2D world extents
	W float64 = ViewportW / Scale
	H float64 = ViewportH / Scale

	// Starting position of the lander and magnitude bound on the
	// random force applied to it at the start of an episode
	InitialX      float64 = W / 2
	InitialY      float64 = H
	InitialRandom float64 = 1000.0

	StateObservations int = 8
	Actions           int = 4
	EpisodeSteps      int = 1000

	Name = "LunarLander-v2"
)

// Discrete actions
const (
	Noop int = iota
	FireLeft
	FireMain
	FireRight
)

var LanderPoly = [][]float64{
	{-14, 17},
	{-17, 0},
	{-17, -10},
	{17, -10},
	{17, 0},
	{14, 17},
}

func init() {
	env.Register(Name, func(string) (env.Environment, error) {
		return New(NewLand(EpisodeSteps)), nil
	})
}

// LunarLander implements the Lunar Lander environment. The agent
// controls a lander with a main engine and two orientation engines and
// must bring it to rest on the helipad at the origin.
//
// State observations are 8-dimensional: the lander's x and y position
// relative to the helipad, its x and y velocity, its angle and angular
// velocity, and whether each of the two legs touches the ground.
//
// Actions are discrete:
//
//	Action	Meaning
//	  0		Do nothing
//	  1		Fire left orientation engine
//	  2		Fire main engine
//	  3		Fire right orientation engine
//
// Every call to Reset builds a fresh box2d world with terrain drawn
// from the seed, so episodes started with the same seed are identical.
type LunarLander struct {
	task *Land

	world box2d.B2World

	moon   *box2d.B2Body
	lander *box2d.B2Body
	legs   []*box2d.B2Body

	leg1GroundContact bool
	leg2GroundContact bool

	helipadX1 float64
	helipadX2 float64
	helipadY  float64

	gameOver bool
	source   rand.Source
	rng      distuv.Uniform

	mPower float64
	sPower float64

	prevStep ts.TimeStep
	started  bool
}

// New returns a new LunarLander performing the Land task. Reset must
// be called before the first Step.
func New(task *Land) *LunarLander {
	source := rand.NewSource(0)
	l := &LunarLander{
		task:   task,
		source: source,
		rng:    distuv.Uniform{Min: -1.0, Max: 1.0, Src: source},
	}
	task.registerEnv(l)

	return l
}

// uniform returns a sample from U[min, max)
func (l *LunarLander) uniform(min, max float64) float64 {
	return min + (l.rng.Rand()+1)*(max-min)/2
}

// Reset builds a new world from seed and returns the first step of a
// new episode
func (l *LunarLander) Reset(seed uint64) (ts.TimeStep, error) {
	l.source.Seed(seed)

	l.world = box2d.MakeB2World(box2d.MakeB2Vec2(XGravity, YGravity))
	l.world.SetContactListener(newContactDetector(l))
	l.gameOver = false
	l.prevStep = ts.TimeStep{}
	l.mPower = 0.0
	l.sPower = 0.0
	l.task.reset()

	// Terrain
	height := make([]float64, Chunks+1)
	for i := range height {
		height[i] = l.uniform(0, H/2)
	}

	chunkX := make([]float64, Chunks)
	for i := 0; i < Chunks; i++ {
		chunkX[i] = float64(i) * (W / float64(Chunks-1))
	}

	l.helipadX1 = chunkX[Chunks/2-1]
	l.helipadX2 = chunkX[Chunks/2+1]
	l.helipadY = H / 4

	for i := Chunks/2 - 2; i <= Chunks/2+2; i++ {
		height[i] = l.helipadY
	}

	// The first chunk wraps around to the extra trailing height
	smoothY := make([]float64, Chunks)
	for i := 0; i < Chunks; i++ {
		prev := Chunks
		if i > 0 {
			prev = i - 1
		}
		smoothY[i] = 0.33 * (height[prev] + height[i] + height[i+1])
	}

	moonDef := box2d.MakeB2BodyDef()
	moonDef.Type = 0 // Static body
	l.moon = l.world.CreateBody(&moonDef)

	moonShape := box2d.NewB2EdgeShape()
	moonShape.Set(box2d.MakeB2Vec2(0.0, 0.0), box2d.MakeB2Vec2(W, 0.0))
	moonFix := box2d.MakeB2FixtureDef()
	moonFix.Shape = moonShape
	l.moon.CreateFixtureFromDef(&moonFix)

	for i := 0; i < Chunks-1; i++ {
		edge := box2d.NewB2EdgeShape()
		edge.Set(
			box2d.MakeB2Vec2(chunkX[i], smoothY[i]),
			box2d.MakeB2Vec2(chunkX[i+1], smoothY[i+1]),
		)

		edgeFix := box2d.MakeB2FixtureDef()
		edgeFix.Shape = edge
		edgeFix.Density = 0.0
		edgeFix.Friction = 0.1
		l.moon.CreateFixtureFromDef(&edgeFix)
	}

	// Lander
	landerDef := box2d.MakeB2BodyDef()
	landerDef.Type = 2 // Dynamic body
	landerDef.Position = box2d.MakeB2Vec2(InitialX, InitialY)
	landerDef.Angle = 0.0
	l.lander = l.world.CreateBody(&landerDef)

	landerShape := box2d.NewB2PolygonShape()
	vertices := make([]box2d.B2Vec2, len(LanderPoly))
	for i := range LanderPoly {
		vertices[i] = box2d.MakeB2Vec2(LanderPoly[i][0]/Scale,
			LanderPoly[i][1]/Scale)
	}
	landerShape.Set(vertices, len(vertices))

	landerFix := box2d.MakeB2FixtureDef()
	landerFix.Shape = landerShape
	landerFix.Density = 5.0
	landerFix.Friction = 0.1
	landerFix.Restitution = 0.0
	filter := box2d.MakeB2Filter()
	filter.CategoryBits = 0x0010
	filter.MaskBits = 0x001
	landerFix.Filter = filter
	l.lander.CreateFixtureFromDef(&landerFix)

	initialForce := box2d.MakeB2Vec2(
		l.uniform(-InitialRandom, InitialRandom),
		l.uniform(-InitialRandom, InitialRandom),
	)
	l.lander.ApplyForceToCenter(initialForce, true)

	// Legs
	l.legs = make([]*box2d.B2Body, 0, 2)
	for _, i := range []float64{-1.0, 1.0} {
		legDef := box2d.MakeB2BodyDef()
		legDef.Type = 2 // Dynamic body
		legDef.Position = box2d.MakeB2Vec2(InitialX-i*LegAway/Scale, InitialY)
		legDef.Angle = i * 0.05
		leg := l.world.CreateBody(&legDef)
		l.legs = append(l.legs, leg)

		legShape := box2d.NewB2PolygonShape()
		legShape.SetAsBox(LegW/Scale, LegH/Scale)

		legFix := box2d.MakeB2FixtureDef()
		legFix.Shape = legShape
		legFix.Density = 1.0
		legFix.Restitution = 0.0
		filter := box2d.MakeB2Filter()
		filter.CategoryBits = 0x0020
		filter.MaskBits = 0x001
		legFix.Filter = filter
		leg.CreateFixtureFromDef(&legFix)

		rjd := box2d.MakeB2RevoluteJointDef()
		rjd.BodyA = l.lander
		rjd.BodyB = leg
		rjd.LocalAnchorA = box2d.MakeB2Vec2(0.0, 0.0)
		rjd.LocalAnchorB = box2d.MakeB2Vec2(i*LegAway/Scale, LegDown/Scale)
		rjd.EnableMotor = true
		rjd.EnableLimit = true
		rjd.MaxMotorTorque = LegSpringTorque
		rjd.MotorSpeed = 0.3 * i

		if i < 0 {
			rjd.LowerAngle = 0.9 - 0.5
			rjd.UpperAngle = 0.9
		} else {
			rjd.LowerAngle = -0.9
			rjd.UpperAngle = -0.9 + 0.5
		}
		l.world.CreateJoint(&rjd)
	}
	l.leg1GroundContact = false
	l.leg2GroundContact = false

	l.started = true
	step, err := l.Step(Noop)
	if err != nil {
		return ts.TimeStep{}, fmt.Errorf("reset: %v", err)
	}
	if step.Last() {
		return ts.TimeStep{}, fmt.Errorf("reset: episode ended as soon " +
			"as it began")
	}

	step.StepType = ts.First
	step.Number = 0
	step.Reward = 0
	l.prevStep = step

	return step, nil
}

// Step takes one environmental step given action a
func (l *LunarLander) Step(a int) (ts.TimeStep, error) {
	if !l.started {
		return ts.TimeStep{}, fmt.Errorf("step: called before reset")
	}
	if l.prevStep.Last() {
		return ts.TimeStep{}, fmt.Errorf("step: episode has ended")
	}
	if a < 0 || a >= Actions {
		return ts.TimeStep{}, fmt.Errorf("step: illegal action selection, "+
			"expected action ϵ [0, 1, 2, 3], received action = %v", a)
	}

	// Engines
	tip := [2]float64{
		math.Sin(l.lander.GetAngle()),
		math.Cos(l.lander.GetAngle()),
	}
	side := [2]float64{-tip[1], tip[0]}
	var dispersion [2]float64
	for i := range dispersion {
		dispersion[i] = l.rng.Rand() / Scale
	}

	mPower := 0.0
	if a == FireMain {
		mPower = 1.0

		ox := tip[0]*(4.0/Scale+2.0*dispersion[0]) + side[0]*dispersion[1]
		oy := -tip[1]*(4.0/Scale+2.0*dispersion[0]) - side[1]*dispersion[1]

		impulsePos := box2d.MakeB2Vec2(
			l.lander.GetPosition().X+ox,
			l.lander.GetPosition().Y+oy,
		)
		linearImpulse := box2d.MakeB2Vec2(
			-ox*MainEnginePower*mPower,
			-oy*MainEnginePower*mPower,
		)
		l.lander.ApplyLinearImpulse(linearImpulse, impulsePos, true)
	}
	l.mPower = mPower

	sPower := 0.0
	if a == FireLeft || a == FireRight {
		direction := float64(a - 2)
		sPower = 1.0

		ox := tip[0]*dispersion[0] + side[0]*(3.0*dispersion[1]+direction*
			SideEngineAway/Scale)
		oy := -tip[1]*dispersion[0] - side[1]*(3.0*dispersion[1]+direction*
			SideEngineAway/Scale)

		impulsePos := box2d.MakeB2Vec2(
			l.lander.GetPosition().X+ox-tip[0]*17.0/Scale,
			l.lander.GetPosition().Y+oy+tip[1]*SideEngineHeight/Scale,
		)
		linearImpulse := box2d.MakeB2Vec2(
			-ox*SideEnginePower*sPower,
			-oy*SideEnginePower*sPower,
		)
		l.lander.ApplyLinearImpulse(linearImpulse, impulsePos, true)
	}
	l.sPower = sPower

	l.world.Step(1.0/FPS, 6*int(Scale), 2*int(Scale))

	state := l.observe()
	reward := l.task.GetReward(state)
	t := ts.New(ts.Mid, reward, state, l.prevStep.Number+1)
	l.task.End(&t)

	l.prevStep = t
	return t, nil
}

// observe returns the normalized state observation
func (l *LunarLander) observe() *mat.VecDense {
	pos := l.lander.GetPosition()
	vel := l.lander.GetLinearVelocity()

	var leg1GroundContact, leg2GroundContact float64
	if l.leg1GroundContact {
		leg1GroundContact = 1.0
	}
	if l.leg2GroundContact {
		leg2GroundContact = 1.0
	}

	return mat.NewVecDense(StateObservations, []float64{
		(pos.X - W/2) / (W / 2),
		(pos.Y - (l.helipadY + LegDown/Scale)) / (H / 2),
		vel.X * (W / 2) / FPS,
		vel.Y * (H / 2) / FPS,
		l.lander.GetAngle(),
		20.0 * l.lander.GetAngularVelocity() / FPS,
		leg1GroundContact,
		leg2GroundContact,
	})
}

// ActionSpec returns the action specification of the environment
func (l *LunarLander) ActionSpec() env.Spec {
	return env.NewDiscreteActionSpec(Actions)
}

// ObservationSpec returns the observation specification of the
// environment
func (l *LunarLander) ObservationSpec() env.Spec {
	high := make([]float64, StateObservations)
	low := make([]float64, StateObservations)
	for i := range high {
		high[i] = math.Inf(1)
		low[i] = math.Inf(-1)
	}
	high[6], high[7] = 1, 1
	low[6], low[7] = 0, 0

	return env.NewSpec(mat.NewVecDense(StateObservations, nil),
		env.Observation, mat.NewVecDense(StateObservations, low),
		mat.NewVecDense(StateObservations, high), env.Continuous)
}

// Awake returns whether the lander body is still being simulated
func (l *LunarLander) Awake() bool {
	return l.lander.IsAwake()
}

// GroundContact returns whether each leg touches the ground
func (l *LunarLander) GroundContact() (bool, bool) {
	return l.leg1GroundContact, l.leg2GroundContact
}

// GameOver returns whether the lander body has touched the ground
func (l *LunarLander) GameOver() bool {
	return l.gameOver
}

// Power returns the main and side engine power used on the last step
func (l *LunarLander) Power() (main, side float64) {
	return l.mPower, l.sPower
}

func (l *LunarLander) String() string {
	if l.prevStep.Observation == nil {
		return "LunarLander  |  not started"
	}
	return fmt.Sprintf("LunarLander  |  %v", l.prevStep)
}
