package scene

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/b2classic/box2d"
	"github.com/jinzhu/copier"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownBodyType  = errors.New("unknown body type")
	ErrUnknownShape     = errors.New("unknown shape type")
	ErrUnknownJointType = errors.New("unknown joint type")
	ErrUnknownBody      = errors.New("unknown body")
)

// Vec2 is a point or vector written as [x, y].
type Vec2 [2]float64

func (v Vec2) B2() box2d.B2Vec2 {
	return box2d.MakeB2Vec2(v[0], v[1])
}

// Settings controls how a scene is stepped. Zero values fall back to Default().
type Settings struct {
	TimeStep           float64 `yaml:"time_step,omitempty"`
	Steps              int     `yaml:"steps,omitempty"`
	VelocityIterations int     `yaml:"velocity_iterations,omitempty"`
	PositionIterations int     `yaml:"position_iterations,omitempty"`
	AllowSleep         *bool   `yaml:"allow_sleep,omitempty"`
	WarmStarting       *bool   `yaml:"warm_starting,omitempty"`
	ContinuousPhysics  *bool   `yaml:"continuous,omitempty"`
	BlockSolve         *bool   `yaml:"block_solve,omitempty"`
}

// Default returns 60Hz stepping with 8 velocity and 3 position iterations for one second.
func Default() Settings {
	return Settings{
		TimeStep:           1.0 / 60.0,
		Steps:              60,
		VelocityIterations: 8,
		PositionIterations: 3,
	}
}

// ShapeDef describes one collision shape. Type is circle, box, polygon or edge.
type ShapeDef struct {
	Type     string  `yaml:"type"`
	Radius   float64 `yaml:"radius,omitempty"`
	Center   Vec2    `yaml:"center,omitempty"`
	Angle    float64 `yaml:"angle,omitempty"`
	HalfSize Vec2    `yaml:"half_size,omitempty"`
	Vertices []Vec2  `yaml:"vertices,omitempty"`
}

// FilterDef mirrors box2d.B2Filter.
type FilterDef struct {
	CategoryBits *uint16 `yaml:"category_bits,omitempty"`
	MaskBits     *uint16 `yaml:"mask_bits,omitempty"`
	GroupIndex   int16   `yaml:"group_index,omitempty"`
}

// FixtureDef describes a fixture. Unset optional fields keep the engine
// defaults. Fields sharing a name with box2d.B2FixtureDef are copied across
// directly, so the shape and filter descriptions use other names.
type FixtureDef struct {
	ShapeSpec   ShapeDef   `yaml:"shape"`
	Density     float64    `yaml:"density,omitempty"`
	Friction    *float64   `yaml:"friction,omitempty"`
	Restitution *float64   `yaml:"restitution,omitempty"`
	IsSensor    bool       `yaml:"sensor,omitempty"`
	FilterSpec  *FilterDef `yaml:"filter,omitempty"`
}

// BodyDef describes a body. Scalar settings named as in box2d.B2BodyDef are
// copied across directly; Kind, Origin and Velocity are converted by hand.
type BodyDef struct {
	Name            string       `yaml:"name"`
	Kind            string       `yaml:"type,omitempty"`
	Origin          Vec2         `yaml:"position,omitempty"`
	Angle           float64      `yaml:"angle,omitempty"`
	Velocity        Vec2         `yaml:"linear_velocity,omitempty"`
	AngularVelocity float64      `yaml:"angular_velocity,omitempty"`
	LinearDamping   float64      `yaml:"linear_damping,omitempty"`
	AngularDamping  float64      `yaml:"angular_damping,omitempty"`
	GravityScale    *float64     `yaml:"gravity_scale,omitempty"`
	AllowSleep      *bool        `yaml:"allow_sleep,omitempty"`
	Awake           *bool        `yaml:"awake,omitempty"`
	Active          *bool        `yaml:"active,omitempty"`
	FixedRotation   bool         `yaml:"fixed_rotation,omitempty"`
	Bullet          bool         `yaml:"bullet,omitempty"`
	Fixtures        []FixtureDef `yaml:"fixtures"`
}

// JointDef describes a distance or revolute joint between two named bodies.
// Revolute joints use AnchorA as the shared anchor. Tuning fields are
// copied onto the joint definition by name.
type JointDef struct {
	Kind             string   `yaml:"type"`
	BodyNameA        string   `yaml:"body_a"`
	BodyNameB        string   `yaml:"body_b"`
	AnchorA          Vec2     `yaml:"anchor_a"`
	AnchorB          Vec2     `yaml:"anchor_b,omitempty"`
	CollideConnected bool     `yaml:"collide_connected,omitempty"`
	Length           *float64 `yaml:"length,omitempty"`
	FrequencyHz      float64  `yaml:"frequency_hz,omitempty"`
	DampingRatio     float64  `yaml:"damping_ratio,omitempty"`
	EnableLimit      bool     `yaml:"enable_limit,omitempty"`
	LowerAngle       float64  `yaml:"lower_angle,omitempty"`
	UpperAngle       float64  `yaml:"upper_angle,omitempty"`
	EnableMotor      bool     `yaml:"enable_motor,omitempty"`
	MotorSpeed       float64  `yaml:"motor_speed,omitempty"`
	MaxMotorTorque   float64  `yaml:"max_motor_torque,omitempty"`
}

// Scene is the YAML document: world settings, bodies and joints.
type Scene struct {
	Gravity  *Vec2      `yaml:"gravity,omitempty"`
	Settings Settings   `yaml:"settings,omitempty"`
	Bodies   []BodyDef  `yaml:"bodies"`
	Joints   []JointDef `yaml:"joints,omitempty"`
}

// Load reads and parses a scene file.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes a scene document and fills in default settings.
func Parse(data []byte) (*Scene, error) {
	var s Scene
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scene: %w", err)
	}

	def := Default()
	if err := copier.CopyWithOption(&def, &s.Settings, copier.Option{IgnoreEmpty: true}); err != nil {
		return nil, fmt.Errorf("settings: %w", err)
	}
	s.Settings = def

	return &s, nil
}

// World is a built scene: the simulation plus its bodies by name.
type World struct {
	*box2d.B2World
	Settings Settings
	Bodies   map[string]*box2d.B2Body
	Names    []string // body names in scene order
}

// Body returns the named body or nil.
func (w *World) Body(name string) *box2d.B2Body {
	return w.Bodies[name]
}

// Step advances the world by one configured time step.
func (w *World) Step() {
	w.B2World.Step(w.Settings.TimeStep, w.Settings.VelocityIterations, w.Settings.PositionIterations)
}

func flag(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}

// Build creates a world holding the scene's bodies, fixtures and joints.
func (s *Scene) Build(logger *slog.Logger) (*World, error) {
	wd := box2d.MakeB2WorldDef()
	if s.Gravity != nil {
		wd.Gravity = s.Gravity.B2()
	}
	wd.AllowSleep = flag(s.Settings.AllowSleep, wd.AllowSleep)
	wd.WarmStarting = flag(s.Settings.WarmStarting, wd.WarmStarting)
	wd.ContinuousPhysics = flag(s.Settings.ContinuousPhysics, wd.ContinuousPhysics)
	wd.BlockSolve = flag(s.Settings.BlockSolve, wd.BlockSolve)
	wd.Logger = logger

	w := &World{
		B2World:  box2d.NewB2World(wd),
		Settings: s.Settings,
		Bodies:   make(map[string]*box2d.B2Body, len(s.Bodies)),
	}

	for i := range s.Bodies {
		bd := &s.Bodies[i]
		name := bd.Name
		if name == "" {
			name = fmt.Sprintf("body%d", i)
		}

		body, err := w.createBody(bd)
		if err != nil {
			return nil, fmt.Errorf("body %q: %w", name, err)
		}
		body.SetUserData(name)
		w.Bodies[name] = body
		w.Names = append(w.Names, name)
	}

	for i := range s.Joints {
		if err := w.createJoint(&s.Joints[i]); err != nil {
			return nil, fmt.Errorf("joint %d: %w", i, err)
		}
	}

	w.GetLogger().Debug("scene built", "bodies", w.GetBodyCount(), "joints", w.GetJointCount())

	return w, nil
}

func bodyType(name string) (uint8, error) {
	switch name {
	case "", "static":
		return box2d.B2BodyType.B2_staticBody, nil
	case "kinematic":
		return box2d.B2BodyType.B2_kinematicBody, nil
	case "dynamic":
		return box2d.B2BodyType.B2_dynamicBody, nil
	}
	return 0, fmt.Errorf("%w %q", ErrUnknownBodyType, name)
}

func (w *World) createBody(desc *BodyDef) (*box2d.B2Body, error) {
	bt, err := bodyType(desc.Kind)
	if err != nil {
		return nil, err
	}

	bd := box2d.MakeB2BodyDef()
	if err := copier.CopyWithOption(&bd, desc, copier.Option{IgnoreEmpty: true}); err != nil {
		return nil, err
	}
	bd.Type = bt
	bd.Position = desc.Origin.B2()
	bd.LinearVelocity = desc.Velocity.B2()

	body := w.CreateBody(&bd)
	for j := range desc.Fixtures {
		if err := createFixture(body, &desc.Fixtures[j]); err != nil {
			return nil, fmt.Errorf("fixture %d: %w", j, err)
		}
	}

	return body, nil
}

func buildShape(desc *ShapeDef) (box2d.B2ShapeInterface, error) {
	switch desc.Type {
	case "circle":
		shape := box2d.MakeB2CircleShape()
		shape.M_radius = desc.Radius
		shape.M_p = desc.Center.B2()
		return &shape, nil

	case "box":
		shape := box2d.MakeB2PolygonShape()
		shape.SetAsOrientedBox(desc.HalfSize[0], desc.HalfSize[1], desc.Center.B2(), desc.Angle)
		return &shape, nil

	case "polygon":
		if len(desc.Vertices) < 3 || len(desc.Vertices) > box2d.B2_maxPolygonVertices {
			return nil, fmt.Errorf("polygon needs 3 to %d vertices, got %d", box2d.B2_maxPolygonVertices, len(desc.Vertices))
		}
		vertices := make([]box2d.B2Vec2, len(desc.Vertices))
		for i, v := range desc.Vertices {
			vertices[i] = v.B2()
		}
		shape := box2d.MakeB2PolygonShape()
		shape.Set(vertices)
		return &shape, nil

	case "edge":
		if len(desc.Vertices) != 2 {
			return nil, fmt.Errorf("edge needs 2 vertices, got %d", len(desc.Vertices))
		}
		shape := box2d.MakeB2EdgeShape()
		shape.Set(desc.Vertices[0].B2(), desc.Vertices[1].B2())
		return &shape, nil
	}

	return nil, fmt.Errorf("%w %q", ErrUnknownShape, desc.Type)
}

func createFixture(body *box2d.B2Body, desc *FixtureDef) error {
	shape, err := buildShape(&desc.ShapeSpec)
	if err != nil {
		return err
	}

	fd := box2d.MakeB2FixtureDef()
	if err := copier.CopyWithOption(&fd, desc, copier.Option{IgnoreEmpty: true}); err != nil {
		return err
	}
	fd.Shape = shape

	fd.Filter = box2d.MakeB2Filter()
	if desc.FilterSpec != nil {
		if err := copier.CopyWithOption(&fd.Filter, desc.FilterSpec, copier.Option{IgnoreEmpty: true}); err != nil {
			return err
		}
	}

	body.CreateFixtureFromDef(&fd)
	return nil
}

func (w *World) createJoint(desc *JointDef) error {
	bodyA := w.Bodies[desc.BodyNameA]
	if bodyA == nil {
		return fmt.Errorf("%w %q", ErrUnknownBody, desc.BodyNameA)
	}
	bodyB := w.Bodies[desc.BodyNameB]
	if bodyB == nil {
		return fmt.Errorf("%w %q", ErrUnknownBody, desc.BodyNameB)
	}

	var def box2d.B2JointDefInterface
	switch desc.Kind {
	case "distance":
		jd := box2d.MakeB2DistanceJointDef()
		jd.Initialize(bodyA, bodyB, desc.AnchorA.B2(), desc.AnchorB.B2())
		if err := copier.CopyWithOption(&jd, desc, copier.Option{IgnoreEmpty: true}); err != nil {
			return err
		}
		def = &jd

	case "revolute":
		jd := box2d.MakeB2RevoluteJointDef()
		jd.Initialize(bodyA, bodyB, desc.AnchorA.B2())
		if err := copier.CopyWithOption(&jd, desc, copier.Option{IgnoreEmpty: true}); err != nil {
			return err
		}
		def = &jd

	default:
		return fmt.Errorf("%w %q", ErrUnknownJointType, desc.Kind)
	}

	if w.CreateJoint(def) == nil {
		return fmt.Errorf("create %s joint", desc.Kind)
	}
	return nil
}
