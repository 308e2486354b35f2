// Package sim is the host side of the runtime: it owns the clock, entity
// storage, the physics broad-phase, and delivery scheduling, and drives
// the behavior runtime once per fixed tick. The behavior engine decides
// how an entity reacts; sim decides when events reach it.
package sim

import (
	"fmt"
	"log"
	"math"
	"math/rand"

	"github.com/jakecoffman/cp"

	"github.com/milk9111/critters/behavior"
	"github.com/milk9111/critters/creatures"
	"github.com/milk9111/critters/ecs"
	"github.com/milk9111/critters/prefabs"
)

const collisionTypeCreature cp.CollisionType = 1

// Config tunes a simulation. Zero values fall back to sane defaults.
type Config struct {
	DT     float64
	Width  float64
	Height float64
	Seed   int64

	// Initial population. Worms is also the steady-state target the sim
	// respawns toward.
	Critters int
	Worms    int
	// Networks spawns a pair of linked waygates per network id.
	Networks []string
}

func (c *Config) applyDefaults() {
	if c.DT <= 0 {
		c.DT = 1.0 / 60
	}
	if c.Width <= 0 {
		c.Width = 800
	}
	if c.Height <= 0 {
		c.Height = 600
	}
}

type queuedMsg struct {
	target ecs.Entity
	name   string
	args   []any
}

// Sim implements behavior.Host over an ecs.World and a chipmunk space.
type Sim struct {
	cfg   Config
	world *ecs.World
	rt    *behavior.Runtime
	rng   *rand.Rand
	now   float64

	space         *cp.Space
	bodies        map[ecs.Entity]*cp.Body
	shapeToEntity map[*cp.Shape]ecs.Entity

	msgs       []queuedMsg
	collisions [][2]ecs.Entity

	critter *prefabs.CritterSpec
	worm    *prefabs.WormSpec
	waygate *prefabs.WaygateSpec

	watcher *prefabs.Watcher
}

// New builds a simulation from the embedded (or disk-overridden) prefabs
// and seeds the initial population.
func New(cfg Config) (*Sim, error) {
	cfg.applyDefaults()

	s := &Sim{
		cfg:           cfg,
		world:         ecs.NewWorld(),
		rng:           rand.New(rand.NewSource(cfg.Seed)),
		space:         cp.NewSpace(),
		bodies:        map[ecs.Entity]*cp.Body{},
		shapeToEntity: map[*cp.Shape]ecs.Entity{},
	}
	s.rt = behavior.NewRuntime(s)

	handler := s.space.NewCollisionHandler(collisionTypeCreature, collisionTypeCreature)
	handler.UserData = s
	handler.BeginFunc = func(arb *cp.Arbiter, _ *cp.Space, userData interface{}) bool {
		sim := userData.(*Sim)
		shapeA, shapeB := arb.Shapes()
		a, okA := sim.shapeToEntity[shapeA]
		b, okB := sim.shapeToEntity[shapeB]
		if okA && okB {
			sim.collisions = append(sim.collisions, [2]ecs.Entity{a, b})
		}
		return true
	}

	if err := s.loadSpecs(); err != nil {
		return nil, err
	}
	if err := s.seed(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Sim) loadSpecs() error {
	critter, err := prefabs.LoadCritterSpec()
	if err != nil {
		return fmt.Errorf("sim: %w", err)
	}
	worm, err := prefabs.LoadWormSpec()
	if err != nil {
		return fmt.Errorf("sim: %w", err)
	}
	waygate, err := prefabs.LoadWaygateSpec()
	if err != nil {
		return fmt.Errorf("sim: %w", err)
	}

	cd, err := creatures.CritterDef(critter)
	if err != nil {
		return fmt.Errorf("sim: %w", err)
	}
	wd, err := creatures.WormDef(worm)
	if err != nil {
		return fmt.Errorf("sim: %w", err)
	}
	gd, err := creatures.WaygateDef(waygate)
	if err != nil {
		return fmt.Errorf("sim: %w", err)
	}

	s.critter, s.worm, s.waygate = critter, worm, waygate
	s.rt.Register(cd)
	s.rt.Register(wd)
	s.rt.Register(gd)
	return nil
}

func (s *Sim) seed() error {
	for _, net := range s.cfg.Networks {
		for i := 0; i < 2; i++ {
			if _, err := s.Spawn(creatures.ArchetypeWaygate, s.randomPos(), net); err != nil {
				return err
			}
		}
	}
	for i := 0; i < s.cfg.Critters; i++ {
		if _, err := s.Spawn(creatures.ArchetypeCritter); err != nil {
			return err
		}
	}
	for i := 0; i < s.cfg.Worms; i++ {
		if _, err := s.Spawn(creatures.ArchetypeWorm); err != nil {
			return err
		}
	}
	return nil
}

// Now implements behavior.Host.
func (s *Sim) Now() float64 { return s.now }

// Rand implements behavior.Host.
func (s *Sim) Rand() behavior.Rand { return simRand{rng: s.rng} }

// Fields implements behavior.Host; the world's symbolic field store is
// the base field store.
func (s *Sim) Fields() behavior.FieldStore { return s.world }

// Runtime exposes the behavior runtime for debug views.
func (s *Sim) Runtime() *behavior.Runtime { return s.rt }

// World exposes entity queries for rendering.
func (s *Sim) World() *ecs.World { return s.world }

// CritterSpec returns the live critter prefab, for rendering.
func (s *Sim) CritterSpec() *prefabs.CritterSpec { return s.critter }

// WormSpec returns the live worm prefab, for rendering.
func (s *Sim) WormSpec() *prefabs.WormSpec { return s.worm }

// WaygateSpec returns the live waygate prefab, for rendering.
func (s *Sim) WaygateSpec() *prefabs.WaygateSpec { return s.waygate }

// Spawn implements behavior.Host: entity, base fields, physics body, and
// behavior attach, synchronously. Spawns without an explicit position
// land somewhere random in bounds.
func (s *Sim) Spawn(archetype string, args ...any) (ecs.Entity, error) {
	hasPos := false
	if len(args) > 0 {
		_, hasPos = args[0].(cp.Vector)
	}
	if !hasPos {
		args = append([]any{s.randomPos()}, args...)
	}

	e := s.world.Create(archetype)
	size, radius, err := s.bodySize(archetype)
	if err != nil {
		s.world.Destroy(e)
		return 0, err
	}
	s.world.Set(e, creatures.KeySize, size)
	if archetype == creatures.ArchetypeWaygate && len(args) > 1 {
		if net, ok := args[1].(string); ok {
			s.world.Tag(e, creatures.TagNetwork, net)
		}
	}

	if err := s.rt.Attach(e, archetype, args...); err != nil {
		s.world.Destroy(e)
		return 0, fmt.Errorf("sim: spawn %s: %w", archetype, err)
	}
	s.addBody(e, radius)
	return e, nil
}

// Kill implements behavior.Host: a mark, swept at end of tick.
func (s *Sim) Kill(e ecs.Entity) { s.world.MarkDead(e) }

// EntitiesOf implements behavior.Host.
func (s *Sim) EntitiesOf(archetype string) []ecs.Entity {
	return s.world.OfArchetype(archetype)
}

// Tagged implements behavior.Host.
func (s *Sim) Tagged(tag string) []ecs.Entity { return s.world.Tagged(tag) }

// TaggedWith implements behavior.Host.
func (s *Sim) TaggedWith(tag, value string) []ecs.Entity {
	return s.world.TaggedWith(tag, value)
}

// Message implements behavior.Host: queued, delivered at the start of the
// next tick before update dispatch.
func (s *Sim) Message(target ecs.Entity, name string, args ...any) {
	s.msgs = append(s.msgs, queuedMsg{target: target, name: name, args: args})
}

// Step advances the simulation one fixed tick: deliver queued messages
// and collisions, update every entity in ascending id order, step the
// broad-phase, then sweep the dead.
func (s *Sim) Step() {
	s.drainWatcher()
	s.now += s.cfg.DT

	msgs := s.msgs
	s.msgs = nil
	for _, m := range msgs {
		if !s.world.IsAlive(m.target) || !s.rt.Attached(m.target) {
			continue
		}
		dispatchArgs := append([]any{m.name}, m.args...)
		if _, _, err := s.rt.Dispatch(m.target, behavior.EventMessage, dispatchArgs...); err != nil {
			log.Printf("sim: entity=%s message %q error: %v", m.target, m.name, err)
		}
	}

	pairs := s.collisions
	s.collisions = nil
	for _, pair := range pairs {
		s.dispatchCollision(pair[0], pair[1])
		s.dispatchCollision(pair[1], pair[0])
	}

	for _, e := range s.world.Entities() {
		if !s.rt.Attached(e) {
			continue
		}
		if _, _, err := s.rt.Dispatch(e, behavior.EventUpdate, s.cfg.DT); err != nil {
			log.Printf("sim: entity=%s update error: %v", e, err)
		}
	}

	s.respawnWorms()

	for e, body := range s.bodies {
		if p, ok := s.world.Get(e, creatures.KeyPos); ok {
			if v, ok := p.(cp.Vector); ok {
				body.SetPosition(v)
			}
		}
	}
	s.space.Step(s.cfg.DT)

	s.sweep()
}

func (s *Sim) dispatchCollision(e, other ecs.Entity) {
	if !s.world.IsAlive(e) || !s.world.IsAlive(other) || !s.rt.Attached(e) {
		return
	}
	if _, _, err := s.rt.Dispatch(e, behavior.EventCollision, other); err != nil {
		log.Printf("sim: entity=%s collision error: %v", e, err)
	}
}

// respawnWorms drifts the worm population back toward the configured
// target so the ecosystem doesn't starve out.
func (s *Sim) respawnWorms() {
	if len(s.world.OfArchetype(creatures.ArchetypeWorm)) >= s.cfg.Worms {
		return
	}
	if s.rng.Float64() > 0.02 {
		return
	}
	if _, err := s.Spawn(creatures.ArchetypeWorm); err != nil {
		log.Printf("sim: worm respawn error: %v", err)
	}
}

// sweep removes entities marked dead this tick: death dispatch, behavior
// detach, body removal, then the entity itself.
func (s *Sim) sweep() {
	for _, e := range s.world.Dead() {
		if s.rt.Attached(e) {
			if _, _, err := s.rt.Dispatch(e, behavior.EventDeath); err != nil {
				log.Printf("sim: entity=%s death error: %v", e, err)
			}
			s.rt.Detach(e)
		}
		s.removeBody(e)
		s.world.Destroy(e)
	}
	s.world.ClearDead()
}

func (s *Sim) addBody(e ecs.Entity, radius float64) {
	// Dynamic with infinite moment: the broad-phase ignores pairs of
	// non-dynamic bodies, and positions come from the field store anyway.
	body := cp.NewBody(1, math.Inf(1))
	if p, ok := s.world.Get(e, creatures.KeyPos); ok {
		if v, ok := p.(cp.Vector); ok {
			body.SetPosition(v)
		}
	}
	shape := cp.NewCircle(body, radius, cp.Vector{})
	shape.SetSensor(true)
	shape.SetCollisionType(collisionTypeCreature)
	s.space.AddBody(body)
	s.space.AddShape(shape)
	s.bodies[e] = body
	s.shapeToEntity[shape] = e
}

func (s *Sim) removeBody(e ecs.Entity) {
	body, ok := s.bodies[e]
	if !ok {
		return
	}
	body.EachShape(func(shape *cp.Shape) {
		delete(s.shapeToEntity, shape)
		s.space.RemoveShape(shape)
	})
	s.space.RemoveBody(body)
	delete(s.bodies, e)
}

func (s *Sim) bodySize(archetype string) (size, radius float64, err error) {
	switch archetype {
	case creatures.ArchetypeCritter:
		return s.critter.Size, s.critter.Hunt.EatRadius, nil
	case creatures.ArchetypeWorm:
		return s.worm.Size, s.worm.Size, nil
	case creatures.ArchetypeWaygate:
		return s.waygate.Size, s.waygate.Size, nil
	default:
		return 0, 0, fmt.Errorf("%w: %q", behavior.ErrUnknownArchetype, archetype)
	}
}

func (s *Sim) randomPos() cp.Vector {
	return cp.Vector{
		X: s.rng.Float64() * s.cfg.Width,
		Y: s.rng.Float64() * s.cfg.Height,
	}
}

type simRand struct {
	rng *rand.Rand
}

func (r simRand) Float64(min, max float64) float64 {
	return min + r.rng.Float64()*(max-min)
}

func (r simRand) Pick(n int) int { return r.rng.Intn(n) }
