package main

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"

	"github.com/milk9111/critters/creatures"
	"github.com/milk9111/critters/ecs"
	"github.com/milk9111/critters/prefabs"
	"github.com/milk9111/critters/sim"
)

const (
	baseWidth  = 800
	baseHeight = 600
)

type Game struct {
	sim    *sim.Sim
	debug  bool
	paused bool
	ui     *ebitenui.UI
}

func NewGame(s *sim.Sim, debug bool) *Game {
	g := &Game{sim: s, debug: debug}
	g.ui = NewPauseUI(g)
	return g
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.paused = !g.paused
	}
	if g.paused {
		g.ui.Update()
		return nil
	}
	g.sim.Step()
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.NRGBA{R: 0x1d, G: 0x20, B: 0x21, A: 0xff})

	g.drawArchetype(screen, creatures.ArchetypeWaygate, g.sim.WaygateSpec().Size, specColor(g.sim.WaygateSpec().Color))
	g.drawArchetype(screen, creatures.ArchetypeWorm, g.sim.WormSpec().Size, specColor(g.sim.WormSpec().Color))
	g.drawArchetype(screen, creatures.ArchetypeCritter, g.sim.CritterSpec().Size, specColor(g.sim.CritterSpec().Color))

	if g.debug {
		g.drawLayers(screen)
	}

	hud := fmt.Sprintf("critters: %d  worms: %d  fps: %.0f",
		len(g.sim.World().OfArchetype(creatures.ArchetypeCritter)),
		len(g.sim.World().OfArchetype(creatures.ArchetypeWorm)),
		ebiten.ActualFPS())
	ebitenutil.DebugPrint(screen, hud)

	if g.paused {
		g.ui.Draw(screen)
	}
}

func (g *Game) drawArchetype(screen *ebiten.Image, archetype string, size float64, col color.Color) {
	for _, e := range g.sim.World().OfArchetype(archetype) {
		p := g.entityPos(e)
		vector.DrawFilledCircle(screen, float32(p.X), float32(p.Y), float32(size), col, true)
	}
}

// drawLayers annotates every entity with its active layers, innermost
// first, the same order dispatch resolves them.
func (g *Game) drawLayers(screen *ebiten.Image) {
	for _, e := range g.sim.World().Entities() {
		layers := g.sim.Runtime().ActiveLayers(e)
		if len(layers) == 0 {
			continue
		}
		p := g.entityPos(e)
		ebitenutil.DebugPrintAt(screen, strings.Join(layers, ","), int(p.X)+8, int(p.Y)-8)
	}
}

func (g *Game) entityPos(e ecs.Entity) cp.Vector {
	v, _ := g.sim.World().Get(e, creatures.KeyPos)
	p, _ := v.(cp.Vector)
	return p
}

func specColor(c *prefabs.YAMLColor) color.Color {
	if c == nil || c.Color == nil {
		return color.White
	}
	return c.Color
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return baseWidth, baseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}
