// Package prefabs holds the data side of the simulation: YAML archetype
// specs embedded with disk override, compiled field initializer
// expressions, and the file watcher that drives hot reload.
package prefabs

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// FieldSpec declares one layer field by name plus a tengo expression for
// its initial value. Expressions may call field("name") for fields
// declared earlier in the same list, base("name") for entity base fields,
// rand(min, max), and now().
type FieldSpec struct {
	Name string `yaml:"name"`
	Expr string `yaml:"expr"`
}

// WanderSpec tunes the two-axis bob oscillator behind idle drifting.
type WanderSpec struct {
	Height float64 `yaml:"height"`
	FreqX  float64 `yaml:"freq_x"`
	FreqY  float64 `yaml:"freq_y"`
}

type FleeSpec struct {
	Fields []FieldSpec `yaml:"fields"`
}

type HuntSpec struct {
	Speed       float64     `yaml:"speed"`
	SenseRadius float64     `yaml:"sense_radius"`
	EatRadius   float64     `yaml:"eat_radius"`
	Fields      []FieldSpec `yaml:"fields"`
}

type HungrySpec struct {
	Timeout    float64     `yaml:"timeout"`
	ScatterMin float64     `yaml:"scatter_min"`
	ScatterMax float64     `yaml:"scatter_max"`
	Fields     []FieldSpec `yaml:"fields"`
}

type CritterSpec struct {
	Name   string     `yaml:"name"`
	Size   float64    `yaml:"size"`
	Color  *YAMLColor `yaml:"color"`
	Wander WanderSpec `yaml:"wander"`
	Flee   FleeSpec   `yaml:"flee"`
	Hunt   HuntSpec   `yaml:"hunt"`
	Hungry HungrySpec `yaml:"hungry"`
}

type WormSpec struct {
	Name   string     `yaml:"name"`
	Size   float64    `yaml:"size"`
	Color  *YAMLColor `yaml:"color"`
	Wander WanderSpec `yaml:"wander"`
}

type TeleportSpec struct {
	Fields []FieldSpec `yaml:"fields"`
}

type WaygateSpec struct {
	Name          string       `yaml:"name"`
	Size          float64      `yaml:"size"`
	Color         *YAMLColor   `yaml:"color"`
	RestHeight    float64      `yaml:"rest_height"`
	TransitHeight float64      `yaml:"transit_height"`
	BobFreq       float64      `yaml:"bob_freq"`
	Speed         float64      `yaml:"speed"`
	Teleporting   TeleportSpec `yaml:"teleporting"`
}

// LoadSpec decodes a named prefab file into a spec type.
func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

func LoadCritterSpec() (*CritterSpec, error) {
	spec, err := LoadSpec[CritterSpec]("critter.yaml")
	if err != nil {
		return nil, err
	}
	return &spec, nil
}

func LoadWormSpec() (*WormSpec, error) {
	spec, err := LoadSpec[WormSpec]("worm.yaml")
	if err != nil {
		return nil, err
	}
	return &spec, nil
}

func LoadWaygateSpec() (*WaygateSpec, error) {
	spec, err := LoadSpec[WaygateSpec]("waygate.yaml")
	if err != nil {
		return nil, err
	}
	return &spec, nil
}

type YAMLColor struct {
	color.Color
}

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}

	s := strings.TrimPrefix(value.Value, "#")

	if len(s) != 6 && len(s) != 8 {
		return fmt.Errorf("invalid color format: %s", value.Value)
	}

	parse := func(start int) (uint8, error) {
		v, err := strconv.ParseUint(s[start:start+2], 16, 8)
		return uint8(v), err
	}

	r, err := parse(0)
	if err != nil {
		return err
	}
	g, err := parse(2)
	if err != nil {
		return err
	}
	b, err := parse(4)
	if err != nil {
		return err
	}

	a := uint8(255)
	if len(s) == 8 {
		a, err = parse(6)
		if err != nil {
			return err
		}
	}

	c.Color = color.NRGBA{R: r, G: g, B: b, A: a}
	return nil
}
