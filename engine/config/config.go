// Package config holds the importer configuration and its layered loading.
package config

import (
	"fmt"
	"strings"

	"github.com/mmalewski/Mech-Importer/engine/math"
	"github.com/mmalewski/Mech-Importer/engine/rig"
	"github.com/mmalewski/Mech-Importer/engine/scene"
	"github.com/mmalewski/Mech-Importer/engine/systems"
)

type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// MeshExt replaces the extension of part and skeleton references.
	MeshExt string `koanf:"mesh_ext"`

	// TextureExt replaces the extension of texture references, dds or tif.
	TextureExt string `koanf:"texture_ext"`

	// CockpitMaterials also loads the cockpit material descriptor.
	CockpitMaterials bool `koanf:"cockpit_materials"`

	// WeaponTokens marks attachment names that use the variant material.
	WeaponTokens []string `koanf:"weapon_tokens"`

	Rig    RigConfig    `koanf:"rig"`
	Bones  BoneConfig   `koanf:"bones"`
	Layers LayerConfig  `koanf:"layers"`
	Output OutputConfig `koanf:"output"`
}

type RigConfig struct {
	ProxySize        float64 `koanf:"proxy_size"`
	KneePoleOffset   float64 `koanf:"knee_pole_offset"`
	ElbowPoleOffset  float64 `koanf:"elbow_pole_offset"`
	TargetTailLength float64 `koanf:"target_tail_length"`
	WidgetLayer      int     `koanf:"widget_layer"`
}

// BoneConfig names the skeleton bones. Limb names contain "{side}".
type BoneConfig struct {
	Root        string `koanf:"root"`
	Pelvis      string `koanf:"pelvis"`
	PelvisPitch string `koanf:"pelvis_pitch"`
	Thigh       string `koanf:"thigh"`
	Calf        string `koanf:"calf"`
	Foot        string `koanf:"foot"`
	UpperArm    string `koanf:"upper_arm"`
	Forearm     string `koanf:"forearm"`
	Hand        string `koanf:"hand"`
	Elbow       string `koanf:"elbow"`
	Right       string `koanf:"right"`
	Left        string `koanf:"left"`
}

// LayerConfig places bound parts on display layers by material class.
type LayerConfig struct {
	Body    int `koanf:"body"`
	Variant int `koanf:"variant"`
	Window  int `koanf:"window"`
	Generic int `koanf:"generic"`
}

type OutputConfig struct {
	// Scene is the snapshot path, ".lz4" compresses. Empty skips the export.
	Scene string `koanf:"scene"`
	// Metrics is a Prometheus textfile path. Empty skips it.
	Metrics string `koanf:"metrics"`
}

func New() *Config {
	names := rig.DefaultBoneNames()
	opts := rig.DefaultOptions()
	return &Config{
		LogLevel:         "info",
		MeshExt:          "dae",
		TextureExt:       "dds",
		CockpitMaterials: false,
		WeaponTokens:     append([]string(nil), systems.DefaultWeaponTokens...),
		Rig: RigConfig{
			ProxySize:        float64(opts.ProxySize),
			KneePoleOffset:   float64(opts.KneePoleOffset),
			ElbowPoleOffset:  float64(opts.ElbowPoleOffset),
			TargetTailLength: float64(opts.TargetTailLength),
			WidgetLayer:      opts.WidgetLayer,
		},
		Bones: BoneConfig{
			Root:        names.Root,
			Pelvis:      names.Pelvis,
			PelvisPitch: names.PelvisPitch,
			Thigh:       names.Thigh,
			Calf:        names.Calf,
			Foot:        names.Foot,
			UpperArm:    names.UpperArm,
			Forearm:     names.Forearm,
			Hand:        names.Hand,
			Elbow:       names.Elbow,
			Right:       names.RightLetter,
			Left:        names.LeftLetter,
		},
		Layers: LayerConfig{
			Body:    0,
			Variant: 1,
			Window:  2,
			Generic: 3,
		},
	}
}

// Validate normalises the config and rejects values the pipeline cannot use.
func (c *Config) Validate() error {
	c.MeshExt = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(c.MeshExt)), ".")
	c.TextureExt = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(c.TextureExt)), ".")
	if c.MeshExt == "" {
		return fmt.Errorf("%w: mesh_ext must not be empty", ErrInvalidConfig)
	}
	if c.TextureExt == "" {
		return fmt.Errorf("%w: texture_ext must not be empty", ErrInvalidConfig)
	}
	if c.Rig.ProxySize <= 0 {
		return fmt.Errorf("%w: rig.proxy_size must be positive, got %v", ErrInvalidConfig, c.Rig.ProxySize)
	}
	if c.Rig.KneePoleOffset < 0 || c.Rig.ElbowPoleOffset < 0 {
		return fmt.Errorf("%w: pole offsets are magnitudes and must not be negative", ErrInvalidConfig)
	}
	if c.Rig.TargetTailLength <= 0 {
		return fmt.Errorf("%w: rig.target_tail_length must be positive", ErrInvalidConfig)
	}
	for _, tmpl := range []string{c.Bones.Thigh, c.Bones.Calf, c.Bones.Foot, c.Bones.UpperArm, c.Bones.Forearm, c.Bones.Hand, c.Bones.Elbow} {
		if !strings.Contains(tmpl, rig.SidePlaceholder) {
			return fmt.Errorf("%w: limb bone name %q lacks %s", ErrInvalidConfig, tmpl, rig.SidePlaceholder)
		}
	}
	last := scene.MaxLayers - 1
	c.Rig.WidgetLayer = math.Clamp(c.Rig.WidgetLayer, 0, last)
	c.Layers.Body = math.Clamp(c.Layers.Body, 0, last)
	c.Layers.Variant = math.Clamp(c.Layers.Variant, 0, last)
	c.Layers.Window = math.Clamp(c.Layers.Window, 0, last)
	c.Layers.Generic = math.Clamp(c.Layers.Generic, 0, last)

	tokens := c.WeaponTokens[:0]
	for _, t := range c.WeaponTokens {
		if t = strings.TrimSpace(t); t != "" {
			tokens = append(tokens, t)
		}
	}
	c.WeaponTokens = tokens
	return nil
}

// RigOptions converts the rig and bone sections for the rig package.
func (c *Config) RigOptions() rig.Options {
	return rig.Options{
		Names: rig.BoneNames{
			Root:        c.Bones.Root,
			Pelvis:      c.Bones.Pelvis,
			PelvisPitch: c.Bones.PelvisPitch,
			Thigh:       c.Bones.Thigh,
			Calf:        c.Bones.Calf,
			Foot:        c.Bones.Foot,
			UpperArm:    c.Bones.UpperArm,
			Forearm:     c.Bones.Forearm,
			Hand:        c.Bones.Hand,
			Elbow:       c.Bones.Elbow,
			RightLetter: c.Bones.Right,
			LeftLetter:  c.Bones.Left,
		},
		ProxySize:        float32(c.Rig.ProxySize),
		KneePoleOffset:   float32(c.Rig.KneePoleOffset),
		ElbowPoleOffset:  float32(c.Rig.ElbowPoleOffset),
		TargetTailLength: float32(c.Rig.TargetTailLength),
		WidgetLayer:      c.Rig.WidgetLayer,
	}
}

// LayerFor returns the display layer for a material class.
func (c *Config) LayerFor(class string) int {
	switch class {
	case systems.ClassVariant:
		return c.Layers.Variant
	case systems.ClassWindow:
		return c.Layers.Window
	case systems.ClassGeneric:
		return c.Layers.Generic
	default:
		return c.Layers.Body
	}
}
