package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"
)

// Duration is a JSON-friendly wrapper around time.Duration that accepts human
// readable strings such as "150ms" in configuration files while still
// allowing numeric representations when necessary.
type Duration time.Duration

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// MarshalJSON encodes the duration using the canonical string representation.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON decodes a duration from either a string (e.g. "250ms") or a
// numeric value representing nanoseconds. Empty strings and null values decode
// to zero.
func (d *Duration) UnmarshalJSON(b []byte) error {
	if len(b) == 0 {
		return fmt.Errorf("duration: empty value")
	}
	if string(b) == "null" {
		*d = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("duration: decode string: %w", err)
		}
		if s == "" {
			*d = 0
			return nil
		}
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("duration: parse %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}
	var n int64
	if err := json.Unmarshal(b, &n); err == nil {
		*d = Duration(time.Duration(n))
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		*d = Duration(time.Duration(f))
		return nil
	}
	return fmt.Errorf("duration: invalid value %s", string(b))
}

// Config captures the tunable parameters needed to bootstrap a planet.
type Config struct {
	Planet      PlanetConfig      `json:"planet"`
	WorldGen    *WorldGenConfig   `json:"worldGen,omitempty"`
	Bake        BakeConfig        `json:"bake"`
	Persistence PersistenceConfig `json:"persistence"`
	Preview     PreviewConfig     `json:"preview"`
}

// PlanetConfig is the coarse description a player or operator supplies. The
// full WorldGenConfig is derived from it unless explicitly overridden.
type PlanetConfig struct {
	Name         string  `json:"name" yaml:"name"`
	SizeChunks   int     `json:"sizeChunks" yaml:"sizeChunks"`
	HeightChunks int     `json:"heightChunks" yaml:"heightChunks"`
	Seed         int64   `json:"seed" yaml:"seed"`
	SeaLevel     float64 `json:"seaLevel" yaml:"seaLevel"`
}

type BakeConfig struct {
	Workers   int `json:"workers"`   // simultaneous chunk bake jobs
	QueueSize int `json:"queueSize"` // pending bake requests before Request blocks callers
}

type PersistenceConfig struct {
	DataDir       string   `json:"dataDir"` // empty disables disk persistence
	FlushInterval Duration `json:"flushInterval"`
	DebugDir      string   `json:"debugDir"` // optional payload capture directory
}

type PreviewConfig struct {
	Path   string `json:"path"` // empty disables map export
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// WorldGenConfig holds every tunable of the surface generator. It is immutable
// once a generator is constructed; a new planet requires a new generator.
type WorldGenConfig struct {
	Seed       int64   `json:"seed"`
	PlanetSize float64 `json:"planetSize"`
	SeaLevel   float64 `json:"seaLevel"`

	OceanDepth       float64 `json:"oceanDepth"`
	DeepOceanDepth   float64 `json:"deepOceanDepth"`
	OceanBorderWidth float64 `json:"oceanBorderWidth"`

	ContinentCount             int     `json:"continentCount"`
	ContinentRadius            float64 `json:"continentRadius"`
	ContinentThreshold         float64 `json:"continentThreshold"`
	ContinentFrequency         float64 `json:"continentFrequency"`
	ContinentPower             float64 `json:"continentPower"`
	ContinentBias              float64 `json:"continentBias"`
	ContinentEdgePower         float64 `json:"continentEdgePower"`
	ContinentBeltWidth         float64 `json:"continentBeltWidth"`
	ContinentRepulsionStrength float64 `json:"continentRepulsionStrength"`
	ContinentDriftGain         float64 `json:"continentDriftGain"`
	ContinentDriftBeltGain     float64 `json:"continentDriftBeltGain"`

	DetailFrequency float64 `json:"detailFrequency"`
	DetailAmplitude float64 `json:"detailAmplitude"`
	HighlandBonus   float64 `json:"highlandBonus"`

	MountainFrequency         float64 `json:"mountainFrequency"`
	MountainHeight            float64 `json:"mountainHeight"`
	MountainThreshold         float64 `json:"mountainThreshold"`
	MountainRangeCount        int     `json:"mountainRangeCount"`
	MountainRangeWidth        float64 `json:"mountainRangeWidth"`
	MountainRangeStrength     float64 `json:"mountainRangeStrength"`
	MountainSpurChance        float64 `json:"mountainSpurChance"`
	MountainSpurStrength      float64 `json:"mountainSpurStrength"`
	MountainRoughness         float64 `json:"mountainRoughness"`
	MountainErosionIterations int     `json:"mountainErosionIterations"`
	MountainConvergenceBoost  float64 `json:"mountainConvergenceBoost"`
	MountainDivergencePenalty float64 `json:"mountainDivergencePenalty"`
	MountainShearBoost        float64 `json:"mountainShearBoost"`
	MountainArcThreshold      float64 `json:"mountainArcThreshold"`
	MountainArcStrength       float64 `json:"mountainArcStrength"`
	MountainArcWidthFactor    float64 `json:"mountainArcWidthFactor"`

	IslandFrequency float64 `json:"islandFrequency"`
	IslandThreshold float64 `json:"islandThreshold"`
	IslandHeight    float64 `json:"islandHeight"`
	IslandFalloff   float64 `json:"islandFalloff"`

	EquatorTempC          float64 `json:"equatorTempC"`
	PoleTempC             float64 `json:"poleTempC"`
	LapseRatePerBlock     float64 `json:"lapseRatePerBlock"`
	TempVariation         float64 `json:"tempVariation"`
	TempVariationCycles   float64 `json:"tempVariationCycles"`
	MoistureFrequency     float64 `json:"moistureFrequency"`
	RainfallBase          float64 `json:"rainfallBase"`
	RainfallVariance      float64 `json:"rainfallVariance"`
	RainfallFrequency     float64 `json:"rainfallFrequency"`

	HydrologyResolution int     `json:"hydrologyResolution"`
	MajorRiverCount     int     `json:"majorRiverCount"`
	MajorRiverBoost     float64 `json:"majorRiverBoost"`
	RiverFlowThreshold  float64 `json:"riverFlowThreshold"`
	RiverDepthScale     float64 `json:"riverDepthScale"`
	RiverMaxDepth       float64 `json:"riverMaxDepth"`
	RiverSurfaceRatio   float64 `json:"riverSurfaceRatio"`
	LakeFlowThreshold   float64 `json:"lakeFlowThreshold"`
	LakeDepth           float64 `json:"lakeDepth"`
	LakeShoreBlend      float64 `json:"lakeShoreBlend"`
}

// UnmarshalJSON fills the struct with defaults before decoding, so a config
// file only needs to list the parameters it changes.
func (c *WorldGenConfig) UnmarshalJSON(b []byte) error {
	type plain WorldGenConfig
	merged := plain(*DefaultWorldGen())
	if err := json.Unmarshal(b, &merged); err != nil {
		return err
	}
	*c = WorldGenConfig(merged)
	return nil
}

// standardWorldSize is the reference planet size (512 chunks of 32 blocks)
// the default frequencies are tuned against.
const standardWorldSize = 16384.0

// Load reads configuration from a JSON file if provided. An empty path returns defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func Default() *Config {
	return &Config{
		Planet: PlanetConfig{
			Name:         "Terra",
			SizeChunks:   512,
			HeightChunks: 8,
			Seed:         12345,
			SeaLevel:     64,
		},
		Bake: BakeConfig{
			Workers:   6,
			QueueSize: 256,
		},
		Persistence: PersistenceConfig{
			FlushInterval: Duration(2 * time.Second),
		},
		Preview: PreviewConfig{
			Width:  1024,
			Height: 512,
		},
	}
}

// DefaultWorldGen returns the hand-tuned generation parameters for a
// standard-size planet.
func DefaultWorldGen() *WorldGenConfig {
	return &WorldGenConfig{
		Seed:       0,
		PlanetSize: standardWorldSize,
		SeaLevel:   64,

		OceanDepth:       24,
		DeepOceanDepth:   40,
		OceanBorderWidth: 0.03,

		ContinentCount:             12,
		ContinentRadius:            0.24,
		ContinentThreshold:         0.14,
		ContinentFrequency:         2.0,
		ContinentPower:             1.0,
		ContinentBias:              0.34,
		ContinentEdgePower:         1.2,
		ContinentBeltWidth:         0.18,
		ContinentRepulsionStrength: 0.12,
		ContinentDriftGain:         0.05,
		ContinentDriftBeltGain:     0.6,

		DetailFrequency: 7.0,
		DetailAmplitude: 8.0,
		HighlandBonus:   20,

		MountainFrequency:         2.5,
		MountainHeight:            160,
		MountainThreshold:         0.48,
		MountainRangeCount:        14,
		MountainRangeWidth:        300,
		MountainRangeStrength:     2.2,
		MountainSpurChance:        0.45,
		MountainSpurStrength:      1.5,
		MountainRoughness:         1.7,
		MountainErosionIterations: 2,
		MountainConvergenceBoost:  0.85,
		MountainDivergencePenalty: 0.6,
		MountainShearBoost:        0.35,
		MountainArcThreshold:      0.45,
		MountainArcStrength:       0.55,
		MountainArcWidthFactor:    0.45,

		IslandFrequency: 7.6,
		IslandThreshold: 0.08,
		IslandHeight:    50,
		IslandFalloff:   1.8,

		EquatorTempC:        30,
		PoleTempC:           -25,
		LapseRatePerBlock:   0.008,
		TempVariation:       3.0,
		TempVariationCycles: 2.5,
		MoistureFrequency:   2.6,
		RainfallBase:        1.4,
		RainfallVariance:    0.4,
		RainfallFrequency:   0.8,

		HydrologyResolution: 1536,
		MajorRiverCount:     12,
		MajorRiverBoost:     7.5,
		RiverFlowThreshold:  120,
		RiverDepthScale:     0.06,
		RiverMaxDepth:       22,
		RiverSurfaceRatio:   0.65,
		LakeFlowThreshold:   140,
		LakeDepth:           6,
		LakeShoreBlend:      3,
	}
}

// FromPlanetConfig derives the full generation parameters from a coarse
// planet description. Frequencies scale with world size so physical feature
// sizes stay constant; counts scale logarithmically or with area.
func FromPlanetConfig(planet PlanetConfig) *WorldGenConfig {
	cfg := DefaultWorldGen()

	sizeChunks := planet.SizeChunks
	if sizeChunks <= 0 {
		sizeChunks = 512
	}
	planetSize := float64(sizeChunks) * 32

	cfg.Seed = planet.Seed
	cfg.PlanetSize = planetSize
	if planet.SeaLevel > 0 {
		cfg.SeaLevel = planet.SeaLevel
	}

	frequencyScale := math.Max(planetSize, 1) / standardWorldSize

	cfg.ContinentCount = clampInt(int(math.Round(math.Log2(planetSize)*0.4)), 3, 20)
	cfg.ContinentRadius = 0.23 * math.Sqrt(planetSize/standardWorldSize)
	cfg.ContinentFrequency = 2.0 * frequencyScale

	cfg.DetailFrequency = 7.0 * frequencyScale
	cfg.MountainFrequency = 2.5 * frequencyScale
	cfg.MoistureFrequency = 2.6 * frequencyScale
	cfg.IslandFrequency = 7.6 * frequencyScale
	cfg.RainfallFrequency = 0.8 * frequencyScale

	areaScale := math.Max(planetSize/standardWorldSize, 0.25)
	cfg.MountainRangeCount = clampInt(int(math.Round(12*math.Pow(areaScale, 0.75))), 4, 40)
	cfg.MajorRiverCount = clampInt(int(math.Round(12*areaScale)), 4, 48)

	cfg.HydrologyResolution = clampInt(int(planetSize/16), 128, 4096)

	return cfg
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// WorldGenParams resolves the effective generation parameters: an explicit
// override wins, otherwise they derive from the planet description.
func (c *Config) WorldGenParams() *WorldGenConfig {
	if c.WorldGen != nil {
		return c.WorldGen
	}
	return FromPlanetConfig(c.Planet)
}

func (c *Config) Validate() error {
	if c.Planet.Name == "" {
		return errors.New("planet.name must be set")
	}
	if c.Planet.SizeChunks <= 0 {
		return errors.New("planet.sizeChunks must be positive")
	}
	if c.Planet.HeightChunks <= 0 {
		return errors.New("planet.heightChunks must be positive")
	}
	if c.Bake.Workers <= 0 {
		return errors.New("bake.workers must be positive")
	}
	if c.Bake.QueueSize <= 0 {
		return errors.New("bake.queueSize must be positive")
	}
	if c.Preview.Path != "" && (c.Preview.Width <= 0 || c.Preview.Height <= 0) {
		return errors.New("preview dimensions must be positive when a path is set")
	}
	if c.WorldGen != nil {
		if c.WorldGen.PlanetSize <= 0 {
			return errors.New("worldGen.planetSize must be positive")
		}
		if c.WorldGen.ContinentCount <= 0 {
			return errors.New("worldGen.continentCount must be positive")
		}
	}
	return nil
}
