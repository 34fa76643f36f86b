package domain

import (
	_ "embed"
	"fmt"
	"maps"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed parameters.yaml
var defaultParameters []byte

// Stage selects which crop coefficient applies.
type Stage string

const (
	StageInitial Stage = "initial"
	StageMid     Stage = "mid"
	StageLate    Stage = "late"
)

// Stages lists growth stages in seasonal order.
var Stages = []Stage{StageInitial, StageMid, StageLate}

// ParseStage resolves a stage key. The short FAO-56 column names ("ini",
// "end") and "peak" are accepted as aliases.
func ParseStage(key string) (Stage, error) {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "initial", "ini":
		return StageInitial, nil
	case "mid", "peak":
		return StageMid, nil
	case "late", "end":
		return StageLate, nil
	default:
		return "", &ConfigurationError{Kind: KindStage, Key: key}
	}
}

// CropProfile holds the FAO-56 coefficients for one crop.
type CropProfile struct {
	ID                     string            `json:"id"`
	Label                  string            `json:"label"`
	KcByStage              map[Stage]float64 `json:"kc_by_stage"`
	DepletionFraction      float64           `json:"depletion_fraction"`
	DefaultRootDepthMeters float64           `json:"default_root_depth_m"`
}

// Kc returns the crop coefficient for a growth stage.
func (c CropProfile) Kc(stage Stage) (float64, error) {
	kc, ok := c.KcByStage[stage]
	if !ok {
		return 0, &ConfigurationError{Kind: KindStage, Key: string(stage)}
	}
	return kc, nil
}

// SoilProfile describes a soil texture class.
type SoilProfile struct {
	ID                     string  `json:"id"`
	Label                  string  `json:"label"`
	AvailableWaterCapacity float64 `json:"awc_mm_per_m"`
}

// IrrigationMethod describes how water is applied and how much of it reaches
// the root zone.
type IrrigationMethod struct {
	ID                    string  `json:"id"`
	Label                 string  `json:"label"`
	ApplicationEfficiency float64 `json:"efficiency"`
}

// Tables is the immutable set of crop, soil, and method parameters.
// Lookups return copies so callers cannot mutate shared state.
type Tables struct {
	crops   map[string]CropProfile
	soils   map[string]SoilProfile
	methods map[string]IrrigationMethod

	cropOrder   []string
	soilOrder   []string
	methodOrder []string
}

// Catalog lists the available selections in table order.
type Catalog struct {
	Crops   []CropProfile      `json:"crops"`
	Stages  []Stage            `json:"stages"`
	Soils   []SoilProfile      `json:"soils"`
	Methods []IrrigationMethod `json:"methods"`
}

// tableFile is the YAML layout of a parameter table document.
type tableFile struct {
	Crops []struct {
		ID                string             `yaml:"id"`
		Label             string             `yaml:"label"`
		Kc                map[string]float64 `yaml:"kc"`
		RootDepthM        float64            `yaml:"root_depth_m"`
		DepletionFraction float64            `yaml:"depletion_fraction"`
	} `yaml:"crops"`
	Soils []struct {
		ID    string  `yaml:"id"`
		Label string  `yaml:"label"`
		AWC   float64 `yaml:"awc_mm_per_m"`
	} `yaml:"soils"`
	Methods []struct {
		ID         string  `yaml:"id"`
		Label      string  `yaml:"label"`
		Efficiency float64 `yaml:"efficiency"`
	} `yaml:"methods"`
}

// DefaultTables parses the parameter tables compiled into the binary.
func DefaultTables() (*Tables, error) {
	return LoadTables(defaultParameters)
}

// LoadTables parses and validates a YAML parameter table document.
func LoadTables(data []byte) (*Tables, error) {
	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse parameter tables: %w", err)
	}

	t := &Tables{
		crops:   make(map[string]CropProfile, len(f.Crops)),
		soils:   make(map[string]SoilProfile, len(f.Soils)),
		methods: make(map[string]IrrigationMethod, len(f.Methods)),
	}

	for _, c := range f.Crops {
		id := normalizeKey(c.ID)
		if id == "" {
			return nil, fmt.Errorf("%w: crop with empty id", ErrInvalidTable)
		}
		if _, dup := t.crops[id]; dup {
			return nil, fmt.Errorf("%w: duplicate crop %q", ErrInvalidTable, id)
		}
		if c.DepletionFraction <= 0 || c.DepletionFraction > 1 {
			return nil, fmt.Errorf("%w: crop %q depletion fraction %v outside (0,1]", ErrInvalidTable, id, c.DepletionFraction)
		}
		if c.RootDepthM <= 0 {
			return nil, fmt.Errorf("%w: crop %q root depth must be positive", ErrInvalidTable, id)
		}
		kc := make(map[Stage]float64, len(Stages))
		for key, v := range c.Kc {
			stage, err := ParseStage(key)
			if err != nil {
				return nil, fmt.Errorf("%w: crop %q: %w", ErrInvalidTable, id, err)
			}
			if v < 0 {
				return nil, fmt.Errorf("%w: crop %q kc for %s is negative", ErrInvalidTable, id, stage)
			}
			kc[stage] = v
		}
		for _, stage := range Stages {
			if _, ok := kc[stage]; !ok {
				return nil, fmt.Errorf("%w: crop %q missing kc for %s", ErrInvalidTable, id, stage)
			}
		}
		t.crops[id] = CropProfile{
			ID:                     id,
			Label:                  c.Label,
			KcByStage:              kc,
			DepletionFraction:      c.DepletionFraction,
			DefaultRootDepthMeters: c.RootDepthM,
		}
		t.cropOrder = append(t.cropOrder, id)
	}

	for _, s := range f.Soils {
		id := normalizeKey(s.ID)
		if id == "" {
			return nil, fmt.Errorf("%w: soil with empty id", ErrInvalidTable)
		}
		if _, dup := t.soils[id]; dup {
			return nil, fmt.Errorf("%w: duplicate soil %q", ErrInvalidTable, id)
		}
		if s.AWC <= 0 {
			return nil, fmt.Errorf("%w: soil %q available water capacity must be positive", ErrInvalidTable, id)
		}
		t.soils[id] = SoilProfile{ID: id, Label: s.Label, AvailableWaterCapacity: s.AWC}
		t.soilOrder = append(t.soilOrder, id)
	}

	for _, m := range f.Methods {
		id := normalizeKey(m.ID)
		if id == "" {
			return nil, fmt.Errorf("%w: method with empty id", ErrInvalidTable)
		}
		if _, dup := t.methods[id]; dup {
			return nil, fmt.Errorf("%w: duplicate method %q", ErrInvalidTable, id)
		}
		if m.Efficiency <= 0 || m.Efficiency > 1 {
			return nil, fmt.Errorf("%w: method %q efficiency %v outside (0,1]", ErrInvalidTable, id, m.Efficiency)
		}
		t.methods[id] = IrrigationMethod{ID: id, Label: m.Label, ApplicationEfficiency: m.Efficiency}
		t.methodOrder = append(t.methodOrder, id)
	}

	if len(t.crops) == 0 || len(t.soils) == 0 || len(t.methods) == 0 {
		return nil, fmt.Errorf("%w: crops, soils, and methods must each have at least one entry", ErrInvalidTable)
	}

	return t, nil
}

// Crop returns the profile for a crop key.
func (t *Tables) Crop(key string) (CropProfile, error) {
	c, ok := t.crops[normalizeKey(key)]
	if !ok {
		return CropProfile{}, &ConfigurationError{Kind: KindCrop, Key: key}
	}
	c.KcByStage = maps.Clone(c.KcByStage)
	return c, nil
}

// Soil returns the profile for a soil key.
func (t *Tables) Soil(key string) (SoilProfile, error) {
	s, ok := t.soils[normalizeKey(key)]
	if !ok {
		return SoilProfile{}, &ConfigurationError{Kind: KindSoil, Key: key}
	}
	return s, nil
}

// Method returns the irrigation method for a method key.
func (t *Tables) Method(key string) (IrrigationMethod, error) {
	m, ok := t.methods[normalizeKey(key)]
	if !ok {
		return IrrigationMethod{}, &ConfigurationError{Kind: KindMethod, Key: key}
	}
	return m, nil
}

// Catalog returns every selection in table order.
func (t *Tables) Catalog() Catalog {
	cat := Catalog{
		Crops:   make([]CropProfile, 0, len(t.cropOrder)),
		Stages:  append([]Stage(nil), Stages...),
		Soils:   make([]SoilProfile, 0, len(t.soilOrder)),
		Methods: make([]IrrigationMethod, 0, len(t.methodOrder)),
	}
	for _, id := range t.cropOrder {
		c, _ := t.Crop(id)
		cat.Crops = append(cat.Crops, c)
	}
	for _, id := range t.soilOrder {
		cat.Soils = append(cat.Soils, t.soils[id])
	}
	for _, id := range t.methodOrder {
		cat.Methods = append(cat.Methods, t.methods[id])
	}
	return cat
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
