package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTables(t *testing.T) {
	tables, err := DefaultTables()
	require.NoError(t, err)

	wheat, err := tables.Crop("wheat")
	require.NoError(t, err)
	kc, err := wheat.Kc(StageMid)
	require.NoError(t, err)
	assert.InDelta(t, 1.15, kc, 1e-9)
	assert.InDelta(t, 0.5, wheat.DepletionFraction, 1e-9)
	assert.InDelta(t, 1.0, wheat.DefaultRootDepthMeters, 1e-9)

	loam, err := tables.Soil("loam")
	require.NoError(t, err)
	assert.InDelta(t, 140.0, loam.AvailableWaterCapacity, 1e-9)

	drip, err := tables.Method("drip")
	require.NoError(t, err)
	assert.InDelta(t, 0.9, drip.ApplicationEfficiency, 1e-9)
}

func TestTables_LookupNormalizesKeys(t *testing.T) {
	tables, err := DefaultTables()
	require.NoError(t, err)

	_, err = tables.Crop("  Maize ")
	assert.NoError(t, err)
	_, err = tables.Soil("CLAY")
	assert.NoError(t, err)
	_, err = tables.Method("Sprinkler")
	assert.NoError(t, err)
}

func TestTables_UnknownKeys(t *testing.T) {
	tables, err := DefaultTables()
	require.NoError(t, err)

	tests := []struct {
		name   string
		lookup func() error
		kind   ConfigKind
		key    string
	}{
		{"crop", func() error { _, err := tables.Crop("banana"); return err }, KindCrop, "banana"},
		{"soil", func() error { _, err := tables.Soil("peat"); return err }, KindSoil, "peat"},
		{"method", func() error { _, err := tables.Method("flood"); return err }, KindMethod, "flood"},
		{"stage", func() error { _, err := ParseStage("flowering"); return err }, KindStage, "flowering"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.lookup()
			var cfgErr *ConfigurationError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.kind, cfgErr.Kind)
			assert.Equal(t, tt.key, cfgErr.Key)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestParseStage_Aliases(t *testing.T) {
	for key, want := range map[string]Stage{
		"initial": StageInitial,
		"ini":     StageInitial,
		"Mid":     StageMid,
		"peak":    StageMid,
		"late":    StageLate,
		" end ":   StageLate,
	} {
		got, err := ParseStage(key)
		require.NoError(t, err, key)
		assert.Equal(t, want, got, key)
	}
}

func TestTables_CropReturnsCopy(t *testing.T) {
	tables, err := DefaultTables()
	require.NoError(t, err)

	c, err := tables.Crop("wheat")
	require.NoError(t, err)
	c.KcByStage[StageMid] = 9

	again, err := tables.Crop("wheat")
	require.NoError(t, err)
	assert.InDelta(t, 1.15, again.KcByStage[StageMid], 1e-9)
}

func TestTables_Catalog(t *testing.T) {
	tables, err := DefaultTables()
	require.NoError(t, err)

	cat := tables.Catalog()
	ids := make([]string, 0, len(cat.Crops))
	for _, c := range cat.Crops {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{"wheat", "maize", "cotton", "tomato", "generic"}, ids)
	assert.Equal(t, Stages, cat.Stages)
	assert.Len(t, cat.Soils, 3)
	assert.Len(t, cat.Methods, 3)
	assert.Equal(t, "sandy", cat.Soils[0].ID)
	assert.Equal(t, "drip", cat.Methods[0].ID)
}

func TestLoadTables_Invalid(t *testing.T) {
	const soils = `
soils:
  - {id: loam, label: Loam, awc_mm_per_m: 140}
methods:
  - {id: drip, label: Drip, efficiency: 0.9}
`
	tests := []struct {
		name string
		doc  string
	}{
		{"not yaml", "crops: [unterminated"},
		{"no crops", soils},
		{"depletion fraction out of range", `
crops:
  - {id: x, label: X, kc: {initial: 0.3, mid: 1, late: 0.5}, root_depth_m: 1, depletion_fraction: 1.5}
` + soils},
		{"missing stage", `
crops:
  - {id: x, label: X, kc: {initial: 0.3, mid: 1}, root_depth_m: 1, depletion_fraction: 0.5}
` + soils},
		{"unknown stage", `
crops:
  - {id: x, label: X, kc: {initial: 0.3, mid: 1, late: 0.5, flowering: 1}, root_depth_m: 1, depletion_fraction: 0.5}
` + soils},
		{"duplicate crop", `
crops:
  - {id: x, label: X, kc: {initial: 0.3, mid: 1, late: 0.5}, root_depth_m: 1, depletion_fraction: 0.5}
  - {id: X, label: X, kc: {initial: 0.3, mid: 1, late: 0.5}, root_depth_m: 1, depletion_fraction: 0.5}
` + soils},
		{"zero efficiency", `
crops:
  - {id: x, label: X, kc: {initial: 0.3, mid: 1, late: 0.5}, root_depth_m: 1, depletion_fraction: 0.5}
soils:
  - {id: loam, label: Loam, awc_mm_per_m: 140}
methods:
  - {id: drip, label: Drip, efficiency: 0}
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadTables([]byte(tt.doc))
			require.Error(t, err)
			if tt.name != "not yaml" {
				assert.ErrorIs(t, err, ErrInvalidTable)
			}
		})
	}
}
