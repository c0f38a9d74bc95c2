package registry

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pasenov/coverage/pkg/dataset"
)

func TestBuiltinSets(t *testing.T) {
	reg, err := Builtin()
	require.NoError(t, err)
	require.Equal(t, []string{"nanoV12", "nanoV9"}, reg.Sets())

	v9, err := reg.Set("nanoV9")
	require.NoError(t, err)
	require.Equal(t, []string{"electrons", "jets", "met", "muons"}, v9.Names())

	// every feature of every type carries a processor chain and its stages build
	for _, set := range reg.Sets() {
		s, err := reg.Set(set)
		require.NoError(t, err)
		for _, name := range s.Names() {
			typ := s.Datasets[name]
			cfg := typ.NewConfig()
			require.NoError(t, cfg.Validate(), "%s/%s", set, name)
			for j, f := range cfg.Features() {
				if j == 0 && cfg.HasPlaceholder() {
					continue
				}
				require.Contains(t, typ.Processors, f, "%s/%s", set, name)
			}
			_, err := typ.BuildStages()
			require.NoError(t, err, "%s/%s", set, name)
		}
	}
}

func TestNanoV12Overrides(t *testing.T) {
	reg, err := Builtin()
	require.NoError(t, err)

	v9jets, err := reg.Lookup("nanoV9", "jets")
	require.NoError(t, err)
	v12jets, err := reg.Lookup("nanoV12", "jets")
	require.NoError(t, err)
	require.Contains(t, v9jets.NewConfig().TargetFeatures, "Jet_btagDeepB")
	require.Contains(t, v12jets.NewConfig().TargetFeatures, "Jet_btagDeepFlavB")

	v9mu, err := reg.Lookup("nanoV9", "muons")
	require.NoError(t, err)
	v12mu, err := reg.Lookup("nanoV12", "muons")
	require.NoError(t, err)
	require.Same(t, v9mu, v12mu, "inherited from the base set")

	_, err = reg.Lookup("nanoV9", "fatjets")
	require.ErrorIs(t, err, ErrUnknownDataset)
	_, err = reg.Lookup("nanoV12", "fatjets")
	require.NoError(t, err)
}

func TestHeterogeneousElectrons(t *testing.T) {
	reg, err := Builtin()
	require.NoError(t, err)
	el, err := reg.Lookup("nanoV9", "electrons")
	require.NoError(t, err)
	cfg := el.NewConfig()
	require.True(t, cfg.HasPlaceholder())
	require.Equal(t, dataset.Placeholder, cfg.ConditioningFeatures[0])
	require.Len(t, cfg.Matching.TargetMask.Names, 3)
}

func TestLookupUnknownSet(t *testing.T) {
	reg, err := Builtin()
	require.NoError(t, err)
	_, err = reg.Lookup("nanoV7", "muons")
	require.ErrorIs(t, err, ErrUnknownSet)
	require.ErrorContains(t, err, "nanoV9")
}

const customSet = `
sets:
  - name: private
    base: nanoV9
    datasets:
      - name: muons
        type: scalar
        conditioning: [{name: a}]
        target: [{name: b, dtype: float64}]
        stages: [{kind: require, columns: [a, b]}]
        processors:
          a: [{kind: standard}]
`

func TestLoadFileWithBase(t *testing.T) {
	reg, err := Builtin()
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "private.yaml")
	require.NoError(t, os.WriteFile(path, []byte(customSet), 0o644))
	require.NoError(t, reg.LoadFile(path))

	mu, err := reg.Lookup("private", "muons")
	require.NoError(t, err)
	require.Equal(t, "scalar", mu.Type)
	require.Equal(t, dataset.Conditioning, mu.Conditioning[0].Role)
	require.Equal(t, dataset.Float32, mu.Conditioning[0].DType)
	require.Equal(t, dataset.Float64, mu.Target[0].DType)

	_, err = reg.Lookup("private", "jets")
	require.NoError(t, err, "jets inherited from nanoV9")
}

func TestLoadRejects(t *testing.T) {
	cases := map[string]string{
		"bad type":      "sets: [{name: x, datasets: [{name: d, type: table, target: [{name: b}]}]}]",
		"no target":     "sets: [{name: x, datasets: [{name: d, type: scalar}]}]",
		"duplicate":     "sets: [{name: x, datasets: [{name: d, type: scalar, conditioning: [{name: b}], target: [{name: b}]}]}]",
		"bad stage":     "sets: [{name: x, datasets: [{name: d, type: scalar, target: [{name: b}], stages: [{kind: warp}]}]}]",
		"bad processor": "sets: [{name: x, datasets: [{name: d, type: scalar, target: [{name: b}], processors: {b: [{kind: fft}]}}]}]",
		"unknown base":  "sets: [{name: x, base: nanoV1, datasets: []}]",
		"unnamed set":   "sets: [{datasets: []}]",
	}
	for name, doc := range cases {
		reg, err := Builtin()
		require.NoError(t, err)
		err = reg.Load(strings.NewReader(doc))
		var ce *ConfigError
		require.True(t, errors.As(err, &ce), name)
	}

	reg, err := Builtin()
	require.NoError(t, err)
	big := strings.NewReader("# " + strings.Repeat("x", MaxFileSize))
	require.ErrorContains(t, reg.Load(big), "larger than")
}
