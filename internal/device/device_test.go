package device

import (
	"context"
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/daryltucker/sabre-bench/internal/coupling"
	"github.com/daryltucker/sabre-bench/internal/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedProfiles(t *testing.T) {
	assert.Equal(t, []string{"fake_falcon27", "fake_oslo", "fake_washington"}, Names())

	oslo, err := Lookup("fake_oslo")
	require.NoError(t, err)
	assert.Equal(t, 7, oslo.NumQubits)
	assert.Len(t, oslo.Qubits, 7)
	assert.True(t, oslo.HasCalibration())

	m, err := oslo.CouplingMap()
	require.NoError(t, err)
	assert.Len(t, m.Edges(), 6)
	d, err := m.Distance(0, 6)
	require.NoError(t, err)
	assert.Equal(t, 4, d)

	falcon, err := Lookup("fake_falcon27")
	require.NoError(t, err)
	assert.True(t, falcon.Retired)
	assert.False(t, falcon.HasCalibration())
	fm, err := falcon.CouplingMap()
	require.NoError(t, err)
	assert.Equal(t, 27, fm.Size())
	assert.Len(t, fm.Edges(), 28)
	for q := 0; q < fm.Size(); q++ {
		assert.LessOrEqual(t, len(fm.Neighbors(q)), 3, "heavy-hex degree at %d", q)
	}

	wash, err := Lookup("fake_washington")
	require.NoError(t, err)
	wm, err := wash.CouplingMap()
	require.NoError(t, err)
	assert.Equal(t, 127, wm.Size())
	assert.Len(t, wm.Edges(), 144)
	_, err = wm.Distance(0, 126)
	assert.NoError(t, err)

	_, err = Lookup("ibm_nowhere")
	assert.ErrorIs(t, err, ErrUnknownDevice)
}

func TestResolveThroughCouplingParse(t *testing.T) {
	m, err := coupling.Parse("fake_oslo", Resolve)
	require.NoError(t, err)
	assert.Equal(t, "fake_oslo", m.Name())
	assert.True(t, m.Connected(5, 6))

	_, err = coupling.Parse("fake_nothing", Resolve)
	assert.ErrorIs(t, err, ErrUnknownDevice)
}

func TestProfileProperties(t *testing.T) {
	oslo, err := Lookup("fake_oslo")
	require.NoError(t, err)
	p := oslo.Properties()
	require.NotNil(t, p)

	t1, err := p.T1(0)
	require.NoError(t, err)
	assert.InDelta(t, 148.48e-6, t1, 1e-12)

	freq, err := p.Frequency(6)
	require.NoError(t, err)
	assert.InDelta(t, 5.1797e9, freq, 10)

	cx := p.GatesNamed("cx", "ecr", "cz")
	assert.Len(t, cx, 12)
	assert.Equal(t, "cx0_1", cx[0].Name)

	l, err := p.GateLength("cx", []int{4, 5})
	require.NoError(t, err)
	assert.InDelta(t, 448e-9, l, 1e-15)

	ts, err := p.LastUpdate()
	require.NoError(t, err)
	assert.Equal(t, 2023, ts.Year())
}

func TestSimulatorSource(t *testing.T) {
	ctx := context.Background()
	sim := NewSimulator()

	names, err := sim.Backends(ctx)
	require.NoError(t, err)
	assert.Contains(t, names, "fake_oslo")

	st, err := sim.Status(ctx, "fake_oslo")
	require.NoError(t, err)
	assert.True(t, st.Operational)

	cfg, err := sim.Configuration(ctx, "fake_oslo")
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.NumQubits)
	assert.Len(t, cfg.CouplingMap, 12)

	_, err = sim.Status(ctx, "fake_falcon27")
	assert.ErrorIs(t, err, ErrRetired)
	assert.True(t, provider.IsRetired(err))
	_, err = sim.Properties(ctx, "fake_falcon27")
	assert.True(t, provider.IsRetired(err))

	sub, err := sim.Substitute("fake_oslo")
	require.NoError(t, err)
	assert.Equal(t, 7, sub.NumQubits())
	_, err = sim.Substitute("fake_falcon27")
	assert.Error(t, err)

	only := &Simulator{Only: []string{"fake_oslo"}}
	names, err = only.Backends(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"fake_oslo"}, names)
}

func TestReadProfilesRejectsMalformed(t *testing.T) {
	fsys := fstest.MapFS{
		"p/good.toml": {Data: []byte("name = \"tiny\"\nnum_qubits = 2\ncoupling_map = [[0, 1]]\n")},
		"p/notes.txt": {Data: []byte("ignored")},
	}
	profiles, err := readProfiles(fsys, "p")
	require.NoError(t, err)
	require.Contains(t, profiles, "tiny")
	assert.Equal(t, [][2]int{{0, 1}}, profiles["tiny"].Pairs())

	bad := fstest.MapFS{"p/bad.toml": {Data: []byte("name = \"x\"\nnum_qubits = 2\ncoupling_map = [[0, 1, 2]]\n")}}
	_, err = readProfiles(bad, "p")
	assert.ErrorContains(t, err, "bad.toml")

	missing := fstest.MapFS{"p/m.toml": {Data: []byte("num_qubits = 2\n")}}
	_, err = readProfiles(missing, "p")
	assert.Error(t, err)
}

func TestProfilesFS(t *testing.T) {
	data, err := fs.ReadFile(Profiles(), "fake_oslo.toml")
	require.NoError(t, err)
	d, err := decodeProfile(string(data))
	require.NoError(t, err)
	assert.Equal(t, "fake_oslo", d.Name)
}
