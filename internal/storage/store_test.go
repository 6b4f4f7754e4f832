package storage

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/san-kum/navcore/internal/sim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() *sim.Result {
	return &sim.Result{
		Samples: []sim.Sample{
			{Tick: 0, Time: 0.1, Position: r3.Vector{X: 1, Y: 2, Z: 3}, Velocity: r3.Vector{Z: -1}, Speed: 1, State: "Aligning", GoalDistance: 9, Thrust: 10},
			{Tick: 1, Time: 0.2, Position: r3.Vector{X: 1, Y: 2, Z: 2.9}, Velocity: r3.Vector{Z: -1.5}, Speed: 1.5, State: "Moving", GoalDistance: 8.5, Thrust: 20},
		},
		Ticks:   2,
		Done:    true,
		Metrics: map[string]float64{"peak_speed": 1.5},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	runID, err := st.Save(RunMetadata{Scenario: "dock", Layout: "drone", Mission: "path", Dt: 0.1}, sampleResult())
	require.NoError(t, err)
	assert.Len(t, runID, 36)

	meta, err := st.Load(runID)
	require.NoError(t, err)
	assert.Equal(t, "dock", meta.Scenario)
	assert.Equal(t, 2, meta.Ticks)
	assert.True(t, meta.Done)
	assert.Equal(t, 1.5, meta.Metrics["peak_speed"])

	samples, err := st.LoadTrace(runID)
	require.NoError(t, err)
	require.Len(t, samples, 2)
	assert.Equal(t, "Moving", samples[1].State)
	assert.Equal(t, 1, samples[1].Tick)
	assert.InDelta(t, 2.9, samples[1].Position.Z, 1e-9)
	assert.InDelta(t, 8.5, samples[1].GoalDistance, 1e-9)
	assert.InDelta(t, 20, samples[1].Thrust, 1e-9)
}

func TestStoreList(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)
	require.NoError(t, st.Init())

	runs, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, runs)

	first, err := st.Save(RunMetadata{Scenario: "first"}, sampleResult())
	require.NoError(t, err)
	second, err := st.Save(RunMetadata{Scenario: "second"}, sampleResult())
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "junk"), 0755))

	runs, err = st.List()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	ids := []string{runs[0].ID, runs[1].ID}
	assert.ElementsMatch(t, []string{first, second}, ids)
	assert.False(t, runs[0].Timestamp.Before(runs[1].Timestamp))
}

func TestStoreListMissingDir(t *testing.T) {
	runs, err := New(filepath.Join(t.TempDir(), "absent")).List()
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestStoreNotFound(t *testing.T) {
	st := New(t.TempDir())
	_, err := st.Load("nope")
	assert.ErrorIs(t, err, ErrRunNotFound)
	_, err = st.LoadTrace("nope")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestLoadTraceSkipsBadRows(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)
	runID, err := st.Save(RunMetadata{}, sampleResult())
	require.NoError(t, err)

	file := filepath.Join(dir, runID, "trace.csv")
	f, err := os.OpenFile(file, os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.WriteString("oops,1,2\nx,1,2,3,4,5,6,7,Idle,9,10\n0.3,1,2,3,0,0,0,0,Idle,0,0\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	samples, err := st.LoadTrace(runID)
	require.NoError(t, err)
	require.Len(t, samples, 3)
	assert.Equal(t, "Idle", samples[2].State)
}

func TestStoreFileStructure(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)
	require.NoError(t, st.Init())

	runID, err := st.Save(RunMetadata{}, sampleResult())
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, runID, "metadata.json"))
	assert.FileExists(t, filepath.Join(dir, runID, "trace.csv"))
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	res := sampleResult()
	require.NoError(t, ExportJSON(&buf, RunMetadata{ID: "abc", Scenario: "dock"}, res.Samples))

	var got ExportData
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "abc", got.Run.ID)
	assert.Len(t, got.Samples, 2)
	assert.Equal(t, "Aligning", got.Samples[0].State)
}

func TestExportCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportCSV(&buf, sampleResult().Samples))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 3)
	assert.Equal(t, "time,x,y,z,vx,vy,vz,speed,state,goal_distance,thrust", string(lines[0]))
	assert.Contains(t, string(lines[2]), ",Moving,")
}

func TestStoreKeepsEnvironment(t *testing.T) {
	st := New(t.TempDir())
	ground := 0.0
	env := sim.Environment{
		Obstacles: []sim.Obstacle{{Center: r3.Vector{X: 5}, Radius: 2}},
		Ground:    &ground,
	}
	runID, err := st.Save(RunMetadata{Scenario: "avoid", Environment: env}, sampleResult())
	require.NoError(t, err)

	meta, err := st.Load(runID)
	require.NoError(t, err)
	require.Len(t, meta.Environment.Obstacles, 1)
	assert.Equal(t, 2.0, meta.Environment.Obstacles[0].Radius)
	require.NotNil(t, meta.Environment.Ground)
	assert.Equal(t, 0.0, *meta.Environment.Ground)
}
