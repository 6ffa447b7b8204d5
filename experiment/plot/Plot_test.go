package plot

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samuelfneumann/replaydqn/experiment"
	"github.com/samuelfneumann/replaydqn/experiment/tracker"
	ts "github.com/samuelfneumann/replaydqn/timestep"
)

func TestNewCurves(t *testing.T) {
	c := NewCurves([]float64{1, 3, 5, 7}, []float64{2, 6}, 2)

	assert.Equal(t, []float64{1, 2, 4, 6}, c.Rolling)

	lo, hi := c.bounds()
	assert.Equal(t, 1.0, lo)
	assert.Equal(t, 7.0, hi)

	lo, hi = NewCurves(nil, nil, 2).bounds()
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 1.0, hi)
}

func TestReporter(t *testing.T) {
	train := tracker.NewReturn("")
	eval := tracker.NewReturn("")
	for i := 0; i < 6; i++ {
		train.Track(ts.New(ts.First, 0, nil, 0))
		train.Track(ts.New(ts.Last, float64(i*i)-10, nil, 1))
		train.EndEpisode(i + 1)
		if (i+1)%3 == 0 {
			eval.Track(ts.New(ts.First, 0, nil, 0))
			eval.Track(ts.New(ts.Last, float64(i), nil, 1))
			eval.EndEpisode(i + 1)
		}
	}

	path := filepath.Join(t.TempDir(), "rewards.png")
	var r experiment.Reporter = NewReporter(path, train, eval, 3)
	require.NoError(t, r.Report(experiment.Report{}))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	img, err := png.Decode(file)
	require.NoError(t, err)
	assert.Equal(t, Width, img.Bounds().Dx())
	assert.Equal(t, Height, img.Bounds().Dy())
}

func TestReporterFinish(t *testing.T) {
	train := tracker.NewReturn("")
	train.Track(ts.New(ts.First, 0, nil, 0))
	train.Track(ts.New(ts.Last, 3, nil, 1))
	train.EndEpisode(1)

	path := filepath.Join(t.TempDir(), "rewards.png")
	var f experiment.Finisher = NewReporter(path, train,
		tracker.NewReturn(""), 2)
	require.NoError(t, f.Finish())
	assert.FileExists(t, path)

	bad := NewReporter(filepath.Join(t.TempDir(), "missing", "a.png"),
		train, tracker.NewReturn(""), 2)
	assert.Error(t, bad.Finish())
}

func TestSaveBadPath(t *testing.T) {
	c := NewCurves([]float64{1}, nil, 1)
	assert.Error(t, Save(c, filepath.Join(t.TempDir(), "missing", "a.png")))
}
