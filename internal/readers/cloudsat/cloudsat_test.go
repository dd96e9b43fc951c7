package cloudsat_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/wxdata/internal/hdf4/hdf4test"
	"github.com/agentstation/wxdata/internal/readers/cloudsat"
	"github.com/agentstation/wxdata/pkg/errors"
)

const geoprofName = "2008032103000_09376_CS_2B-GEOPROF_GRANULE_P_R04_E02.hdf"

func TestReader(t *testing.T) {
	path := hdf4test.New().
		AddAttribute("start_time", "20080201103000").
		AddAttribute("end_time", "20080201121000").
		AddFloat32("Profile_time", []float32{0, 0.16, 5990}).
		WriteFile(t, filepath.Join(t.TempDir(), geoprofName))

	r, err := cloudsat.Open(path)
	require.NoError(t, err)
	defer r.Close()

	start, err := r.StartTime()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2008, 2, 1, 10, 30, 0, 0, time.UTC), start)

	end, err := r.EndTime()
	require.NoError(t, err)
	assert.Equal(t, start.Add(5990*time.Second), end)

	assert.Equal(t, []string{"Profile_time", "end_time", "start_time"}, r.Attributes())

	v, err := r.Get("Profile_time")
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 0.16, 5990}, v)

	_, err = r.Get("Radar_Reflectivity")
	assert.True(t, errors.IsNotFound(err))
}

func TestEndTimeFallsBackToAttribute(t *testing.T) {
	path := hdf4test.New().
		AddAttribute("start_time", "20080201103000").
		AddAttribute("end_time", "20080201121000").
		WriteFile(t, filepath.Join(t.TempDir(), geoprofName))

	r, err := cloudsat.Open(path)
	require.NoError(t, err)
	defer r.Close()

	end, err := r.EndTime()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2008, 2, 1, 12, 10, 0, 0, time.UTC), end)
}

func TestBadStartTime(t *testing.T) {
	path := hdf4test.New().
		AddAttribute("start_time", "yesterday").
		WriteFile(t, filepath.Join(t.TempDir(), geoprofName))

	r, err := cloudsat.Open(path)
	require.NoError(t, err)
	defer r.Close()

	_, err = r.StartTime()
	var pe *errors.ParseError
	assert.ErrorAs(t, err, &pe)

	_, err = r.EndTime()
	assert.Error(t, err)
}

func TestMissingStartTime(t *testing.T) {
	path := hdf4test.New().
		AddFloat32("Profile_time", []float32{1}).
		WriteFile(t, filepath.Join(t.TempDir(), geoprofName))

	r, err := cloudsat.Open(path)
	require.NoError(t, err)
	defer r.Close()

	_, err = r.StartTime()
	assert.True(t, errors.IsNotFound(err))
}

func TestOpenNonHDF(t *testing.T) {
	_, err := cloudsat.Open(filepath.Join(t.TempDir(), "missing.hdf"))
	assert.Error(t, err)
}
