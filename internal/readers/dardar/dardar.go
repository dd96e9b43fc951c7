// Package dardar reads granule metadata from DARDAR-CLOUD files.
//
// DARDAR-CLOUD file names follow DARDAR-CLOUD_v{version}_{start}_{orbit}
// where start is YYYYDDDhhmmss (day of year). The "time" field holds the
// seconds of day of every profile.
package dardar

import (
	"path/filepath"
	"regexp"
	"time"

	"github.com/agentstation/wxdata/internal/readers"
	"github.com/agentstation/wxdata/pkg/constants"
	"github.com/agentstation/wxdata/pkg/errors"
)

// Pattern matches DARDAR-CLOUD file names.
const Pattern = `DARDAR-CLOUD_v[\d\.]*_([\d]*)_([\d]*)\.*`

// TimeField is the vdata holding the seconds of day of each profile.
const TimeField = "time"

var namePattern = regexp.MustCompile(`^DARDAR-CLOUD_v[\d\.]*_(\d{13})_(\d+)`)

// Reader reads one DARDAR-CLOUD granule.
type Reader struct {
	*readers.HDF
	start time.Time
	orbit string
}

// Open opens the DARDAR-CLOUD granule at path. The granule start is parsed
// from the file name.
func Open(path string) (*Reader, error) {
	start, orbit, err := ParseName(path)
	if err != nil {
		return nil, err
	}
	h, err := readers.OpenHDF(path)
	if err != nil {
		return nil, err
	}
	return &Reader{HDF: h, start: start, orbit: orbit}, nil
}

// ParseName extracts the start time and orbit number from a file name.
func ParseName(name string) (time.Time, string, error) {
	m := namePattern.FindStringSubmatch(filepath.Base(name))
	if m == nil {
		return time.Time{}, "", errors.NewValidationError("name", name, "not a DARDAR-CLOUD file name")
	}
	t, err := time.Parse(constants.TimeFormatGranuleDOY, m[1])
	if err != nil {
		return time.Time{}, "", errors.NewParseError("dardar", name, "invalid start stamp "+m[1], err)
	}
	return t, m[2], nil
}

// StartTime returns the start time encoded in the file name.
func (r *Reader) StartTime() (time.Time, error) {
	return r.start, nil
}

// EndTime returns the time of the last profile. Seconds of day smaller than
// the start's belong to the following day.
func (r *Reader) EndTime() (time.Time, error) {
	secs, err := r.LastValue(TimeField)
	if err != nil {
		return time.Time{}, err
	}
	day := r.start.Truncate(24 * time.Hour)
	end := day.Add(time.Duration(secs * float64(time.Second)))
	if end.Before(r.start) {
		end = end.Add(24 * time.Hour)
	}
	return end, nil
}

// Orbit returns the orbit number from the file name.
func (r *Reader) Orbit() string {
	return r.orbit
}
