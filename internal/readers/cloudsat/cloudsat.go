// Package cloudsat reads granule metadata from CloudSat HDF-EOS files.
//
// CloudSat granules carry their nominal start and end as "start_time" and
// "end_time" attributes in YYYYMMDDhhmmss form. The per-profile
// "Profile_time" field holds seconds elapsed since start_time, so the last
// profile gives the precise end of the granule.
package cloudsat

import (
	"math"
	"time"

	"github.com/agentstation/wxdata/internal/readers"
	"github.com/agentstation/wxdata/pkg/constants"
	"github.com/agentstation/wxdata/pkg/errors"
)

// File name patterns of the supported CloudSat products.
const (
	Pattern1bCPR     = `([\d]*)_([\d]*)_CS_1B-CPR_GRANULE_P_R([\d]*)_E([\d]*)\.*`
	Pattern2bGeoProf = `([\d]*)_([\d]*)_CS_2B-GEOPROF_GRANULE_P_R([\d]*)_E([\d]*)\.*`
	PatternModisAux  = `([\d]*)_([\d]*)_CS_MODIS-AUX_GRANULE_P_R([\d]*)_E([\d]*)\.*`
)

// ProfileTime is the vdata holding seconds since the granule start.
const ProfileTime = "Profile_time"

// Reader reads one CloudSat granule.
type Reader struct {
	*readers.HDF
}

// Open opens the CloudSat granule at path.
func Open(path string) (*Reader, error) {
	h, err := readers.OpenHDF(path)
	if err != nil {
		return nil, err
	}
	return &Reader{HDF: h}, nil
}

// StartTime returns the start_time attribute.
func (r *Reader) StartTime() (time.Time, error) {
	return r.timeAttribute("start_time")
}

// EndTime returns the start time plus the last Profile_time offset. Files
// without profile times fall back to the end_time attribute.
func (r *Reader) EndTime() (time.Time, error) {
	start, err := r.StartTime()
	if err != nil {
		return time.Time{}, err
	}
	elapsed, err := r.LastValue(ProfileTime)
	if errors.IsNotFound(err) {
		return r.timeAttribute("end_time")
	}
	if err != nil {
		return time.Time{}, err
	}
	if math.IsNaN(elapsed) || elapsed < 0 {
		return time.Time{}, errors.NewValidationError(ProfileTime, elapsed, "invalid elapsed seconds")
	}
	return start.Add(time.Duration(elapsed * float64(time.Second))), nil
}

func (r *Reader) timeAttribute(name string) (time.Time, error) {
	s, err := r.StringAttribute(name)
	if err != nil {
		return time.Time{}, err
	}
	return ParseTime(s)
}

// ParseTime parses a CloudSat YYYYMMDDhhmmss timestamp as UTC.
func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(constants.TimeFormatGranule, s)
	if err != nil {
		return time.Time{}, errors.NewParseError("cloudsat", "", "invalid timestamp "+s, err)
	}
	return t, nil
}
