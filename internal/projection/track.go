package projection

import (
	"errors"
	"fmt"
	"time"

	"github.com/litescript/ls-astrometry/internal/platepar"
)

// ErrInvalidTrack is returned for a track without a usable frame rate.
var ErrInvalidTrack = errors.New("invalid track")

// Pick is the centroid of a meteor on one video frame.
type Pick struct {
	Frame float64 `yaml:"frame" json:"frame"`
	X     float64 `yaml:"x" json:"x"`
	Y     float64 `yaml:"y" json:"y"`
	Level float64 `yaml:"level" json:"level"`
}

// Track is a meteor detection: its picks plus the timing needed to place
// each frame in time.
type Track struct {
	Start time.Time `yaml:"start" json:"start"`
	FPS   float64   `yaml:"fps" json:"fps"`
	Picks []Pick    `yaml:"picks" json:"picks"`
}

// FrameTime returns the timestamp of a (possibly fractional) frame number.
func (t Track) FrameTime(frame float64) time.Time {
	return t.Start.Add(time.Duration(frame / t.FPS * float64(time.Second)))
}

// ApplyAstrometry calibrates a meteor track. Picks with a non-positive
// level carry no photometry and are dropped before calibration.
func ApplyAstrometry(m platepar.CameraModel, tr Track) ([]SkyPoint, error) {
	if !(tr.FPS > 0) {
		return nil, fmt.Errorf("%w: fps %v must be positive", ErrInvalidTrack, tr.FPS)
	}

	var dets []Detection
	for _, p := range tr.Picks {
		if p.Level <= 0 {
			continue
		}
		dets = append(dets, Detection{
			Time:  tr.FrameTime(p.Frame),
			X:     p.X,
			Y:     p.Y,
			Level: p.Level,
		})
	}
	if len(dets) == 0 {
		return nil, fmt.Errorf("apply astrometry: %w: no picks with a positive level", ErrEmptyInput)
	}

	return Calibrate(m, dets)
}
