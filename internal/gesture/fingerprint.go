// Package gesture reduces raw hand landmarks to fixed-size fingerprint
// vectors that are comparable regardless of where the hand sits in frame,
// how large it appears, and which hand performed the sign.
package gesture

import (
	"errors"
	"math"

	"github.com/IDGS10A-ECONORTE/lsm-server/internal/detector"
)

const (
	// HandDims is the length of a single-hand fingerprint:
	// 20 landmarks × 3 axes, the wrist dropped after serving as origin.
	HandDims = 60

	// DualDims is the length of a two-hand fingerprint: right then left.
	DualDims = 2 * HandDims

	// scaleEpsilon is the smallest usable wrist-to-middle-MCP distance.
	// Anything below it means the pose collapsed onto itself.
	scaleEpsilon = 1e-6
)

var (
	// ErrDegenerateGeometry is returned when the scale reference bone has
	// near-zero length and the pose cannot be normalized.
	ErrDegenerateGeometry = errors.New("degenerate hand geometry")

	// ErrNoHandDetected is returned when a frame carried no hand at all.
	ErrNoHandDetected = errors.New("no hand detected")

	// ErrNoHandsDetected is returned by Assemble when there is nothing to
	// assemble. This is the ordinary "hand left the frame" condition.
	ErrNoHandsDetected = errors.New("no hands detected")
)

// Fingerprint is a fixed-length vector representing a normalized hand pose.
type Fingerprint []float64

// Hand couples a normalized fingerprint with the handedness label the
// detector reported for it. The label decides slot placement during
// assembly; the coordinates themselves are already mirrored.
type Hand struct {
	Handedness  string
	Fingerprint Fingerprint
}

// Normalize converts one hand's raw landmarks into a 60-dimensional
// fingerprint. The result is translation-invariant (wrist-centered),
// scale-invariant (divided by the wrist-to-middle-MCP distance) and
// handedness-unified (left hands are mirrored along the x-axis so both
// hands land on the same fingerprint manifold).
func Normalize(hand detector.HandLandmarks) (Fingerprint, error) {
	wrist := hand.Points[detector.Wrist]

	// Centering: wrist becomes the origin.
	var centered [detector.NumLandmarks]detector.Point3D
	for i, p := range hand.Points {
		centered[i] = detector.Point3D{
			X: p.X - wrist.X,
			Y: p.Y - wrist.Y,
			Z: p.Z - wrist.Z,
		}
	}

	// Scale reference: length of the centered middle-finger MCP.
	ref := centered[detector.MiddleMCP]
	scale := math.Sqrt(ref.X*ref.X + ref.Y*ref.Y + ref.Z*ref.Z)
	if scale < scaleEpsilon {
		return nil, ErrDegenerateGeometry
	}

	mirror := hand.Handedness == detector.HandLeft

	// Scale, drop the (now zero) wrist, and mirror left hands across x.
	fp := make(Fingerprint, 0, HandDims)
	for i := 1; i < detector.NumLandmarks; i++ {
		x := centered[i].X / scale
		if mirror {
			x = -x
		}
		fp = append(fp, x, centered[i].Y/scale, centered[i].Z/scale)
	}

	return fp, nil
}

// Assemble combines the per-hand fingerprints of one frame into the vector
// used for matching. In dual mode the result is always 120-dimensional:
// the right-hand slot followed by the left-hand slot, zero-filled for an
// absent hand. In single mode the first fingerprint is returned as-is.
func Assemble(hands []Hand, dual bool) (Fingerprint, error) {
	if len(hands) == 0 {
		return nil, ErrNoHandsDetected
	}

	if !dual {
		out := make(Fingerprint, HandDims)
		copy(out, hands[0].Fingerprint)
		return out, nil
	}

	out := make(Fingerprint, DualDims)
	for _, h := range hands {
		// Slot assignment follows the original handedness label, not the
		// mirrored coordinates.
		switch h.Handedness {
		case detector.HandRight:
			copy(out[:HandDims], h.Fingerprint)
		case detector.HandLeft:
			copy(out[HandDims:], h.Fingerprint)
		}
	}

	return out, nil
}
