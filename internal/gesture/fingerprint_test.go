package gesture

import (
	"errors"
	"math"
	"testing"

	"github.com/IDGS10A-ECONORTE/lsm-server/internal/detector"
)

const tolerance = 1e-9

func assertClose(t *testing.T, a, b Fingerprint, tol float64) {
	t.Helper()
	if len(a) != len(b) {
		t.Fatalf("length mismatch: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if math.Abs(a[i]-b[i]) > tol {
			t.Fatalf("component %d differs: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestNormalize_Dimensions(t *testing.T) {
	fp, err := Normalize(detector.OpenPalmLandmarks())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fp) != HandDims {
		t.Fatalf("expected %d dimensions, got %d", HandDims, len(fp))
	}
}

func TestNormalize_TranslationInvariance(t *testing.T) {
	original := detector.OpenPalmLandmarks()

	shifted := original
	for i := range shifted.Points {
		shifted.Points[i].X += 0.31
		shifted.Points[i].Y -= 0.12
		shifted.Points[i].Z += 0.07
	}

	fpOriginal, err := Normalize(original)
	if err != nil {
		t.Fatalf("normalize original: %v", err)
	}
	fpShifted, err := Normalize(shifted)
	if err != nil {
		t.Fatalf("normalize shifted: %v", err)
	}

	assertClose(t, fpOriginal, fpShifted, tolerance)
}

func TestNormalize_ScaleInvariance(t *testing.T) {
	original := detector.ThumbsUpLandmarks()

	scaled := original
	for i := range scaled.Points {
		scaled.Points[i].X *= 2.5
		scaled.Points[i].Y *= 2.5
		scaled.Points[i].Z *= 2.5
	}

	fpOriginal, err := Normalize(original)
	if err != nil {
		t.Fatalf("normalize original: %v", err)
	}
	fpScaled, err := Normalize(scaled)
	if err != nil {
		t.Fatalf("normalize scaled: %v", err)
	}

	assertClose(t, fpOriginal, fpScaled, tolerance)
}

func TestNormalize_HandednessUnification(t *testing.T) {
	right := detector.OpenPalmLandmarks()
	right.Handedness = detector.HandRight

	// Exact mirror image performed with the other hand.
	left := right
	left.Handedness = detector.HandLeft
	for i := range left.Points {
		left.Points[i].X = -left.Points[i].X
	}

	fpRight, err := Normalize(right)
	if err != nil {
		t.Fatalf("normalize right: %v", err)
	}
	fpLeft, err := Normalize(left)
	if err != nil {
		t.Fatalf("normalize left: %v", err)
	}

	assertClose(t, fpRight, fpLeft, tolerance)
}

func TestNormalize_DegenerateGeometry(t *testing.T) {
	hand := detector.OpenPalmLandmarks()
	// Collapse the scale reference bone onto the wrist.
	hand.Points[detector.MiddleMCP] = hand.Points[detector.Wrist]

	fp, err := Normalize(hand)
	if !errors.Is(err, ErrDegenerateGeometry) {
		t.Fatalf("expected ErrDegenerateGeometry, got %v", err)
	}
	if fp != nil {
		t.Errorf("expected nil fingerprint on rejection, got %v", fp)
	}
}

func TestNormalize_NoNaN(t *testing.T) {
	fp, err := Normalize(detector.ThumbsUpLandmarks())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, v := range fp {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("component %d is not finite: %v", i, v)
		}
	}
}

func TestAssemble_SingleMode(t *testing.T) {
	fp, err := Normalize(detector.OpenPalmLandmarks())
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}

	out, err := Assemble([]Hand{{Handedness: detector.HandRight, Fingerprint: fp}}, false)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if len(out) != HandDims {
		t.Fatalf("expected %d dimensions, got %d", HandDims, len(out))
	}
	assertClose(t, fp, out, 0)
}

func TestAssemble_DualModeSlots(t *testing.T) {
	right, err := Normalize(detector.OpenPalmLandmarks())
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}

	leftHand := detector.ThumbsUpLandmarks()
	leftHand.Handedness = detector.HandLeft
	left, err := Normalize(leftHand)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}

	out, err := Assemble([]Hand{
		{Handedness: detector.HandLeft, Fingerprint: left},
		{Handedness: detector.HandRight, Fingerprint: right},
	}, true)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if len(out) != DualDims {
		t.Fatalf("expected %d dimensions, got %d", DualDims, len(out))
	}

	assertClose(t, right, out[:HandDims], 0)
	assertClose(t, left, out[HandDims:], 0)
}

func TestAssemble_DualModeMissingHand(t *testing.T) {
	leftHand := detector.OpenPalmLandmarks()
	leftHand.Handedness = detector.HandLeft
	left, err := Normalize(leftHand)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}

	out, err := Assemble([]Hand{{Handedness: detector.HandLeft, Fingerprint: left}}, true)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}

	// Right slot stays zero-filled.
	for i := 0; i < HandDims; i++ {
		if out[i] != 0 {
			t.Fatalf("right slot component %d should be zero, got %v", i, out[i])
		}
	}
	assertClose(t, left, out[HandDims:], 0)
}

func TestAssemble_NoHands(t *testing.T) {
	if _, err := Assemble(nil, true); !errors.Is(err, ErrNoHandsDetected) {
		t.Errorf("dual: expected ErrNoHandsDetected, got %v", err)
	}
	if _, err := Assemble(nil, false); !errors.Is(err, ErrNoHandsDetected) {
		t.Errorf("single: expected ErrNoHandsDetected, got %v", err)
	}
}
