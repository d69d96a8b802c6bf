package detector

import "errors"

// ErrUndecodableImage is returned when the submitted frame is not a valid
// image. Callers answer it with a decode-failure reply, never by closing
// the connection.
var ErrUndecodableImage = errors.New("undecodable image payload")

// Detector analyzes an encoded frame (JPEG or PNG bytes) and returns the
// detected hand landmarks. Implementations return an empty slice when no
// hands are present and ErrUndecodableImage when the frame cannot be read.
type Detector interface {
	Detect(frame []byte) ([]HandLandmarks, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for hand detection.
type Config struct {
	// MaxHands is the maximum number of hands to detect.
	MaxHands int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64
}

// DefaultConfig returns a Config matching the reference deployment.
func DefaultConfig() Config {
	return Config{
		MaxHands:        2,
		MinConfidence:   0.7,
		MinTrackingConf: 0.5,
	}
}
