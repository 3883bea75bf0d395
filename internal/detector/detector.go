package detector

import (
	"errors"
	"fmt"

	"gocv.io/x/gocv"
)

// Sentinel errors returned when building a detector.
var (
	ErrScriptNotFound = errors.New("mediapipe_service.py not found")
	ErrInvalidConfig  = errors.New("invalid detector config")
)

// Detector defines the interface for hand tracking providers.
type Detector interface {
	// Detect analyzes a video frame and returns at most MaxHands hands.
	// Returns an empty slice if no hands are detected.
	Detect(frame *gocv.Mat) ([]Hand, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for hand detection.
type Config struct {
	// MaxHands is the maximum number of hands to detect (default: 2).
	MaxHands int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64

	// ScriptPath overrides the MediaPipe service script lookup.
	ScriptPath string

	// PythonPath overrides the interpreter lookup.
	PythonPath string
}

// DefaultConfig returns the tracking thresholds used by the control loop.
func DefaultConfig() Config {
	return Config{
		MaxHands:        2,
		MinConfidence:   0.8,
		MinTrackingConf: 0.7,
	}
}

// Validate checks the thresholds.
func (c Config) Validate() error {
	if c.MaxHands < 1 {
		return fmt.Errorf("%w: max hands must be at least 1, got %d", ErrInvalidConfig, c.MaxHands)
	}
	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		return fmt.Errorf("%w: detection confidence %v out of [0,1]", ErrInvalidConfig, c.MinConfidence)
	}
	if c.MinTrackingConf < 0 || c.MinTrackingConf > 1 {
		return fmt.Errorf("%w: tracking confidence %v out of [0,1]", ErrInvalidConfig, c.MinTrackingConf)
	}
	return nil
}
