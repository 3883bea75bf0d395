package capture

import (
	"errors"
	"testing"
)

func TestMockCamera_Playback(t *testing.T) {
	frames := BlankFrames(2, 640, 480)
	defer closeAll(frames)

	cam := NewMockCamera(frames, false)

	if err := cam.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer cam.Close()

	for i := 0; i < 2; i++ {
		f, err := cam.ReadFrame()
		if err != nil {
			t.Fatalf("ReadFrame() %d error = %v", i, err)
		}
		if f.Cols() != 640 || f.Rows() != 480 {
			t.Errorf("frame size %dx%d", f.Cols(), f.Rows())
		}
		f.Close()
	}

	// Third read should fail (no loop)
	if _, err := cam.ReadFrame(); !errors.Is(err, ErrFrameUnavailable) {
		t.Errorf("expected ErrFrameUnavailable, got %v", err)
	}
}

func TestMockCamera_Loop(t *testing.T) {
	frames := BlankFrames(1, 64, 48)
	defer closeAll(frames)

	cam := NewMockCamera(frames, true)
	_ = cam.Open()
	defer cam.Close()

	for i := 0; i < 5; i++ {
		f, err := cam.ReadFrame()
		if err != nil {
			t.Fatalf("ReadFrame() iteration %d error = %v", i, err)
		}
		f.Close()
	}
}

func TestMockCamera_FailOn(t *testing.T) {
	frames := BlankFrames(1, 64, 48)
	defer closeAll(frames)

	cam := NewMockCamera(frames, true)
	cam.FailOn(2)
	_ = cam.Open()

	f, err := cam.ReadFrame()
	if err != nil {
		t.Fatalf("first read: %v", err)
	}
	f.Close()

	if _, err := cam.ReadFrame(); !errors.Is(err, ErrFrameUnavailable) {
		t.Errorf("expected injected failure, got %v", err)
	}

	f, err = cam.ReadFrame()
	if err != nil {
		t.Fatalf("third read: %v", err)
	}
	f.Close()

	if cam.Reads() != 3 {
		t.Errorf("Reads() = %d, want 3", cam.Reads())
	}

	_ = cam.Close()
	if cam.Closes() != 1 {
		t.Errorf("Closes() = %d, want 1", cam.Closes())
	}
}

func TestMockCamera_NotOpen(t *testing.T) {
	cam := NewMockCamera(nil, false)

	if _, err := cam.ReadFrame(); !errors.Is(err, ErrCameraNotOpen) {
		t.Errorf("expected ErrCameraNotOpen, got %v", err)
	}
}
