package screenshot

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/kbinani/screenshot"
	"gocv.io/x/gocv"
)

// HostEnv lets tests replace the OS lookups used by command methods.
type HostEnv struct {
	GOOS     string
	LookPath func(file string) (string, error)
	Run      func(ctx context.Context, name string, args ...string) error
}

func (e HostEnv) withDefaults() HostEnv {
	if e.GOOS == "" {
		e.GOOS = runtime.GOOS
	}
	if e.LookPath == nil {
		e.LookPath = exec.LookPath
	}
	if e.Run == nil {
		e.Run = func(ctx context.Context, name string, args ...string) error {
			out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
			if err != nil {
				return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(out)))
			}
			return nil
		}
	}
	return e
}

// DefaultMethods returns the chain used on this host.
func DefaultMethods(env HostEnv) []Method {
	env = env.withDefaults()

	methods := []Method{DisplayMethod{}}
	switch env.GOOS {
	case "darwin":
		methods = append(methods, CommandMethod{Tool: "screencapture", Args: []string{"-x"}, Env: env})
	case "linux":
		methods = append(methods,
			CommandMethod{Tool: "gnome-screenshot", Args: []string{"-f"}, Env: env},
			CommandMethod{Tool: "scrot", Env: env},
			CommandMethod{Label: "imagemagick", Tool: "import", Args: []string{"-window", "root"}, Env: env},
		)
	}
	return append(methods, PlaceholderMethod{}, StubMethod{})
}

// DisplayMethod grabs every active display as one image.
type DisplayMethod struct{}

// Name implements Method.
func (DisplayMethod) Name() string { return "displays" }

// Capture implements Method.
func (d DisplayMethod) Capture(ctx context.Context, path string, _ *gocv.Mat) (string, error) {
	n := screenshot.NumActiveDisplays()
	if n <= 0 {
		return "", errors.New("no active displays")
	}
	var all image.Rectangle
	for i := 0; i < n; i++ {
		all = all.Union(screenshot.GetDisplayBounds(i))
	}
	if err := d.CaptureRegion(ctx, path, all); err != nil {
		return "", err
	}
	return path, nil
}

// CaptureRegion implements RegionMethod.
func (DisplayMethod) CaptureRegion(_ context.Context, path string, rect image.Rectangle) error {
	img, err := screenshot.CaptureRect(rect)
	if err != nil {
		return fmt.Errorf("capture %v: %w", rect, err)
	}
	return writeImage(path, img)
}

func writeImage(path string, img image.Image) error {
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return fmt.Errorf("convert image: %w", err)
	}
	defer mat.Close()

	if !gocv.IMWrite(path, mat) {
		return fmt.Errorf("write %s failed", path)
	}
	return nil
}

// CommandMethod runs an external tool with the output path as last argument.
type CommandMethod struct {
	Label string
	Tool  string
	Args  []string
	Env   HostEnv
}

// Name implements Method.
func (m CommandMethod) Name() string {
	if m.Label != "" {
		return m.Label
	}
	return m.Tool
}

// Capture implements Method.
func (m CommandMethod) Capture(ctx context.Context, path string, _ *gocv.Mat) (string, error) {
	env := m.Env.withDefaults()
	if _, err := env.LookPath(m.Tool); err != nil {
		return "", fmt.Errorf("%s not installed: %w", m.Tool, err)
	}

	args := append(append([]string{}, m.Args...), path)
	if err := env.Run(ctx, m.Tool, args...); err != nil {
		return "", err
	}
	// Some tools exit 0 when the user cancels or no display is available.
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%s produced no file: %w", m.Tool, err)
	}
	return path, nil
}

// StubMethod writes a text note next to where the image would have gone.
type StubMethod struct{}

// Name implements Method.
func (StubMethod) Name() string { return "stub" }

// Capture implements Method.
func (StubMethod) Capture(_ context.Context, path string, _ *gocv.Mat) (string, error) {
	txt := strings.TrimSuffix(path, filepath.Ext(path)) + ".txt"
	body := fmt.Sprintf("Screenshot requested for %s\nNo capture method was available on this host.\n", filepath.Base(path))
	if err := os.WriteFile(txt, []byte(body), 0o644); err != nil {
		return "", err
	}
	return txt, nil
}
