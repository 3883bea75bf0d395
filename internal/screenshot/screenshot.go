// Package screenshot captures the screen through an ordered chain of methods.
package screenshot

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/hashicorp/go-multierror"
	"gocv.io/x/gocv"

	"github.com/ayusman/pinchctl/pkg/logger"
	"github.com/ayusman/pinchctl/pkg/metrics"
)

// DefaultPrefix and DefaultFormat name files screenshot_YYYYMMDD_HHMMSS.png.
const (
	DefaultPrefix = "screenshot"
	DefaultFormat = "png"
	RegionPrefix  = "region_screenshot"
	timeLayout    = "20060102_150405"
)

// ErrAllMethodsFailed is returned when every method in the chain failed.
var ErrAllMethodsFailed = errors.New("all screenshot methods failed")

var imageExts = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".bmp": true, ".gif": true}

// Method is one way of capturing the screen. Capture returns the path actually
// written, which may differ from path in extension.
type Method interface {
	Name() string
	Capture(ctx context.Context, path string, overlay *gocv.Mat) (string, error)
}

// RegionMethod can capture part of the screen.
type RegionMethod interface {
	CaptureRegion(ctx context.Context, path string, rect image.Rectangle) error
}

// Entry describes a stored screenshot.
type Entry struct {
	Name    string    `json:"name"`
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// Capturer writes screenshots into one directory.
type Capturer struct {
	dir     string
	prefix  string
	ext     string
	methods []Method
	log     logger.Logger
	clock   clock.Clock
}

// Option configures a Capturer.
type Option func(*Capturer)

// WithPrefix sets the filename prefix.
func WithPrefix(prefix string) Option {
	return func(c *Capturer) {
		if prefix != "" {
			c.prefix = prefix
		}
	}
}

// WithFormat sets the image extension, e.g. "png" or "jpg".
func WithFormat(format string) Option {
	return func(c *Capturer) {
		if format != "" {
			c.ext = strings.TrimPrefix(strings.ToLower(format), ".")
		}
	}
}

// WithMethods replaces the method chain.
func WithMethods(methods ...Method) Option {
	return func(c *Capturer) {
		c.methods = append([]Method{}, methods...)
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Capturer) {
		if l != nil {
			c.log = l
		}
	}
}

// WithClock sets the clock used for filenames.
func WithClock(clk clock.Clock) Option {
	return func(c *Capturer) {
		if clk != nil {
			c.clock = clk
		}
	}
}

// New creates dir if needed and returns a Capturer using DefaultMethods
// unless WithMethods is given.
func New(dir string, opts ...Option) (*Capturer, error) {
	c := &Capturer{
		dir:    dir,
		prefix: DefaultPrefix,
		ext:    DefaultFormat,
		log:    logger.Nop(),
		clock:  clock.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.methods == nil {
		c.methods = DefaultMethods(HostEnv{})
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create screenshot dir: %w", err)
	}
	return c, nil
}

// Dir returns the output directory.
func (c *Capturer) Dir() string {
	return c.dir
}

// Methods returns the names of the configured methods in order.
func (c *Capturer) Methods() []string {
	names := make([]string, 0, len(c.methods))
	for _, m := range c.methods {
		names = append(names, m.Name())
	}
	return names
}

// Filename builds the path for a capture taken now.
func (c *Capturer) Filename(prefix string) string {
	name := fmt.Sprintf("%s_%s.%s", prefix, c.clock.Now().Format(timeLayout), c.ext)
	return filepath.Join(c.dir, name)
}

// Capture tries each method in order and returns the first written path.
// overlay is the current annotated frame; only the placeholder method uses it
// and it may be nil.
func (c *Capturer) Capture(ctx context.Context, overlay *gocv.Mat) (string, error) {
	return c.capture(ctx, c.Filename(c.prefix), overlay)
}

func (c *Capturer) capture(ctx context.Context, path string, overlay *gocv.Mat) (string, error) {
	var errs *multierror.Error
	for _, m := range c.methods {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		written, err := safeCapture(ctx, m, path, overlay)
		if err != nil {
			metrics.RecordScreenshot(m.Name(), metrics.ResultError)
			c.log.Debug(ctx, "screenshot method failed",
				logger.String("method", m.Name()),
				logger.Error(err),
			)
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", m.Name(), err))
			continue
		}

		metrics.RecordScreenshot(m.Name(), metrics.ResultOK)
		c.log.Info(ctx, "screenshot saved",
			logger.String("method", m.Name()),
			logger.String("path", written),
		)
		return written, nil
	}

	if errs == nil {
		return "", ErrAllMethodsFailed
	}
	return "", fmt.Errorf("%w: %w", ErrAllMethodsFailed, errs)
}

// safeCapture turns a panic inside a method (cgo or display libraries) into an error.
func safeCapture(ctx context.Context, m Method, path string, overlay *gocv.Mat) (written string, err error) {
	defer func() {
		if r := recover(); r != nil {
			written, err = "", fmt.Errorf("panic: %v", r)
		}
	}()
	return m.Capture(ctx, path, overlay)
}

// Region captures rect using the first method that supports regions and
// otherwise falls back to a full Capture.
func (c *Capturer) Region(ctx context.Context, rect image.Rectangle) (string, error) {
	if rect.Empty() {
		return "", fmt.Errorf("empty region %v", rect)
	}

	path := c.Filename(RegionPrefix)
	for _, m := range c.methods {
		rm, ok := m.(RegionMethod)
		if !ok {
			continue
		}
		if err := rm.CaptureRegion(ctx, path, rect); err != nil {
			metrics.RecordScreenshot(m.Name(), metrics.ResultError)
			c.log.Warn(ctx, "region screenshot failed",
				logger.String("method", m.Name()),
				logger.Error(err),
			)
			break
		}
		metrics.RecordScreenshot(m.Name(), metrics.ResultOK)
		return path, nil
	}
	return c.Capture(ctx, nil)
}

// List returns the image files in the directory, newest first.
func (c *Capturer) List() ([]Entry, error) {
	dirEntries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, fmt.Errorf("read screenshot dir: %w", err)
	}

	var entries []Entry
	for _, de := range dirEntries {
		if de.IsDir() || !imageExts[strings.ToLower(filepath.Ext(de.Name()))] {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		entries = append(entries, Entry{
			Name:    de.Name(),
			Path:    filepath.Join(c.dir, de.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].ModTime.Equal(entries[j].ModTime) {
			return entries[i].Name > entries[j].Name
		}
		return entries[i].ModTime.After(entries[j].ModTime)
	})
	return entries, nil
}

// Count returns the number of image files in the directory.
func (c *Capturer) Count() (int, error) {
	entries, err := c.List()
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}

// Cleanup removes the oldest images beyond keepLast and returns the removed paths.
func (c *Capturer) Cleanup(keepLast int) ([]string, error) {
	if keepLast < 0 {
		keepLast = 0
	}
	entries, err := c.List()
	if err != nil {
		return nil, err
	}
	if len(entries) <= keepLast {
		return nil, nil
	}

	var removed []string
	var errs *multierror.Error
	for _, e := range entries[keepLast:] {
		if err := os.Remove(e.Path); err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		removed = append(removed, e.Path)
	}
	if len(removed) > 0 {
		c.log.Info(context.Background(), "removed old screenshots", logger.Int("count", len(removed)))
	}
	return removed, errs.ErrorOrNil()
}
