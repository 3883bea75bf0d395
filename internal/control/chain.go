package control

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// ErrNoSetter is returned when no candidate initializes.
var ErrNoSetter = errors.New("no setter available")

// Candidate is one way of obtaining a Setter. TryInit probes the backend and
// returns an error when it is unavailable on this machine.
type Candidate struct {
	Name    string
	TryInit func(ctx context.Context) (Setter, error)
}

// SelectSetter returns the first candidate whose TryInit succeeds, along with its name.
// When all fail the returned error wraps ErrNoSetter and every probe error.
func SelectSetter(ctx context.Context, candidates ...Candidate) (Setter, string, error) {
	var errs *multierror.Error
	for _, c := range candidates {
		if c.TryInit == nil {
			continue
		}
		s, err := c.TryInit(ctx)
		if err == nil && s != nil {
			return s, c.Name, nil
		}
		if err == nil {
			err = errors.New("nil setter")
		}
		errs = multierror.Append(errs, fmt.Errorf("%s: %w", c.Name, err))
	}
	if errs == nil {
		return nil, "", ErrNoSetter
	}
	return nil, "", fmt.Errorf("%w: %w", ErrNoSetter, errs)
}
