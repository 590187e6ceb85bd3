package hwinfo

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Runner executes an external hardware query and returns its trimmed stdout.
// Implementations must honour the context deadline; callers treat every error
// the same way (degrade to placeholders), so the error text only matters for
// logging.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
}

// execRunner shells out with a per-query timeout budget.
type execRunner struct {
	timeout time.Duration
}

// NewRunner returns a Runner that spawns one subprocess per query, capped at
// timeout. A zero timeout falls back to 10 seconds.
func NewRunner(timeout time.Duration) Runner {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &execRunner{timeout: timeout}
}

func (r *execRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("%s: %w", name, ctx.Err())
		}
		return "", fmt.Errorf("%s: %w (%s)", name, err, strings.TrimSpace(stderr.String()))
	}

	return strings.TrimSpace(stdout.String()), nil
}
