package collect

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"corp/sysreport/core"
)

// Runner menjalankan perintah eksternal dan mengembalikan stdout-nya.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
}

// ExecRunner menjalankan perintah via os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return stdout.String(), core.Wrap(core.KindTimeout, name, ctx.Err())
		}
		// pesan error dari tool (mis. "ERROR: Access is denied.") lebih berguna dari exit code
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = strings.TrimSpace(stdout.String())
		}
		kind := core.KindCommand
		if isAccessDenied(msg) {
			kind = core.KindAccess
		}
		if msg != "" {
			err = fmt.Errorf("%w: %s", err, msg)
		}
		return stdout.String(), core.Wrap(kind, name, err)
	}
	return stdout.String(), nil
}

func isAccessDenied(msg string) bool {
	return strings.Contains(strings.ToLower(msg), "access is denied")
}

// isKeyNotFound: reg.exe exit 1 saat key memang tidak ada (bukan kegagalan)
func isKeyNotFound(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "unable to find the specified registry key")
}

var errEmptyOutput = errors.New("empty output")

// unsupported: collector tidak tersedia di OS ini
func unsupported(source string) error {
	return core.Wrap(core.KindUnsupported, source, errors.ErrUnsupported)
}
