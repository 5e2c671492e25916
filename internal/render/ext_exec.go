package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// DefaultCommandTimeout bounds shell and script variables.
const DefaultCommandTimeout = 5 * time.Second

// Shell runs its "cmd" parameter with sh -c and returns standard output.
// Evaluated variables are exported as XPAND_<NAME>.
type Shell struct {
	Timeout time.Duration
}

func (Shell) Name() string { return "shell" }

func (s Shell) Calculate(ctx context.Context, scope Scope, params Params) Output {
	cmd, err := stringParam(params, "cmd", "")
	if err != nil {
		return Failure(err)
	}
	if cmd == "" {
		return Failure(errors.New("shell requires a cmd"))
	}
	trim, err := boolParam(params, "trim", true)
	if err != nil {
		return Failure(err)
	}
	return runCommand(ctx, s.Timeout, scope, trim, "sh", "-c", cmd)
}

// Script runs an executable given as an "args" list. A leading $CONFIG in
// any argument is replaced with ConfigDir.
type Script struct {
	Timeout   time.Duration
	ConfigDir string
}

func (Script) Name() string { return "script" }

func (s Script) Calculate(ctx context.Context, scope Scope, params Params) Output {
	args, err := stringListParam(params, "args")
	if err != nil {
		return Failure(err)
	}
	if len(args) == 0 {
		return Failure(errors.New("script requires args"))
	}
	trim, err := boolParam(params, "trim", true)
	if err != nil {
		return Failure(err)
	}
	expanded := make([]string, len(args))
	for i, a := range args {
		expanded[i] = strings.ReplaceAll(a, "$CONFIG", s.ConfigDir)
	}
	return runCommand(ctx, s.Timeout, scope, trim, expanded[0], expanded[1:]...)
}

func runCommand(ctx context.Context, timeout time.Duration, scope Scope, trim bool, name string, args ...string) Output {
	if timeout <= 0 {
		timeout = DefaultCommandTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = append(os.Environ(), scopeEnv(scope)...)
	cmd.WaitDelay = 100 * time.Millisecond
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return Failure(fmt.Errorf("%s: %w: %s", name, err, msg))
		}
		return Failure(fmt.Errorf("%s: %w", name, err))
	}

	out := stdout.String()
	if trim {
		out = strings.TrimSpace(out)
	}
	return Success(TextValue(out))
}
