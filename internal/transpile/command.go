package transpile

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/daryltucker/sabre-bench/internal/circuit"
)

// SeedPlaceholder in Command.Args is replaced by the trial seed.
const SeedPlaceholder = "{seed}"

// Command delegates transpilation to an external program. The logical circuit
// is written to its stdin as OpenQASM 2.0 and the routed circuit is read back
// from its stdout. The seed is also exported as SABRE_BENCH_SEED.
type Command struct {
	Path string
	Args []string
	// CouplingMap, when set, is exported as SABRE_BENCH_COUPLING (e.g. "strided:50:5").
	CouplingMap string
}

func (c *Command) Transpile(ctx context.Context, in *circuit.Circuit, seed int64) (*circuit.Circuit, error) {
	if c.Path == "" {
		return nil, fmt.Errorf("transpile: external optimizer has no command")
	}
	var stdin bytes.Buffer
	if err := circuit.WriteQASM(&stdin, in); err != nil {
		return nil, err
	}

	s := strconv.FormatInt(seed, 10)
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = strings.ReplaceAll(a, SeedPlaceholder, s)
	}

	cmd := exec.CommandContext(ctx, c.Path, args...)
	cmd.Stdin = &stdin
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.Env = append(os.Environ(), "SABRE_BENCH_SEED="+s)
	if c.CouplingMap != "" {
		cmd.Env = append(cmd.Env, "SABRE_BENCH_COUPLING="+c.CouplingMap)
	}

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("transpile: %s: %w: %s", c.Path, err, msg)
		}
		return nil, fmt.Errorf("transpile: %s: %w", c.Path, err)
	}
	out, err := circuit.ParseQASM(&stdout)
	if err != nil {
		return nil, fmt.Errorf("transpile: reading %s output: %w", c.Path, err)
	}
	return out, nil
}
