package mcpclient

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// CommandTransport runs an MCP server as a child process and talks to it
// over its stdin and stdout.
type CommandTransport struct {
	*StreamTransport
	cmd   *exec.Cmd
	stdin io.WriteCloser
}

// NewCommandTransport prepares the child process. env entries (KEY=VALUE) are
// merged over the current environment. Call Start to spawn it.
func NewCommandTransport(command string, args []string, env []string) *CommandTransport {
	cmd := exec.Command(command, args...)
	cmd.Env = mergeEnv(os.Environ(), env)
	cmd.Stderr = os.Stderr
	return &CommandTransport{cmd: cmd}
}

// SetStderr redirects the child's stderr. Must be called before Start.
func (t *CommandTransport) SetStderr(w io.Writer) {
	t.cmd.Stderr = w
}

// Start spawns the child process and wires up the pipes.
func (t *CommandTransport) Start() error {
	stdin, err := t.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := t.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	if err := t.cmd.Start(); err != nil {
		return fmt.Errorf("start process: %w", err)
	}
	t.stdin = stdin
	t.StreamTransport = NewStreamTransport(stdout, stdin, nil)
	return nil
}

// Signal delivers sig to the child process.
func (t *CommandTransport) Signal(sig os.Signal) error {
	if t.cmd.Process == nil {
		return fmt.Errorf("process not started")
	}
	return t.cmd.Process.Signal(sig)
}

// CloseStdin closes the child's stdin so it sees EOF.
func (t *CommandTransport) CloseStdin() error {
	if t.stdin == nil {
		return nil
	}
	return t.stdin.Close()
}

// Wait waits for the child to exit.
func (t *CommandTransport) Wait() error {
	return t.cmd.Wait()
}

// Close closes stdin, kills the child and reaps it.
func (t *CommandTransport) Close() error {
	_ = t.CloseStdin()
	if t.cmd.Process != nil {
		_ = t.cmd.Process.Kill()
		_ = t.cmd.Wait()
	}
	return nil
}

// mergeEnv merges base environment entries with overrides; later keys win.
func mergeEnv(base, overrides []string) []string {
	env := make(map[string]string, len(base)+len(overrides))
	order := make([]string, 0, len(base)+len(overrides))
	for _, list := range [][]string{base, overrides} {
		for _, entry := range list {
			key, _, found := strings.Cut(entry, "=")
			if !found {
				continue
			}
			if _, exists := env[key]; !exists {
				order = append(order, key)
			}
			env[key] = entry
		}
	}
	out := make([]string, 0, len(order))
	for _, key := range order {
		out = append(out, env[key])
	}
	return out
}
