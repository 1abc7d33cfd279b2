package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"
)

// ClaudeCLI completes requests by running the claude CLI in print mode. The
// user message goes through stdin so large contexts do not hit argv limits.
type ClaudeCLI struct {
	Binary string
	Model  string
}

func NewClaudeCLI(model string) *ClaudeCLI {
	return &ClaudeCLI{Binary: "claude", Model: model}
}

func (c *ClaudeCLI) Complete(ctx context.Context, req Request) (string, error) {
	args := []string{
		"-p",
		"--output-format", "json",
		"--system-prompt", req.System,
		"--max-turns", "1",
	}
	if c.Model != "" {
		args = append(args, "--model", c.Model)
	}

	cmd := exec.CommandContext(ctx, c.Binary, args...)
	cmd.Stdin = strings.NewReader(req.User)
	cmd.Env = envWithout("CLAUDECODE")
	// Only callers passing a cancellable ctx reach this; pipeline runs are
	// uncancelled. SIGTERM lets the CLI release its session lock, and
	// SIGKILL follows after 5 seconds.
	cmd.Cancel = func() error {
		return cmd.Process.Signal(syscall.SIGTERM)
	}
	cmd.WaitDelay = 5 * time.Second

	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", fmt.Errorf("claude error: %s", string(exitErr.Stderr))
		}
		return "", fmt.Errorf("running claude: %w", err)
	}
	return unwrapCLIOutput(output), nil
}

// unwrapCLIOutput extracts the model text from the CLI envelope:
// {"type":"result", "structured_output": {...}, "result": "...", ...}
// Output that is not an envelope is returned as is.
func unwrapCLIOutput(output []byte) string {
	var wrapper struct {
		Type             string          `json:"type"`
		StructuredOutput json.RawMessage `json:"structured_output"`
		Result           string          `json:"result"`
	}
	if err := json.Unmarshal(output, &wrapper); err == nil && wrapper.Type == "result" {
		if len(wrapper.StructuredOutput) > 0 && string(wrapper.StructuredOutput) != "null" {
			return string(wrapper.StructuredOutput)
		}
		return wrapper.Result
	}
	return string(output)
}

func envWithout(key string) []string {
	prefix := key + "="
	var env []string
	for _, e := range os.Environ() {
		if !strings.HasPrefix(e, prefix) {
			env = append(env, e)
		}
	}
	return env
}
