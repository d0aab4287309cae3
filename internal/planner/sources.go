package planner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// FilePlanner answers every request with a plan document read from Path.
type FilePlanner struct {
	Path string
}

func (f FilePlanner) Plan(ctx context.Context, _ Request) ([]Assignment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read plan %s: %w", f.Path, err)
	}
	return DecodeResponse(data)
}

// CommandPlanner runs an external program: the request JSON goes to its
// stdin and the plan JSON is read from its stdout.
type CommandPlanner struct {
	Name    string
	Args    []string
	Env     []string
	Timeout time.Duration
}

func (c CommandPlanner) Plan(ctx context.Context, req Request) ([]Assignment, error) {
	if strings.TrimSpace(c.Name) == "" {
		return nil, fmt.Errorf("planner command is not configured")
	}
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode planner request: %w", err)
	}

	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Env = append(os.Environ(), c.Env...)
	cmd.Stdin = bytes.NewReader(payload)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("run planner %s: %w: %s", c.Name, err, msg)
		}
		return nil, fmt.Errorf("run planner %s: %w", c.Name, err)
	}
	return DecodeResponse(stdout.Bytes())
}
