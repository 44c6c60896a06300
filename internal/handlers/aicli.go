package handlers

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"

	"terrainforge/pkg/logging"
	pkgstrings "terrainforge/pkg/strings"
)

const aiSubsystem = "ai-cli"

// exchange is one prompt/response pair retained in a session's rolling
// history (spec §4.9 AI-CLI handlers).
type exchange struct {
	Prompt   string
	Response string
}

// Consultant executes an external AI CLI binary with a bounded rolling
// conversation history composed into the prompt, grounded on the original
// Python tools/mcp/*/handlers/ai_consult_handler.py history-window pattern.
type Consultant struct {
	binary     string
	timeout    time.Duration
	maxHistory int

	mu      sync.Mutex
	history map[string][]exchange
}

// NewConsultant constructs a Consultant invoking binary, bounding each
// session's history to maxHistory exchanges, and bounding each invocation to
// timeout (spec §5 Timeouts "AI-CLI handlers: same mechanism").
func NewConsultant(binary string, timeout time.Duration, maxHistory int) *Consultant {
	return &Consultant{
		binary:     binary,
		timeout:    timeout,
		maxHistory: maxHistory,
		history:    make(map[string][]exchange),
	}
}

// Consult composes the session's history with the new prompt, runs the AI
// CLI binary, appends the exchange (evicting the oldest if the history is
// full), and returns {status, response, execution_time} (spec §4.9).
func (c *Consultant) Consult(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	prompt, _ := args["prompt"].(string)
	if prompt == "" {
		return nil, fmt.Errorf("ai-cli: missing required argument 'prompt'")
	}
	sessionID := aiSessionID(args)

	composed := c.composePrompt(sessionID, prompt)

	runCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	response, err := c.run(runCtx, composed)
	elapsed := time.Since(start)

	if err != nil {
		logging.Error(aiSubsystem, err, "consultation failed for session %s", sessionID)
		return map[string]interface{}{
			"status":         "error",
			"response":       "",
			"execution_time": elapsed.Seconds(),
		}, nil
	}

	c.record(sessionID, prompt, response)

	return map[string]interface{}{
		"status":         "success",
		"response":       response,
		"execution_time": elapsed.Seconds(),
	}, nil
}

func (c *Consultant) composePrompt(sessionID, prompt string) string {
	c.mu.Lock()
	history := append([]exchange(nil), c.history[sessionID]...)
	c.mu.Unlock()

	if len(history) == 0 {
		return prompt
	}

	var b strings.Builder
	for _, ex := range history {
		fmt.Fprintf(&b, "User: %s\nAssistant: %s\n", ex.Prompt, pkgstrings.TruncateDescription(ex.Response, pkgstrings.DefaultDescriptionMaxLen))
	}
	fmt.Fprintf(&b, "User: %s", prompt)
	return b.String()
}

func (c *Consultant) record(sessionID, prompt, response string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	h := append(c.history[sessionID], exchange{Prompt: prompt, Response: response})
	if len(h) > c.maxHistory {
		h = h[len(h)-c.maxHistory:]
	}
	c.history[sessionID] = h
}

func (c *Consultant) run(ctx context.Context, composedPrompt string) (string, error) {
	cmd := exec.CommandContext(ctx, c.binary)
	cmd.Stdin = strings.NewReader(composedPrompt)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("ai-cli: %s: %w: %s", c.binary, err, stderr.String())
	}

	return strings.TrimSpace(stdout.String()), nil
}
