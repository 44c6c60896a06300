package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// client is a thin HTTP client for a running terrainforge service's
// POST /mcp/execute surface, grounded on the teacher's internal/cli tool
// executor (connect-then-invoke shape) simplified to a single stateless
// request/response call per invocation.
type client struct {
	endpoint string
	http     *http.Client
}

func newClient(endpoint string, timeout time.Duration) *client {
	return &client{endpoint: endpoint, http: &http.Client{Timeout: timeout}}
}

type executeRequest struct {
	Tool      string                 `json:"tool"`
	Arguments map[string]interface{} `json:"arguments"`
}

type envelope struct {
	Success bool            `json:"success"`
	Result  json.RawMessage `json:"result"`
	Error   *string         `json:"error"`
}

// call invokes tool with arguments and decodes the envelope's result into
// out (a pointer), returning an error if the envelope itself reports
// failure or the HTTP exchange fails.
func (c *client) call(tool string, arguments map[string]interface{}, out interface{}) error {
	body, err := json.Marshal(executeRequest{Tool: tool, Arguments: arguments})
	if err != nil {
		return fmt.Errorf("terrainctl: encoding request: %w", err)
	}

	resp, err := c.http.Post(c.endpoint+"/mcp/execute", "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("terrainctl: calling %s: %w", c.endpoint, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("terrainctl: decoding response: %w", err)
	}

	if !env.Success {
		msg := "tool reported failure"
		if env.Error != nil {
			msg = *env.Error
		}
		return fmt.Errorf("terrainctl: %s: %s", tool, msg)
	}

	if out == nil || len(env.Result) == 0 {
		return nil
	}
	return json.Unmarshal(env.Result, out)
}
