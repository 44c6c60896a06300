package runtime

import (
	"bufio"
	"context"
	"encoding/json"
	"io"

	"terrainforge/pkg/logging"
)

// StdioServe runs the same logical operations as the HTTP surface over a
// line-delimited framing on in/out (spec §4.1, §6): each inbound line is a
// request `{tool, arguments|parameters}`, each outbound line is an envelope
// response. Blocks until in is closed or ctx is cancelled.
func (r *Registry) StdioServe(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	writer := bufio.NewWriter(out)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req executeRequest
		if err := json.Unmarshal(line, &req); err != nil {
			msg := "malformed request: " + err.Error()
			if werr := writeLine(writer, Envelope{Success: false, Error: &msg}); werr != nil {
				return werr
			}
			continue
		}

		args := ResolveArguments(req.Arguments, req.Parameters)
		envelope := r.Dispatch(ctx, req.Tool, args)
		if err := writeLine(writer, envelope); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		logging.Warn(subsystem, "stdio surface: scan error: %v", err)
		return err
	}
	return nil
}

func writeLine(w *bufio.Writer, envelope Envelope) error {
	data, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	if err := w.WriteByte('\n'); err != nil {
		return err
	}
	return w.Flush()
}
