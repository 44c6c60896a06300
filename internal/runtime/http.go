package runtime

import (
	"encoding/json"
	"net/http"
)

// healthResponse is the fixed /health payload (spec §4.1, §6).
type healthResponse struct {
	Status  string `json:"status"`
	Server  string `json:"server"`
	Version string `json:"version"`
}

type toolsResponse struct {
	Tools []toolListing `json:"tools"`
}

type toolListing struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  ParameterSchema `json:"parameters"`
}

type executeRequest struct {
	Tool       string                 `json:"tool"`
	Arguments  map[string]interface{} `json:"arguments"`
	Parameters map[string]interface{} `json:"parameters"`
}

// HTTPHandler returns an http.Handler implementing the fixed HTTP surface:
// GET /health, GET /mcp/tools, POST /mcp/execute (spec §4.1, §6). Any
// handled tool invocation responds HTTP 200 with the envelope carrying
// success/failure; 4xx/5xx are reserved for transport-layer errors (request
// not even JSON, wrong method).
func (r *Registry) HTTPHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", r.handleHealth)
	mux.HandleFunc("/mcp/tools", r.handleTools)
	mux.HandleFunc("/mcp/execute", r.handleExecute)
	return mux
}

func (r *Registry) handleHealth(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "healthy", Server: r.name, Version: r.version})
}

func (r *Registry) handleTools(w http.ResponseWriter, req *http.Request) {
	descs := r.Tools()
	listings := make([]toolListing, 0, len(descs))
	for _, d := range descs {
		listings = append(listings, toolListing{Name: d.Name, Description: d.Description, Parameters: d.Parameters})
	}
	writeJSON(w, http.StatusOK, toolsResponse{Tools: listings})
}

func (r *Registry) handleExecute(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body executeRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(w, "malformed request body", http.StatusBadRequest)
		return
	}

	args := ResolveArguments(body.Arguments, body.Parameters)
	envelope := r.Dispatch(req.Context(), body.Tool, args)
	writeJSON(w, http.StatusOK, envelope)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
