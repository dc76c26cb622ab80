package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response", "error", err)
	}
}

func errorResponse(msg string) map[string]string {
	return map[string]string{"error": msg}
}

// decodePartial reads a partial-update body once and returns both the set
// of keys the client sent (for allow-list checks) and the raw body for a
// second, typed decode.
func decodePartial(r *http.Request) ([]string, []byte, error) {
	var fields map[string]json.RawMessage
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&fields); err != nil {
		return nil, nil, err
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}

	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, nil, err
	}

	return keys, raw, nil
}
