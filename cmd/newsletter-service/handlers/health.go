package handlers

import "net/http"

// handleHealthCheck always answers 200 with an empty body.
func handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}
