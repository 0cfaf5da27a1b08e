package handlers

import "net/http"

// HandleHealth is a simple health check handler that returns "ok".
// It does not contact the activities API.
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
