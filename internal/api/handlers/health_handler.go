package handlers

import "net/http"

// Health handles GET /health and GET /api/health
func Health(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
