package core

import "net/http"

// healthResponse is the JSON response body for the health check endpoint.
type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
}

// HandleHealth reports service liveness and build metadata. The service has
// no hard dependencies to probe: the lead store is in-memory and the staff
// directory degrades to "unknown" when unreachable, so a running process is a
// healthy process.
//
// This endpoint is public (no authentication required) and is mounted at
// GET /health.
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	JSON(w, r, http.StatusOK, healthResponse{
		Status:  "healthy",
		Version: s.Config.Build.Version,
		Commit:  s.Config.Build.Commit,
	})
}
