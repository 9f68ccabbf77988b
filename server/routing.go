package server

import "net/http"

// setupHTTPRoutes configures all HTTP handlers on a fresh mux
func (s *Server) setupHTTPRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/", s.corsMiddleware(s.HandleHome))
	mux.HandleFunc("/debug-path", s.corsMiddleware(s.HandleDebugPath))
	mux.HandleFunc("/data", s.corsMiddleware(s.HandleData))
	mux.HandleFunc("/version", s.corsMiddleware(s.HandleVersion))
	mux.HandleFunc("/login", s.corsMiddleware(s.HandleLogin))
	mux.HandleFunc("/update", s.corsMiddleware(s.authMW.RequireAuth(s.HandleUpdate)))

	return mux
}

// corsMiddleware adds CORS headers to HTTP responses using configured allowed origins.
// An empty server.allowed_origins list allows any origin.
func (s *Server) corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		if origin != "" && s.originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		}

		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		// Handle preflight requests
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

// originAllowed reports whether the Origin header matches the configured allowlist
func (s *Server) originAllowed(origin string) bool {
	allowed := s.cfg.Server.AllowedOrigins
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if a == origin || a == "*" {
			return true
		}
	}
	return false
}
