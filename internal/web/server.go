package web

import (
	"context"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/Mister-sp/girr-remake-sub000/internal/relay"
	"github.com/Mister-sp/girr-remake-sub000/internal/store"
	"github.com/Mister-sp/girr-remake-sub000/internal/uploads"
	"github.com/Mister-sp/girr-remake-sub000/internal/web/api"
)

// Server is the HTTP server for the rundown API, the uploads directory
// and the realtime websocket endpoint.
type Server struct {
	httpServer *http.Server
	log        zerolog.Logger
}

// NewServer creates a new Server with the given dependencies.
func NewServer(
	addr string,
	st *store.Store,
	hub *relay.Hub,
	transitions *api.TransitionStore,
	files *uploads.Manager,
	log zerolog.Logger,
) *Server {
	r := chi.NewRouter()

	a := &api.API{
		Store:       st,
		Hub:         hub,
		Transitions: transitions,
		Uploads:     files,
		Log:         log,
	}
	r.Route("/api", a.RegisterRoutes)

	r.Get("/ws", websocketHandler(hub, log))
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(files.BaseDir()))))

	return &Server{
		httpServer: &http.Server{
			Addr:    addr,
			Handler: corsMiddleware(r),
		},
		log: log,
	}
}

// Handler exposes the full route tree, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins listening and serving HTTP requests.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	s.log.Info().Str("addr", ln.Addr().String()).Msg("http server listening")
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// corsMiddleware adds permissive CORS headers so the admin console and
// the OBS browser sources can be served from anywhere on the LAN.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
