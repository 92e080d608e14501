package inspect

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"chosenoffset.com/deepruins/internal/gamedata"
	"chosenoffset.com/deepruins/internal/storage"
)

const shutdownTimeout = 5 * time.Second

// Server exposes the inspector endpoints
type Server struct {
	addr   string
	hub    *Hub
	record *gamedata.Record
	store  storage.Store
	slot   string
	ctx    context.Context
}

// NewServer creates an inspector for record listening on addr
func NewServer(addr string, hub *Hub, record *gamedata.Record) *Server {
	return &Server{addr: addr, hub: hub, record: record, ctx: context.Background()}
}

// SetStore lets the reset routes persist their changes to slot
func (s *Server) SetStore(store storage.Store, slot string) {
	s.store = store
	s.slot = slot
}

// Handler returns the inspector routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /state", s.handleState)
	mux.HandleFunc("POST /reset", s.handleReset)
	mux.HandleFunc("POST /reset/enemies", s.handleResetEnemies)
	mux.HandleFunc("GET /events", func(w http.ResponseWriter, r *http.Request) {
		s.hub.ServeWS(s.ctx, w, r)
	})
	return mux
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	blob, err := s.record.Encode()
	if err != nil {
		log.Errorf("Failed to encode game data: %v", err)
		http.Error(w, "failed to encode game data", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(blob)
}

// handleReset wipes the record back to a new game and deletes the save slot.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.record.Reset()
	if s.store != nil {
		if err := s.store.Delete(r.Context(), s.slot); err != nil {
			log.Errorf("Failed to delete save slot %s: %v", s.slot, err)
			http.Error(w, "failed to delete save", http.StatusInternalServerError)
			return
		}
	}
	log.WithField("slot", s.slot).Warn("Game data reset from inspector")
	s.hub.Publish("reset", map[string]string{"scope": "all"})
	s.handleState(w, r)
}

// handleResetEnemies forgets defeated enemies and saves the result.
func (s *Server) handleResetEnemies(w http.ResponseWriter, r *http.Request) {
	s.record.ClearDefeated()
	if s.store != nil {
		if err := s.record.Save(r.Context(), s.store, s.slot); err != nil {
			log.Errorf("Failed to save after enemy reset: %v", err)
			http.Error(w, "failed to save", http.StatusInternalServerError)
			return
		}
	}
	log.WithField("slot", s.slot).Warn("Defeated enemies reset from inspector")
	s.hub.Publish("reset", map[string]string{"scope": "enemies"})
	s.handleState(w, r)
}

// Run serves until ctx is cancelled, then shuts the listener and the hub
// down. It returns the first error from either.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	g, ctx := errgroup.WithContext(ctx)
	s.ctx = ctx
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g.Go(func() error {
		return s.hub.Run(ctx)
	})
	g.Go(func() error {
		log.WithField("addr", ln.Addr().String()).Info("Inspector listening")
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
