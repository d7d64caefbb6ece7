// Package server exposes the bot's control surface over HTTP: a
// start/stop toggle and read access to the trading wallet and per-pool
// state rows.
package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"solana-sniper-bot/internal/domain"
	"solana-sniper-bot/internal/storage"
)

// Controller is the pipeline lifecycle the server toggles and inspects.
// Implemented by pipeline.Coordinator.
type Controller interface {
	Enable()
	Disable()
	Enabled() bool
	Wallet() domain.TradingWallet
}

// Server is the HTTP control surface.
type Server struct {
	ctrl   Controller
	states storage.StateStore
	logger *log.Logger
}

// Options contains configuration for creating a Server.
type Options struct {
	Controller Controller
	States     storage.StateStore // optional, backs /pools
	Logger     *log.Logger
}

// New creates a Server.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Server{
		ctrl:   opts.Controller,
		states: opts.States,
		logger: logger,
	}
}

// Routes returns the handler for all control endpoints.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/start", s.handleStart)
	mux.HandleFunc("/stop", s.handleStop)
	mux.HandleFunc("/wallet", s.handleWallet)
	mux.HandleFunc("/pools", s.handlePools)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	return mux
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Routes()}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Printf("[server] control surface on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// StatusResponse is the JSON reply for the start/stop toggle.
type StatusResponse struct {
	Trading bool `json:"trading"`
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.ctrl.Enable()
	s.logger.Printf("[server] trading enabled")
	writeJSON(w, StatusResponse{Trading: true})
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.ctrl.Disable()
	s.logger.Printf("[server] trading disabled")
	writeJSON(w, StatusResponse{Trading: false})
}

// WalletResponse is the JSON reply for /wallet.
type WalletResponse struct {
	Trading     bool    `json:"trading"`
	StartValue  float64 `json:"start_value"`
	Current     float64 `json:"current"`
	TotalProfit float64 `json:"total_profit"`
}

func (s *Server) handleWallet(w http.ResponseWriter, r *http.Request) {
	wallet := s.ctrl.Wallet()
	writeJSON(w, WalletResponse{
		Trading:     s.ctrl.Enabled(),
		StartValue:  wallet.StartValue,
		Current:     wallet.Current,
		TotalProfit: wallet.TotalProfit,
	})
}

func (s *Server) handlePools(w http.ResponseWriter, r *http.Request) {
	if s.states == nil {
		writeJSON(w, []struct{}{})
		return
	}
	records, err := s.states.GetAll(r.Context())
	if err != nil {
		s.logger.Printf("[server] list pools failed: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, records)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
