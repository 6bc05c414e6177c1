package homekit

import (
	"context"
	"fmt"

	"thermostat_bridge/internal/logger"

	"github.com/brutella/hap"
)

// ServerConfig holds the pairing and storage settings.
type ServerConfig struct {
	Pin         string
	StoragePath string
	Addr        string
}

// Server publishes one accessory over HAP.
type Server struct {
	srv *hap.Server
	log *logger.Logger
}

func NewServer(cfg ServerConfig, acc *Accessory, log *logger.Logger) (*Server, error) {
	if log == nil {
		log = logger.Nop()
	}
	store := hap.NewFsStore(cfg.StoragePath)
	s, err := hap.NewServer(store, acc.A)
	if err != nil {
		return nil, fmt.Errorf("create hap server: %w", err)
	}
	if cfg.Pin != "" {
		s.Pin = cfg.Pin
	}
	if cfg.Addr != "" {
		s.Addr = cfg.Addr
	}
	return &Server{srv: s, log: log}, nil
}

// ListenAndServe blocks until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.log.Infow("homekit_listening", "addr", s.srv.Addr, "devices", FindDevice())
	return s.srv.ListenAndServe(ctx)
}
