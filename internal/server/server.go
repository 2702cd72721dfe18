// Package server wires the compute service: job store, HTTP API and the agent
// task transport.
package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"google.golang.org/grpc"

	"remotecalc/internal/api"
	"remotecalc/internal/auth"
	"remotecalc/internal/config"
	"remotecalc/internal/database"
	internalgrpc "remotecalc/internal/grpc"
	"remotecalc/internal/service"
)

const (
	// Аренда задачи истекает через время операции плюс leaseGrace
	leaseGrace      = 10 * time.Second
	requeueInterval = 5 * time.Second
	shutdownTimeout = 5 * time.Second
)

type Server struct {
	cfg        config.ServiceConfig
	store      *database.Store
	jobs       *service.JobManager
	httpServer *http.Server
	grpcServer *grpc.Server
}

// New открывает хранилище, восстанавливает очередь незавершенных заданий
// и собирает HTTP и gRPC серверы.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	store, err := database.Open(cfg.Service.DatabasePath)
	if err != nil {
		return nil, err
	}

	jobs := service.NewJobManager(store, service.OperationTimes{
		Addition:       cfg.Service.TimeAddition,
		Subtraction:    cfg.Service.TimeSubtraction,
		Multiplication: cfg.Service.TimeMultiplication,
		Division:       cfg.Service.TimeDivision,
	})

	if _, err := jobs.Restore(ctx); err != nil {
		store.Close()
		return nil, err
	}

	signer := auth.NewSigner(cfg.Auth.Secret, cfg.Auth.TokenTTL)

	return &Server{
		cfg:   cfg.Service,
		store: store,
		jobs:  jobs,
		httpServer: &http.Server{
			Addr:              ":" + cfg.Service.HTTPPort,
			Handler:           api.SetupRouter(api.NewJobHandler(jobs)),
			ReadHeaderTimeout: 5 * time.Second,
		},
		grpcServer: internalgrpc.NewServer(jobs, signer),
	}, nil
}

func (s *Server) Jobs() *service.JobManager {
	return s.jobs
}

// Run обслуживает HTTP и gRPC до отмены ctx или первой ошибки сервера.
// Хранилище закрывается при выходе.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 2)

	go func() {
		log.Printf("Starting gRPC server for agents on port %s", s.cfg.GRPCPort)
		errCh <- internalgrpc.StartServer(":"+s.cfg.GRPCPort, s.grpcServer)
	}()

	go func() {
		log.Printf("Starting HTTP server on port %s", s.cfg.HTTPPort)
		err := s.httpServer.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		errCh <- err
	}()

	loopCtx, stopLoop := context.WithCancel(ctx)
	defer stopLoop()
	go s.requeueLoop(loopCtx)

	var err error
	select {
	case <-ctx.Done():
		log.Println("Получен сигнал завершения. Останавливаем сервис...")
	case err = <-errCh:
		log.Printf("Сервер остановлен с ошибкой: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if shutdownErr := s.httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
		log.Printf("Ошибка остановки HTTP сервера: %v", shutdownErr)
	}
	s.grpcServer.GracefulStop()

	if closeErr := s.store.Close(); closeErr != nil {
		log.Printf("Ошибка закрытия базы данных: %v", closeErr)
	}
	return err
}

// requeueLoop возвращает в очередь задачи агентов, которые пропали
func (s *Server) requeueLoop(ctx context.Context) {
	ticker := time.NewTicker(requeueInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.jobs.RequeueStale(leaseGrace); n > 0 {
				queued, inFlight := s.jobs.Stats()
				log.Printf("Возвращено в очередь задач: %d (в очереди %d, у агентов %d)", n, queued, inFlight)
			}
		}
	}
}
