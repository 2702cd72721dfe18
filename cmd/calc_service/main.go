package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"remotecalc/internal/config"
	"remotecalc/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Ошибка конфигурации: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Ошибка запуска сервиса: %v", err)
	}

	log.Printf("Сервис вычислений: HTTP :%s, gRPC :%s, база %s",
		cfg.Service.HTTPPort, cfg.Service.GRPCPort, cfg.Service.DatabasePath)

	if err := srv.Run(ctx); err != nil {
		log.Fatal(err)
	}
}
