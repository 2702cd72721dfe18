package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"remotecalc/internal/agent"
	"remotecalc/internal/auth"
	"remotecalc/internal/config"
	"remotecalc/internal/grpc"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Ошибка конфигурации: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	agentID := uuid.New().String()
	signer := auth.NewSigner(cfg.Auth.Secret, cfg.Auth.TokenTTL)

	log.Printf("Агент %s подключается к gRPC серверу по адресу %s", agentID, cfg.Agent.ServerAddr)
	client, err := grpc.NewCalculatorClient(ctx, cfg.Agent.ServerAddr, signer, agentID)
	if err != nil {
		log.Fatalf("Failed to create gRPC client: %v", err)
	}
	defer client.Close()

	a := agent.New(client, agent.Config{Workers: cfg.Agent.ComputingPower})
	a.Run(ctx)
}
