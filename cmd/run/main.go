// Команда run поднимает сервис вычислений и агента в одном процессе
// для локальной работы с калькулятором.
package main

import (
	"context"
	"log"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"

	"remotecalc/internal/agent"
	"remotecalc/internal/auth"
	"remotecalc/internal/config"
	"remotecalc/internal/grpc"
	"remotecalc/internal/server"
)

func isPortFree(port string) bool {
	ln, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return false
	}
	ln.Close()
	return true
}

func waitForGRPC(ctx context.Context, port string, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("tcp", "localhost:"+port, 500*time.Millisecond)
		if err == nil {
			conn.Close()
			return true
		}

		select {
		case <-ctx.Done():
			return false
		case <-time.After(500 * time.Millisecond):
		}
	}
	return false
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Ошибка конфигурации: %v", err)
	}

	for _, port := range []string{cfg.Service.HTTPPort, cfg.Service.GRPCPort} {
		if !isPortFree(port) {
			log.Fatalf("Порт %s уже занят. Завершаем работу.", port)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Ошибка запуска сервиса: %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := srv.Run(ctx); err != nil {
			log.Printf("Сервис завершился с ошибкой: %v", err)
			stop()
		}
	}()

	log.Println("Ожидание готовности сервиса...")
	if !waitForGRPC(ctx, cfg.Service.GRPCPort, 20*time.Second) {
		stop()
		wg.Wait()
		log.Fatalf("Превышено время ожидания запуска сервиса")
	}

	agentID := uuid.New().String()
	signer := auth.NewSigner(cfg.Auth.Secret, cfg.Auth.TokenTTL)
	client, err := grpc.NewCalculatorClient(ctx, "localhost:"+cfg.Service.GRPCPort, signer, agentID)
	if err != nil {
		stop()
		wg.Wait()
		log.Fatalf("Ошибка подключения агента: %v", err)
	}
	defer client.Close()

	log.Printf("Сервис готов. Запуск агента %s...", agentID)
	wg.Add(1)
	go func() {
		defer wg.Done()
		agent.New(client, agent.Config{Workers: cfg.Agent.ComputingPower}).Run(ctx)
	}()

	log.Printf("Все компоненты запущены. API: http://localhost:%s", cfg.Service.HTTPPort)
	wg.Wait()
	log.Println("Все компоненты завершены.")
}
