package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Файлы .env ищутся от рабочего каталога вверх, первый найденный побеждает
var envFiles = []string{".env", "../.env", "../../.env"}

// Config holds configuration of all binaries.
type Config struct {
	Client  ClientConfig
	Service ServiceConfig
	Agent   AgentConfig
	Auth    AuthConfig
}

// ClientConfig - настройки интерактивного калькулятора
type ClientConfig struct {
	ServiceURL     string
	PollInterval   time.Duration
	MaxAttempts    int
	ErrorDisplay   time.Duration
	RequestTimeout time.Duration
}

// ServiceConfig - настройки сервиса вычислений
type ServiceConfig struct {
	HTTPPort     string
	GRPCPort     string
	DatabasePath string

	// Время эмуляции операций в мс
	TimeAddition       int
	TimeSubtraction    int
	TimeMultiplication int
	TimeDivision       int
}

// AgentConfig - настройки агента
type AgentConfig struct {
	ServerAddr     string
	ComputingPower int
}

// AuthConfig - подпись токенов агентов
type AuthConfig struct {
	Secret   string
	TokenTTL time.Duration
}

// Load reads .env files and the environment.
func Load() (Config, error) {
	for _, file := range envFiles {
		if err := godotenv.Load(file); err == nil {
			log.Printf("Загружен файл .env: %s", file)
			break
		}
	}

	v := viper.New()

	v.SetDefault("orchestrator_http_port", "8080")
	v.SetDefault("orchestrator_grpc_port", "8081")
	v.SetDefault("orchestrator_grpc_addr", "localhost:8081")
	v.SetDefault("database_path", "calculator.db")
	v.SetDefault("time_addition_ms", 510)
	v.SetDefault("time_subtraction_ms", 520)
	v.SetDefault("time_multiplications_ms", 530)
	v.SetDefault("time_divisions_ms", 540)
	v.SetDefault("computing_power", 4)
	v.SetDefault("jwt_secret", "")
	v.SetDefault("agent_token_ttl_minutes", 60)
	v.SetDefault("calc_service_url", "http://localhost:8080")
	v.SetDefault("poll_interval_ms", 500)
	v.SetDefault("poll_max_attempts", 20)
	v.SetDefault("error_display_ms", 1500)
	v.SetDefault("request_timeout_ms", 10000)

	v.AutomaticEnv()

	c := Config{
		Client: ClientConfig{
			ServiceURL:     v.GetString("calc_service_url"),
			PollInterval:   millis(v.GetInt("poll_interval_ms")),
			MaxAttempts:    v.GetInt("poll_max_attempts"),
			ErrorDisplay:   millis(v.GetInt("error_display_ms")),
			RequestTimeout: millis(v.GetInt("request_timeout_ms")),
		},
		Service: ServiceConfig{
			HTTPPort:           v.GetString("orchestrator_http_port"),
			GRPCPort:           v.GetString("orchestrator_grpc_port"),
			DatabasePath:       v.GetString("database_path"),
			TimeAddition:       v.GetInt("time_addition_ms"),
			TimeSubtraction:    v.GetInt("time_subtraction_ms"),
			TimeMultiplication: v.GetInt("time_multiplications_ms"),
			TimeDivision:       v.GetInt("time_divisions_ms"),
		},
		Agent: AgentConfig{
			ServerAddr:     v.GetString("orchestrator_grpc_addr"),
			ComputingPower: v.GetInt("computing_power"),
		},
		Auth: AuthConfig{
			Secret:   v.GetString("jwt_secret"),
			TokenTTL: time.Duration(v.GetInt("agent_token_ttl_minutes")) * time.Minute,
		},
	}

	if err := c.validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) validate() error {
	positive := []struct {
		key   string
		value int64
	}{
		{"POLL_INTERVAL_MS", int64(c.Client.PollInterval)},
		{"POLL_MAX_ATTEMPTS", int64(c.Client.MaxAttempts)},
		{"ERROR_DISPLAY_MS", int64(c.Client.ErrorDisplay)},
		{"REQUEST_TIMEOUT_MS", int64(c.Client.RequestTimeout)},
		{"COMPUTING_POWER", int64(c.Agent.ComputingPower)},
		{"AGENT_TOKEN_TTL_MINUTES", int64(c.Auth.TokenTTL)},
	}
	for _, p := range positive {
		if p.value <= 0 {
			return fmt.Errorf("invalid %s: must be positive", p.key)
		}
	}

	times := map[string]int{
		"TIME_ADDITION_MS":        c.Service.TimeAddition,
		"TIME_SUBTRACTION_MS":     c.Service.TimeSubtraction,
		"TIME_MULTIPLICATIONS_MS": c.Service.TimeMultiplication,
		"TIME_DIVISIONS_MS":       c.Service.TimeDivision,
	}
	for key, ms := range times {
		if ms < 0 {
			return fmt.Errorf("invalid %s: must not be negative", key)
		}
	}

	if c.Client.ServiceURL == "" {
		return fmt.Errorf("invalid CALC_SERVICE_URL: empty")
	}
	return nil
}

func millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
