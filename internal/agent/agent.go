// Package agent - вычислитель, который забирает задачи у сервиса по gRPC.
package agent

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"remotecalc/internal/calculator"
	internalgrpc "remotecalc/internal/grpc"
	"remotecalc/internal/types"
)

// TaskClient - то, что агенту нужно от gRPC клиента
type TaskClient interface {
	GetTask(ctx context.Context, agentID string) (*types.Task, error)
	SubmitTaskResult(ctx context.Context, result types.TaskResult) error
}

var _ TaskClient = (*internalgrpc.CalculatorClient)(nil)

type Config struct {
	// Количество параллельных вычислителей (COMPUTING_POWER)
	Workers int
	// Попыток на получение задачи и на отправку результата
	MaxRetries int
	// Начальная пауза между попытками, удваивается после каждой
	RetryDelay time.Duration
	// Пауза, когда очередь пуста
	IdleDelay time.Duration
}

func DefaultConfig() Config {
	return Config{Workers: 4, MaxRetries: 3, RetryDelay: time.Second, IdleDelay: time.Second}
}

type Agent struct {
	client TaskClient
	cfg    Config
	sleep  func(ctx context.Context, d time.Duration) error
}

func New(client TaskClient, cfg Config) *Agent {
	def := DefaultConfig()
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = def.MaxRetries
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = def.RetryDelay
	}
	if cfg.IdleDelay <= 0 {
		cfg.IdleDelay = def.IdleDelay
	}
	return &Agent{client: client, cfg: cfg, sleep: sleep}
}

// Run запускает cfg.Workers вычислителей и ждет их остановки по ctx
func (a *Agent) Run(ctx context.Context) {
	log.Printf("Агент запущен с COMPUTING_POWER: %d", a.cfg.Workers)

	var wg sync.WaitGroup
	for i := 0; i < a.cfg.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()

			agentID := uuid.New().String()
			for ctx.Err() == nil {
				if !a.processTask(ctx, workerID, agentID) {
					if a.sleep(ctx, a.cfg.IdleDelay) != nil {
						break
					}
				}
			}
			log.Printf("Worker %d (агент %s): остановлен", workerID, agentID)
		}(i)
	}

	wg.Wait()
}

// processTask берет одну задачу, вычисляет и отправляет результат.
// Возвращает false, если задачи не было.
func (a *Agent) processTask(ctx context.Context, workerID int, agentID string) bool {
	task, ok := a.fetch(ctx, workerID, agentID)
	if !ok {
		return false
	}

	log.Printf("Worker %d (агент %s): Получена задача: ID=%s, операция=%s, время=%d мс, operand1=%f, operand2=%f",
		workerID, agentID, task.ID, task.Operator, task.OperationTime, task.Operand1, task.Operand2)

	startTime := time.Now()
	if err := a.sleep(ctx, time.Duration(task.OperationTime)*time.Millisecond); err != nil {
		// Задача вернется в очередь по истечении аренды
		return true
	}
	result := calculator.Compute(*task)

	log.Printf("Worker %d (агент %s): Завершено вычисление для задачи %s за %v, результат: %f %s",
		workerID, agentID, task.ID, time.Since(startTime), result.Result, result.Error)

	a.submit(ctx, workerID, agentID, result)
	return true
}

func (a *Agent) fetch(ctx context.Context, workerID int, agentID string) (*types.Task, bool) {
	retryDelay := a.cfg.RetryDelay

	for retry := 0; retry < a.cfg.MaxRetries; retry++ {
		task, err := a.client.GetTask(ctx, agentID)
		if err == nil {
			return task, task != nil
		}

		log.Printf("Worker %d (агент %s): Ошибка получения задачи (попытка %d/%d): %v",
			workerID, agentID, retry+1, a.cfg.MaxRetries, err)

		if retry == a.cfg.MaxRetries-1 {
			break
		}
		if a.sleep(ctx, retryDelay) != nil {
			break
		}
		retryDelay *= 2
	}
	return nil, false
}

func (a *Agent) submit(ctx context.Context, workerID int, agentID string, result types.TaskResult) bool {
	retryDelay := a.cfg.RetryDelay

	for retry := 0; retry < a.cfg.MaxRetries; retry++ {
		err := a.client.SubmitTaskResult(ctx, result)
		if err == nil {
			log.Printf("Worker %d (агент %s): Результат для задачи %s успешно отправлен",
				workerID, agentID, result.ID)
			return true
		}

		if errors.Is(err, internalgrpc.ErrResultRejected) {
			log.Printf("Worker %d (агент %s): Сервис отклонил результат задачи %s: %v",
				workerID, agentID, result.ID, err)
			return false
		}

		log.Printf("Worker %d (агент %s): Ошибка отправки результата (попытка %d/%d): %v",
			workerID, agentID, retry+1, a.cfg.MaxRetries, err)

		if retry == a.cfg.MaxRetries-1 {
			break
		}
		if a.sleep(ctx, retryDelay) != nil {
			break
		}
		retryDelay *= 2
	}

	log.Printf("Worker %d (агент %s): Не удалось отправить результат после %d попыток",
		workerID, agentID, a.cfg.MaxRetries)
	return false
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
