package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"remotecalc/internal/database"
	"remotecalc/internal/models"
	"remotecalc/internal/types"
)

var ErrInvalidOperator = errors.New("Invalid operator. Use: +, -, *, /")

// OperationTimes задает время эмуляции каждой операции в мс
type OperationTimes struct {
	Addition       int
	Subtraction    int
	Multiplication int
	Division       int
}

func DefaultOperationTimes() OperationTimes {
	return OperationTimes{Addition: 510, Subtraction: 520, Multiplication: 530, Division: 540}
}

func (t OperationTimes) For(op types.Operator) int {
	switch op {
	case types.Add:
		return t.Addition
	case types.Subtract:
		return t.Subtraction
	case types.Multiply:
		return t.Multiplication
	case types.Divide:
		return t.Division
	}
	return 0
}

// JobStore - хранилище заданий
type JobStore interface {
	SaveJob(ctx context.Context, job *models.Job) error
	FinishJob(ctx context.Context, id string, status types.JobStatus, result float64, errMsg string) error
	GetJob(ctx context.Context, id string) (*models.Job, error)
	ListJobs(ctx context.Context) ([]models.Job, error)
	PendingJobs(ctx context.Context) ([]models.Job, error)
}

var _ JobStore = (*database.Store)(nil)

// JobManager принимает операции, раздает их агентам и сохраняет результаты
type JobManager struct {
	store JobStore
	times OperationTimes

	mu       sync.Mutex
	queue    []types.Task
	inFlight map[string]lease
	now      func() time.Time
}

type lease struct {
	task  types.Task
	since time.Time
}

// NewJobManager создает новый менеджер заданий
func NewJobManager(store JobStore, times OperationTimes) *JobManager {
	log.Printf("Загружены параметры времени операций: +%d мс, -%d мс, *%d мс, /%d мс",
		times.Addition, times.Subtraction, times.Multiplication, times.Division)

	return &JobManager{
		store:    store,
		times:    times,
		inFlight: make(map[string]lease),
		now:      time.Now,
	}
}

// Restore ставит в очередь задания, оставшиеся незавершенными в базе
func (jm *JobManager) Restore(ctx context.Context) (int, error) {
	jobs, err := jm.store.PendingJobs(ctx)
	if err != nil {
		return 0, err
	}

	jm.mu.Lock()
	defer jm.mu.Unlock()
	for _, job := range jobs {
		jm.queue = append(jm.queue, jm.taskFor(job))
	}
	if len(jobs) > 0 {
		log.Printf("Восстановлено незавершенных заданий: %d", len(jobs))
	}
	return len(jobs), nil
}

// CreateJob сохраняет операцию и ставит задачу в очередь агентов
func (jm *JobManager) CreateJob(ctx context.Context, req types.OperationRequest) (*models.Job, error) {
	op, ok := types.ParseOperator(string(req.Operator))
	if !ok {
		return nil, ErrInvalidOperator
	}

	job := &models.Job{
		ID:       uuid.New().String(),
		Operator: op,
		Operand1: req.Operand1,
		Operand2: req.Operand2,
		Status:   types.StatusPending,
	}
	if err := jm.store.SaveJob(ctx, job); err != nil {
		return nil, err
	}

	task := jm.taskFor(*job)

	jm.mu.Lock()
	jm.queue = append(jm.queue, task)
	jm.mu.Unlock()

	log.Printf("Создана задача %s: %v %s %v, время выполнения: %d мс",
		task.ID, task.Operand1, task.Operator, task.Operand2, task.OperationTime)
	return job, nil
}

func (jm *JobManager) GetJob(ctx context.Context, id string) (*models.Job, error) {
	return jm.store.GetJob(ctx, id)
}

func (jm *JobManager) ListJobs(ctx context.Context) ([]models.Job, error) {
	return jm.store.ListJobs(ctx)
}

// NextTask возвращает самую старую задачу из очереди
func (jm *JobManager) NextTask() (types.Task, bool) {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	if len(jm.queue) == 0 {
		return types.Task{}, false
	}

	task := jm.queue[0]
	jm.queue = jm.queue[1:]
	jm.inFlight[task.ID] = lease{task: task, since: jm.now()}

	log.Printf("Подготовка задачи %s для распределения", task.ID)
	return task, true
}

// SubmitTaskResult завершает задание результатом агента
func (jm *JobManager) SubmitTaskResult(ctx context.Context, result types.TaskResult) error {
	status := types.StatusCompleted
	if result.Error != "" {
		status = types.StatusFailed
		log.Printf("Задача %s завершилась ошибкой: %s", result.ID, result.Error)
	} else {
		log.Printf("Получен результат задачи %s: %v", result.ID, result.Result)
	}

	if err := jm.store.FinishJob(ctx, result.ID, status, result.Result, result.Error); err != nil {
		return fmt.Errorf("ошибка сохранения результата задачи %s: %w", result.ID, err)
	}

	jm.mu.Lock()
	delete(jm.inFlight, result.ID)
	jm.mu.Unlock()
	return nil
}

// RequeueStale возвращает в начало очереди задачи, которые агенты держат дольше
// времени операции плюс grace, например после падения агента
func (jm *JobManager) RequeueStale(grace time.Duration) int {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	now := jm.now()
	var stale []types.Task
	for id, l := range jm.inFlight {
		limit := time.Duration(l.task.OperationTime)*time.Millisecond + grace
		if now.Sub(l.since) > limit {
			stale = append(stale, l.task)
			delete(jm.inFlight, id)
			log.Printf("Задача %s не завершена агентом за %v, возвращаем в очередь", id, limit)
		}
	}
	jm.queue = append(stale, jm.queue...)
	return len(stale)
}

// Stats возвращает размер очереди и число задач у агентов
func (jm *JobManager) Stats() (queued, inFlight int) {
	jm.mu.Lock()
	defer jm.mu.Unlock()
	return len(jm.queue), len(jm.inFlight)
}

func (jm *JobManager) taskFor(job models.Job) types.Task {
	return types.Task{
		ID:            job.ID,
		Operator:      job.Operator,
		Operand1:      job.Operand1,
		Operand2:      job.Operand2,
		OperationTime: jm.times.For(job.Operator),
	}
}
