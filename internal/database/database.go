package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	_ "github.com/glebarez/go-sqlite"

	"remotecalc/internal/models"
	"remotecalc/internal/types"
)

var (
	// ErrJobNotFound возвращается, если задания с таким ID нет в базе
	ErrJobNotFound = errors.New("job not found")
	// ErrJobFinished возвращается при повторной записи результата
	ErrJobFinished = errors.New("job already finished")
)

const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store хранит задания сервиса вычислений в SQLite
type Store struct {
	db *sql.DB
}

// Open открывает базу по пути path (":memory:" для базы в памяти) и создает таблицы
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("не удалось подключиться к базе данных: %w", err)
	}
	// Одно соединение: база в памяти живет только внутри него
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createTables() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS jobs (
			id TEXT PRIMARY KEY,
			operator TEXT NOT NULL,
			operand1 REAL NOT NULL,
			operand2 REAL NOT NULL,
			status TEXT NOT NULL,
			result REAL,
			error TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("ошибка создания таблицы jobs: %w", err)
	}

	return s.applyMigrations()
}

// applyMigrations применяет все миграции к базе данных
func (s *Store) applyMigrations() error {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM pragma_table_info('jobs') WHERE name='completed_at'").Scan(&count)
	if err != nil {
		return fmt.Errorf("ошибка проверки существования столбца completed_at: %w", err)
	}

	if count == 0 {
		if _, err := s.db.Exec(`ALTER TABLE jobs ADD COLUMN completed_at TEXT`); err != nil {
			return fmt.Errorf("ошибка добавления столбца completed_at: %w", err)
		}
	}
	return nil
}

// SaveJob сохраняет новое задание
func (s *Store) SaveJob(ctx context.Context, job *models.Job) error {
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO jobs (id, operator, operand1, operand2, status, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		job.ID, string(job.Operator), job.Operand1, job.Operand2, string(job.Status), job.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("ошибка сохранения задания: %w", err)
	}

	log.Printf("СОХРАНЕНО В БД: ID=%s, %v %s %v, status=%s", job.ID, job.Operand1, job.Operator, job.Operand2, job.Status)
	return nil
}

// FinishJob записывает результат или ошибку задания
func (s *Store) FinishJob(ctx context.Context, id string, status types.JobStatus, result float64, errMsg string) error {
	now := time.Now().UTC().Format(timeLayout)

	var res sql.NullFloat64
	if status == types.StatusCompleted {
		res = sql.NullFloat64{Float64: result, Valid: true}
	}

	r, err := s.db.ExecContext(ctx,
		"UPDATE jobs SET status = ?, result = ?, error = ?, completed_at = ? WHERE id = ? AND status = ?",
		string(status), res, errMsg, now, id, string(types.StatusPending),
	)
	if err != nil {
		return fmt.Errorf("ошибка обновления задания %s: %w", id, err)
	}

	n, err := r.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка обновления задания %s: %w", id, err)
	}
	if n == 0 {
		if _, err := s.GetJob(ctx, id); err != nil {
			return err
		}
		return fmt.Errorf("задание %s: %w", id, ErrJobFinished)
	}
	return nil
}

func (s *Store) GetJob(ctx context.Context, id string) (*models.Job, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, operator, operand1, operand2, status, result, error, created_at, completed_at FROM jobs WHERE id = ?", id)

	job, err := scanJob(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("ошибка получения задания: %w", err)
	}
	return job, nil
}

// ListJobs возвращает все задания в порядке создания
func (s *Store) ListJobs(ctx context.Context) ([]models.Job, error) {
	return s.queryJobs(ctx,
		"SELECT id, operator, operand1, operand2, status, result, error, created_at, completed_at FROM jobs ORDER BY created_at, rowid")
}

// PendingJobs возвращает незавершенные задания, например после перезапуска сервиса
func (s *Store) PendingJobs(ctx context.Context) ([]models.Job, error) {
	return s.queryJobs(ctx,
		"SELECT id, operator, operand1, operand2, status, result, error, created_at, completed_at FROM jobs WHERE status = ? ORDER BY created_at, rowid",
		string(types.StatusPending))
}

func (s *Store) queryJobs(ctx context.Context, query string, args ...interface{}) ([]models.Job, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения заданий: %w", err)
	}
	defer rows.Close()

	jobs := []models.Job{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка чтения данных задания: %w", err)
		}
		jobs = append(jobs, *job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения данных задания: %w", err)
	}
	return jobs, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanJob(row scanner) (*models.Job, error) {
	var (
		job         models.Job
		operator    string
		status      string
		result      sql.NullFloat64
		createdAt   string
		completedAt sql.NullString
	)
	if err := row.Scan(&job.ID, &operator, &job.Operand1, &job.Operand2, &status, &result, &job.Error, &createdAt, &completedAt); err != nil {
		return nil, err
	}

	job.Operator = types.Operator(operator)
	job.Status = types.JobStatus(status)
	if result.Valid {
		v := result.Float64
		job.Result = &v
	}

	var err error
	if job.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("некорректная дата создания %q: %w", createdAt, err)
	}
	if completedAt.Valid && completedAt.String != "" {
		t, err := time.Parse(timeLayout, completedAt.String)
		if err != nil {
			return nil, fmt.Errorf("некорректная дата завершения %q: %w", completedAt.String, err)
		}
		job.CompletedAt = &t
	}
	return &job, nil
}
