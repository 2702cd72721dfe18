package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"remotecalc/internal/database"
	"remotecalc/internal/models"
	"remotecalc/internal/service"
	"remotecalc/internal/types"
)

// Jobs - то, что нужно обработчикам от менеджера заданий
type Jobs interface {
	CreateJob(ctx context.Context, req types.OperationRequest) (*models.Job, error)
	GetJob(ctx context.Context, id string) (*models.Job, error)
	ListJobs(ctx context.Context) ([]models.Job, error)
}

type JobHandler struct {
	jobs Jobs
}

func NewJobHandler(jobs Jobs) *JobHandler {
	return &JobHandler{jobs: jobs}
}

type operationRequest struct {
	Operator *string  `json:"operator"`
	Operand1 *float64 `json:"operand1"`
	Operand2 *float64 `json:"operand2"`
}

// Home описывает сервис и его эндпоинты
func (h *JobHandler) Home(w http.ResponseWriter, r *http.Request) {
	SendJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Calculator API",
		"version": "1.0",
		"endpoints": map[string]string{
			"POST /api/operation":  "Submit a calculation",
			"GET /api/result/{id}": "Get calculation result",
			"GET /api/operations":  "List all operations",
		},
	})
}

// SubmitOperation принимает операцию {"operator": "+", "operand1": 5, "operand2": 3}
func (h *JobHandler) SubmitOperation(w http.ResponseWriter, r *http.Request) {
	var req operationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		SendErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Operator == nil || req.Operand1 == nil || req.Operand2 == nil {
		SendErrorResponse(w, http.StatusBadRequest, "Missing required fields: operator, operand1, operand2")
		return
	}

	job, err := h.jobs.CreateJob(r.Context(), types.OperationRequest{
		Operator: types.Operator(*req.Operator),
		Operand1: *req.Operand1,
		Operand2: *req.Operand2,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidOperator) {
			SendErrorResponse(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("Ошибка создания задания: %v", err)
		SendErrorResponse(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	SendJSON(w, http.StatusCreated, types.JobHandle{
		ID:      job.ID,
		Status:  job.Status,
		Message: "Operation submitted successfully",
	})
}

// GetResult возвращает состояние задания
func (h *JobHandler) GetResult(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	job, err := h.jobs.GetJob(r.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrJobNotFound) {
			SendErrorResponse(w, http.StatusNotFound, "Operation not found")
			return
		}
		log.Printf("Ошибка получения задания %s: %v", id, err)
		SendErrorResponse(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	switch job.Status {
	case types.StatusPending:
		SendJSON(w, http.StatusAccepted, types.ResultResponse{ID: job.ID, Status: types.StatusPending})
	case types.StatusCompleted:
		if job.Result == nil {
			log.Printf("Задание %s завершено без результата", job.ID)
			SendErrorResponse(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		SendJSON(w, http.StatusOK, types.ResultResponse{ID: job.ID, Status: types.StatusCompleted, Result: job.Result})
	default:
		SendJSON(w, http.StatusOK, types.ResultResponse{ID: job.ID, Status: types.StatusFailed, Error: job.Error})
	}
}

// ListOperations выводит все задания (для отладки)
func (h *JobHandler) ListOperations(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.jobs.ListJobs(r.Context())
	if err != nil {
		log.Printf("Ошибка получения списка заданий: %v", err)
		SendErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve operations")
		return
	}

	SendJSON(w, http.StatusOK, models.JobList{Total: len(jobs), Operations: jobs})
}
