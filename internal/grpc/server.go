package grpc

import (
	"context"
	"log"
	"net"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"remotecalc/internal/auth"
	"remotecalc/internal/types"
)

// TaskSource - очередь задач, которую обслуживает сервер
type TaskSource interface {
	NextTask() (types.Task, bool)
	SubmitTaskResult(ctx context.Context, result types.TaskResult) error
}

// CalculatorServer реализует сервис calc.Jobs
type CalculatorServer struct {
	source TaskSource
}

// NewCalculatorServer создает новый экземпляр gRPC сервера
func NewCalculatorServer(source TaskSource) *CalculatorServer {
	return &CalculatorServer{source: source}
}

// GetTask возвращает задачу для вычисления агенту
func (s *CalculatorServer) GetTask(ctx context.Context, req *TaskRequest) (*types.Task, error) {
	task, found := s.source.NextTask()
	if !found {
		return nil, status.Error(codes.NotFound, "Нет доступных задач")
	}

	log.Printf("GetTask gRPC: Отправка задачи агенту %s: ID=%s, операция=%s, время=%d мс, operand1=%f, operand2=%f",
		req.AgentID, task.ID, task.Operator, task.OperationTime, task.Operand1, task.Operand2)

	return &task, nil
}

// SubmitTaskResult принимает результат вычисления от агента
func (s *CalculatorServer) SubmitTaskResult(ctx context.Context, result *types.TaskResult) (*TaskResultResponse, error) {
	if result.ID == "" {
		return nil, status.Error(codes.InvalidArgument, "не указан ID задачи")
	}

	log.Printf("Получен результат задачи %s от агента %s: %f %s", result.ID, AgentFromContext(ctx), result.Result, result.Error)

	if err := s.source.SubmitTaskResult(ctx, *result); err != nil {
		log.Printf("Ошибка при обработке результата задачи %s: %v", result.ID, err)
		return &TaskResultResponse{Success: false, ErrorMessage: err.Error()}, nil
	}

	log.Printf("Результат задачи %s успешно обработан", result.ID)
	return &TaskResultResponse{Success: true}, nil
}

type agentKey struct{}

// AgentFromContext возвращает ID агента, прошедшего авторизацию
func AgentFromContext(ctx context.Context) string {
	id, _ := ctx.Value(agentKey{}).(string)
	return id
}

// AuthInterceptor пропускает только вызовы с действительным токеном агента
// в метаданных "authorization: Bearer <token>".
func AuthInterceptor(signer *auth.Signer) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "отсутствуют метаданные")
		}

		values := md.Get("authorization")
		if len(values) == 0 {
			return nil, status.Error(codes.Unauthenticated, "требуется токен авторизации")
		}

		parts := strings.SplitN(values[0], " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			return nil, status.Error(codes.Unauthenticated, "неверный формат токена")
		}

		claims, err := signer.ValidateToken(parts[1])
		if err != nil {
			log.Printf("Отклонен вызов %s: %v", info.FullMethod, err)
			return nil, status.Error(codes.Unauthenticated, err.Error())
		}

		return handler(context.WithValue(ctx, agentKey{}, claims.AgentID), req)
	}
}

// NewServer собирает gRPC сервер с keepalive и проверкой токенов
func NewServer(source TaskSource, signer *auth.Signer) *grpc.Server {
	opts := []grpc.ServerOption{
		grpc.KeepaliveParams(keepalive.ServerParameters{
			MaxConnectionIdle:     time.Minute,
			MaxConnectionAge:      5 * time.Minute,
			MaxConnectionAgeGrace: 20 * time.Second,
			Time:                  20 * time.Second,
			Timeout:               10 * time.Second,
		}),
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             5 * time.Second,
			PermitWithoutStream: true,
		}),
		grpc.UnaryInterceptor(AuthInterceptor(signer)),
	}

	s := grpc.NewServer(opts...)
	RegisterJobsService(s, NewCalculatorServer(source))
	return s
}

// StartServer запускает gRPC сервер и блокируется до его остановки
func StartServer(address string, s *grpc.Server) error {
	lis, err := net.Listen("tcp", address)
	if err != nil {
		return err
	}

	log.Printf("gRPC сервер запущен на %s", address)
	return s.Serve(lis)
}
