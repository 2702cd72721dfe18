package grpc

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"remotecalc/internal/auth"
	"remotecalc/internal/types"
)

// ErrResultRejected - сервер принял вызов, но отказался сохранить результат
var ErrResultRejected = errors.New("result rejected")

const (
	dialTimeout = 5 * time.Second
	callTimeout = 10 * time.Second
)

// tokenCredentials выпускает свежий токен на каждый вызов,
// поэтому долгоживущий агент не упирается в срок жизни токена.
type tokenCredentials struct {
	signer  *auth.Signer
	agentID string
}

func (c tokenCredentials) GetRequestMetadata(ctx context.Context, uri ...string) (map[string]string, error) {
	token, err := c.signer.GenerateToken(c.agentID)
	if err != nil {
		return nil, err
	}
	return map[string]string{"authorization": "Bearer " + token}, nil
}

func (tokenCredentials) RequireTransportSecurity() bool {
	return false
}

// CalculatorClient представляет gRPC клиент для агента
type CalculatorClient struct {
	conn *grpc.ClientConn
}

// NewCalculatorClient подключается к серверу задач от имени агента agentID.
// Дополнительные opts нужны тестам (например, grpc.WithContextDialer).
func NewCalculatorClient(ctx context.Context, serverAddr string, signer *auth.Signer, agentID string, opts ...grpc.DialOption) (*CalculatorClient, error) {
	ctx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithPerRPCCredentials(tokenCredentials{signer: signer, agentID: agentID}),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(codecName)),
		grpc.WithBlock(),
	}, opts...)

	conn, err := grpc.DialContext(ctx, serverAddr, dialOpts...)
	if err != nil {
		return nil, err
	}

	return &CalculatorClient{conn: conn}, nil
}

// Close закрывает соединение с сервером
func (c *CalculatorClient) Close() {
	if c.conn != nil {
		c.conn.Close()
	}
}

// GetTask запрашивает задачу; nil без ошибки означает пустую очередь
func (c *CalculatorClient) GetTask(ctx context.Context, agentID string) (*types.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	task := new(types.Task)
	err := c.conn.Invoke(ctx, getTaskMethod, &TaskRequest{AgentID: agentID}, task)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, err
	}

	log.Printf("Агент %s: получена задача %s для выполнения", agentID, task.ID)
	return task, nil
}

// SubmitTaskResult отправляет результат вычисления серверу
func (c *CalculatorClient) SubmitTaskResult(ctx context.Context, result types.TaskResult) error {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	res := new(TaskResultResponse)
	if err := c.conn.Invoke(ctx, submitTaskResultMethod, &result, res); err != nil {
		return err
	}

	if !res.Success {
		return fmt.Errorf("%w: %s", ErrResultRejected, res.ErrorMessage)
	}
	return nil
}
