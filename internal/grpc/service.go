// Package grpc - транспорт задач между сервисом вычислений и агентами.
//
// Сообщения кодируются в JSON (кодек "json"), поэтому описание сервиса
// задано вручную, без сгенерированного protobuf кода.
package grpc

import (
	"context"
	"encoding/json"

	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"

	"remotecalc/internal/types"
)

const (
	serviceName = "calc.Jobs"

	getTaskMethod          = "/" + serviceName + "/GetTask"
	submitTaskResultMethod = "/" + serviceName + "/SubmitTaskResult"

	codecName = "json"
)

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type jsonCodec struct{}

func (jsonCodec) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return codecName
}

// TaskRequest - запрос задачи агентом
type TaskRequest struct {
	AgentID string `json:"agent_id"`
}

// TaskResultResponse - ответ на отправку результата
type TaskResultResponse struct {
	Success      bool   `json:"success"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// JobsService - серверная часть сервиса calc.Jobs
type JobsService interface {
	GetTask(ctx context.Context, req *TaskRequest) (*types.Task, error)
	SubmitTaskResult(ctx context.Context, result *types.TaskResult) (*TaskResultResponse, error)
}

// RegisterJobsService регистрирует реализацию на gRPC сервере
func RegisterJobsService(s *grpc.Server, srv JobsService) {
	s.RegisterService(&jobsServiceDesc, srv)
}

var jobsServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*JobsService)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetTask", Handler: getTaskHandler},
		{MethodName: "SubmitTaskResult", Handler: submitTaskResultHandler},
	},
	Streams: []grpc.StreamDesc{},
}

func getTaskHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(TaskRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(JobsService).GetTask(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: getTaskMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(JobsService).GetTask(ctx, req.(*TaskRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func submitTaskResultHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(types.TaskResult)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(JobsService).SubmitTaskResult(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: submitTaskResultMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(JobsService).SubmitTaskResult(ctx, req.(*types.TaskResult))
	}
	return interceptor(ctx, in, info, handler)
}
