package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"remotecalc/internal/types"
)

// HTTPClient talks to the compute service over its JSON API.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Submit sends POST /api/operation.
func (c *HTTPClient) Submit(ctx context.Context, req types.OperationRequest) (types.JobHandle, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return types.JobHandle{}, &NetworkError{Op: "submit", Message: genericNetworkMessage, Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/operation", bytes.NewReader(body))
	if err != nil {
		return types.JobHandle{}, &NetworkError{Op: "submit", Message: genericNetworkMessage, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	var handle types.JobHandle
	if err := c.do(httpReq, "submit", &handle); err != nil {
		return types.JobHandle{}, err
	}
	return handle, nil
}

// Result sends GET /api/result/{id}.
func (c *HTTPClient) Result(ctx context.Context, id string) (types.ResultResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/result/"+url.PathEscape(id), nil)
	if err != nil {
		return types.ResultResponse{}, &NetworkError{Op: "result", Message: genericNetworkMessage, Err: err}
	}

	var res types.ResultResponse
	if err := c.do(httpReq, "result", &res); err != nil {
		return types.ResultResponse{}, err
	}
	return res, nil
}

func (c *HTTPClient) do(req *http.Request, op string, out interface{}) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return &NetworkError{Op: op, Message: genericNetworkMessage, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Op: op, StatusCode: resp.StatusCode, Message: genericNetworkMessage, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := genericNetworkMessage
		var errResp types.ErrorResponse
		if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
			msg = errResp.Error
		}
		return &NetworkError{Op: op, StatusCode: resp.StatusCode, Message: msg}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &NetworkError{Op: op, StatusCode: resp.StatusCode, Message: "invalid response body", Err: err}
	}
	return nil
}
