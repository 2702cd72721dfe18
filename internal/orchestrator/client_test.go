package orchestrator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"remotecalc/internal/types"
)

func TestHTTPClientSubmit(t *testing.T) {
	var got types.OperationRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/operation", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"abc","status":"pending","message":"Operation submitted successfully"}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL+"/", time.Second)
	handle, err := c.Submit(context.Background(), types.OperationRequest{Operator: types.Divide, Operand1: 9, Operand2: 3})
	require.NoError(t, err)
	require.Equal(t, "abc", handle.ID)
	require.Equal(t, types.OperationRequest{Operator: types.Divide, Operand1: 9, Operand2: 3}, got)
}

func TestHTTPClientResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/result/pending":
			w.WriteHeader(http.StatusAccepted)
			w.Write([]byte(`{"id":"pending","status":"pending"}`))
		case "/api/result/done":
			w.Write([]byte(`{"id":"done","status":"completed","result":0.5}`))
		case "/api/result/failed":
			w.Write([]byte(`{"id":"failed","status":"failed","error":"Division by zero"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"Operation not found"}`))
		}
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, time.Second)
	ctx := context.Background()

	res, err := c.Result(ctx, "pending")
	require.NoError(t, err)
	require.Equal(t, types.StatusPending, res.Status)

	res, err = c.Result(ctx, "done")
	require.NoError(t, err)
	require.Equal(t, types.StatusCompleted, res.Status)
	require.NotNil(t, res.Result)
	require.Equal(t, 0.5, *res.Result)

	res, err = c.Result(ctx, "failed")
	require.NoError(t, err)
	require.Equal(t, "Division by zero", res.Error)

	_, err = c.Result(ctx, "missing")
	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	require.Equal(t, http.StatusNotFound, netErr.StatusCode)
	require.Equal(t, "Operation not found", netErr.Message)
}

func TestHTTPClientErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
	}{
		{name: "сообщение из тела", status: http.StatusBadRequest, body: `{"error":"Invalid operator. Use: +, -, *, /"}`, wantMessage: "Invalid operator. Use: +, -, *, /"},
		{name: "тело без поля error", status: http.StatusInternalServerError, body: `{}`, wantMessage: "network error"},
		{name: "тело не JSON", status: http.StatusBadGateway, body: `<html>bad gateway</html>`, wantMessage: "network error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewHTTPClient(srv.URL, time.Second).Submit(context.Background(), types.OperationRequest{Operator: types.Add})
			var netErr *NetworkError
			require.ErrorAs(t, err, &netErr)
			require.Equal(t, tt.wantMessage, netErr.Message)
			require.Equal(t, tt.status, netErr.StatusCode)
		})
	}
}

func TestHTTPClientUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewHTTPClient(url, time.Second).Submit(context.Background(), types.OperationRequest{Operator: types.Add})
	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	require.Equal(t, "network error", netErr.Message)
	require.Error(t, netErr.Unwrap())
}

func TestHTTPClientInvalidBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	_, err := NewHTTPClient(srv.URL, time.Second).Result(context.Background(), "x")
	require.Equal(t, "network", Kind(err))
}
