package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/aescanero/resforecast/internal/application/predictor"
	"github.com/aescanero/resforecast/pkg/adapters/regression"
	"github.com/aescanero/resforecast/pkg/adapters/scaling"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// newTestPredictor builds a six-feature chain whose outputs are
// CPU = 2*num_tasks, Memory = 2*avg_task_size_MB, Disk = 2*vm_type,
// Network = 2*num_users.
func newTestPredictor(t *testing.T) *predictor.Predictor {
	t.Helper()
	return newScaledTestPredictor(t, []float64{1, 1, 1, 1, 1, 1})
}

// newScaledTestPredictor is newTestPredictor with the given input scaler
// standard deviations.
func newScaledTestPredictor(t *testing.T, inScale []float64) *predictor.Predictor {
	t.Helper()

	kernel := make([][]float64, 6)
	for i := range kernel {
		kernel[i] = make([]float64, 4)
		if i < 4 {
			kernel[i][i] = 1
		}
	}
	network, err := regression.New(regression.NetworkSpec{Layers: []regression.LayerSpec{
		{Activation: regression.Linear, Kernel: kernel, Bias: []float64{0, 0, 0, 0}},
	}})
	require.NoError(t, err)

	in, err := scaling.NewStandardScaler(make([]float64, 6), inScale, nil)
	require.NoError(t, err)
	out, err := scaling.NewStandardScaler(make([]float64, 4), []float64{2, 2, 2, 2}, predictor.MetricNames)
	require.NoError(t, err)

	p, err := predictor.New(network, in, out, zap.NewNop())
	require.NoError(t, err)
	return p
}

type failingPredictor struct {
	err   error
	panic bool
}

func (f *failingPredictor) PredictNullable(features []*float64) (predictor.Prediction, error) {
	if f.panic {
		panic("corrupt model")
	}
	return predictor.Prediction{}, f.err
}

func newTestServer(p Predictor) *Server {
	return NewServer(&Config{
		Addr:         ":0",
		MaxBodyBytes: 1024,
		Predictor:    p,
		Logger:       zap.NewNop(),
	})
}

func doPredict(t *testing.T, s *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorDetail {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Error
}

func TestHandlePredict(t *testing.T) {
	s := newTestServer(newTestPredictor(t))

	w := doPredict(t, s, `{"features": [12, 100, 2, 150, 7, 3]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.Len(t, payload, 4)
	for _, name := range predictor.MetricNames {
		_, ok := payload[name].(float64)
		assert.True(t, ok, "missing numeric field %s", name)
	}
	assert.Equal(t, 24.0, payload["CPU_utilization"])
	assert.Equal(t, 200.0, payload["Memory_usage"])
	assert.Equal(t, 4.0, payload["Disk_IO_MBps"])
	assert.Equal(t, 300.0, payload["Network_bw_MBps"])
}

func TestHandlePredictDeterministic(t *testing.T) {
	s := newTestServer(newTestPredictor(t))
	body := `{"features": [0.5, 10.2, 3, 0.1, 12, 1]}`

	first := doPredict(t, s, body)
	second := doPredict(t, s, body)
	require.Equal(t, http.StatusOK, first.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())
}

func TestHandlePredictClientErrors(t *testing.T) {
	s := newTestServer(newTestPredictor(t))

	tests := []struct {
		name string
		body string
		code string
	}{
		{name: "empty features", body: `{"features": []}`, code: "INVALID_FEATURES"},
		{name: "missing features", body: `{}`, code: "INVALID_REQUEST"},
		{name: "null features", body: `{"features": null}`, code: "INVALID_REQUEST"},
		{name: "too many", body: `{"features": [1, 2, 3, 4, 5, 6, 7]}`, code: "INVALID_FEATURES"},
		{name: "null element", body: `{"features": [1, 2, null, 4, 5, 6]}`, code: "INVALID_FEATURES"},
		{name: "string element", body: `{"features": [1, "2", 3, 4, 5, 6]}`, code: "INVALID_REQUEST"},
		{name: "malformed json", body: `{"features": [1, 2`, code: "INVALID_REQUEST"},
		{name: "empty body", body: ``, code: "INVALID_REQUEST"},
		{name: "not an object", body: `[1, 2, 3]`, code: "INVALID_REQUEST"},
		{name: "trailing data", body: `{"features": [1, 2, 3, 4, 5, 6]} {"features": "junk"`, code: "INVALID_REQUEST"},
		{name: "second object", body: `{"features": [1, 2, 3, 4, 5, 6]} {}`, code: "INVALID_REQUEST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doPredict(t, s, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Equal(t, tt.code, decodeError(t, w).Code)
		})
	}
}

func TestHandlePredictFeatureDetails(t *testing.T) {
	s := newTestServer(newTestPredictor(t))

	w := doPredict(t, s, `{"features": [1, 2, 3]}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Error struct {
			Code    string              `json:"code"`
			Details FeatureErrorDetails `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 6, resp.Error.Details.Expected)
	assert.Equal(t, 3, resp.Error.Details.Got)
	assert.Nil(t, resp.Error.Details.Index)
	assert.Equal(t, predictor.DefaultFeatureNames, resp.Error.Details.Features)
}

func TestHandlePredictScaledOverflow(t *testing.T) {
	s := newTestServer(newScaledTestPredictor(t, []float64{1e-10, 1, 1, 1, 1, 1}))

	w := doPredict(t, s, `{"features": [1e308, 2, 3, 4, 5, 6]}`)
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	detail := decodeError(t, w)
	assert.Equal(t, "INVALID_FEATURES", detail.Code)
	assert.Contains(t, detail.Message, "num_tasks")
}

func TestHandlePredictBodyTooLarge(t *testing.T) {
	s := newTestServer(newTestPredictor(t))

	body := `{"features": [` + strings.Repeat("1,", 2048) + `1]}`
	w := doPredict(t, s, body)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, "REQUEST_TOO_LARGE", decodeError(t, w).Code)
}

func TestHandlePredictInferenceFailure(t *testing.T) {
	s := newTestServer(&failingPredictor{err: errors.New("matrix exploded")})

	w := doPredict(t, s, `{"features": [1, 2, 3, 4, 5, 6]}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "INFERENCE_FAILED", decodeError(t, w).Code)
}

func TestHandlePredictPanicRecovered(t *testing.T) {
	s := newTestServer(&failingPredictor{panic: true})

	w := doPredict(t, s, `{"features": [1, 2, 3, 4, 5, 6]}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "INTERNAL_ERROR", decodeError(t, w).Code)

	// the server keeps answering after a panic
	w = doPredict(t, s, `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandlePredictTrailingWhitespace(t *testing.T) {
	s := newTestServer(newTestPredictor(t))

	w := doPredict(t, s, "{\"features\": [1, 2, 3, 4, 5, 6]}\n\t ")
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestPanicIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	s := NewServer(&Config{
		Addr:         ":0",
		MaxBodyBytes: 1024,
		Predictor:    &failingPredictor{panic: true},
		Logger:       zap.New(core),
	})

	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(`{"features": [1, 2, 3, 4, 5, 6]}`))
	req.Header.Set(requestIDHeader, "panic-1")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "panic-1", w.Header().Get(requestIDHeader))

	panics := logs.FilterMessage("panic recovered").All()
	require.Len(t, panics, 1)
	assert.Equal(t, "panic-1", panics[0].ContextMap()["request_id"])

	access := logs.FilterMessage("HTTP request").All()
	require.Len(t, access, 1)
	assert.Equal(t, "panic-1", access[0].ContextMap()["request_id"])
	assert.EqualValues(t, http.StatusInternalServerError, access[0].ContextMap()["status"])
}

func TestOnlyPredictRouteExists(t *testing.T) {
	s := newTestServer(newTestPredictor(t))

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/health"},
		{http.MethodGet, "/metrics"},
		{http.MethodGet, "/"},
		{http.MethodGet, "/predict"},
		{http.MethodPut, "/predict"},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, nil)
		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code, tt.method+" "+tt.path)
	}
}

func TestRequestIDPropagated(t *testing.T) {
	s := newTestServer(newTestPredictor(t))

	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(`{}`))
	req.Header.Set(requestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(requestIDHeader))
}

func TestHandlePredictConcurrent(t *testing.T) {
	s := newTestServer(newTestPredictor(t))
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	var wg sync.WaitGroup
	errs := make(chan error, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			body := fmt.Sprintf(`{"features": [%d, %d, %d, %d, 0, 1]}`, i, i+1, i+2, i+3)
			resp, err := http.Post(ts.URL+"/predict", "application/json", bytes.NewBufferString(body))
			if err != nil {
				errs <- err
				return
			}
			defer resp.Body.Close()

			var got predictor.Prediction
			if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
				errs <- err
				return
			}
			want := predictor.Prediction{
				CPUUtilization: float64(2 * i),
				MemoryUsage:    float64(2 * (i + 1)),
				DiskIOMBps:     float64(2 * (i + 2)),
				NetworkBwMBps:  float64(2 * (i + 3)),
			}
			if got != want {
				errs <- fmt.Errorf("request %d: got %+v, want %+v", i, got, want)
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}
