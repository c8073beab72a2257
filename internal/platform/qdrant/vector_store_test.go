package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/yungbote/myu-chat-backend/internal/platform/logger"
	"github.com/yungbote/myu-chat-backend/internal/platform/vectorstore"
)

func TestVectorStoreUpsertRequestShape(t *testing.T) {
	var captured map[string]any
	s := newTestVectorStore(t, func(r *http.Request) (*http.Response, error) {
		if r.Method != http.MethodPut {
			t.Errorf("method: want=%s got=%s", http.MethodPut, r.Method)
		}
		if r.URL.Path != "/collections/myu_admission/points" {
			t.Errorf("path: want=%q got=%q", "/collections/myu_admission/points", r.URL.Path)
		}
		if r.URL.RawQuery != "wait=true" {
			t.Errorf("query: want=%q got=%q", "wait=true", r.URL.RawQuery)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode body: %v", err)
		}
		return okResponse(t, map[string]any{"status": "acknowledged"}), nil
	})

	err := s.Upsert(context.Background(), "admission", []vectorstore.Point{
		{ID: "hoc_phi.txt#0", Vector: []float32{1, 2, 3}, Text: "Học phí ngành CNTT", Source: "hoc_phi.txt"},
		{ID: "hoc_phi.txt#1", Vector: []float32{4, 5, 6}, Text: "Học phí ngành Luật", Source: "hoc_phi.txt"},
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	points, ok := captured["points"].([]any)
	if !ok || len(points) != 2 {
		t.Fatalf("points: got=%v", captured["points"])
	}
	first := points[0].(map[string]any)
	if first["id"] != pointID("myu_admission", "hoc_phi.txt#0") {
		t.Fatalf("point id mismatch: got=%v", first["id"])
	}
	payload := first["payload"].(map[string]any)
	if payload[payloadTextKey] != "Học phí ngành CNTT" {
		t.Fatalf("payload text: got=%v", payload[payloadTextKey])
	}
	if payload[payloadSourceKey] != "hoc_phi.txt" {
		t.Fatalf("payload source: got=%v", payload[payloadSourceKey])
	}
	if payload[payloadPointIDKey] != "hoc_phi.txt#0" {
		t.Fatalf("payload point id: got=%v", payload[payloadPointIDKey])
	}
}

func TestVectorStoreUpsertDimensionMismatch(t *testing.T) {
	s := newTestVectorStore(t, func(r *http.Request) (*http.Response, error) {
		t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		return nil, fmt.Errorf("unexpected")
	})
	err := s.Upsert(context.Background(), "admission", []vectorstore.Point{{ID: "x", Vector: []float32{1, 2}}})
	var opErr *OperationError
	if !errors.As(err, &opErr) || opErr.Code != OperationErrorValidation {
		t.Fatalf("expected validation error, got=%v", err)
	}
}

func TestVectorStoreSearchDecodesPayloadAndOrders(t *testing.T) {
	var captured map[string]any
	s := newTestVectorStore(t, func(r *http.Request) (*http.Response, error) {
		if r.URL.Path != "/collections/myu_admission/points/search" {
			t.Errorf("path: got=%q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode body: %v", err)
		}
		return okResponse(t, []map[string]any{
			{"id": "p-b", "score": 0.4, "payload": map[string]any{payloadPointIDKey: "b", payloadTextKey: "Địa chỉ", payloadSourceKey: "dia_chi.txt"}},
			{"id": "p-a", "score": 0.9, "payload": map[string]any{payloadPointIDKey: "a", payloadTextKey: "Học phí", payloadSourceKey: "hoc_phi.txt"}},
			{"id": 17, "score": 0.1, "payload": map[string]any{}},
		}), nil
	})

	got, err := s.Search(context.Background(), "admission", []float32{1, 2, 3}, 15)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("matches: want=3 got=%d", len(got))
	}
	if got[0].ID != "a" || got[0].Text != "Học phí" || got[0].Source != "hoc_phi.txt" {
		t.Fatalf("first match: got=%+v", got[0])
	}
	if got[2].ID != "17" {
		t.Fatalf("numeric id fallback: got=%q", got[2].ID)
	}
	if captured["limit"] != float64(15) {
		t.Fatalf("limit: got=%v", captured["limit"])
	}
}

func TestVectorStoreSearchMissingCollection(t *testing.T) {
	s := newTestVectorStore(t, func(r *http.Request) (*http.Response, error) {
		return statusResponse(http.StatusNotFound, `{"status":{"error":"Not found: Collection myu_admission"}}`), nil
	})
	_, err := s.Search(context.Background(), "admission", []float32{1, 2, 3}, 8)
	if !errors.Is(err, vectorstore.ErrCollectionNotFound) {
		t.Fatalf("expected ErrCollectionNotFound, got=%v", err)
	}
}

func TestVectorStoreEnsureCollectionCreatesWhenMissing(t *testing.T) {
	var calls []string
	var created map[string]any
	s := newTestVectorStore(t, func(r *http.Request) (*http.Response, error) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		if r.Method == http.MethodGet {
			return statusResponse(http.StatusNotFound, `{}`), nil
		}
		if err := json.NewDecoder(r.Body).Decode(&created); err != nil {
			t.Errorf("decode body: %v", err)
		}
		return okResponse(t, true), nil
	})
	s.cfg.VectorDim = 0

	if err := s.EnsureCollection(context.Background(), "student-support", 768); err != nil {
		t.Fatalf("EnsureCollection: %v", err)
	}
	if len(calls) != 2 || calls[1] != "PUT /collections/myu_student-support" {
		t.Fatalf("calls: got=%v", calls)
	}
	vectors := created["vectors"].(map[string]any)
	if vectors["size"] != float64(768) || vectors["distance"] != "Cosine" {
		t.Fatalf("vectors config: got=%v", vectors)
	}
	if s.expectedDim("myu_student-support") != 768 {
		t.Fatalf("dimension not remembered")
	}
}

func TestVectorStoreEnsureCollectionSizeMismatch(t *testing.T) {
	s := newTestVectorStore(t, func(r *http.Request) (*http.Response, error) {
		return okResponse(t, map[string]any{
			"config": map[string]any{"params": map[string]any{"vectors": map[string]any{"size": 1536, "distance": "Cosine"}}},
		}), nil
	})
	s.cfg.VectorDim = 0
	err := s.EnsureCollection(context.Background(), "admission", 768)
	var opErr *OperationError
	if !errors.As(err, &opErr) || opErr.Code != OperationErrorValidation {
		t.Fatalf("expected validation error, got=%v", err)
	}
}

func TestVectorStoreCollectionExists(t *testing.T) {
	s := newTestVectorStore(t, func(r *http.Request) (*http.Response, error) {
		if r.URL.Path == "/collections/myu_admission" {
			return okResponse(t, map[string]any{}), nil
		}
		return statusResponse(http.StatusNotFound, `{}`), nil
	})
	ok, err := s.CollectionExists(context.Background(), "admission")
	if err != nil || !ok {
		t.Fatalf("admission: ok=%v err=%v", ok, err)
	}
	ok, err = s.CollectionExists(context.Background(), "student-support")
	if err != nil || ok {
		t.Fatalf("student-support: ok=%v err=%v", ok, err)
	}
}

func TestVectorStoreDeleteBySourceFilter(t *testing.T) {
	var captured map[string]any
	s := newTestVectorStore(t, func(r *http.Request) (*http.Response, error) {
		if r.URL.Path != "/collections/myu_admission/points/delete" {
			t.Errorf("path: got=%q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode body: %v", err)
		}
		return okResponse(t, map[string]any{"status": "acknowledged"}), nil
	})
	if err := s.DeleteBySource(context.Background(), "admission", "hoc_phi.txt"); err != nil {
		t.Fatalf("DeleteBySource: %v", err)
	}
	filter := captured["filter"].(map[string]any)
	cond := findConditionByKey(filter["must"].([]any), payloadSourceKey)
	if cond == nil || cond["match"].(map[string]any)["value"] != "hoc_phi.txt" {
		t.Fatalf("source condition: got=%v", filter)
	}
}

func TestVectorStoreSendsAPIKey(t *testing.T) {
	s := newTestVectorStore(t, func(r *http.Request) (*http.Response, error) {
		if r.Header.Get("api-key") != "secret" {
			t.Errorf("api-key header: got=%q", r.Header.Get("api-key"))
		}
		return okResponse(t, map[string]any{}), nil
	})
	s.cfg.APIKey = "secret"
	if _, err := s.CollectionExists(context.Background(), "admission"); err != nil {
		t.Fatalf("CollectionExists: %v", err)
	}
}

func TestClassifyHTTPCallErrorTimeout(t *testing.T) {
	err := classifyHTTPCallError("search", "timeout", context.DeadlineExceeded)
	var opErr *OperationError
	if !errors.As(err, &opErr) {
		t.Fatalf("expected OperationError, got=%T", err)
	}
	if opErr.Code != OperationErrorTimeout {
		t.Fatalf("error code: want=%q got=%q", OperationErrorTimeout, opErr.Code)
	}
}

func TestClassifyHTTPCallErrorTransport(t *testing.T) {
	err := classifyHTTPCallError("search", "transport", fmt.Errorf("boom"))
	var opErr *OperationError
	if !errors.As(err, &opErr) {
		t.Fatalf("expected OperationError, got=%T", err)
	}
	if opErr.Code != OperationErrorTransportFailed {
		t.Fatalf("error code: want=%q got=%q", OperationErrorTransportFailed, opErr.Code)
	}
}

func newTestVectorStore(t *testing.T, roundTrip func(*http.Request) (*http.Response, error)) *VectorStore {
	t.Helper()
	return newVectorStore(logger.NewNop(), Config{
		URL:              "http://qdrant.local",
		CollectionPrefix: "myu",
		VectorDim:        3,
	}, &http.Client{Transport: roundTripFunc(roundTrip)})
}

func okResponse(t *testing.T, result any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(map[string]any{
		"result": result,
		"status": "ok",
		"time":   0.001,
	})
	if err != nil {
		t.Fatalf("marshal response: %v", err)
	}
	return statusResponse(http.StatusOK, string(raw))
}

func statusResponse(code int, body string) *http.Response {
	return &http.Response{
		StatusCode: code,
		Header:     make(http.Header),
		Body:       io.NopCloser(bytes.NewReader([]byte(body))),
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}
