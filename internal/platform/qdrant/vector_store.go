package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/myu-chat-backend/internal/platform/ctxutil"
	"github.com/yungbote/myu-chat-backend/internal/platform/logger"
	"github.com/yungbote/myu-chat-backend/internal/platform/vectorstore"
)

const (
	payloadTextKey    = "text"
	payloadSourceKey  = "source"
	payloadPointIDKey = "_myu_point_id"
	maxErrorBodyBytes = 1024
)

var pointIDNamespaceUUID = uuid.MustParse("6a0d1f0e-52a1-4c5e-9a43-3f3c2b1d8e77")

// VectorStore speaks the Qdrant REST API. Logical collection names are
// prefixed so several deployments can share one Qdrant instance.
type VectorStore struct {
	log     *logger.Logger
	cfg     Config
	baseURL string
	http    *http.Client

	mu   sync.Mutex
	dims map[string]int
}

var _ vectorstore.Store = (*VectorStore)(nil)

type qdrantEnvelope struct {
	Result json.RawMessage `json:"result"`
	Status json.RawMessage `json:"status"`
	Time   float64         `json:"time"`
}

type qdrantSearchResultItem struct {
	ID      json.RawMessage `json:"id"`
	Score   float64         `json:"score"`
	Payload map[string]any  `json:"payload"`
}

type collectionInfo struct {
	Config struct {
		Params struct {
			Vectors struct {
				Size     int    `json:"size"`
				Distance string `json:"distance"`
			} `json:"vectors"`
		} `json:"params"`
	} `json:"config"`
}

func NewVectorStore(ctx context.Context, log *logger.Logger, cfg Config) (*VectorStore, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	s := newVectorStore(log, cfg, &http.Client{Timeout: timeout})
	if err := s.verifyReady(ctx); err != nil {
		return nil, err
	}
	log.Info(
		"Qdrant vector store selected",
		"provider", "qdrant",
		"url", s.baseURL,
		"collection_prefix", cfg.CollectionPrefix,
		"vector_dim", cfg.VectorDim,
		"distance", s.distance(),
	)
	return s, nil
}

func newVectorStore(log *logger.Logger, cfg Config, hc *http.Client) *VectorStore {
	return &VectorStore{
		log:     log.With("service", "QdrantVectorStore"),
		cfg:     cfg,
		baseURL: strings.TrimRight(cfg.URL, "/"),
		http:    hc,
		dims:    map[string]int{},
	}
}

func (s *VectorStore) EnsureCollection(ctx context.Context, collection string, dim int) error {
	const op = "ensure_collection"
	if dim <= 0 {
		return opErr(op, OperationErrorValidation, "vector dimension must be positive", nil)
	}
	if s.cfg.VectorDim > 0 && dim != s.cfg.VectorDim {
		return opErr(op, OperationErrorValidation, fmt.Sprintf("dimension mismatch: configured=%d got=%d", s.cfg.VectorDim, dim), nil)
	}
	name := s.qualify(collection)

	var info collectionInfo
	err := s.doJSON(ctx, op, http.MethodGet, collectionPath(name, ""), nil, &info)
	switch {
	case err == nil:
		size := info.Config.Params.Vectors.Size
		if size != 0 && size != dim {
			return &OperationError{
				Code:       OperationErrorValidation,
				Operation:  op,
				Collection: name,
				Message:    fmt.Sprintf("vector size mismatch: expected=%d actual=%d", dim, size),
			}
		}
		s.rememberDim(name, dim)
		return nil
	case IsNotFound(err):
	default:
		return err
	}

	req := map[string]any{
		"vectors": map[string]any{
			"size":     dim,
			"distance": s.distance(),
		},
	}
	if err := s.doJSON(ctx, op, http.MethodPut, collectionPath(name, ""), req, nil); err != nil {
		return err
	}
	s.rememberDim(name, dim)
	s.log.Info("qdrant collection created", "collection", name, "vector_dim", dim)
	return nil
}

func (s *VectorStore) CollectionExists(ctx context.Context, collection string) (bool, error) {
	err := s.doJSON(ctx, "collection_exists", http.MethodGet, collectionPath(s.qualify(collection), ""), nil, nil)
	if err == nil {
		return true, nil
	}
	if IsNotFound(err) {
		return false, nil
	}
	return false, err
}

func (s *VectorStore) Upsert(ctx context.Context, collection string, points []vectorstore.Point) error {
	const op = "upsert"
	if len(points) == 0 {
		return nil
	}
	name := s.qualify(collection)
	want := s.expectedDim(name)

	body := make([]map[string]any, 0, len(points))
	for _, p := range points {
		id := strings.TrimSpace(p.ID)
		if id == "" {
			return opErr(op, OperationErrorValidation, "point id is required", nil)
		}
		if len(p.Vector) == 0 {
			return opErr(op, OperationErrorValidation, fmt.Sprintf("point %q has empty vector", id), nil)
		}
		if want > 0 && len(p.Vector) != want {
			return opErr(op, OperationErrorValidation, fmt.Sprintf("point %q dimension mismatch: expected=%d got=%d", id, want, len(p.Vector)), nil)
		}
		body = append(body, map[string]any{
			"id":     pointID(name, id),
			"vector": p.Vector,
			"payload": map[string]any{
				payloadTextKey:    p.Text,
				payloadSourceKey:  p.Source,
				payloadPointIDKey: id,
			},
		})
	}
	return s.doJSON(ctx, op, http.MethodPut, collectionPath(name, "/points?wait=true"), map[string]any{"points": body}, nil)
}

func (s *VectorStore) Search(ctx context.Context, collection string, vector []float32, k int) ([]vectorstore.Match, error) {
	const op = "search"
	if len(vector) == 0 {
		return nil, opErr(op, OperationErrorValidation, "query vector required", nil)
	}
	name := s.qualify(collection)
	if want := s.expectedDim(name); want > 0 && len(vector) != want {
		return nil, opErr(op, OperationErrorValidation, fmt.Sprintf("query vector dimension mismatch: expected=%d got=%d", want, len(vector)), nil)
	}
	if k <= 0 {
		k = 8
	}

	req := map[string]any{
		"vector":       vector,
		"limit":        k,
		"with_payload": true,
		"with_vector":  false,
	}
	var raw []qdrantSearchResultItem
	if err := s.doJSON(ctx, op, http.MethodPost, collectionPath(name, "/points/search"), req, &raw); err != nil {
		if IsNotFound(err) {
			return nil, fmt.Errorf("%w: %s", vectorstore.ErrCollectionNotFound, name)
		}
		return nil, err
	}

	out := make([]vectorstore.Match, 0, len(raw))
	for _, item := range raw {
		id := extractPointID(item)
		if id == "" {
			continue
		}
		text, _ := item.Payload[payloadTextKey].(string)
		source, _ := item.Payload[payloadSourceKey].(string)
		out = append(out, vectorstore.Match{
			ID:     id,
			Score:  s.normalizeScore(item.Score),
			Text:   text,
			Source: source,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score == out[j].Score {
			return out[i].ID < out[j].ID
		}
		return out[i].Score > out[j].Score
	})
	return out, nil
}

func (s *VectorStore) DeleteBySource(ctx context.Context, collection, source string) error {
	const op = "delete"
	if strings.TrimSpace(source) == "" {
		return opErr(op, OperationErrorValidation, "source is required", nil)
	}
	filter, err := payloadFilter(map[string]any{payloadSourceKey: source})
	if err != nil {
		return err
	}
	err = s.doJSON(ctx, op, http.MethodPost, collectionPath(s.qualify(collection), "/points/delete?wait=true"), map[string]any{"filter": filter.asMap()}, nil)
	if IsNotFound(err) {
		return nil
	}
	return err
}

func (s *VectorStore) verifyReady(ctx context.Context) error {
	const op = "bootstrap_verify"
	req, err := http.NewRequestWithContext(ctxutil.Default(ctx), http.MethodGet, s.baseURL+"/readyz", nil)
	if err != nil {
		return opErr(op, OperationErrorTransportFailed, "build ready request failed", err)
	}
	s.authorize(req)
	resp, err := s.http.Do(req)
	if err != nil {
		return classifyHTTPCallError(op, "qdrant ready check failed", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &OperationError{
			Code:       OperationErrorQueryFailed,
			Operation:  op,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("qdrant ready check returned status=%d", resp.StatusCode),
		}
	}
	return nil
}

func (s *VectorStore) doJSON(ctx context.Context, op, method, path string, in any, out any) error {
	var body io.Reader
	if in != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(in); err != nil {
			return opErr(op, OperationErrorEncodeFailed, "encode request failed", err)
		}
		body = &buf
	}

	req, err := http.NewRequestWithContext(ctxutil.Default(ctx), method, s.baseURL+path, body)
	if err != nil {
		return opErr(op, OperationErrorTransportFailed, "build request failed", err)
	}
	req.Header.Set("Content-Type", "application/json")
	s.authorize(req)

	resp, err := s.http.Do(req)
	if err != nil {
		return classifyHTTPCallError(op, "qdrant request failed", err)
	}
	defer resp.Body.Close()

	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 64*maxErrorBodyBytes))
	if readErr != nil {
		return opErr(op, OperationErrorDecodeFailed, "read response failed", readErr)
	}
	if resp.StatusCode == http.StatusNotFound {
		return &OperationError{
			Code:       OperationErrorNotFound,
			Operation:  op,
			StatusCode: resp.StatusCode,
			Message:    truncateBody(raw),
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &OperationError{
			Code:       OperationErrorQueryFailed,
			Operation:  op,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("qdrant http status=%d body=%q", resp.StatusCode, truncateBody(raw)),
		}
	}

	var envelope qdrantEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return opErr(op, OperationErrorDecodeFailed, "decode qdrant envelope failed", err)
	}
	if statusErr := parseEnvelopeStatus(envelope.Status); statusErr != "" {
		return &OperationError{
			Code:       OperationErrorQueryFailed,
			Operation:  op,
			StatusCode: resp.StatusCode,
			Message:    statusErr,
		}
	}
	if out == nil || len(envelope.Result) == 0 || string(envelope.Result) == "null" {
		return nil
	}
	if err := json.Unmarshal(envelope.Result, out); err != nil {
		return opErr(op, OperationErrorDecodeFailed, "decode qdrant result failed", err)
	}
	return nil
}

func (s *VectorStore) authorize(req *http.Request) {
	if key := strings.TrimSpace(s.cfg.APIKey); key != "" {
		req.Header.Set("api-key", key)
	}
}

func (s *VectorStore) qualify(collection string) string {
	c := strings.TrimSpace(collection)
	prefix := strings.TrimSpace(s.cfg.CollectionPrefix)
	if prefix == "" {
		return c
	}
	return prefix + "_" + c
}

func (s *VectorStore) distance() string {
	switch strings.ToLower(strings.TrimSpace(s.cfg.Distance)) {
	case "dot":
		return "Dot"
	case "euclid":
		return "Euclid"
	default:
		return "Cosine"
	}
}

func (s *VectorStore) rememberDim(name string, dim int) {
	s.mu.Lock()
	s.dims[name] = dim
	s.mu.Unlock()
}

func (s *VectorStore) expectedDim(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok := s.dims[name]; ok {
		return d
	}
	return s.cfg.VectorDim
}

// normalizeScore maps distances onto "higher is closer".
func (s *VectorStore) normalizeScore(score float64) float64 {
	if s.distance() != "Euclid" {
		return score
	}
	if score < 0 {
		score = -score
	}
	return 1.0 / (1.0 + score)
}

func collectionPath(name, suffix string) string {
	return "/collections/" + name + suffix
}

func pointID(collection, id string) string {
	return uuid.NewSHA1(pointIDNamespaceUUID, []byte(collection+"|"+id)).String()
}

func extractPointID(item qdrantSearchResultItem) string {
	if id, ok := item.Payload[payloadPointIDKey].(string); ok && strings.TrimSpace(id) != "" {
		return strings.TrimSpace(id)
	}
	return decodePointID(item.ID)
}

func decodePointID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var idString string
	if err := json.Unmarshal(raw, &idString); err == nil {
		return strings.TrimSpace(idString)
	}
	var idNumber int64
	if err := json.Unmarshal(raw, &idNumber); err == nil {
		return fmt.Sprintf("%d", idNumber)
	}
	return strings.TrimSpace(string(raw))
}

func classifyHTTPCallError(op, message string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return opErr(op, OperationErrorTimeout, message, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return opErr(op, OperationErrorTimeout, message, err)
	}
	return opErr(op, OperationErrorTransportFailed, message, err)
}

func parseEnvelopeStatus(raw json.RawMessage) string {
	status := strings.TrimSpace(string(raw))
	if status == "" || status == "null" {
		return ""
	}
	var statusString string
	if err := json.Unmarshal(raw, &statusString); err == nil {
		if strings.EqualFold(statusString, "ok") {
			return ""
		}
		return fmt.Sprintf("qdrant status=%q", statusString)
	}
	var statusObject struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &statusObject); err == nil && strings.TrimSpace(statusObject.Error) != "" {
		return strings.TrimSpace(statusObject.Error)
	}
	return fmt.Sprintf("qdrant status=%s", status)
}

func truncateBody(raw []byte) string {
	if len(raw) <= maxErrorBodyBytes {
		return string(raw)
	}
	return string(raw[:maxErrorBodyBytes]) + "..."
}
