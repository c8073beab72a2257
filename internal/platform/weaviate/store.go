package weaviate

import (
	"context"
	"crypto/sha256"
	"fmt"
	"net/url"
	"strings"
	"unicode"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/yungbote/myu-chat-backend/internal/platform/envutil"
	"github.com/yungbote/myu-chat-backend/internal/platform/logger"
	"github.com/yungbote/myu-chat-backend/internal/platform/vectorstore"
)

type Config struct {
	URL         string
	ClassPrefix string
}

func ConfigFromEnv() Config {
	return Config{
		URL:         envutil.String("WEAVIATE_URL", "http://localhost:8080"),
		ClassPrefix: envutil.String("WEAVIATE_CLASS_PREFIX", "Myu"),
	}
}

// VectorStore keeps one Weaviate class per logical collection. Vectors are
// supplied by the caller, the class vectorizer is "none".
type VectorStore struct {
	log    *logger.Logger
	cfg    Config
	client *weaviate.Client
}

var _ vectorstore.Store = (*VectorStore)(nil)

func NewVectorStore(log *logger.Logger, cfg Config) (*VectorStore, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	parsed, err := url.Parse(strings.TrimSpace(cfg.URL))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid WEAVIATE_URL=%q", cfg.URL)
	}
	client, err := weaviate.NewClient(weaviate.Config{Host: parsed.Host, Scheme: parsed.Scheme})
	if err != nil {
		return nil, fmt.Errorf("init weaviate client: %w", err)
	}
	log.Info("Weaviate vector store selected", "provider", "weaviate", "url", cfg.URL, "class_prefix", cfg.ClassPrefix)
	return &VectorStore{
		log:    log.With("service", "WeaviateVectorStore"),
		cfg:    cfg,
		client: client,
	}, nil
}

func (s *VectorStore) EnsureCollection(ctx context.Context, collection string, dim int) error {
	class := ClassName(s.cfg.ClassPrefix, collection)
	exists, err := s.client.Schema().ClassExistenceChecker().WithClassName(class).Do(ctx)
	if err != nil {
		return fmt.Errorf("weaviate class check %s: %w", class, err)
	}
	if exists {
		return nil
	}
	if err := s.client.Schema().ClassCreator().WithClass(passageClass(class)).Do(ctx); err != nil {
		return fmt.Errorf("weaviate class create %s: %w", class, err)
	}
	s.log.Info("weaviate class created", "class", class, "vector_dim", dim)
	return nil
}

func (s *VectorStore) CollectionExists(ctx context.Context, collection string) (bool, error) {
	class := ClassName(s.cfg.ClassPrefix, collection)
	exists, err := s.client.Schema().ClassExistenceChecker().WithClassName(class).Do(ctx)
	if err != nil {
		return false, fmt.Errorf("weaviate class check %s: %w", class, err)
	}
	return exists, nil
}

func (s *VectorStore) Upsert(ctx context.Context, collection string, points []vectorstore.Point) error {
	if len(points) == 0 {
		return nil
	}
	class := ClassName(s.cfg.ClassPrefix, collection)
	objects := make([]*models.Object, 0, len(points))
	for _, p := range points {
		if strings.TrimSpace(p.ID) == "" {
			return fmt.Errorf("point id is required")
		}
		objects = append(objects, &models.Object{
			Class:  class,
			ID:     strfmt.UUID(objectID(class, p.ID)),
			Vector: p.Vector,
			Properties: map[string]interface{}{
				"content":  p.Text,
				"source":   p.Source,
				"point_id": p.ID,
			},
		})
	}

	resp, err := s.client.Batch().ObjectsBatcher().WithObjects(objects...).Do(ctx)
	if err != nil {
		return fmt.Errorf("weaviate batch import: %w", err)
	}
	failed := 0
	for _, item := range resp {
		if item.Result != nil && item.Result.Errors != nil && len(item.Result.Errors.Error) > 0 {
			failed++
			s.log.Warn("weaviate object import failed", "class", class, "error", item.Result.Errors.Error[0].Message)
		}
	}
	if failed > 0 {
		return fmt.Errorf("weaviate batch import: %d of %d objects failed", failed, len(objects))
	}
	return nil
}

func (s *VectorStore) Search(ctx context.Context, collection string, vector []float32, k int) ([]vectorstore.Match, error) {
	class := ClassName(s.cfg.ClassPrefix, collection)
	exists, err := s.CollectionExists(ctx, collection)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", vectorstore.ErrCollectionNotFound, class)
	}
	if k <= 0 {
		k = 8
	}

	nearVector := s.client.GraphQL().NearVectorArgBuilder().WithVector(vector)
	fields := []graphql.Field{
		{Name: "content"},
		{Name: "source"},
		{Name: "point_id"},
		{Name: "_additional", Fields: []graphql.Field{{Name: "certainty"}}},
	}
	result, err := s.client.GraphQL().Get().
		WithClassName(class).
		WithFields(fields...).
		WithNearVector(nearVector).
		WithLimit(k).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("weaviate search: %w", err)
	}
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("weaviate search: %s", result.Errors[0].Message)
	}
	return parseMatches(result.Data, class), nil
}

func (s *VectorStore) DeleteBySource(ctx context.Context, collection, source string) error {
	class := ClassName(s.cfg.ClassPrefix, collection)
	where := filters.Where().
		WithPath([]string{"source"}).
		WithOperator(filters.Equal).
		WithValueText(source)
	_, err := s.client.Batch().ObjectsBatchDeleter().
		WithClassName(class).
		WithWhere(where).
		WithOutput("minimal").
		Do(ctx)
	if err != nil {
		return fmt.Errorf("weaviate delete by source %s: %w", class, err)
	}
	return nil
}

func passageClass(class string) *models.Class {
	filterable := true
	return &models.Class{
		Class:       class,
		Description: "Admission and student-support passages for MyU Bot.",
		Vectorizer:  "none",
		Properties: []*models.Property{
			{Name: "content", DataType: []string{"text"}, Tokenization: "word"},
			{Name: "source", DataType: []string{"text"}, IndexFilterable: &filterable, Tokenization: "field"},
			{Name: "point_id", DataType: []string{"text"}, IndexFilterable: &filterable, Tokenization: "field"},
		},
	}
}

// ClassName turns a collection id like "student-support" into a valid
// Weaviate class name ("MyuStudentSupport").
func ClassName(prefix, collection string) string {
	var b strings.Builder
	upper := true
	for _, r := range prefix + "-" + collection {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upper = true
			continue
		}
		if upper {
			b.WriteRune(unicode.ToUpper(r))
			upper = false
			continue
		}
		b.WriteRune(r)
	}
	out := b.String()
	if out == "" || !unicode.IsLetter([]rune(out)[0]) {
		out = "C" + out
	}
	return out
}

func objectID(class, pointID string) string {
	sum := sha256.Sum256([]byte(class + "|" + pointID))
	id, _ := uuid.FromBytes(sum[:16])
	return id.String()
}

func parseMatches(data map[string]models.JSONObject, class string) []vectorstore.Match {
	get, ok := data["Get"].(map[string]interface{})
	if !ok {
		return nil
	}
	items, ok := get[class].([]interface{})
	if !ok {
		return nil
	}
	out := make([]vectorstore.Match, 0, len(items))
	for _, it := range items {
		obj, ok := it.(map[string]interface{})
		if !ok {
			continue
		}
		m := vectorstore.Match{}
		m.Text, _ = obj["content"].(string)
		m.Source, _ = obj["source"].(string)
		m.ID, _ = obj["point_id"].(string)
		if add, ok := obj["_additional"].(map[string]interface{}); ok {
			m.Score, _ = add["certainty"].(float64)
		}
		out = append(out, m)
	}
	return out
}
