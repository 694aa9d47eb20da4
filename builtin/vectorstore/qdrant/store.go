// Package qdrant implements VectorStore against a remote Qdrant
// instance over gRPC. Points are keyed by UUID and carry the document
// content and metadata as payload.
package qdrant

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/jhavlik/jobdesk/pkg/codec"
	"github.com/jhavlik/jobdesk/pkg/provider"
	"github.com/jhavlik/jobdesk/pkg/types"
)

// Default values
const (
	DefaultEndpoint   = "localhost:6334"
	DefaultCollection = "jobdesk"
)

// Reserved payload keys. Everything else round-trips as document metadata.
const (
	payloadContent   = "content"
	payloadTimestamp = "timestamp"
)

// Config contains configuration for the Qdrant store.
type Config struct {
	// Endpoint is the host:port of the Qdrant gRPC listener.
	Endpoint string

	// Collection is the Qdrant collection name.
	Collection string

	// Embedder turns text into vectors on add and search.
	Embedder provider.EmbeddingProvider

	// Codec must be nil or plain. Payload encoding is a flatfile concern.
	Codec codec.Codec
}

// Store implements the VectorStore interface using Qdrant.
type Store struct {
	mu sync.Mutex

	conn        *grpc.ClientConn
	points      pb.PointsClient
	collections pb.CollectionsClient
	collection  string
	endpoint    string
	embedder    provider.EmbeddingProvider

	dimensions int
	ensured    bool
}

var _ provider.VectorStore = (*Store)(nil)

// New connects to Qdrant. The collection is created lazily on the
// first add, once the embedding dimensions are known.
func New(cfg Config) (*Store, error) {
	if cfg.Embedder == nil {
		return nil, fmt.Errorf("%w: embedding provider is required", types.ErrInvalidConfig)
	}
	if cfg.Codec != nil && cfg.Codec.Name() != "plain" {
		return nil, fmt.Errorf("%w: qdrant does not support the %q codec", types.ErrInvalidConfig, cfg.Codec.Name())
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}

	conn, err := grpc.NewClient(cfg.Endpoint, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("qdrant connect: %w", err)
	}

	return &Store{
		conn:        conn,
		points:      pb.NewPointsClient(conn),
		collections: pb.NewCollectionsClient(conn),
		collection:  cfg.Collection,
		endpoint:    cfg.Endpoint,
		embedder:    cfg.Embedder,
	}, nil
}

// ensureCollection creates the collection with cosine distance if it
// does not exist yet.
func (s *Store) ensureCollection(ctx context.Context, dimensions int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ensured {
		if dimensions != s.dimensions {
			return fmt.Errorf("%w: got %d dimensions, collection has %d", types.ErrDimensionMismatch, dimensions, s.dimensions)
		}
		return nil
	}

	exists, err := s.collections.CollectionExists(ctx, &pb.CollectionExistsRequest{
		CollectionName: s.collection,
	})
	if err != nil {
		return fmt.Errorf("qdrant collection check: %w", err)
	}

	if !exists.GetResult().GetExists() {
		_, err = s.collections.Create(ctx, &pb.CreateCollection{
			CollectionName: s.collection,
			VectorsConfig: &pb.VectorsConfig{
				Config: &pb.VectorsConfig_Params{
					Params: &pb.VectorParams{
						Size:     uint64(dimensions),
						Distance: pb.Distance_Cosine,
					},
				},
			},
		})
		if err != nil {
			return fmt.Errorf("qdrant create collection: %w", err)
		}
	}

	s.dimensions = dimensions
	s.ensured = true
	return nil
}

// AddTexts embeds the given texts and upserts them as points in a
// single batch. Returns the generated point UUIDs in input order.
func (s *Store) AddTexts(ctx context.Context, texts []string, metadatas []map[string]any) ([]string, error) {
	if len(texts) == 0 {
		return []string{}, nil
	}
	if len(metadatas) > len(texts) {
		return nil, fmt.Errorf("received %d metadata entries for %d texts", len(metadatas), len(texts))
	}

	vectors, err := s.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed %d texts: %w", len(texts), err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embedding provider returned %d vectors for %d texts", len(vectors), len(texts))
	}

	dim := len(vectors[0])
	for i, vec := range vectors {
		if len(vec) != dim {
			return nil, fmt.Errorf("%w: vector %d has %d dimensions, expected %d", types.ErrDimensionMismatch, i, len(vec), dim)
		}
	}
	if err := s.ensureCollection(ctx, dim); err != nil {
		return nil, err
	}

	timestamp := time.Now().UTC().Format(time.RFC3339)
	ids := make([]string, len(texts))
	points := make([]*pb.PointStruct, len(texts))
	for i, text := range texts {
		id := uuid.NewString()
		ids[i] = id

		payload := map[string]*pb.Value{
			payloadContent:   {Kind: &pb.Value_StringValue{StringValue: text}},
			payloadTimestamp: {Kind: &pb.Value_StringValue{StringValue: timestamp}},
		}
		if i < len(metadatas) {
			for k, v := range metadatas[i] {
				payload[k] = valueFromAny(v)
			}
		}

		points[i] = &pb.PointStruct{
			Id:      &pb.PointId{PointIdOptions: &pb.PointId_Uuid{Uuid: id}},
			Vectors: &pb.Vectors{VectorsOptions: &pb.Vectors_Vector{Vector: &pb.Vector{Data: vectors[i]}}},
			Payload: payload,
		}
	}

	_, err = s.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: s.collection,
		Points:         points,
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant upsert: %w", err)
	}
	return ids, nil
}

// AddDocuments stores documents, splitting content and metadata.
func (s *Store) AddDocuments(ctx context.Context, docs []types.Document) ([]string, error) {
	texts := make([]string, len(docs))
	metadatas := make([]map[string]any, len(docs))
	for i, doc := range docs {
		texts[i] = doc.Content
		metadatas[i] = doc.Metadata
	}
	return s.AddTexts(ctx, texts, metadatas)
}

// SimilaritySearch returns the k most similar documents.
func (s *Store) SimilaritySearch(ctx context.Context, query string, k int) ([]types.Document, error) {
	scored, err := s.SimilaritySearchWithScore(ctx, query, k)
	if err != nil {
		return nil, err
	}
	docs := make([]types.Document, len(scored))
	for i, sd := range scored {
		docs[i] = sd.Document
	}
	return docs, nil
}

// SimilaritySearchWithScore returns the k most similar documents with
// cosine similarity scores, best first. An empty or missing collection
// returns an empty slice without embedding the query.
func (s *Store) SimilaritySearchWithScore(ctx context.Context, query string, k int) ([]types.ScoredDocument, error) {
	if k < 1 {
		return nil, fmt.Errorf("k must be at least 1, got %d", k)
	}

	count, err := s.count(ctx)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return []types.ScoredDocument{}, nil
	}

	qvec, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	s.mu.Lock()
	dim := s.dimensions
	s.mu.Unlock()
	if dim > 0 && len(qvec) != dim {
		return nil, fmt.Errorf("%w: query has %d dimensions, stored vectors have %d", types.ErrDimensionMismatch, len(qvec), dim)
	}

	resp, err := s.points.Search(ctx, &pb.SearchPoints{
		CollectionName: s.collection,
		Vector:         qvec,
		Limit:          uint64(k),
		WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant search: %w", err)
	}

	results := make([]types.ScoredDocument, 0, len(resp.Result))
	for _, pt := range resp.Result {
		content := ""
		var meta map[string]any
		for key, value := range pt.Payload {
			switch key {
			case payloadContent:
				content = value.GetStringValue()
			case payloadTimestamp:
				// internal bookkeeping, not document metadata
			default:
				if meta == nil {
					meta = make(map[string]any)
				}
				meta[key] = anyFromValue(value)
			}
		}
		results = append(results, types.ScoredDocument{
			Document: types.Document{
				ID:       pt.Id.GetUuid(),
				Content:  content,
				Metadata: meta,
			},
			Score: float64(pt.Score),
		})
	}
	return results, nil
}

// Delete removes points by id. Unknown ids and a missing collection
// are ignored.
func (s *Store) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	pointIDs := make([]*pb.PointId, len(ids))
	for i, id := range ids {
		pointIDs[i] = &pb.PointId{PointIdOptions: &pb.PointId_Uuid{Uuid: id}}
	}

	_, err := s.points.Delete(ctx, &pb.DeletePoints{
		CollectionName: s.collection,
		Points: &pb.PointsSelector{
			PointsSelectorOneOf: &pb.PointsSelector_Points{
				Points: &pb.PointsIdsList{Ids: pointIDs},
			},
		},
	})
	if status.Code(err) == codes.NotFound {
		return nil
	}
	if err != nil {
		return fmt.Errorf("qdrant delete: %w", err)
	}
	return nil
}

// Stats reports the point count. Qdrant keeps payload and vectors on
// the same point, so the two counts always match.
func (s *Store) Stats(ctx context.Context) (types.CollectionStats, error) {
	count, err := s.count(ctx)
	if err != nil {
		return types.CollectionStats{}, err
	}
	return types.CollectionStats{
		DocumentCount:  count,
		VectorCount:    count,
		StorePath:      s.endpoint,
		CollectionName: s.collection,
		Status:         "ready",
	}, nil
}

// Close closes the gRPC connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// count returns the exact point count, treating a missing collection
// as empty.
func (s *Store) count(ctx context.Context) (int, error) {
	exact := true
	resp, err := s.points.Count(ctx, &pb.CountPoints{
		CollectionName: s.collection,
		Exact:          &exact,
	})
	if status.Code(err) == codes.NotFound {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("qdrant count: %w", err)
	}
	return int(resp.GetResult().GetCount()), nil
}

// valueFromAny converts metadata values to Qdrant payload values.
func valueFromAny(v any) *pb.Value {
	switch t := v.(type) {
	case string:
		return &pb.Value{Kind: &pb.Value_StringValue{StringValue: t}}
	case bool:
		return &pb.Value{Kind: &pb.Value_BoolValue{BoolValue: t}}
	case int:
		return &pb.Value{Kind: &pb.Value_IntegerValue{IntegerValue: int64(t)}}
	case int64:
		return &pb.Value{Kind: &pb.Value_IntegerValue{IntegerValue: t}}
	case float32:
		return &pb.Value{Kind: &pb.Value_DoubleValue{DoubleValue: float64(t)}}
	case float64:
		return &pb.Value{Kind: &pb.Value_DoubleValue{DoubleValue: t}}
	default:
		return &pb.Value{Kind: &pb.Value_StringValue{StringValue: fmt.Sprintf("%v", t)}}
	}
}

// anyFromValue converts Qdrant payload values back to metadata values.
func anyFromValue(v *pb.Value) any {
	switch kind := v.GetKind().(type) {
	case *pb.Value_StringValue:
		return kind.StringValue
	case *pb.Value_BoolValue:
		return kind.BoolValue
	case *pb.Value_IntegerValue:
		return kind.IntegerValue
	case *pb.Value_DoubleValue:
		return kind.DoubleValue
	default:
		return nil
	}
}
