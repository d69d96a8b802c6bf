package signstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

// Payload keys used by the reference dictionary collection.
const (
	payloadLabel      = "sign_name"
	payloadDifficulty = "difficulty"
)

// scanPageSize bounds how many points one label scan reads. The dictionary
// catalog is small (tens of signs, a few fingerprints each).
const scanPageSize = 4096

// QdrantStore is the production Store backend over a Qdrant collection
// configured with cosine distance.
type QdrantStore struct {
	client     *qdrant.Client
	collection string
}

// NewQdrant connects to a Qdrant instance over gRPC.
func NewQdrant(host string, port int, collection string) (*QdrantStore, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("connect qdrant %s:%d: %w", host, port, err)
	}

	return &QdrantStore{client: client, collection: collection}, nil
}

// Search queries the collection for the nearest references with the given
// label.
func (s *QdrantStore) Search(ctx context.Context, vector []float64, label string, limit int) ([]Result, error) {
	points, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(toFloat32(vector)...),
		Filter: &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch(payloadLabel, label),
			},
		},
		Limit:       qdrant.PtrOf(uint64(limit)),
		WithPayload: qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant search: %w", err)
	}

	results := make([]Result, 0, len(points))
	for _, p := range points {
		payload := p.GetPayload()
		results = append(results, Result{
			Score:      float64(p.GetScore()),
			Label:      payload[payloadLabel].GetStringValue(),
			Difficulty: payload[payloadDifficulty].GetStringValue(),
		})
	}

	return results, nil
}

// ScanLabels pages through the collection payloads without vectors.
func (s *QdrantStore) ScanLabels(ctx context.Context, difficulty string) ([]string, error) {
	var filter *qdrant.Filter
	if difficulty != "" && difficulty != DifficultyAny {
		filter = &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch(payloadDifficulty, difficulty),
			},
		}
	}

	points, err := s.client.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: s.collection,
		Filter:         filter,
		Limit:          qdrant.PtrOf(uint32(scanPageSize)),
		WithPayload:    qdrant.NewWithPayloadInclude(payloadLabel),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant scroll: %w", err)
	}

	labels := make([]string, 0, len(points))
	for _, p := range points {
		if v, ok := p.GetPayload()[payloadLabel]; ok {
			labels = append(labels, v.GetStringValue())
		}
	}

	return labels, nil
}

// Ping checks the gRPC health endpoint.
func (s *QdrantStore) Ping(ctx context.Context) error {
	if _, err := s.client.HealthCheck(ctx); err != nil {
		return fmt.Errorf("qdrant health check: %w", err)
	}
	return nil
}

// Close releases the gRPC connection.
func (s *QdrantStore) Close() error {
	return s.client.Close()
}

// Recreate drops and recreates the collection for fingerprints of the given
// dimensionality, with a keyword index on the difficulty payload. Used by
// the dictionary loader, never by the game server.
func (s *QdrantStore) Recreate(ctx context.Context, dims int) error {
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("check collection: %w", err)
	}
	if exists {
		if err := s.client.DeleteCollection(ctx, s.collection); err != nil {
			return fmt.Errorf("delete collection: %w", err)
		}
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dims),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("create collection: %w", err)
	}

	_, err = s.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
		CollectionName: s.collection,
		FieldName:      payloadDifficulty,
		FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
	})
	if err != nil {
		return fmt.Errorf("create difficulty index: %w", err)
	}

	return nil
}

// Insert upserts reference signs with fresh point ids.
func (s *QdrantStore) Insert(ctx context.Context, signs []ReferenceSign) error {
	points := make([]*qdrant.PointStruct, len(signs))
	for i, sign := range signs {
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(uuid.NewString()),
			Vectors: qdrant.NewVectors(toFloat32(sign.Vector)...),
			Payload: qdrant.NewValueMap(map[string]any{
				payloadLabel:      sign.Label,
				payloadDifficulty: sign.Difficulty,
			}),
		}
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert: %w", err)
	}

	return nil
}

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}
