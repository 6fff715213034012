package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	qdrant "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"aidetect/pkg/models"
)

// SubmissionsCollection holds one point per recorded prediction.
const SubmissionsCollection = "aidetect_submissions"

// Service handles interactions with the Qdrant vector database
type Service struct {
	conn         *grpc.ClientConn
	client       qdrant.CollectionsClient
	pointsClient qdrant.PointsClient
	collection   string
	vectorSize   uint64
}

// NewService connects to Qdrant. vectorSize is the feature schema length.
func NewService(host string, port int, vectorSize int) (*Service, error) {
	conn, err := grpc.Dial(fmt.Sprintf("%s:%d", host, port), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Qdrant: %w", err)
	}

	return &Service{
		conn:         conn,
		client:       qdrant.NewCollectionsClient(conn),
		pointsClient: qdrant.NewPointsClient(conn),
		collection:   SubmissionsCollection,
		vectorSize:   uint64(vectorSize),
	}, nil
}

// Close releases the connection.
func (s *Service) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

// InitializeCollection creates the submissions collection if it doesn't exist
func (s *Service) InitializeCollection(ctx context.Context) error {
	_, err := s.client.Create(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: &qdrant.VectorsConfig{
			Config: &qdrant.VectorsConfig_Params{
				Params: &qdrant.VectorParams{
					Size: s.vectorSize,
					// All-zero vectors are valid submissions, so cosine is out.
					Distance: qdrant.Distance_Euclid,
				},
			},
		},
	})
	if err != nil && !strings.Contains(err.Error(), "already exists") {
		return fmt.Errorf("failed to create collection %s: %w", s.collection, err)
	}
	return nil
}

// GenerateHash identifies the set of selected labels, so identical answers
// hash the same regardless of the prediction they got.
func (s *Service) GenerateHash(labels []string) string {
	sum := sha256.Sum256([]byte(strings.Join(labels, "\x00")))
	return hex.EncodeToString(sum[:])
}

// Record upserts a submission. A submission whose labels were already
// recorded replaces the earlier point instead of adding a new one.
func (s *Service) Record(ctx context.Context, sub models.Submission) error {
	if uint64(len(sub.Vector)) != s.vectorSize {
		return fmt.Errorf("vector has %d dimensions, collection expects %d", len(sub.Vector), s.vectorSize)
	}

	hash := s.GenerateHash(sub.Labels)
	existing, err := s.findByHash(ctx, hash)
	if err != nil {
		return err
	}
	if existing != "" {
		sub.ID = existing
	}

	payload := map[string]interface{}{
		// Metadata fields
		"_hash":        hash,
		"_recorded_at": sub.RecordedAt.Format(time.RFC3339),

		"prediction": sub.Prediction,
		"labels":     sub.Labels,
		"age":        sub.Form.Age,
		"gender":     sub.Form.Gender,
	}

	wait := true
	_, err = s.pointsClient.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Wait:           &wait,
		Points: []*qdrant.PointStruct{
			{
				Id: uuidPoint(sub.ID),
				Vectors: &qdrant.Vectors{
					VectorsOptions: &qdrant.Vectors_Vector{
						Vector: &qdrant.Vector{
							Data: sub.Vector,
						},
					},
				},
				Payload: toPayload(payload),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to upsert submission %s: %w", sub.ID, err)
	}
	return nil
}

// findByHash returns the id of the point recorded with hash, or "".
func (s *Service) findByHash(ctx context.Context, hash string) (string, error) {
	points, err := s.ScrollPoints(ctx, &qdrant.Filter{
		Must: []*qdrant.Condition{
			{
				ConditionOneOf: &qdrant.Condition_Field{
					Field: &qdrant.FieldCondition{
						Key:   "_hash",
						Match: &qdrant.Match{
							MatchValue: &qdrant.Match_Keyword{Keyword: hash},
						},
					},
				},
			},
		},
	})
	if err != nil {
		return "", err
	}
	if len(points) == 0 {
		return "", nil
	}
	return points[0].GetId().GetUuid(), nil
}

// ScrollPoints retrieves every point matching filter. A nil filter matches all.
func (s *Service) ScrollPoints(ctx context.Context, filter *qdrant.Filter) ([]*qdrant.RetrievedPoint, error) {
	var allPoints []*qdrant.RetrievedPoint
	var offset *qdrant.PointId
	var limit uint32 = 100

	for {
		resp, err := s.pointsClient.Scroll(ctx, &qdrant.ScrollPoints{
			CollectionName: s.collection,
			Filter:         filter,
			Limit:          &limit,
			Offset:         offset,
			WithPayload: &qdrant.WithPayloadSelector{
				SelectorOptions: &qdrant.WithPayloadSelector_Enable{
					Enable: true,
				},
			},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scroll points: %w", err)
		}

		allPoints = append(allPoints, resp.GetResult()...)
		if len(resp.GetResult()) < int(limit) || resp.GetNextPageOffset() == nil {
			break
		}

		offset = resp.GetNextPageOffset()
	}

	return allPoints, nil
}

// List returns every recorded submission.
func (s *Service) List(ctx context.Context) ([]models.HistoryMatch, error) {
	points, err := s.ScrollPoints(ctx, nil)
	if err != nil {
		return nil, err
	}

	matches := make([]models.HistoryMatch, 0, len(points))
	for _, point := range points {
		m := fromPayload(point.GetPayload())
		m.ID = point.GetId().GetUuid()
		matches = append(matches, m)
	}
	return matches, nil
}

// Similar returns the recorded submissions nearest to vector.
func (s *Service) Similar(ctx context.Context, vector []float32, limit uint64) ([]models.HistoryMatch, error) {
	resp, err := s.pointsClient.Search(ctx, &qdrant.SearchPoints{
		CollectionName: s.collection,
		Vector:         vector,
		Limit:          limit,
		WithPayload: &qdrant.WithPayloadSelector{
			SelectorOptions: &qdrant.WithPayloadSelector_Enable{
				Enable: true,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search submissions: %w", err)
	}

	matches := make([]models.HistoryMatch, 0, len(resp.GetResult()))
	for _, point := range resp.GetResult() {
		m := fromPayload(point.GetPayload())
		m.ID = point.GetId().GetUuid()
		m.Score = point.GetScore()
		matches = append(matches, m)
	}
	return matches, nil
}

// GetPoint retrieves a recorded submission, or nil if there is none.
func (s *Service) GetPoint(ctx context.Context, id string) (*models.HistoryMatch, error) {
	resp, err := s.pointsClient.Get(ctx, &qdrant.GetPoints{
		CollectionName: s.collection,
		Ids:            []*qdrant.PointId{uuidPoint(id)},
		WithPayload: &qdrant.WithPayloadSelector{
			SelectorOptions: &qdrant.WithPayloadSelector_Enable{
				Enable: true,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get point: %w", err)
	}

	if len(resp.GetResult()) == 0 {
		return nil, nil
	}

	m := fromPayload(resp.GetResult()[0].GetPayload())
	m.ID = id
	return &m, nil
}

// DeletePoint removes a recorded submission.
func (s *Service) DeletePoint(ctx context.Context, id string) error {
	_, err := s.pointsClient.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.collection,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Points{
				Points: &qdrant.PointsIdsList{
					Ids: []*qdrant.PointId{uuidPoint(id)},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete point %s: %w", id, err)
	}
	return nil
}

// Count returns the number of recorded submissions.
func (s *Service) Count(ctx context.Context) (uint64, error) {
	exact := true
	resp, err := s.pointsClient.Count(ctx, &qdrant.CountPoints{
		CollectionName: s.collection,
		Exact:          &exact,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count points: %w", err)
	}
	return resp.GetResult().GetCount(), nil
}

func uuidPoint(id string) *qdrant.PointId {
	return &qdrant.PointId{
		PointIdOptions: &qdrant.PointId_Uuid{
			Uuid: id,
		},
	}
}

// toPayload converts a payload map to Qdrant values
func toPayload(payload map[string]interface{}) map[string]*qdrant.Value {
	out := make(map[string]*qdrant.Value, len(payload))
	for key, value := range payload {
		if v := toValue(value); v != nil {
			out[key] = v
		}
	}
	return out
}

func toValue(value interface{}) *qdrant.Value {
	switch v := value.(type) {
	case string:
		return &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: v}}
	case bool:
		return &qdrant.Value{Kind: &qdrant.Value_BoolValue{BoolValue: v}}
	case float64:
		return &qdrant.Value{Kind: &qdrant.Value_DoubleValue{DoubleValue: v}}
	case int:
		return &qdrant.Value{Kind: &qdrant.Value_IntegerValue{IntegerValue: int64(v)}}
	case int64:
		return &qdrant.Value{Kind: &qdrant.Value_IntegerValue{IntegerValue: v}}
	case []string:
		list := make([]*qdrant.Value, 0, len(v))
		for _, s := range v {
			list = append(list, toValue(s))
		}
		return &qdrant.Value{Kind: &qdrant.Value_ListValue{ListValue: &qdrant.ListValue{Values: list}}}
	case nil:
		// Skip nil values
		return nil
	default:
		// For other types, convert to string
		return &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: fmt.Sprintf("%v", v)}}
	}
}

func fromPayload(payload map[string]*qdrant.Value) models.HistoryMatch {
	m := models.HistoryMatch{
		Prediction: payload["prediction"].GetStringValue(),
		RecordedAt: payload["_recorded_at"].GetStringValue(),
	}
	for _, v := range payload["labels"].GetListValue().GetValues() {
		m.Labels = append(m.Labels, v.GetStringValue())
	}
	return m
}
