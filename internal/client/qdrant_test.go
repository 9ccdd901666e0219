package client

import (
	"context"
	"errors"
	"testing"

	"github.com/kube-rca/similarity/internal/config"
	pb "github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQdrantClientMissingCollection(t *testing.T) {
	c := NewQdrantClient(config.QdrantConfig{Host: "localhost", Port: 6334})
	_, err := c.QuerySimilar(context.Background(), []float32{0.1}, 3)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotConfigured))
	assert.NoError(t, c.Close())
}

func TestQdrantMatches(t *testing.T) {
	points := []*pb.ScoredPoint{
		{
			Id:    &pb.PointId{PointIdOptions: &pb.PointId_Uuid{Uuid: "0b7c"}},
			Score: 0.91,
			Payload: map[string]*pb.Value{
				"mongodb_id": {Kind: &pb.Value_StringValue{StringValue: "i1"}},
				"text":       {Kind: &pb.Value_StringValue{StringValue: "disk full"}},
				"count":      {Kind: &pb.Value_IntegerValue{IntegerValue: 3}},
				"gone":       {Kind: &pb.Value_NullValue{}},
			},
		},
		nil,
		{
			Id:    &pb.PointId{PointIdOptions: &pb.PointId_Num{Num: 42}},
			Score: 0.85,
		},
	}

	matches := qdrantMatches(points)
	require.Len(t, matches, 2)

	assert.Equal(t, "0b7c", matches[0].ID)
	assert.Equal(t, float32(0.91), matches[0].Score)
	assert.Equal(t, "i1", matches[0].Metadata["mongodb_id"])
	assert.Equal(t, int64(3), matches[0].Metadata["count"])
	assert.Nil(t, matches[0].Metadata["gone"])

	assert.Equal(t, "42", matches[1].ID)
	assert.Empty(t, matches[1].Metadata)
}

func TestQdrantSearchRequest(t *testing.T) {
	tests := []struct {
		name string
		topK int
		want uint64
	}{
		{name: "default-k", topK: 5, want: 5},
		{name: "single", topK: 1, want: 1},
		{name: "large", topK: 10000, want: 10000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vec := []float32{0.4, 0.5}
			req := qdrantSearchRequest("incidents", vec, tt.topK)
			assert.Equal(t, "incidents", req.GetCollectionName())
			assert.Equal(t, tt.want, req.GetLimit())
			assert.Equal(t, vec, req.GetVector())
			assert.True(t, req.GetWithPayload().GetEnable())
		})
	}
}
