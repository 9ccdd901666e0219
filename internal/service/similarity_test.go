package service

import (
	"context"
	"errors"
	"testing"

	"github.com/kube-rca/similarity/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmbeddingClient struct {
	vector []float32
	err    error
	calls  int
	text   string
}

func (f *fakeEmbeddingClient) EmbedText(ctx context.Context, text string) ([]float32, string, error) {
	f.calls++
	f.text = text
	if f.err != nil {
		return nil, "text-embedding-004", f.err
	}
	return f.vector, "text-embedding-004", nil
}

type fakeVectorClient struct {
	matches []model.Match
	err     error
	calls   int
	topK    int
	vector  []float32
}

func (f *fakeVectorClient) QuerySimilar(ctx context.Context, vector []float32, topK int) ([]model.Match, error) {
	f.calls++
	f.topK = topK
	f.vector = vector
	if f.err != nil {
		return nil, f.err
	}
	return f.matches, nil
}

func incidentMatch(id string, score float32) model.Match {
	return model.Match{
		ID:       "vec-" + id,
		Score:    score,
		Metadata: map[string]any{"mongodb_id": id, "text": "incident " + id},
	}
}

func ids(matches []model.SimilarIncident) []string {
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if m.MongoDBID == nil {
			out = append(out, "<nil>")
			continue
		}
		out = append(out, *m.MongoDBID)
	}
	return out
}

func TestFindSimilarIncidentsKeepsIndexOrder(t *testing.T) {
	embedder := &fakeEmbeddingClient{vector: make([]float32, 768)}
	index := &fakeVectorClient{matches: []model.Match{
		incidentMatch("i1", 0.95),
		incidentMatch("i2", 0.88),
		incidentMatch("i3", 0.92),
	}}
	svc := NewSimilarityService(embedder, index, nil)

	res, err := svc.FindSimilarIncidents(context.Background(), "disk full on host A", 3, 0.9)
	require.NoError(t, err)

	assert.Equal(t, []string{"i1", "i3"}, ids(res.Matches))
	assert.Equal(t, float32(0.95), res.Matches[0].Score)
	assert.Equal(t, float32(0.92), res.Matches[1].Score)
	assert.Equal(t, "incident i3", *res.Matches[1].Text)
	assert.Equal(t, "disk full on host A", embedder.text)
	assert.Equal(t, 3, index.topK)
	assert.Len(t, index.vector, 768)
}

func TestFindSimilarIncidentsEmbeddingFailureSkipsIndex(t *testing.T) {
	embedder := &fakeEmbeddingClient{err: errors.New("API key not valid")}
	index := &fakeVectorClient{}
	svc := NewSimilarityService(embedder, index, nil)

	res, err := svc.FindSimilarIncidents(context.Background(), "disk full", 5, 0.8)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.Contains(t, err.Error(), "API key not valid")
	assert.Equal(t, 0, index.calls)
}

func TestFindSimilarIncidentsIndexFailure(t *testing.T) {
	upstream := errors.New("pinecone unavailable")
	svc := NewSimilarityService(&fakeEmbeddingClient{vector: []float32{0.1}}, &fakeVectorClient{err: upstream}, nil)

	res, err := svc.FindSimilarIncidents(context.Background(), "disk full", 5, 0.8)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, upstream)
}

func TestFindSimilarIncidentsEmptyResult(t *testing.T) {
	svc := NewSimilarityService(&fakeEmbeddingClient{vector: []float32{0.1}}, &fakeVectorClient{}, nil)

	res, err := svc.FindSimilarIncidents(context.Background(), "disk full", 5, 0.8)
	require.NoError(t, err)
	require.NotNil(t, res.Matches)
	assert.Empty(t, res.Matches)
}

func TestFindSimilarIncidentsRejectsBlankText(t *testing.T) {
	embedder := &fakeEmbeddingClient{}
	svc := NewSimilarityService(embedder, &fakeVectorClient{}, nil)

	_, err := svc.FindSimilarIncidents(context.Background(), "   ", 5, 0.8)
	assert.ErrorIs(t, err, ErrInvalidRequest)
	assert.Equal(t, 0, embedder.calls)

	_, err = svc.FindSimilarIncidents(context.Background(), "disk", 0, 0.8)
	assert.ErrorIs(t, err, ErrInvalidRequest)
	assert.Equal(t, 0, embedder.calls)
}

func TestFilterMatches(t *testing.T) {
	raw := []model.Match{
		incidentMatch("a", 0.99),
		incidentMatch("b", 0.79),
		incidentMatch("c", 0.80),
		incidentMatch("d", 0.85),
		incidentMatch("e", 0.50),
	}

	tests := []struct {
		name     string
		topK     int
		minScore float64
		want     []string
	}{
		{name: "inclusive-threshold", topK: 5, minScore: 0.8, want: []string{"a", "c", "d"}},
		{name: "nothing-passes", topK: 5, minScore: 0.999, want: []string{}},
		{name: "everything-passes", topK: 5, minScore: -1, want: []string{"a", "b", "c", "d", "e"}},
		{name: "capped-at-top-k", topK: 2, minScore: 0.8, want: []string{"a", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterMatches(raw, tt.topK, tt.minScore)
			assert.Equal(t, tt.want, ids(got))
			assert.LessOrEqual(t, len(got), tt.topK)
			for _, m := range got {
				assert.GreaterOrEqual(t, m.Score, float32(tt.minScore))
			}
		})
	}
}

func TestFilterMatchesMissingMetadata(t *testing.T) {
	raw := []model.Match{
		{Score: 0.9},
		{Score: 0.9, Metadata: map[string]any{"mongodb_id": nil, "text": "only text"}},
		{Score: 0.9, Metadata: map[string]any{"mongodb_id": float64(12)}},
	}

	got := FilterMatches(raw, 5, 0.8)
	require.Len(t, got, 3)

	assert.Nil(t, got[0].MongoDBID)
	assert.Nil(t, got[0].Text)

	assert.Nil(t, got[1].MongoDBID)
	require.NotNil(t, got[1].Text)
	assert.Equal(t, "only text", *got[1].Text)

	require.NotNil(t, got[2].MongoDBID)
	assert.Equal(t, "12", *got[2].MongoDBID)
	assert.Nil(t, got[2].Text)
}

func TestFilterMatchesNumericMetadata(t *testing.T) {
	raw := []model.Match{
		{Score: 0.9, Metadata: map[string]any{"mongodb_id": float64(12345678), "text": 1.5}},
		{Score: 0.9, Metadata: map[string]any{"mongodb_id": int64(42), "text": true}},
	}

	got := FilterMatches(raw, 5, 0.8)
	require.Len(t, got, 2)
	assert.Equal(t, "12345678", *got[0].MongoDBID)
	assert.Equal(t, "1.5", *got[0].Text)
	assert.Equal(t, "42", *got[1].MongoDBID)
	assert.Equal(t, "true", *got[1].Text)
}

func TestCountBelowThreshold(t *testing.T) {
	raw := []model.Match{
		incidentMatch("a", 0.95),
		incidentMatch("b", 0.79),
		incidentMatch("c", 0.80),
		incidentMatch("d", 0.50),
		incidentMatch("e", 0.91),
	}

	assert.Equal(t, 2, CountBelowThreshold(raw, 0.8))
	assert.Equal(t, 0, CountBelowThreshold(raw, -1))
	assert.Equal(t, 0, CountBelowThreshold(nil, 0.8))
}
