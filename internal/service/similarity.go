package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kube-rca/similarity/internal/metrics"
	"github.com/kube-rca/similarity/internal/model"
	"go.uber.org/zap"
)

// ErrInvalidRequest marks input problems that are the caller's fault.
var ErrInvalidRequest = errors.New("invalid request")

type EmbeddingClient interface {
	EmbedText(ctx context.Context, text string) ([]float32, string, error)
}

type VectorQueryClient interface {
	QuerySimilar(ctx context.Context, vector []float32, topK int) ([]model.Match, error)
}

type SimilarityService struct {
	embedder EmbeddingClient
	index    VectorQueryClient
	log      *zap.Logger
}

func NewSimilarityService(embedder EmbeddingClient, index VectorQueryClient, log *zap.Logger) *SimilarityService {
	if log == nil {
		log = zap.NewNop()
	}
	return &SimilarityService{embedder: embedder, index: index, log: log}
}

// FindSimilarIncidents embeds text, queries the index for topK neighbours and
// keeps those scoring at least minScore, in index order.
func (s *SimilarityService) FindSimilarIncidents(ctx context.Context, text string, topK int, minScore float64) (*model.SimilarityResponse, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: text is required", ErrInvalidRequest)
	}
	if topK <= 0 {
		return nil, fmt.Errorf("%w: top_k must be positive", ErrInvalidRequest)
	}

	start := time.Now()
	vector, modelName, err := s.embedder.EmbedText(ctx, text)
	metrics.ObserveUpstream(metrics.StageEmbedding, start, err)
	if err != nil {
		return nil, fmt.Errorf("embed text: %w", err)
	}

	start = time.Now()
	raw, err := s.index.QuerySimilar(ctx, vector, topK)
	metrics.ObserveUpstream(metrics.StageVectorQuery, start, err)
	if err != nil {
		return nil, fmt.Errorf("query similar: %w", err)
	}

	matches := FilterMatches(raw, topK, minScore)
	metrics.MatchesReturned.Add(float64(len(matches)))
	if dropped := CountBelowThreshold(raw, minScore); dropped > 0 {
		metrics.MatchesDropped.Add(float64(dropped))
	}

	s.log.Debug("similar incidents resolved",
		zap.String("model", modelName),
		zap.Int("dimensions", len(vector)),
		zap.Int("top_k", topK),
		zap.Float64("min_score", minScore),
		zap.Int("raw_matches", len(raw)),
		zap.Int("matches", len(matches)),
	)

	return &model.SimilarityResponse{Matches: matches}, nil
}

// FilterMatches keeps matches with score >= minScore in their original order
// and reshapes them. Scores are compared at float32 precision, the precision
// the index reports them in. At most topK results are kept.
func FilterMatches(raw []model.Match, topK int, minScore float64) []model.SimilarIncident {
	threshold := float32(minScore)
	out := make([]model.SimilarIncident, 0, len(raw))
	for _, m := range raw {
		if len(out) == topK {
			break
		}
		if m.Score < threshold {
			continue
		}
		out = append(out, model.SimilarIncident{
			MongoDBID: metadataString(m.Metadata, model.MetadataIncidentID),
			Score:     m.Score,
			Text:      metadataString(m.Metadata, model.MetadataText),
		})
	}
	return out
}

// CountBelowThreshold reports how many raw matches score under minScore.
func CountBelowThreshold(raw []model.Match, minScore float64) int {
	threshold := float32(minScore)
	n := 0
	for _, m := range raw {
		if m.Score < threshold {
			n++
		}
	}
	return n
}

func metadataString(meta map[string]any, key string) *string {
	v, ok := meta[key]
	if !ok || v == nil {
		return nil
	}
	var s string
	switch val := v.(type) {
	case string:
		s = val
	case float64:
		// structpb numbers arrive as float64; keep integer ids out of exponent form
		s = strconv.FormatFloat(val, 'f', -1, 64)
	default:
		s = fmt.Sprint(val)
	}
	return &s
}
