package db

import (
	"context"
	"fmt"

	"github.com/kube-rca/similarity/internal/model"
	"github.com/pgvector/pgvector-go"
)

// embeddings 테이블은 인시던트 파이프라인이 채운다. 여기서는 읽기만 한다.
// 다른 모델로 만든 벡터는 차원/공간이 달라 model 컬럼으로 거른다 ($3 = '' 이면 전체).
func embeddingSimilarQuery() string {
	return `
		SELECT id, incident_id, incident_summary, model, 1 - (embedding <=> $1) AS score
		FROM embeddings
		WHERE ($3::text = '' OR model = $3::text)
		ORDER BY embedding <=> $1
		LIMIT $2
	`
}

// QuerySimilar returns the topK nearest rows by cosine distance, closest first.
func (db *Postgres) QuerySimilar(ctx context.Context, vector []float32, topK int) ([]model.Match, error) {
	rows, err := db.Pool.Query(ctx, embeddingSimilarQuery(), pgvector.NewVector(vector), topK, db.Model)
	if err != nil {
		return nil, fmt.Errorf("pgvector query: %w", err)
	}
	defer rows.Close()

	matches := []model.Match{}
	for rows.Next() {
		var (
			id         int64
			incidentID string
			summary    string
			modelName  string
			score      float64
		)
		if err := rows.Scan(&id, &incidentID, &summary, &modelName, &score); err != nil {
			return nil, fmt.Errorf("pgvector scan: %w", err)
		}
		matches = append(matches, embeddingRowMatch(id, incidentID, summary, modelName, score))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgvector rows: %w", err)
	}
	return matches, nil
}

func embeddingRowMatch(id int64, incidentID, summary, modelName string, score float64) model.Match {
	return model.Match{
		ID:    fmt.Sprintf("%d", id),
		Score: float32(score),
		Metadata: map[string]any{
			model.MetadataIncidentID: incidentID,
			model.MetadataText:       summary,
			"model":                  modelName,
		},
	}
}
