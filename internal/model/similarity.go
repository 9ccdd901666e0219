package model

const (
	DefaultTopK     = 5
	DefaultMinScore = 0.8
)

// SimilarityRequest - POST /similar-incidents 요청 본문
type SimilarityRequest struct {
	Text     string   `json:"text" binding:"required"`
	TopK     *int     `json:"top_k,omitempty" binding:"omitempty,gt=0,lte=10000" example:"5"`
	MinScore *float64 `json:"min_score,omitempty" binding:"omitempty,gte=-1,lte=1" example:"0.8"`
}

// Resolved returns top_k and min_score with defaults applied.
func (r SimilarityRequest) Resolved() (int, float64) {
	topK := DefaultTopK
	if r.TopK != nil {
		topK = *r.TopK
	}
	minScore := DefaultMinScore
	if r.MinScore != nil {
		minScore = *r.MinScore
	}
	return topK, minScore
}

// SimilarIncident - 응답에 포함되는 유사 장애 한 건
type SimilarIncident struct {
	MongoDBID *string `json:"mongodb_id"`
	Score     float32 `json:"score"`
	Text      *string `json:"text"`
}

type SimilarityResponse struct {
	Matches []SimilarIncident `json:"matches"`
}
