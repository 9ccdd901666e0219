package model

// Match - 벡터 인덱스가 반환한 이웃 한 건 (인덱스 순서 그대로 사용)
type Match struct {
	ID       string
	Score    float32
	Metadata map[string]any
}

// 메타데이터 키 (인덱싱 파이프라인과 맞춰야 함)
const (
	MetadataIncidentID = "mongodb_id"
	MetadataText       = "text"
)
