// Pinecone 인덱스 조회 클라이언트
//
// 환경변수:
//   - PINECONE_API_KEY
//   - PINECONE_INDEX: 인덱스 이름 (호스트는 첫 조회 시 DescribeIndex로 확인)
//   - PINECONE_NAMESPACE (optional)

package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/kube-rca/similarity/internal/config"
	"github.com/kube-rca/similarity/internal/model"
	"github.com/pinecone-io/go-pinecone/v3/pinecone"
)

type PineconeClient struct {
	cfg config.PineconeConfig

	mu   sync.Mutex
	conn *pinecone.IndexConnection
}

func NewPineconeClient(cfg config.PineconeConfig) *PineconeClient {
	return &PineconeClient{cfg: cfg}
}

func (c *PineconeClient) indexConn(ctx context.Context) (*pinecone.IndexConnection, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		return c.conn, nil
	}
	if c.cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: missing PINECONE_API_KEY", ErrNotConfigured)
	}
	if c.cfg.Index == "" {
		return nil, fmt.Errorf("%w: missing PINECONE_INDEX", ErrNotConfigured)
	}

	pc, err := pinecone.NewClient(pinecone.NewClientParams{ApiKey: c.cfg.APIKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create pinecone client: %w", err)
	}
	idx, err := pc.DescribeIndex(ctx, c.cfg.Index)
	if err != nil {
		return nil, fmt.Errorf("failed to describe pinecone index %q: %w", c.cfg.Index, err)
	}
	conn, err := pc.Index(pinecone.NewIndexConnParams{Host: idx.Host, Namespace: c.cfg.Namespace})
	if err != nil {
		return nil, fmt.Errorf("failed to connect pinecone index %q: %w", c.cfg.Index, err)
	}
	c.conn = conn
	return conn, nil
}

// QuerySimilar asks the index for the topK nearest neighbours of vector,
// metadata included, in the order Pinecone returns them.
func (c *PineconeClient) QuerySimilar(ctx context.Context, vector []float32, topK int) ([]model.Match, error) {
	conn, err := c.indexConn(ctx)
	if err != nil {
		return nil, err
	}

	res, err := conn.QueryByVectorValues(ctx, pineconeQueryRequest(vector, topK))
	if err != nil {
		return nil, fmt.Errorf("pinecone query: %w", err)
	}
	return pineconeMatches(res), nil
}

func (c *PineconeClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

// Metadata is always requested; incident id and text live there.
func pineconeQueryRequest(vector []float32, topK int) *pinecone.QueryByVectorValuesRequest {
	return &pinecone.QueryByVectorValuesRequest{
		Vector:          vector,
		TopK:            uint32(topK),
		IncludeMetadata: true,
	}
}

func pineconeMatches(res *pinecone.QueryVectorsResponse) []model.Match {
	if res == nil {
		return []model.Match{}
	}
	matches := make([]model.Match, 0, len(res.Matches))
	for _, sv := range res.Matches {
		if sv == nil {
			continue
		}
		m := model.Match{Score: sv.Score, Metadata: map[string]any{}}
		if sv.Vector != nil {
			m.ID = sv.Vector.Id
			if sv.Vector.Metadata != nil {
				m.Metadata = sv.Vector.Metadata.AsMap()
			}
		}
		matches = append(matches, m)
	}
	return matches
}
