// Qdrant 컬렉션 조회 클라이언트 (gRPC)
//
// 환경변수:
//   - QDRANT_HOST (default: localhost)
//   - QDRANT_PORT (default: 6334)
//   - QDRANT_COLLECTION
//   - QDRANT_API_KEY (optional)
//   - QDRANT_USE_TLS (default: false)

package client

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"strconv"
	"sync"

	"github.com/kube-rca/similarity/internal/config"
	"github.com/kube-rca/similarity/internal/model"
	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
)

type QdrantClient struct {
	cfg config.QdrantConfig

	mu     sync.Mutex
	conn   *grpc.ClientConn
	points pb.PointsClient
}

func NewQdrantClient(cfg config.QdrantConfig) *QdrantClient {
	return &QdrantClient{cfg: cfg}
}

func (c *QdrantClient) pointsClient() (pb.PointsClient, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.points != nil {
		return c.points, nil
	}
	if c.cfg.Collection == "" {
		return nil, fmt.Errorf("%w: missing QDRANT_COLLECTION", ErrNotConfigured)
	}

	creds := insecure.NewCredentials()
	if c.cfg.UseTLS {
		creds = credentials.NewTLS(&tls.Config{MinVersion: tls.VersionTLS12})
	}
	addr := net.JoinHostPort(c.cfg.Host, strconv.Itoa(c.cfg.Port))
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("qdrant connect: %w", err)
	}
	c.conn = conn
	c.points = pb.NewPointsClient(conn)
	return c.points, nil
}

func (c *QdrantClient) QuerySimilar(ctx context.Context, vector []float32, topK int) ([]model.Match, error) {
	points, err := c.pointsClient()
	if err != nil {
		return nil, err
	}
	if c.cfg.APIKey != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, "api-key", c.cfg.APIKey)
	}

	resp, err := points.Search(ctx, qdrantSearchRequest(c.cfg.Collection, vector, topK))
	if err != nil {
		return nil, fmt.Errorf("qdrant search: %w", err)
	}
	return qdrantMatches(resp.GetResult()), nil
}

func (c *QdrantClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	c.points = nil
	return err
}

func qdrantSearchRequest(collection string, vector []float32, topK int) *pb.SearchPoints {
	return &pb.SearchPoints{
		CollectionName: collection,
		Vector:         vector,
		Limit:          uint64(topK),
		WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
	}
}

func qdrantMatches(points []*pb.ScoredPoint) []model.Match {
	matches := make([]model.Match, 0, len(points))
	for _, pt := range points {
		if pt == nil {
			continue
		}
		meta := make(map[string]any, len(pt.GetPayload()))
		for k, v := range pt.GetPayload() {
			meta[k] = qdrantValue(v)
		}
		matches = append(matches, model.Match{
			ID:       qdrantPointID(pt.GetId()),
			Score:    pt.GetScore(),
			Metadata: meta,
		})
	}
	return matches
}

func qdrantPointID(id *pb.PointId) string {
	if id == nil {
		return ""
	}
	if u := id.GetUuid(); u != "" {
		return u
	}
	return strconv.FormatUint(id.GetNum(), 10)
}

func qdrantValue(v *pb.Value) any {
	switch kind := v.GetKind().(type) {
	case *pb.Value_StringValue:
		return kind.StringValue
	case *pb.Value_IntegerValue:
		return kind.IntegerValue
	case *pb.Value_DoubleValue:
		return kind.DoubleValue
	case *pb.Value_BoolValue:
		return kind.BoolValue
	case *pb.Value_ListValue:
		out := make([]any, 0, len(kind.ListValue.GetValues()))
		for _, item := range kind.ListValue.GetValues() {
			out = append(out, qdrantValue(item))
		}
		return out
	case *pb.Value_StructValue:
		out := make(map[string]any, len(kind.StructValue.GetFields()))
		for k, item := range kind.StructValue.GetFields() {
			out[k] = qdrantValue(item)
		}
		return out
	default:
		return nil
	}
}
