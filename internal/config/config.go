package config

import (
	"os"
	"strconv"
	"strings"
)

const (
	BackendPinecone = "pinecone"
	BackendQdrant   = "qdrant"
	BackendPgvector = "pgvector"
)

type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Embedding EmbeddingConfig
	Vector    VectorConfig
	Pinecone  PineconeConfig
	Qdrant    QdrantConfig
	Postgres  PostgresConfig
}

type ServerConfig struct {
	Port               string
	CORSAllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

type EmbeddingConfig struct {
	APIKey     string
	Model      string
	Dimensions int
}

type VectorConfig struct {
	Backend string
}

type PineconeConfig struct {
	APIKey    string
	Index     string
	Namespace string
}

type QdrantConfig struct {
	Host       string
	Port       int
	Collection string
	APIKey     string
	UseTLS     bool
}

type PostgresConfig struct {
	DatabaseURL string
	Host        string
	Port        string
	User        string
	Password    string
	Database    string
	SSLMode     string
}

// Load reads configuration from the environment. Credentials are not checked
// here; each client reports missing values on its first call.
func Load() Config {
	return Config{
		Server: ServerConfig{
			Port:               getenv("PORT", "8080"),
			CORSAllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		},
		Log: LogConfig{
			Level:  getenv("LOG_LEVEL", "info"),
			Format: getenv("LOG_FORMAT", "json"),
		},
		Embedding: EmbeddingConfig{
			APIKey:     os.Getenv("GEMINI_API_KEY"),
			Model:      getenv("EMBEDDING_MODEL", "text-embedding-004"),
			Dimensions: getenvInt("EMBEDDING_DIMENSIONS", 0),
		},
		Vector: VectorConfig{
			Backend: strings.ToLower(getenv("VECTOR_BACKEND", BackendPinecone)),
		},
		Pinecone: PineconeConfig{
			APIKey:    os.Getenv("PINECONE_API_KEY"),
			Index:     os.Getenv("PINECONE_INDEX"),
			Namespace: os.Getenv("PINECONE_NAMESPACE"),
		},
		Qdrant: QdrantConfig{
			Host:       getenv("QDRANT_HOST", "localhost"),
			Port:       getenvInt("QDRANT_PORT", 6334),
			Collection: os.Getenv("QDRANT_COLLECTION"),
			APIKey:     os.Getenv("QDRANT_API_KEY"),
			UseTLS:     getenvBool("QDRANT_USE_TLS", false),
		},
		Postgres: PostgresConfig{
			DatabaseURL: os.Getenv("DATABASE_URL"),
			Host:        getenv("PGHOST", "localhost"),
			Port:        getenv("PGPORT", "5432"),
			User:        os.Getenv("PGUSER"),
			Password:    os.Getenv("PGPASSWORD"),
			Database:    os.Getenv("PGDATABASE"),
			SSLMode:     getenv("PGSSLMODE", "disable"),
		},
	}
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return n
}

func getenvBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return b
}

func splitList(val string) []string {
	if strings.TrimSpace(val) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
