package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type RouterConfig struct {
	CORSAllowedOrigins []string
}

func NewRouter(cfg RouterConfig, similarity *SimilarityHandler, log *zap.Logger) *gin.Engine {
	if log == nil {
		log = zap.NewNop()
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		RequestIDMiddleware(),
		LoggerMiddleware(log),
		MetricsMiddleware(),
		CORSMiddleware(cfg.CORSAllowedOrigins, false),
	)

	router.GET("/", Root)
	router.GET("/ping", Ping)
	router.GET("/openapi.json", OpenAPIDoc)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.POST("/similar-incidents", similarity.FindSimilarIncidents)

	return router
}
