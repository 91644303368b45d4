package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/labsharedao/biomed-gateway/lib"
	"github.com/labsharedao/biomed-gateway/lib/biomed"
)

type gatewayConfig struct {
	LogLevel string `mapstructure:"log_level"`
	Server   struct {
		HttpPort     int      `mapstructure:"http_port"`
		MaxBodyBytes int64    `mapstructure:"max_body_bytes"`
		CorsOrigins  []string `mapstructure:"cors_origins"`
	}
	Model struct {
		BaseUrl         string `mapstructure:"base_url"`
		TimeoutMs       int    `mapstructure:"timeout_ms"`
		HealthTimeoutMs int    `mapstructure:"health_timeout_ms"`
	}
	Batch struct {
		Concurrency int64 `mapstructure:"concurrency"`
	}
}

var config gatewayConfig

func initConfig() {
	err := lib.InitializeConfig("./config/biomed-gateway.yml", map[string]interface{}{
		"log_level": "info",
		"server": map[string]interface{}{
			"http_port":      8080,
			"max_body_bytes": 1 << 20,
			"cors_origins":   []string{"*"},
		},
		"model": map[string]interface{}{
			"base_url":          "http://localhost:8000",
			"timeout_ms":        30000,
			"health_timeout_ms": 3000,
		},
		"batch": map[string]interface{}{
			"concurrency": 8,
		},
	}, &config)
	if err != nil {
		panic(err)
	}
}

func main() {
	initConfig()

	client := biomed.NewClient(biomed.Config{
		BaseURL:       config.Model.BaseUrl,
		Timeout:       time.Duration(config.Model.TimeoutMs) * time.Millisecond,
		HealthTimeout: time.Duration(config.Model.HealthTimeoutMs) * time.Millisecond,
	})
	defer client.Close()

	r := gin.New()
	r.Use(gin.LoggerWithFormatter(lib.JsonLogFormatter), gin.Recovery(), lib.RequestID)
	r.Use(cors.New(cors.Config{
		AllowOrigins: config.Server.CorsOrigins,
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "Authorization", lib.RequestIDHeader},
		MaxAge:       12 * time.Hour,
	}))

	s := server{
		controller: controller{
			client:           client,
			batchConcurrency: config.Batch.Concurrency,
		},
		maxBodyBytes: config.Server.MaxBodyBytes,
	}
	s.RegisterRoutes(r)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", config.Server.HttpPort),
		Handler: r,
	}
	go func() {
		log.Info().Int("port", config.Server.HttpPort).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Send()
		}
	}()

	lib.HandleInterrupt()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
}
