package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/checkin_backend/config"
	"github.com/mmdatafocus/checkin_backend/handlers"
	"github.com/mmdatafocus/checkin_backend/middlewares"
	"github.com/mmdatafocus/checkin_backend/models"
)

const defaultPort = "8080"

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func newRouter(service *models.CheckinService) *gin.Engine {
	r := gin.Default()

	corsConfig := cors.DefaultConfig()
	if allowedOrigins := os.Getenv("ALLOWED_ORIGINS"); allowedOrigins != "" {
		corsConfig.AllowOrigins = splitAndTrim(allowedOrigins)
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "PUT", "DELETE", "OPTIONS")
	corsConfig.AddAllowHeaders("token", "Origin", "Content-Type", "Authorization")
	corsConfig.AddExposeHeaders("Content-Length", "Content-Disposition")
	corsConfig.AllowCredentials = true
	r.Use(cors.New(corsConfig))

	r.Use(middlewares.CorrelationMiddleware())
	r.Use(middlewares.AuthMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	userHandler := handlers.NewUserHandler()
	checkinHandler := handlers.NewCheckinHandler(service)
	adminHandler := handlers.NewAdminHandler(service)

	api := r.Group("/api")
	{
		api.POST("/users/register", userHandler.Register)
		api.POST("/users/login", userHandler.Login)

		auth := api.Group("", middlewares.RequireAuth())
		{
			auth.POST("/checkins", checkinHandler.Create)
			auth.GET("/checkins", checkinHandler.List)
			auth.GET("/checkins/page", checkinHandler.Page)
			auth.GET("/checkins/today", checkinHandler.Today)
			auth.GET("/checkins/streak", checkinHandler.Streak)
			auth.POST("/checkins/reissue", checkinHandler.Reissue)
			auth.GET("/checkins/stats", checkinHandler.Stats)
			auth.GET("/checkins/stats/monthly", checkinHandler.MonthlyStats)
		}

		admin := api.Group("/admin", middlewares.RequireAuth(), middlewares.RequireAdmin())
		{
			admin.GET("/users", userHandler.List)
			admin.GET("/unchecked", adminHandler.Unchecked)
			admin.POST("/remind", adminHandler.Remind)
			admin.GET("/export/monthly", adminHandler.ExportMonthly)
		}
	}

	return r
}

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}

	service := models.NewCheckinService(config.LoadCheckinRules())
	r := newRouter(service)

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	// Shutdown coordination.
	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	serverErrCh := make(chan error, 1)
	go func() {
		log.Printf("listening on :%s", port)
		// ListenAndServe returns http.ErrServerClosed on graceful shutdown.
		serverErrCh <- srv.ListenAndServe()
	}()

	// Connect dependencies AFTER the listener is up (Cloud Run wants the
	// container accepting connections quickly).
	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()
	config.ConnectMail()
	models.MigrateTable()

	select {
	case err := <-serverErrCh:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	case <-sigCtx.Done():
		log.Printf("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("graceful shutdown failed: %v", err)
		}
	}
}
