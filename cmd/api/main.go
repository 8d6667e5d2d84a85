package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-dashboard/internal/handler"
	"github.com/noah-isme/academic-dashboard/internal/repository"
	"github.com/noah-isme/academic-dashboard/internal/server"
	"github.com/noah-isme/academic-dashboard/internal/service"
	"github.com/noah-isme/academic-dashboard/pkg/cache"
	"github.com/noah-isme/academic-dashboard/pkg/config"
	"github.com/noah-isme/academic-dashboard/pkg/database"
	"github.com/noah-isme/academic-dashboard/pkg/jobs"
	"github.com/noah-isme/academic-dashboard/pkg/logger"
	"github.com/noah-isme/academic-dashboard/pkg/storage"
)

// @title Academic Dashboard API
// @version 1.0.0
// @description Courses, assignments, grades and course content for students and teachers
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("database connection failed", "error", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		applied, err := database.NewMigrator(db).Up(ctx)
		if err != nil {
			logr.Sugar().Fatalw("migrations failed", "error", err)
		}
		logr.Sugar().Infow("migrations applied", "versions", applied)
	}

	checks := map[string]handler.Pinger{"database": db.PingContext}

	metricsSvc := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, student collections served uncached", "error", err)
		} else {
			redisRepo := repository.NewCacheRepository(redisClient, logr)
			defer redisRepo.Close()
			cacheRepo = redisRepo
			checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TTL, logr, cfg.Cache.Enabled)

	files, err := storage.NewLocalStorage(cfg.Content.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("content storage unavailable", "dir", cfg.Content.StorageDir, "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Content.SignedURLSecret, cfg.Content.SignedURLTTL)

	users := repository.NewUserRepository(db)
	courses := repository.NewCourseRepository(db)
	enrollments := repository.NewEnrollmentRepository(db)
	assignments := repository.NewAssignmentRepository(db)
	grades := repository.NewGradeRepository(db)
	contents := repository.NewContentRepository(db)
	chats := repository.NewChatRepository(db)

	validate := validator.New()

	authSvc := service.NewAuthService(users, validate, logr, service.AuthConfig{
		Secret:             cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	courseSvc := service.NewCourseService(courses, users, enrollments, cacheSvc, users, logr)
	assignmentSvc := service.NewAssignmentService(assignments, courses, cacheSvc, users, logr)
	gradeSvc := service.NewGradeService(grades, assignments, courses, enrollments, cacheSvc, users, logr)
	studentSvc := service.NewStudentService(enrollments, assignments, grades, cacheSvc, logr)
	exportSvc := service.NewExportService(gradeSvc, logr)
	chatbotSvc := service.NewChatbotService(contents, chats, validate, metricsSvc, service.ChatbotConfig{
		HistoryLimit: cfg.Chatbot.HistoryLimit,
		SnippetChars: cfg.Chatbot.SnippetChars,
	}, logr)

	worker := service.NewContentWorker(contents, files, metricsSvc, logr)
	contentQueue := jobs.NewQueue("content", worker.Handle, jobs.QueueConfig{
		Workers:    cfg.Content.Workers,
		MaxRetries: cfg.Content.WorkerRetries,
		RetryDelay: 2 * time.Second,
		Logger:     logr,
		OnGiveUp:   worker.GiveUp,
	})
	contentQueue.Start(ctx)
	defer contentQueue.Stop()

	contentSvc := service.NewContentService(contents, courses, enrollments, files, signer, contentQueue, users, service.ContentConfig{
		APIPrefix:         cfg.APIPrefix,
		MaxFileSizeBytes:  cfg.Content.MaxFileSizeBytes,
		AllowedExtensions: cfg.Content.AllowedExtensions,
	}, logr)

	router := server.NewRouter(server.Handlers{
		Auth:        handler.NewAuthHandler(authSvc),
		Student:     handler.NewStudentHandler(studentSvc, gradeSvc),
		Chatbot:     handler.NewChatbotHandler(chatbotSvc),
		Teacher:     handler.NewTeacherHandler(courseSvc, contentSvc, exportSvc, cfg.Content.MaxFileSizeBytes),
		Content:     handler.NewContentHandler(contentSvc),
		Courses:     handler.NewWriteHandler(courseSvc),
		Assignments: handler.NewWriteHandler(assignmentSvc),
		Grades:      handler.NewWriteHandler(gradeSvc),
		Ops:         handler.NewMetricsHandler(metricsSvc, checks),
	}, server.Options{
		APIPrefix:      cfg.APIPrefix,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		EnableDocs:     cfg.Env != config.EnvProduction,
		Logger:         logr,
		Tokens:         authSvc,
		Audit:          users,
		Metrics:        metricsSvc,
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down", zap.String("addr", addr))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
