package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	intconfig "github.com/mustafa2080/tourism-API/internal/config"
	intdb "github.com/mustafa2080/tourism-API/internal/db"
	router "github.com/mustafa2080/tourism-API/internal/http"
	"github.com/mustafa2080/tourism-API/internal/http/handlers"
	"github.com/mustafa2080/tourism-API/internal/repositories"
	"github.com/mustafa2080/tourism-API/internal/services"
	"github.com/mustafa2080/tourism-API/internal/utils"
	"github.com/mustafa2080/tourism-API/internal/worker"
)

func main() {
	env := intconfig.LoadEnv()
	utils.InitLogger(env.LogLevel, env.LogFormat)
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	} else if env.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	if env.JWTSecret == "" {
		logrus.Fatal("JWT_SECRET is required")
	}

	db, err := intconfig.ConnectDB(env)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}
	defer intconfig.CloseDB()

	if env.AutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := intdb.EnsureSchema(ctx, db)
		cancel()
		if err != nil {
			logrus.WithError(err).Fatal("Failed to ensure schema")
		}
	}

	var queue services.AuditQueue = services.NewChannelAuditQueue(env.AuditQueueSize)
	rdb, err := intconfig.ConnectRedis(env)
	if err != nil {
		logrus.WithError(err).Warn("Redis unavailable, using in-process audit queue")
	}
	if rdb != nil {
		defer rdb.Close()
		queue = services.NewRedisAuditQueue(rdb, env.AuditQueueKey)
	}

	recorder := services.NewAuditRecorder(queue, repositories.AuditRepository{DB: db})
	notifier := services.EmailService{Env: env}
	tokens := services.TokenService{
		Secret:     []byte(env.JWTSecret),
		AccessTTL:  env.JWTExpiresIn,
		RefreshTTL: env.RefreshExpiresIn,
	}
	bookings := services.BookingService{DB: db, Audit: recorder, Notifier: notifier}

	hd := &handlers.Handler{
		Env:      env,
		DB:       db,
		Auth:     services.AuthService{DB: db, Env: env, Tokens: tokens, Audit: recorder, Notifier: notifier},
		Bookings: bookings,
		Trips:    services.TripService{DB: db, Audit: recorder},
		Uploads:  services.UploadService{DB: db, Env: env, Audit: recorder},
		Docs:     services.DocsService{Bookings: bookings},
		Audit:    recorder,
		Started:  time.Now().UTC(),
	}
	r := router.NewRouter(env, hd)

	rootCtx, stopWorkers := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		recorder.Run(rootCtx)
	}()
	go func() {
		defer wg.Done()
		w := worker.NewReminderWorker(repositories.BookingRepository{DB: db}, notifier, env.ReminderInterval, env.ReminderDaysAhead)
		w.Start(rootCtx)
	}()

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logrus.WithFields(logrus.Fields{"addr": env.AppAddr, "env": env.AppEnv}).Info("Server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("Server shutdown failed")
	}

	stopWorkers()
	wg.Wait()
	recorder.Close(ctx)

	logrus.Info("Server stopped")
}
