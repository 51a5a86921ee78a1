package server

import (
	"context"
	"errors"
	"fmt"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"videoflix-transcoder/config"
	"videoflix-transcoder/constant"
	jobHandler "videoflix-transcoder/handler"
	"videoflix-transcoder/pkg/rabbitmq"
	"videoflix-transcoder/repository"
	"videoflix-transcoder/service"
)

func RunHttp(cfg *config.Config) {
	ctx, cancel := signal.NotifyContext(setupLogger(cfg), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	zerolog.Ctx(ctx).Info().Str("env", cfg.App.Environment).Bool("isProduction", cfg.App.Environment == constant.EnvironmentProduction.String()).Send()
	if cfg.App.Environment == constant.EnvironmentProduction.String() {
		gin.SetMode(gin.ReleaseMode)
	}

	conn, err := config.NewRabbitMQConn(ctx, cfg.Queue)
	if err != nil {
		zerolog.Ctx(ctx).Fatal().Err(err).Msg("NewRabbitMQConn")
	}

	publisher, err := rabbitmq.NewPublisher(conn, cfg.Queue, rabbitmq.Exchange)
	if err != nil {
		zerolog.Ctx(ctx).Fatal().Err(err).Msg("NewPublisher")
	}

	var mirror service.Mirror
	if cfg.Mirror.Enabled {
		mirror = service.NewMinioMirror(cfg.Storage, cfg.Mirror.Bucket, cfg.Media.Root)
	}

	repo := repository.NewRepo(cfg.DB)
	transcodeService := service.NewService(repo, cfg, mirror)
	dispatcher := service.NewDispatcher(publisher, mirror)
	resolver := service.NewResolver(repo)

	serviceDeps := jobHandler.ServiceDependencies{
		TranscodeService: transcodeService,
	}

	// Rendition jobs: bounded worker concurrency caps the number of
	// concurrent encoder processes.
	transcodeConsumer := rabbitmq.NewConsumer(conn, cfg.Queue, rabbitmq.TranscodeTopology, cfg.Server.Workers, jobHandler.TranscodeHandler)
	go func() {
		err := transcodeConsumer.Consume(ctx, serviceDeps)
		if err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Msg("Transcode consumer error")
		}
	}()

	// Thumbnail extraction is cheap, one worker is plenty.
	thumbnailConsumer := rabbitmq.NewConsumer(conn, cfg.Queue, rabbitmq.ThumbnailTopology, 1, jobHandler.ThumbnailHandler)
	go func() {
		err := thumbnailConsumer.Consume(ctx, serviceDeps)
		if err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Msg("Thumbnail consumer error")
		}
	}()

	r := gin.Default()
	addHealth(r)
	addVideoRoutes(r, &videoHandler{
		cfg:        cfg,
		repo:       repo,
		dispatcher: dispatcher,
		resolver:   resolver,
	})

	handler := http.Server{
		Handler:           r,
		Addr:              fmt.Sprintf(":%s", cfg.Server.HttpPort),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zerolog.Ctx(ctx).Info().Str("env", cfg.App.Environment).Msg("start http server")
		if err := handler.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zerolog.Ctx(ctx).Error().Str("env", cfg.App.Environment).Msg(err.Error())
		}
	}()

	<-ctx.Done()
	zerolog.Ctx(ctx).Info().Msg("shutting down server")
	if err := handler.Shutdown(ctx); err != nil {
		zerolog.Ctx(ctx).Error().Str("env", cfg.App.Environment).Msg(err.Error())
	}

	zerolog.Ctx(ctx).Info().Str("env", cfg.App.Environment).Msg("server shutdown")
}

func addHealth(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})
}

func setupLogger(cfg *config.Config) context.Context {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.App.Environment == constant.EnvironmentDevelop.String() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	// Log to standard output
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	ctx := logger.WithContext(context.Background())

	return ctx
}
