package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"rentalWs/internal/config"
	branchapp "rentalWs/internal/modules/branches/application"
	branchinfra "rentalWs/internal/modules/branches/infrastructure"
	branchtransport "rentalWs/internal/modules/branches/interface"
	rtapp "rentalWs/internal/modules/realtime/application"
	rtdomain "rentalWs/internal/modules/realtime/domain"
	rtinfra "rentalWs/internal/modules/realtime/infrastructure"
	rttransport "rentalWs/internal/modules/realtime/interface"
	rentalapp "rentalWs/internal/modules/rentals/application"
	rentalinfra "rentalWs/internal/modules/rentals/infrastructure"
	rentaltransport "rentalWs/internal/modules/rentals/interface"
	userapp "rentalWs/internal/modules/users/application"
	users "rentalWs/internal/modules/users/domain"
	userinfra "rentalWs/internal/modules/users/infrastructure"
	usertransport "rentalWs/internal/modules/users/interface"
	vehicleapp "rentalWs/internal/modules/vehicles/application"
	vehicleinfra "rentalWs/internal/modules/vehicles/infrastructure"
	vehicletransport "rentalWs/internal/modules/vehicles/interface"
	"rentalWs/internal/platform/broker"
	platformmongo "rentalWs/internal/platform/mongo"
	"rentalWs/internal/shared/auth"
	"rentalWs/internal/shared/logging"
)

func main() {
	// Load .env first so local runs honour configuration tweaks.
	if err := godotenv.Overload(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, ".env load warning: %v\n", err)
		}
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	logFile, logger, err := setupLogging(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging setup error: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	slog.SetDefault(logger)
	slog.Info("logging initialized", slog.String("directory", cfg.Logging.Directory), slog.String("level", cfg.Logging.Level), slog.String("format", cfg.Logging.Format))
	slog.Info("kafka config resolved", slog.Any("brokers", cfg.Kafka.Brokers), slog.String("group", cfg.Kafka.GroupID))

	mongoCtx, cancelMongo := context.WithTimeout(context.Background(), cfg.Mongo.Timeout)
	mongoClient, db, err := platformmongo.Connect(mongoCtx, cfg.Mongo.URI, cfg.Mongo.Database)
	cancelMongo()
	if err != nil {
		slog.Error("mongo connect failed", slog.String("uri", cfg.Mongo.URI), slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Mongo.Timeout)
		defer cancel()
		if err := mongoClient.Disconnect(ctx); err != nil {
			slog.Warn("mongo disconnect failed", slog.Any("error", err))
		}
	}()

	publisher := broker.NewPublisher(cfg.Kafka.Brokers)
	defer publisher.Close()

	jwtManager := auth.NewJWTManager(cfg.Security.JWTSecret, cfg.Security.TokenTTL)

	vehicleRepo := vehicleinfra.NewMongoRepository(db)
	userService := userapp.NewService(userinfra.NewMongoRepository(db), publisher)
	vehicleService := vehicleapp.NewService(vehicleRepo, publisher)
	rentalService := rentalapp.NewService(rentalinfra.NewMongoRepository(db), vehicleRepo, publisher)
	branchService := branchapp.NewService(branchinfra.NewMongoRepository(db), publisher)

	registry := rtinfra.NewRegistry()
	source := broker.NewConsumerGroup(cfg.Kafka.Brokers, cfg.Kafka.GroupID, rtdomain.Topics())
	dispatcher := rtapp.NewDispatcher(source, registry)

	dispatchCtx, cancelDispatch := context.WithCancel(context.Background())
	defer cancelDispatch()
	if err := dispatcher.Start(dispatchCtx); err != nil {
		slog.Error("dispatcher start failed", slog.Any("error", err))
		os.Exit(1)
	}

	e := echo.New()
	e.HideBanner = true
	e.Logger.SetOutput(log.Writer())
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())

	authMW := auth.Middleware(jwtManager)
	employeeMW := auth.RequireRole(string(users.RoleEmployee))

	usertransport.NewHandler(userService, jwtManager).Register(e, authMW, employeeMW)
	vehicletransport.NewHandler(vehicleService).Register(e, authMW, employeeMW)
	rentaltransport.NewHandler(rentalService).Register(e, authMW, employeeMW)
	branchtransport.NewHandler(branchService).Register(e, authMW, employeeMW)
	rttransport.NewHandler(registry, jwtManager, cfg.Websocket.SendTimeout).Register(e)

	go func() {
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server stopped", slog.Any("error", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	slog.Info("shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := dispatcher.Stop(shutdownCtx); err != nil {
		slog.Warn("dispatcher stop", slog.Any("error", err))
	}
	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Warn("http shutdown", slog.Any("error", err))
	}
}

func setupLogging(cfg config.LoggingConfig) (*os.File, *slog.Logger, error) {
	file, writer, logger, err := logging.Setup(logging.Config{
		Level:     cfg.Level,
		Format:    cfg.Format,
		AddSource: true,
		Directory: cfg.Directory,
	})
	if err != nil {
		return nil, nil, err
	}
	log.SetOutput(writer)
	log.SetFlags(0)
	log.SetPrefix("")
	return file, logger, nil
}
