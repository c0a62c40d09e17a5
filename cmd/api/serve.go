package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-extras/cobraflags"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"Community_Feed/internal/pkg"
	"Community_Feed/internal/repository/rdb"
	"Community_Feed/internal/repository/redis"
	"Community_Feed/internal/router"
	"Community_Feed/internal/service"
)

const addrFlag = "addr"

var serveFlags = map[string]cobraflags.Flag{
	addrFlag: &cobraflags.StringFlag{
		Name:  addrFlag,
		Value: "",
		Usage: "Listen address, overrides server.addr",
	},
}

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE:  serveCommand,
	}
	cobraflags.RegisterMap(cmd, serveFlags)
	return cmd
}

func serveCommand(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clock := pkg.NewRealClock()

	db, err := rdb.Open(cfg.Database.Driver, cfg.Database.DSN, clock)
	if err != nil {
		return err
	}
	defer func() {
		if err := rdb.Close(db); err != nil {
			log.Warn("closing database failed", "err", err)
		}
	}()

	// 连接redis
	rdc, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return errors.Wrap(err, "connecting to redis")
	}
	defer rdc.Close()

	var events service.Publisher = service.NewLogPublisher(log)
	if kcfg := cfg.KafkaProducerConfig(); kcfg.Enabled() {
		producer := pkg.NewKafkaProducer(kcfg)
		defer func() {
			if err := producer.Close(); err != nil {
				log.Warn("closing kafka producer failed", "err", err)
			}
		}()
		events = service.NewKafkaPublisher(producer)
		log.Info("publishing events to kafka", "brokers", kcfg.Brokers, "topic", kcfg.Topic)
	}

	var mailer service.Mailer
	if mcfg := cfg.MailConfig(); mcfg.Enabled() {
		mailer = pkg.NewSMTPMailer(mcfg)
	}

	deps := service.Deps{DB: db, Events: events, Clock: clock, Log: log}
	tokens := pkg.NewTokenManager(cfg.TokenConfig(), clock)

	gin.SetMode(gin.ReleaseMode)
	r := router.InitRouter(router.Dependencies{
		Users:       service.NewUserService(deps, tokens, &redis.TokenRepository{Client: rdc}, mailer),
		Communities: service.NewCommunityService(deps),
		Posts:       service.NewPostService(deps),
		Likes:       service.NewPostLikeService(deps),
		Tokens:      tokens,
		Log:         log,
	})

	addr := cfg.Server.Addr
	if override := serveFlags[addrFlag].GetString(); override != "" {
		addr = override
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
