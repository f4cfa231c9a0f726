// Package server exposes the HTTP endpoints of the bot: liveness, Prometheus
// metrics and the Telegram webhook.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

const (
	WebhookPath     = "/webhook"
	shutdownTimeout = 10 * time.Second
)

// UpdateParser decodes a webhook request into an update. *tgbotapi.BotAPI
// implements it.
type UpdateParser interface {
	HandleUpdate(r *http.Request) (*tgbotapi.Update, error)
}

// UpdateHandler processes one update.
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, update tgbotapi.Update)
}

type Opts struct {
	Addr     string
	Registry *prometheus.Registry
	// Parser and Handler enable POST /webhook when both are set.
	Parser  UpdateParser
	Handler UpdateHandler
	Sentry  bool
}

type Server struct {
	router *gin.Engine
	http   *http.Server
	parser UpdateParser
	bot    UpdateHandler
	wg     sync.WaitGroup
	ctx    context.Context
}

func New(opts Opts) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	if opts.Sentry {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}

	s := &Server{
		router: router,
		parser: opts.Parser,
		bot:    opts.Handler,
		ctx:    context.Background(),
	}

	router.GET("/livez", livenessCheck)
	router.HEAD("/livez", livenessCheck)
	if opts.Registry != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{})))
	}
	if opts.Parser != nil && opts.Handler != nil {
		router.POST(WebhookPath, s.handleWebhook)
	}

	s.http = &http.Server{
		Addr:              opts.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
	return s
}

// Handler returns the router, for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func livenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}

func (s *Server) handleWebhook(c *gin.Context) {
	update, err := s.parser.HandleUpdate(c.Request)
	if err != nil {
		log.Warn().Err(err).Msg("failed to parse webhook update")
		c.Status(http.StatusBadRequest)
		return
	}

	// Telegram retries until it gets a response, so answer before handling
	c.Status(http.StatusOK)

	s.wg.Add(1)
	go func(u tgbotapi.Update) {
		defer s.wg.Done()
		s.bot.HandleUpdate(s.ctx, u)
	}(*update)
}

// Run serves until ctx is cancelled, then shuts down and waits for webhook
// updates that are still being handled.
func (s *Server) Run(ctx context.Context) error {
	s.ctx = ctx
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.http.Addr).Msg("http server listening")
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := s.http.Shutdown(shutdownCtx)
	s.wg.Wait()
	log.Info().Msg("http server stopped")
	return err
}
