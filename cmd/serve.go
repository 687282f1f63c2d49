package cmd

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"interview-screening-bot/internal/ai/gemini"
	"interview-screening-bot/internal/api"
	"interview-screening-bot/internal/config"
	"interview-screening-bot/internal/interview"
	"interview-screening-bot/internal/metrics"
	"interview-screening-bot/internal/notify"
	"interview-screening-bot/internal/questions"
	"interview-screening-bot/internal/scoring"
	"interview-screening-bot/internal/storage"
	"interview-screening-bot/internal/telegram"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the interview bot until interrupted or stopped by an admin",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return serve(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(parent context.Context) error {
	log, err := newLogger()
	if err != nil {
		return fmt.Errorf("creating a logger: %w", err)
	}
	defer log.Sync()

	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		log.Error("loading configuration", zap.Error(err))
		return err
	}

	log.Info("starting the interview bot",
		zap.String("version", version),
		zap.String("storage", cfg.Storage.Driver),
		zap.Int("admins", cfg.Admins.Len()),
		zap.Bool("gemini", cfg.Gemini.Enabled()),
	)

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()
	// cancel also fires on an admin /stop.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	store, err := storage.Open(ctx, storage.Options{
		Driver:      cfg.Storage.Driver,
		SQLitePath:  cfg.Storage.SQLitePath,
		DatabaseURL: cfg.Storage.DatabaseURL,
		ResultsDir:  cfg.Storage.ResultsDir,
	})
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Warn("closing storage", zap.Error(err))
		}
	}()

	selector, err := newSelector(cfg)
	if err != nil {
		return err
	}
	log.Info("question bank loaded", zap.Int("per_interview", selector.PerInterview()))

	m := metrics.NewMetrics()

	var assessor scoring.RiskAssessor
	if cfg.Gemini.Enabled() {
		gen, err := gemini.NewGenerator(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.Timeout, log)
		if err != nil {
			return fmt.Errorf("creating gemini client: %w", err)
		}
		assessor = gemini.NewRiskAssessor(gen)
		log.Info("model risk assessment enabled", zap.String("model", gen.Model()))
	}
	scorer := scoring.NewRubricScorer(assessor, log).OnFallback(m.IncrementRiskFallbacks)

	bot, err := telegram.NewBot(cfg.Telegram.Token, cfg.Telegram.APIURL, cfg.Telegram.PollTimeout, log)
	if err != nil {
		return err
	}

	mgr, err := interview.NewManager(interview.Options{
		Questions: selector,
		Scorer:    scorer,
		Store:     store,
		Notifier:  notify.NewChatNotifier(bot, log),
		Admins:    cfg.Admins,
		Metrics:   m,
		Logger:    log,
	})
	if err != nil {
		return err
	}

	handler, err := telegram.NewHandler(telegram.HandlerOptions{
		Sender:     bot,
		Interviews: mgr,
		Admins:     cfg.Admins,
		Limiter:    telegram.NewRateLimiter(cfg.Telegram.RateLimitPerMinute, time.Minute),
		Shutdown:   cancel,
		Logger:     log,
	})
	if err != nil {
		return err
	}
	go handler.RunCleanup(ctx)

	if cfg.API.Addr != "" {
		srv, err := api.NewServer(api.Options{
			Store:             store,
			Metrics:           m,
			Sessions:          mgr,
			Token:             cfg.API.Token,
			RequestsPerMinute: cfg.API.RequestsPerMinute,
			Logger:            log,
		})
		if err != nil {
			return err
		}
		go func() {
			if err := srv.Listen(cfg.API.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("api server stopped", zap.Error(err))
				cancel()
			}
		}()
		defer func() {
			sctx, scancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer scancel()
			if err := srv.Shutdown(sctx); err != nil {
				log.Warn("api shutdown", zap.Error(err))
			}
		}()
	}

	log.Info("polling for updates")
	// In-flight events finish even after shutdown starts.
	work := context.WithoutCancel(ctx)
	if err := bot.Poll(ctx, func(_ context.Context, u telegram.Update) {
		handler.HandleUpdate(work, u)
	}); err != nil {
		return err
	}

	log.Info("shutting down", zap.Int("active_sessions", mgr.ActiveSessions()))
	mgr.Wait()
	snap := m.GetSnapshot()
	log.Info("bot stopped",
		zap.Int64("interviews_started", snap.InterviewsStarted),
		zap.Int64("interviews_completed", snap.InterviewsCompleted),
	)
	return nil
}

func newSelector(cfg *config.AppConfig) (*questions.Selector, error) {
	qf, err := config.LoadQuestions(cfg.Interview.QuestionsFile)
	if err != nil {
		return nil, err
	}
	bank, err := qf.Bank()
	if err != nil {
		return nil, err
	}
	seed := uint64(time.Now().UnixNano())
	return questions.NewSelector(bank, questions.PerInterview, rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}
