package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/slack-go/slack"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"

	appconfig "github.com/ca-srg/maildraft/internal/config"
	"github.com/ca-srg/maildraft/internal/draft"
	"github.com/ca-srg/maildraft/internal/events"
	"github.com/ca-srg/maildraft/internal/mailbot"
	"github.com/ca-srg/maildraft/internal/observability"
	"github.com/ca-srg/maildraft/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the Slack events endpoint",
	Long: `Serve POST /slack/events for Slack's Events API. Every app mention is
acknowledged, drafted and answered in the channel it came from.

With SLACK_APP_TOKEN set, mentions are also received over Socket Mode.

Required environment:
  SLACK_BOT_TOKEN, SLACK_SIGNING_SECRET, SLACK_BOT_USER_ID`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := appconfig.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger := log.New(os.Stdout, "maildraft ", log.LstdFlags)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Init(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialise telemetry: %w", err)
	}
	defer func() {
		if err := shutdownTelemetry(context.WithoutCancel(ctx)); err != nil {
			logger.Printf("event=telemetry_shutdown status=error err=%v", err)
		}
	}()

	generator, err := draft.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create draft generator: %w", err)
	}

	var clientOpts []slack.Option
	if cfg.SlackSocketMode {
		clientOpts = append(clientOpts, slack.OptionAppLevelToken(cfg.SlackAppToken))
	}
	api := slack.New(cfg.SlackBotToken, clientOpts...)

	app, err := buildServer(cfg, api, generator, logger)
	if err != nil {
		return err
	}

	if store := openUsageStore(cfg, logger); store != nil {
		defer func() { _ = store.Close() }()
		app.handler.SetUsageRecorder(store)
		if reg, err := store.RegisterGauge(otel.Meter("maildraft/usage")); err != nil {
			logger.Printf("event=stats_gauge status=error err=%v", err)
		} else {
			defer func() { _ = reg.Unregister() }()
		}
	}

	logger.Printf("Starting maildraft (provider=%s, socket_mode=%t, thread=%t, notify_on_failure=%t)...",
		cfg.DraftProvider, cfg.SlackSocketMode, cfg.SlackReplyInThread, cfg.SlackNotifyOnFailure)

	var listener *events.SocketListener
	if cfg.SlackSocketMode {
		if listener, err = events.NewSocketListener(api, app.bot, logger); err != nil {
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return app.server.Run(gctx) })
	if listener != nil {
		g.Go(func() error {
			runErr := listener.Run(gctx)
			waitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ServerShutdownTimeout)
			defer cancel()
			return errors.Join(runErr, listener.Wait(waitCtx))
		})
	}
	runErr := g.Wait()

	m := app.handler.Metrics()
	logger.Printf("event=stopped mentions=%d drafts=%d errors=%d",
		m.Mentions.Load(), m.Drafts.Load(), m.Errors.Load())
	return runErr
}

type serveApp struct {
	server  *server.Server
	handler *mailbot.MentionHandler
	bot     *mailbot.Bot
}

// buildServer wires the mention handler, events endpoint and HTTP server
func buildServer(cfg *appconfig.Config, poster mailbot.MessagePoster, generator draft.Generator, logger *log.Logger) (*serveApp, error) {
	handler, err := mailbot.NewMentionHandler(cfg.SlackBotUserID, generator, logger)
	if err != nil {
		return nil, err
	}
	handler.SetNotifyOnFailure(cfg.SlackNotifyOnFailure)

	bot := mailbot.NewBot(poster, handler)
	bot.SetEnableThreading(cfg.SlackReplyInThread)

	endpoint, err := events.NewEndpoint(cfg.SlackSigningSecret, bot, logger)
	if err != nil {
		return nil, err
	}

	srv, err := server.New(server.ConfigFromApp(cfg), endpoint, logger)
	if err != nil {
		return nil, err
	}
	return &serveApp{server: srv, handler: handler, bot: bot}, nil
}
