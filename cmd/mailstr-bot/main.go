package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/danhigham/mailstr/internal/bot"
	"github.com/danhigham/mailstr/internal/clear"
	"github.com/danhigham/mailstr/internal/config"
	"github.com/danhigham/mailstr/internal/session"
	"github.com/danhigham/mailstr/internal/telegram"
)

func main() {
	cfgPath := flag.String("config", filepath.Join(config.Dir(), "config.yaml"), "path to the config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config from %s: %v\n", *cfgPath, err)
		fmt.Fprintf(os.Stderr, "\nCreate the config file with:\n")
		fmt.Fprintf(os.Stderr, "  mkdir -p %s\n", filepath.Dir(*cfgPath))
		fmt.Fprintf(os.Stderr, "  cat > %s << 'EOF'\n", *cfgPath)
		fmt.Fprintf(os.Stderr, "telegram:\n  api_id: YOUR_API_ID\n  api_hash: \"YOUR_API_HASH\"\n  bot_token: \"YOUR_BOT_TOKEN\"\naccess_password: \"YOUR_PASSWORD\"\nEOF\n")
		fmt.Fprintf(os.Stderr, "\nGet API credentials from https://my.telegram.org and a bot token from @BotFather\n")
		os.Exit(1)
	}

	// Setup logging to file
	cfgDir := filepath.Dir(*cfgPath)
	os.MkdirAll(cfgDir, 0700)

	logPath := filepath.Join(cfgDir, "mailstr-bot.log")
	logCfg := zap.NewDevelopmentConfig()
	logCfg.OutputPaths = []string{logPath}
	logCfg.ErrorOutputPaths = []string{logPath}
	if lvl, err := zapcore.ParseLevel(cfg.LogLevel); err == nil {
		logCfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	logger, err := logCfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	store := session.NewStore(cfg.Template())

	// The Telegram client is both the reply transport and the deleter the
	// scheduler clears through; the handler is wired in afterwards.
	tgBot := telegram.NewGotdBot(
		cfg.Telegram.APIID,
		cfg.Telegram.APIHash,
		cfg.Telegram.BotToken,
		cfgDir,
		nil,
		logger.Named("telegram"),
	)

	sched := clear.NewScheduler(tgBot, logger.Named("clear"))

	handler := bot.NewHandler(store, sched, tgBot, bot.Options{
		AccessPassword: cfg.AccessPassword,
		Patterns:       cfg.PasswordPatterns(),
	}, logger.Named("bot"))

	tgBot.SetHandler(handler)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := tgBot.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("telegram client error", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
