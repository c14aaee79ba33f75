package main

import (
	"flag"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Somati-x/stroyhub-bot/internal/api"
	"github.com/Somati-x/stroyhub-bot/internal/genai"
	"github.com/Somati-x/stroyhub-bot/internal/lockfile"
	"github.com/Somati-x/stroyhub-bot/internal/session"
	"github.com/Somati-x/stroyhub-bot/internal/telegram"
	"github.com/Somati-x/stroyhub-bot/internal/util"
	"github.com/joho/godotenv"
)

func main() {
	initializeLogger()

	config := loadEnvironmentConfig()
	flags := parseCommandLineFlags(config)

	// A second instance pointed at the same SQLite state would fight over the
	// webhook registration and the database file; refuse to start.
	if dir := sqliteStateDir(*flags.dbDSN); dir != "" {
		lock, err := lockfile.AcquireLock(dir)
		if err != nil {
			slog.Error("Failed to acquire state directory lock", "error", err)
			os.Exit(1)
		}
		defer lock.Release()
	}

	tgOpts := buildTelegramOptions(flags)
	storeOpts := buildStoreOptions(flags)
	genaiOpts := buildGenAIOptions(flags)
	apiOpts := buildAPIOptions(flags)

	slog.Info("Bootstrapping stroyhub-bot with configured modules")
	slog.Debug("Final configuration", "api_addr", *flags.apiAddr, "public_url", *flags.publicURL, "dsn_set", *flags.dbDSN != "")
	if err := api.Run(tgOpts, storeOpts, genaiOpts, apiOpts); err != nil {
		slog.Error("stroyhub-bot failed to run", "error", err)
		os.Exit(1)
	}
	slog.Info("stroyhub-bot exited successfully")
}

// Config holds environment configuration.
type Config struct {
	TelegramToken string
	OpenAIKey     string
	DatabaseURL   string
	APIAddr       string
	PublicURL     string
	WebhookSecret string
}

// Flags holds command line flag values.
type Flags struct {
	telegramToken *string
	openaiKey     *string
	dbDSN         *string
	apiAddr       *string
	publicURL     *string
	webhookSecret *string
	debug         *bool
}

// initializeLogger sets up structured logging.
func initializeLogger() {
	level := slog.LevelInfo
	if util.ParseBoolEnv("DEBUG", false) {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables and .env file.
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	} else {
		slog.Debug("successfully loaded .env file")
	}

	config := Config{
		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),
		OpenAIKey:     os.Getenv("OPENAI_API_KEY"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		APIAddr:       util.EnvOrDefault("API_ADDR", api.DefaultAddr),
		PublicURL:     os.Getenv("BASE_WEBHOOK_URL"),
		WebhookSecret: os.Getenv("WEBHOOK_SECRET"),
	}

	slog.Debug("environment variables loaded",
		"TELEGRAM_TOKEN_SET", config.TelegramToken != "",
		"OPENAI_API_KEY_SET", config.OpenAIKey != "",
		"DATABASE_URL_SET", config.DatabaseURL != "",
		"API_ADDR", config.APIAddr,
		"BASE_WEBHOOK_URL", config.PublicURL,
		"WEBHOOK_SECRET_SET", config.WebhookSecret != "")

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults.
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		telegramToken: flag.String("telegram-token", config.TelegramToken, "Telegram bot token (overrides $TELEGRAM_TOKEN)"),
		openaiKey:     flag.String("openai-api-key", config.OpenAIKey, "OpenAI API key (overrides $OPENAI_API_KEY)"),
		dbDSN:         flag.String("db-dsn", config.DatabaseURL, "session database DSN, SQLite path or Postgres URL (overrides $DATABASE_URL)"),
		apiAddr:       flag.String("api-addr", config.APIAddr, "webhook server address (overrides $API_ADDR)"),
		publicURL:     flag.String("public-url", config.PublicURL, "externally reachable base URL for webhook registration (overrides $BASE_WEBHOOK_URL)"),
		webhookSecret: flag.String("webhook-secret", config.WebhookSecret, "secret token for webhook authentication (overrides $WEBHOOK_SECRET)"),
		debug:         flag.Bool("debug", false, "enable debug logging"),
	}

	flag.Parse()

	if *flags.debug {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
		slog.SetDefault(logger)
	}

	slog.Debug("flags parsed",
		"telegramTokenSet", *flags.telegramToken != "",
		"openaiKeySet", *flags.openaiKey != "",
		"dbDSN_set", *flags.dbDSN != "",
		"apiAddr", *flags.apiAddr,
		"publicURL", *flags.publicURL)

	return flags
}

// sqliteStateDir returns the directory of the SQLite database file, or ""
// when the configured store needs no local state locking.
func sqliteStateDir(dsn string) string {
	if dsn == "" || session.DetectDSNType(dsn) != "sqlite3" {
		return ""
	}
	return filepath.Dir(dsn)
}

// buildTelegramOptions constructs Telegram client configuration options.
func buildTelegramOptions(flags Flags) []telegram.Option {
	var tgOpts []telegram.Option
	if *flags.telegramToken != "" {
		tgOpts = append(tgOpts, telegram.WithToken(*flags.telegramToken))
	}
	return tgOpts
}

// buildStoreOptions constructs session store configuration options.
func buildStoreOptions(flags Flags) []session.Option {
	var storeOpts []session.Option
	if *flags.dbDSN != "" {
		if session.DetectDSNType(*flags.dbDSN) == "postgres" {
			slog.Debug("Detected PostgreSQL DSN, configuring PostgreSQL session store")
			storeOpts = append(storeOpts, session.WithPostgresDSN(*flags.dbDSN))
		} else {
			slog.Debug("Detected SQLite DSN, configuring SQLite session store", "db_path", *flags.dbDSN)
			storeOpts = append(storeOpts, session.WithSQLiteDSN(*flags.dbDSN))
		}
	} else {
		slog.Debug("No database DSN provided, will use in-memory session store")
	}
	return storeOpts
}

// buildGenAIOptions constructs generation client configuration options.
func buildGenAIOptions(flags Flags) []genai.Option {
	var genaiOpts []genai.Option
	if *flags.openaiKey != "" {
		genaiOpts = append(genaiOpts, genai.WithAPIKey(*flags.openaiKey))
	}
	return genaiOpts
}

// buildAPIOptions constructs API server configuration options.
func buildAPIOptions(flags Flags) []api.Option {
	var apiOpts []api.Option
	if *flags.apiAddr != "" {
		apiOpts = append(apiOpts, api.WithAddr(*flags.apiAddr))
	}
	if *flags.publicURL != "" {
		apiOpts = append(apiOpts, api.WithPublicURL(*flags.publicURL))
	}
	if *flags.webhookSecret != "" {
		apiOpts = append(apiOpts, api.WithSecretToken(*flags.webhookSecret))
	}
	return apiOpts
}
