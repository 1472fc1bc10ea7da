package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"golang.org/x/sync/errgroup"

	"github.com/zombor/balance-siaga/internal/account"
	"github.com/zombor/balance-siaga/internal/database"
	"github.com/zombor/balance-siaga/internal/insights"
	"github.com/zombor/balance-siaga/internal/ledger"
	"github.com/zombor/balance-siaga/internal/receipt"
	"github.com/zombor/balance-siaga/internal/scanning"
	"github.com/zombor/balance-siaga/internal/scanning/tesseract"
	"github.com/zombor/balance-siaga/internal/web"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	// a missing .env is fine
	_ = godotenv.Load()

	fs := ff.NewFlagSet("balance-siaga")
	var (
		port         = fs.IntLong("port", 8080, "HTTP server port")
		dbPath       = fs.StringLong("db", "balance-siaga.db", "Database file path")
		storagePath  = fs.StringLong("storage", "./receipts", "Receipt storage directory path")
		ocrType      = fs.StringLong("ocr", "tesseract", "Receipt OCR: 'tesseract', 'gemini' or 'ollama'")
		ocrLanguage  = fs.StringLong("ocr-language", tesseract.DefaultLanguage, "Tesseract languages, '+' separated (e.g. ind+eng)")
		geminiKey    = fs.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)")
		geminiModel  = fs.StringLong("gemini-model", "gemini-2.5-flash", "Google Gemini model name")
		ollamaURL    = fs.StringLong("ollama-url", "http://localhost:11434", "Ollama API base URL")
		ollamaModel  = fs.StringLong("ollama-model", "llava", "Ollama vision model name (e.g., llava, qwen2-vl, minicpm-v)")
		insightsType = fs.StringLong("insights", "gateway", "AI insights provider: 'gateway', 'gemini' or 'off'")
		gatewayURL   = fs.StringLong("ai-gateway-url", insights.DefaultGatewayURL, "OpenAI-compatible AI gateway base URL")
		gatewayKey   = fs.StringLong("ai-gateway-key", "", "AI gateway API key (or set AI_GATEWAY_API_KEY env var)")
		aiModel      = fs.StringLong("ai-model", insights.DefaultModel, "AI gateway model name")
		sessionTTL   = fs.DurationLong("session-ttl", account.DefaultSessionTTL, "How long a login session stays valid")
		logLevel     = fs.StringLong("log-level", "info", "Log level: debug, info, warn or error")
		logFormat    = fs.StringLong("log-format", "text", "Log format: 'text' or 'json'")
		_            = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("BALANCE_SIAGA"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if err := setupLogger(*logLevel, *logFormat); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Initialize database
	slog.Info("Initializing database...", "path", *dbPath)
	db, err := database.Open(*dbPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	accountDB, err := account.NewBoltDB(db)
	if err != nil {
		slog.Error("Failed to initialize account store", "error", err)
		os.Exit(1)
	}
	ledgerDB, err := ledger.NewBoltDB(db)
	if err != nil {
		slog.Error("Failed to initialize ledger store", "error", err)
		os.Exit(1)
	}

	// Initialize OCR based on type
	var extractor scanning.Extractor
	switch *ocrType {
	case "tesseract":
		slog.Info("Initializing Tesseract OCR...", "language", *ocrLanguage)
		extractor, err = tesseract.New(strings.Split(*ocrLanguage, "+")...)
	case "gemini":
		apiKey := envFallback(*geminiKey, "GEMINI_API_KEY")
		if apiKey == "" {
			slog.Error("Gemini API key is required. Set --gemini-key flag or GEMINI_API_KEY environment variable")
			os.Exit(1)
		}
		slog.Info("Initializing Gemini OCR...", "model", *geminiModel)
		extractor, err = scanning.NewGemini(apiKey, *geminiModel)
	case "ollama":
		slog.Info("Initializing Ollama OCR...", "url", *ollamaURL, "model", *ollamaModel)
		extractor, err = scanning.NewOllama(*ollamaURL, *ollamaModel)
	default:
		slog.Error("Invalid OCR type", "type", *ocrType, "valid", "tesseract, gemini or ollama")
		os.Exit(1)
	}
	if err != nil {
		slog.Error("Failed to initialize OCR", "type", *ocrType, "error", err)
		os.Exit(1)
	}
	scanner := scanning.NewReader(extractor)
	defer scanner.Close()

	// Initialize insights provider
	var insightService *insights.Service
	switch *insightsType {
	case "gateway":
		apiKey := envFallback(*gatewayKey, "AI_GATEWAY_API_KEY")
		if apiKey == "" {
			slog.Warn("AI gateway key not set, insights disabled. Set --ai-gateway-key or AI_GATEWAY_API_KEY")
			break
		}
		gateway, err := insights.NewGateway(*gatewayURL, apiKey, *aiModel)
		if err != nil {
			slog.Error("Failed to initialize AI gateway", "error", err)
			os.Exit(1)
		}
		insightService = insights.NewService(gateway)
	case "gemini":
		apiKey := envFallback(*geminiKey, "GEMINI_API_KEY")
		gemini, err := insights.NewGemini(apiKey, *geminiModel)
		if err != nil {
			slog.Error("Failed to initialize Gemini insights", "error", err)
			os.Exit(1)
		}
		defer gemini.Close()
		insightService = insights.NewService(gemini)
	case "off":
		slog.Info("AI insights disabled")
	default:
		slog.Error("Invalid insights provider", "type", *insightsType, "valid", "gateway, gemini or off")
		os.Exit(1)
	}

	// Initialize storage
	slog.Info("Initializing storage...", "path", *storagePath)
	store, err := receipt.NewLocalStorage(*storagePath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}

	// Initialize services
	ledgerService := ledger.NewService(ledgerDB)
	server := web.NewServer(
		account.NewService(accountDB, *sessionTTL),
		ledgerService,
		receipt.NewService(scanner, store, ledgerService),
		insightService,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := fmt.Sprintf(":%d", *port)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(ctx, addr)
	})

	slog.Info("Server started", "address", fmt.Sprintf("http://localhost%s", addr), "version", version)
	if err := g.Wait(); err != nil {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}
	slog.Info("Shut down")
}

func envFallback(value, key string) string {
	if value != "" {
		return value
	}
	return os.Getenv(key)
}

func setupLogger(level, format string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}

	opts := &slog.HandlerOptions{Level: lvl}
	switch format {
	case "text":
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, opts)))
	case "json":
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, opts)))
	default:
		return errors.New("log format must be 'text' or 'json'")
	}
	return nil
}
