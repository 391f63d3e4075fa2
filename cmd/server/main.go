package main

import (
	"net/http"
	"os"

	"cuentomagico/internal/config"
	"cuentomagico/internal/export"
	"cuentomagico/internal/generate"
	"cuentomagico/internal/llm"
	"cuentomagico/internal/logger"
	"cuentomagico/internal/payment"
	"cuentomagico/internal/server"
	"cuentomagico/internal/session"
	"cuentomagico/internal/story"
	"cuentomagico/internal/tlsutil"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Encoding: cfg.LogEncoding})

	factory := &llm.Factory{
		OpenAIAPIKey:    cfg.OpenAIAPIKey,
		OpenAIBaseURL:   cfg.OpenAIBaseURL,
		OpenAIModel:     cfg.OpenAIModel,
		AnthropicAPIKey: cfg.AnthropicAPIKey,
		Temperature:     cfg.Temperature,
	}
	llmClient, err := factory.New(cfg.LLMProvider)
	if err != nil {
		log.Fatal().Err(err).Msg("building llm client")
	}

	var source generate.TextSource
	if cfg.BackendBaseURL != "" {
		source = generate.NewProxyClient(cfg.BackendBaseURL)
	} else {
		source = &generate.LLMSource{Client: llmClient}
	}

	generator := &generate.Generator{
		Source:     source,
		PageSize:   cfg.PageSize,
		MaxPages:   cfg.MaxPages,
		MinDisplay: cfg.MinGenerationDisplay,
	}

	exporter := &export.Exporter{OutputDir: cfg.OutputDir, Log: log}
	exportFunc := func(st story.Story, recipient string) {
		if _, err := exporter.Export(st, recipient); err != nil {
			log.Error().Err(err).Str("story", st.ID).Msg("automatic export failed")
		}
	}

	sessions := session.NewManager(session.Config{
		FreePreviewPage: cfg.FreePreviewPage,
		AdminBypass:     cfg.AdminMode,
		ExportDelay:     cfg.ExportDelay,
	}, cfg.DataDir, exportFunc, log)

	bridge := payment.NewStripeBridge(cfg.StripeSecretKey, cfg.PublicURL, cfg.PriceCents, cfg.Currency, cfg.ProductName)

	srv := server.New(cfg, llmClient, generator, sessions, bridge, exporter, log)

	log.Info().Str("addr", cfg.ListenAddr).Bool("tls", cfg.TLSEnabled).Msg("server starting")
	if cfg.TLSEnabled {
		err = tlsutil.ListenAndServeTLS(cfg.ListenAddr, cfg.TLSCertFile, cfg.TLSKeyFile, srv)
	} else {
		err = http.ListenAndServe(cfg.ListenAddr, srv)
	}
	log.Fatal().Err(err).Msg("server stopped")
}
