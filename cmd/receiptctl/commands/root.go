package commands

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/zombor/receipt-ocr/internal/extraction"
	"github.com/zombor/receipt-ocr/internal/scanning"
)

var (
	engineCfg scanning.EngineConfig
	verbose   bool

	// recognizer is built on first use so text-only runs never load an engine
	recognizer scanning.Recognizer
	extractor  *extraction.Extractor
)

func Execute() error {
	root := &cobra.Command{
		Use:          "receiptctl",
		Short:        "Extract merchant, total, date and items from receipts",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

			if engineCfg.GeminiKey == "" {
				engineCfg.GeminiKey = os.Getenv("GEMINI_API_KEY")
			}
			extractor = extraction.New()
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if recognizer != nil {
				return recognizer.Close()
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&engineCfg.Engine, "engine", scanning.EngineTesseract, "recognition engine: tesseract, gemini or ollama")
	root.PersistentFlags().StringVar(&engineCfg.Language, "lang", "eng", "tesseract language")
	root.PersistentFlags().StringVar(&engineCfg.TessdataPrefix, "tessdata", "", "tesseract tessdata directory")
	root.PersistentFlags().StringVar(&engineCfg.GeminiKey, "gemini-key", "", "Google Gemini API key (default $GEMINI_API_KEY)")
	root.PersistentFlags().StringVar(&engineCfg.GeminiModel, "gemini-model", "gemini-2.5-flash", "Google Gemini model name")
	root.PersistentFlags().StringVar(&engineCfg.OllamaURL, "ollama-url", "http://localhost:11434", "Ollama API base URL")
	root.PersistentFlags().StringVar(&engineCfg.OllamaModel, "ollama-model", "llava", "Ollama vision model name")
	root.PersistentFlags().StringVar(&engineCfg.CachePath, "cache-db", "", "BoltDB file for caching recognized text")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(extractCmd(), batchCmd())
	return root.Execute()
}
