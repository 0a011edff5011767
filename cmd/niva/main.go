package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"niva/internal/agent"
	"niva/internal/catalog"
	"niva/internal/config"
	"niva/internal/embedding"
	"niva/internal/index"
	"niva/internal/llm"
	"niva/internal/logging"
	"niva/internal/speech"
	"niva/internal/tools"
)

var (
	// Global flags
	verbose    bool
	configPath string
	workspace  string

	// Logger
	logger *zap.Logger

	cfg *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "niva",
	Short: "NIVA - bilingual government scheme assistant",
	Long: `NIVA is a bilingual (Telugu/English) assistant for Indian government
benefit schemes.

Each turn runs through the dialogue orchestration engine: intent
classification, slot extraction, state-machine routing, tool dispatch over
the scheme catalog, and response synthesis through a text-generation model.

Run without arguments to start the interactive chat interface.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		if err := logging.Initialize(workspace); err != nil {
			logger.Warn("file logging unavailable", zap.Error(err))
		}

		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.CloseAll()
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractiveChat(cmd.Context())
	},
}

// askCmd answers a single question and exits
var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a single question",
	Long: `Runs one turn through the engine and prints the reply.

Example:
  niva ask "Am I eligible for PM Kisan? I am 35, farmer"
  niva ask "రైతు యోజనలు చెప్పండి"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, cleanup, err := buildEngine(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		turn, err := eng.Process(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Println(turn.Response)
		return nil
	},
}

// indexCmd groups semantic index operations
var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Semantic search index commands",
}

var indexRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the semantic index from the scheme catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := catalog.Load(cfg.Catalog.SchemesPath)
		if err != nil {
			return err
		}
		store, err := openIndex()
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Rebuild(cmd.Context(), repo); err != nil {
			return err
		}
		count, _ := store.Count()
		fmt.Printf("Indexed %d schemes into %s\n", count, cfg.Index.DatabasePath)
		return nil
	},
}

var indexSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Query the semantic index directly",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := catalog.Load(cfg.Catalog.SchemesPath)
		if err != nil {
			return err
		}
		store, err := openIndex()
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.EnsurePopulated(cmd.Context(), repo); err != nil {
			return err
		}

		query := strings.Join(args, " ")
		results, err := store.Search(cmd.Context(), query, agent.DetectLanguage(query), cfg.Index.TopK)
		if err != nil {
			return err
		}
		fmt.Println(results)
		return nil
	},
}

// schemesCmd groups catalog inspection commands
var schemesCmd = &cobra.Command{
	Use:   "schemes",
	Short: "Scheme catalog commands",
}

var schemesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all schemes in catalog order",
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := catalog.Load(cfg.Catalog.SchemesPath)
		if err != nil {
			return err
		}
		for i, s := range repo.All() {
			fmt.Printf("%d. %s / %s [%s] (%s)\n", i+1, s.NameEN, s.NameTE, s.ID, s.Sector)
		}
		return nil
	},
}

var schemesShowCmd = &cobra.Command{
	Use:   "show [ref]",
	Short: "Show one scheme by id or fuzzy name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := catalog.Load(cfg.Catalog.SchemesPath)
		if err != nil {
			return err
		}
		s, ok := repo.FindByRef(args[0])
		if !ok {
			return fmt.Errorf("scheme %q not found", args[0])
		}
		fmt.Printf("%s / %s [%s]\n", s.NameEN, s.NameTE, s.ID)
		fmt.Printf("Sector:    %s\n", s.Sector)
		fmt.Printf("About:     %s\n", s.DescriptionEN)
		fmt.Printf("Benefits:  %s\n", s.BenefitsEN)
		fmt.Printf("Documents: %s\n", strings.Join(s.DocumentsEN, ", "))
		e := s.Eligibility
		if e.MinAge != nil {
			fmt.Printf("Min age:   %d\n", *e.MinAge)
		}
		if e.MaxAge != nil {
			fmt.Printf("Max age:   %d\n", *e.MaxAge)
		}
		if e.IncomeLimit != nil {
			fmt.Printf("Income limit: %d\n", *e.IncomeLimit)
		}
		if e.Occupation != "" {
			fmt.Printf("Occupation:   %s\n", e.Occupation)
		}
		if len(e.Category) > 0 {
			fmt.Printf("Category:     %s\n", strings.Join(e.Category, ", "))
		}
		return nil
	},
}

// voiceCmd runs one voice turn from a recorded WAV file
var voiceCmd = &cobra.Command{
	Use:   "voice [audio.wav]",
	Short: "Transcribe a WAV recording, answer it, and voice the reply",
	Long: `Runs one voice turn: transcribes the recording, answers it through
the engine, and synthesizes the reply when a TTS endpoint is configured.

Requires GROQ_API_KEY for transcription. Without speech.tts.base_url in the
config the reply is text-only.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		samples, sampleRate, err := speech.ReadWAVFile(args[0])
		if err != nil {
			return err
		}

		transcriber, err := speech.NewGroqWhisper(
			cfg.Speech.STT.APIKey, cfg.Speech.STT.BaseURL, cfg.Speech.STT.Model, cfg.GetSTTTimeout())
		if err != nil {
			return err
		}
		var synthesizer speech.Synthesizer
		if cfg.Speech.TTS.BaseURL != "" {
			synthesizer, err = speech.NewHTTPSynthesizer(
				cfg.Speech.TTS.BaseURL, cfg.Speech.TTS.Voices, cfg.Speech.TTS.OutputDir, cfg.GetTTSTimeout())
			if err != nil {
				return err
			}
		}

		eng, cleanup, err := buildEngine(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		pipeline := agent.NewVoicePipeline(eng, transcriber, synthesizer)
		turn, err := pipeline.ProcessAudio(cmd.Context(), samples, sampleRate)
		if err != nil {
			return err
		}
		fmt.Printf("you>  %s\n", turn.Transcript)
		fmt.Printf("niva> %s\n", turn.Response)
		if turn.AudioPath != "" {
			fmt.Printf("audio: %s\n", turn.AudioPath)
		}
		return nil
	},
}

// openIndex opens the index store, degrading to keyword-only search when no
// embedding engine can be constructed.
func openIndex() (*index.Store, error) {
	eng, err := embedding.NewEngine(embedding.Config{
		Provider:       cfg.Embedding.Provider,
		OllamaEndpoint: cfg.Embedding.OllamaEndpoint,
		OllamaModel:    cfg.Embedding.OllamaModel,
		GenAIAPIKey:    cfg.Embedding.GenAIAPIKey,
		GenAIModel:     cfg.Embedding.GenAIModel,
		TaskType:       cfg.Embedding.TaskType,
	})
	if err != nil {
		logging.Embedding("No embedding engine (%v), using keyword search only", err)
		eng = nil
	}
	return index.Open(cfg.Index.DatabasePath, eng)
}

// buildEngine wires the full turn pipeline: catalog, index, dispatcher,
// generation client, agent.
func buildEngine(ctx context.Context) (*agent.Agent, func(), error) {
	repo, err := catalog.Load(cfg.Catalog.SchemesPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load scheme catalog: %w", err)
	}
	logging.Boot("Loaded %d schemes from %s", repo.Len(), cfg.Catalog.SchemesPath)

	store, err := openIndex()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open semantic index: %w", err)
	}
	if err := store.EnsurePopulated(ctx, repo); err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("failed to populate semantic index: %w", err)
	}

	client, err := llm.New(llm.Config{
		Provider: cfg.LLM.Provider,
		APIKey:   cfg.LLM.APIKey,
		Model:    cfg.LLM.Model,
		BaseURL:  cfg.LLM.BaseURL,
		Timeout:  cfg.GetLLMTimeout(),
	})
	if err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("failed to create generation client: %w", err)
	}

	dispatcher := tools.NewDispatcher(repo, store)
	eng := agent.New(dispatcher, client)
	cleanup := func() { store.Close() }
	return eng, cleanup, nil
}

// runInteractiveChat loops on stdin until EOF or an exit command.
func runInteractiveChat(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	eng, cleanup, err := buildEngine(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	fmt.Println("NIVA - government scheme assistant (Telugu/English)")
	fmt.Println("Type 'clear' to reset the conversation, 'exit' to quit.")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("you> ")
		if !scanner.Scan() {
			break
		}
		if ctx.Err() != nil {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(input) {
		case "exit", "quit":
			return nil
		case "clear":
			eng.Clear()
			fmt.Println("niva> (conversation cleared)")
			continue
		}

		turn, err := eng.Process(ctx, input)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			fmt.Printf("niva> error: %v\n", err)
			continue
		}
		fmt.Printf("niva> %s\n", turn.Response)
	}
	return scanner.Err()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (YAML)")
	rootCmd.PersistentFlags().StringVar(&workspace, "workspace", ".", "workspace directory for logs and data")

	indexCmd.AddCommand(indexRebuildCmd, indexSearchCmd)
	schemesCmd.AddCommand(schemesListCmd, schemesShowCmd)
	rootCmd.AddCommand(askCmd, voiceCmd, indexCmd, schemesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
