package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dietcheck/diet"
	"dietcheck/internal/batch"
)

type rootOptions struct {
	configPath string
	vocabPath  string
	modelDirs  []string
	cacheSize  int
	verbose    bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "dietcheck: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "dietcheck",
		Short:         "Classify recipe ingredient lists as vegan and keto-friendly",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config.json")
	root.PersistentFlags().StringVar(&opts.vocabPath, "vocab", "", "path to the vocabulary JSON file (written with defaults when absent)")
	root.PersistentFlags().StringSliceVar(&opts.modelDirs, "models", nil, "directories probed for trained model artifacts")
	root.PersistentFlags().IntVar(&opts.cacheSize, "cache-size", 0, "preprocess memoization cache capacity")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newClassifyCmd(opts))
	root.AddCommand(newEvalCmd(opts))
	root.AddCommand(newVocabCmd(opts))
	return root
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.DisableCaller = true
	cfg.DisableStacktrace = true
	return cfg.Build()
}

// loadConfig merges the config file with command-line overrides.
func loadConfig(opts *rootOptions) (diet.Config, error) {
	cfg, err := diet.LoadConfig(opts.configPath)
	if err != nil {
		return cfg, err
	}
	if opts.vocabPath != "" {
		cfg.VocabPath = opts.vocabPath
	}
	if len(opts.modelDirs) > 0 {
		cfg.ModelDirs = opts.modelDirs
	}
	if opts.cacheSize > 0 {
		cfg.Engine.CacheSize = opts.cacheSize
	}
	return cfg, nil
}

func buildEngine(ctx context.Context, opts *rootOptions, logger *zap.Logger) (*diet.Engine, diet.Config, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, cfg, fmt.Errorf("load config: %w", err)
	}
	vocab, fromFile, err := diet.LoadVocabulary(cfg.VocabPath)
	if err != nil {
		return nil, cfg, fmt.Errorf("load vocabulary: %w", err)
	}
	if fromFile {
		logger.Info("loaded vocabulary overrides", zap.String("path", cfg.VocabPath))
	}
	loader := diet.ModelLoader{Logger: logger, Encoder: cfg.Encoder}
	models := loader.Load(ctx, cfg.ModelDirs...)
	engine, err := diet.NewEngine(cfg.Engine, vocab, models, logger)
	if err != nil {
		return nil, cfg, fmt.Errorf("init engine: %w", err)
	}
	return engine, cfg, nil
}

func newClassifyCmd(opts *rootOptions) *cobra.Command {
	var field string
	var trace bool
	cmd := &cobra.Command{
		Use:   "classify [ingredient ...]",
		Short: "Classify one recipe given as a raw field or ingredient arguments",
		RunE: func(cmd *cobra.Command, args []string) error {
			if field == "" && len(args) == 0 {
				return fmt.Errorf("provide --field or ingredient arguments")
			}
			logger, err := newLogger(opts.verbose)
			if err != nil {
				return err
			}
			defer logger.Sync()

			engine, _, err := buildEngine(cmd.Context(), opts, logger)
			if err != nil {
				return err
			}

			var raw diet.RawField
			if field != "" {
				raw = diet.TextField(field)
			} else {
				raw = diet.SequenceField(args)
			}
			for _, pred := range diet.Predicates {
				fmt.Printf("%s: %v\n", pred, engine.RecipeSatisfies(pred, raw))
			}
			if trace {
				for _, pred := range diet.Predicates {
					for _, tr := range engine.RecipeTraces(pred, raw) {
						fmt.Printf("  [%s] %q -> %q = %v (%s %s)\n",
							tr.Predicate, tr.Raw, tr.Phrase, tr.Verdict, tr.Tier, tr.Term)
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&field, "field", "", "raw ingredients field (list string or delimited text)")
	cmd.Flags().BoolVar(&trace, "trace", false, "print per-ingredient decision traces")
	return cmd
}

func newEvalCmd(opts *rootOptions) *cobra.Command {
	var groundTruth string
	var workers int
	var showMismatches bool
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Evaluate both predicates against a labeled ground-truth CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(opts.verbose)
			if err != nil {
				return err
			}
			defer logger.Sync()

			engine, cfg, err := buildEngine(cmd.Context(), opts, logger)
			if err != nil {
				return err
			}
			if workers <= 0 {
				workers = cfg.Workers
			}

			rows, err := batch.LoadGroundTruth(groundTruth)
			if err != nil {
				return err
			}
			logger.Info("evaluating", zap.Int("rows", len(rows)), zap.String("path", groundTruth))

			runner := batch.NewRunner(engine, workers, logger)
			preds, err := runner.Run(cmd.Context(), rows)
			if err != nil {
				return err
			}
			rep := batch.BuildReport(rows, preds)
			if showMismatches {
				for _, m := range rep.Mismatches {
					logger.Warn("mismatch",
						zap.Int("row", m.Index),
						zap.String("predicate", string(m.Predicate)),
						zap.Bool("expected", m.Expected),
						zap.Bool("got", m.Got))
				}
			}
			fmt.Print(rep.Format())
			return nil
		},
	}
	cmd.Flags().StringVar(&groundTruth, "ground-truth", "", "labeled CSV with ingredients, keto and vegan columns")
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel workers (default from config, then GOMAXPROCS)")
	cmd.Flags().BoolVar(&showMismatches, "mismatches", false, "log each row where a prediction disagrees with ground truth")
	_ = cmd.MarkFlagRequired("ground-truth")
	return cmd
}

func newVocabCmd(opts *rootOptions) *cobra.Command {
	var input, column, output string
	var maxWords int
	cmd := &cobra.Command{
		Use:   "vocab",
		Short: "Extract the unique canonical ingredient phrases from a dataset column",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(opts.verbose)
			if err != nil {
				return err
			}
			defer logger.Sync()

			cells, err := batch.LoadColumn(input, column)
			if err != nil {
				return err
			}
			unique := make(map[string]struct{})
			for _, cell := range cells {
				for _, ing := range diet.ToList(diet.TextField(cell)) {
					for _, phrase := range diet.ExtractPhrases(ing, maxWords) {
						unique[phrase] = struct{}{}
					}
				}
			}
			phrases := make([]string, 0, len(unique))
			for p := range unique {
				phrases = append(phrases, p)
			}
			sort.Strings(phrases)

			out := strings.Join(phrases, "\n") + "\n"
			if output == "" || output == "-" {
				fmt.Print(out)
			} else if err := os.WriteFile(output, []byte(out), 0o644); err != nil {
				return fmt.Errorf("write phrase list: %w", err)
			}
			logger.Info("extracted unique phrases",
				zap.Int("cells", len(cells)),
				zap.Int("phrases", len(phrases)))
			return nil
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "CSV dataset to scan")
	cmd.Flags().StringVar(&column, "column", "", "column holding the ingredients field (auto-detected when empty)")
	cmd.Flags().StringVar(&output, "output", "-", "file for the phrase list, or - for stdout")
	cmd.Flags().IntVar(&maxWords, "max-words", diet.DefaultMaxPhraseLen, "longest noun run kept as one phrase")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}
