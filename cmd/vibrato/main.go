package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/stellanomia/vibrato-rkyv/dictionary"
	"github.com/stellanomia/vibrato-rkyv/internal/config"
	"github.com/stellanomia/vibrato-rkyv/internal/repl"
	"github.com/stellanomia/vibrato-rkyv/internal/segment"
	"github.com/stellanomia/vibrato-rkyv/internal/watch"
	"github.com/stellanomia/vibrato-rkyv/tokenizer"
)

var (
	defaultDict           = ""
	defaultLoadMode       = "validate"
	defaultIgnoreSpace    = false
	defaultMaxGroupingLen = uint(0)
	defaultNormalize      = false
)

func main() {
	root := &cobra.Command{
		Use:   "vibrato",
		Short: "Tokenize Japanese text against a pre-compiled dictionary",
		Long:  "vibrato — dictionary-driven Viterbi lattice morphological analysis.",
	}

	var configPath string
	root.PersistentFlags().StringVar(&configPath, "config", ".vibrato.toml", "path to TOML config file")

	// Config values become the other flags' defaults, so the file has to be
	// read before cobra parses the command line; --config is therefore
	// looked up in the raw arguments here.
	rawArgs := os.Args[1:]
	for i, a := range rawArgs {
		if a == "--config" && i+1 < len(rawArgs) {
			configPath = rawArgs[i+1]
		} else if v, ok := strings.CutPrefix(a, "--config="); ok {
			configPath = v
		}
	}

	if cfg, err := config.Load(configPath); err == nil {
		if cfg.Dict != "" {
			defaultDict = cfg.Dict
		}
		if cfg.LoadMode != "" {
			defaultLoadMode = cfg.LoadMode
		}
		defaultIgnoreSpace = cfg.IgnoreSpace
		defaultMaxGroupingLen = cfg.MaxGroupingLen
		defaultNormalize = cfg.Normalize
	}

	var dictPath, loadModeFlag string
	var ignoreSpace, normalize bool
	var maxGroupingLen uint
	root.PersistentFlags().StringVar(&dictPath, "dict", defaultDict, "path to a compiled dictionary archive")
	root.PersistentFlags().StringVar(&loadModeFlag, "load-mode", defaultLoadMode, "validate|trust-cache")
	root.PersistentFlags().BoolVar(&ignoreSpace, "ignore-space", defaultIgnoreSpace, "skip the dictionary's SPACE category instead of tokenizing it")
	root.PersistentFlags().UintVar(&maxGroupingLen, "max-grouping-len", defaultMaxGroupingLen, "cap on grouped unknown-word span length (0 = unbounded)")
	root.PersistentFlags().BoolVar(&normalize, "normalize", defaultNormalize, "NFKC-normalize input before tokenizing")

	parseLoadMode := func() (dictionary.LoadMode, error) {
		switch loadModeFlag {
		case "validate":
			return dictionary.Validate, nil
		case "trust-cache":
			return dictionary.TrustCache, nil
		default:
			return 0, fmt.Errorf("unknown --load-mode %q (want validate|trust-cache)", loadModeFlag)
		}
	}

	openTokenizer := func() (*dictionary.Dictionary, *tokenizer.Tokenizer, error) {
		if dictPath == "" {
			return nil, nil, fmt.Errorf("--dict is required")
		}
		mode, err := parseLoadMode()
		if err != nil {
			return nil, nil, err
		}
		dict, err := dictionary.LoadArchive(dictPath, mode)
		if err != nil {
			return nil, nil, err
		}
		opts := []tokenizer.Option{tokenizer.WithNormalize(normalize), tokenizer.WithMaxGroupingLen(int(maxGroupingLen))}
		if ignoreSpace {
			opts = append(opts, tokenizer.WithIgnoreSpace(true))
		}
		tok, err := tokenizer.New(dict, opts...)
		if err != nil {
			return nil, nil, err
		}
		return dict, tok, nil
	}

	printTokens := func(w *tokenizer.Worker) {
		it := w.TokenIter()
		for {
			tok, ok := it.Next()
			if !ok {
				break
			}
			fmt.Printf("%s\t%s\t%d\t%d\t%d\n", tok.Surface(), tok.Feature(), tok.LeftID(), tok.RightID(), tok.WordCost())
		}
	}

	var segMaxChars int
	tokenizeCmd := &cobra.Command{
		Use:   "tokenize [text...]",
		Short: "Tokenize text and print a token table",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, tok, err := openTokenizer()
			if err != nil {
				return err
			}
			w := tok.NewWorker()
			text := strings.Join(args, " ")
			// Long batch input is split on sentence boundaries first so a
			// single Worker sentence never spans an unbounded amount of
			// text (spec's Worker is meant to be reused per sentence,
			// not handed an entire document).
			for _, seg := range segment.Split(text, segMaxChars) {
				w.ResetSentence(seg)
				w.Tokenize()
				printTokens(w)
			}
			return nil
		},
	}
	tokenizeCmd.Flags().IntVar(&segMaxChars, "segment-max-chars", segment.DefaultMaxChars, "split input into sentence-bounded segments no longer than this many characters")
	root.AddCommand(tokenizeCmd)

	var nbestN int
	nbestCmd := &cobra.Command{
		Use:   "nbest [text...]",
		Short: "Print the N best segmentations with their path costs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, tok, err := openTokenizer()
			if err != nil {
				return err
			}
			w := tok.NewWorker()
			text := strings.Join(args, " ")
			w.ResetSentence(text)
			w.TokenizeNbest(nbestN)
			for i := 0; i < w.NbestLen(); i++ {
				fmt.Printf("--- #%d (cost=%d) ---\n", i+1, w.PathCost(i))
				it := w.NbestTokenIter(i)
				for {
					tok, ok := it.Next()
					if !ok {
						break
					}
					fmt.Printf("%s\t%s\n", tok.Surface(), tok.Feature())
				}
			}
			return nil
		},
	}
	nbestCmd.Flags().IntVar(&nbestN, "n", 5, "number of paths to enumerate")
	root.AddCommand(nbestCmd)

	root.AddCommand(&cobra.Command{
		Use:   "info",
		Short: "Show dictionary statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			dict, _, err := openTokenizer()
			if err != nil {
				return err
			}
			s := dict.Stats()
			fmt.Printf("system words:  %d\n", s.SystemWords)
			fmt.Printf("user words:    %d\n", s.UserWords)
			fmt.Printf("connector:     %d x %d\n", s.NumRight, s.NumLeft)
			fmt.Printf("categories:    %d\n", s.NumCategories)
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "watch",
		Short: "Reload the dictionary whenever it changes on disk",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dictPath == "" {
				return fmt.Errorf("--dict is required")
			}
			mode, err := parseLoadMode()
			if err != nil {
				return err
			}
			w, err := watch.New(dictPath, mode)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			done := make(chan struct{})
			go func() {
				<-ctx.Done()
				close(done)
			}()

			fmt.Fprintf(os.Stderr, "watching %s (Ctrl+C to stop)\n", dictPath)
			return w.Run(done, func(d *dictionary.Dictionary) {
				fmt.Fprintf(os.Stderr, "[watch] reloaded %s (%s words)\n", dictPath, strconv.Itoa(d.Stats().SystemWords))
			})
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "repl",
		Short: "Launch an interactive tokenizer REPL",
		RunE: func(cmd *cobra.Command, args []string) error {
			dict, _, err := openTokenizer()
			if err != nil {
				return err
			}
			m, err := repl.New(dict)
			if err != nil {
				return err
			}
			p := tea.NewProgram(m, tea.WithAltScreen())
			_, err = p.Run()
			return err
		},
	})

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
