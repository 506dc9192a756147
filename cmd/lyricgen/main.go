package main

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sukalov/lyricbot/internal/app"
	"github.com/sukalov/lyricbot/internal/config"
	"github.com/sukalov/lyricbot/internal/export"
	"github.com/sukalov/lyricbot/internal/logger"
	"github.com/sukalov/lyricbot/internal/lyrics"
	"github.com/sukalov/lyricbot/internal/rhyme"
	"github.com/sukalov/lyricbot/internal/state"
)

type generateOptions struct {
	theme    string
	style    string
	scheme   string
	dice     string
	keywords []string
	seed     uint64
	format   string
	output   string
	offline  bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := generateOptions{}
	cfg := config.Load()

	root := &cobra.Command{
		Use:          "lyricgen",
		Short:        "Generate a song lyric snippet from a theme, dice rolls and a style",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logger.Init(cfg.LogLevel, cfg.LogDevelopment)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			defer logger.Sync()
			deps, err := app.Build(cmd.Context(), cfg, opts.offline)
			if err != nil {
				return err
			}
			defer deps.Close()

			return generateTo(cmd.Context(), deps, cfg, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	flags := root.Flags()
	flags.StringVar(&opts.theme, "theme", string(lyrics.ThemeLove), "keyword theme")
	flags.StringVar(&opts.style, "style", string(lyrics.StylePop), "music style: folk, pop or rap")
	flags.StringVar(&opts.scheme, "scheme", string(rhyme.SchemePaired), "rhyme scheme: AABB, ABAB or free")
	flags.StringVar(&opts.dice, "dice", "", "comma separated die faces, e.g. 1,4,2,6 (rolled when empty)")
	flags.StringArrayVar(&opts.keywords, "keyword", nil, "extra keyword, repeatable")
	flags.Uint64Var(&opts.seed, "seed", 0, "random seed, 0 picks one")
	flags.StringVar(&opts.format, "format", string(export.FormatText), "output format: txt, md or html")
	flags.StringVarP(&opts.output, "output", "o", "", "write to a file instead of stdout")
	flags.BoolVar(&opts.offline, "offline", false, "use only the built-in rhyme table")

	root.AddCommand(newBankCmd(cfg))
	return root
}

func newBankCmd(cfg config.Config) *cobra.Command {
	bank := &cobra.Command{
		Use:   "bank",
		Short: "Inspect or publish the keyword and template bank",
	}

	bank.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Print the active bank as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, _, err := app.LoadBank(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			return yaml.NewEncoder(cmd.OutOrStdout()).Encode(b)
		},
	})

	bank.AddCommand(&cobra.Command{
		Use:   "push [file]",
		Short: "Write a YAML bank (or the embedded one) to the database",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b := lyrics.DefaultBank()
			if len(args) == 1 {
				var err error
				if b, err = lyrics.LoadBankFile(args[0]); err != nil {
					return err
				}
			}
			if err := app.PushBank(cmd.Context(), cfg, b); err != nil {
				return err
			}
			logger.Success("bank pushed", zap.Int("themes", len(b.Keywords)), zap.Int("styles", len(b.Templates)))
			fmt.Fprintln(cmd.OutOrStdout(), "bank pushed")
			return nil
		},
	})
	return bank
}

// generateTo renders a lyric and writes it to opts.output, or to stdout
// when no output file is set. The file is only created once rendering
// has succeeded.
func generateTo(ctx context.Context, deps *app.Deps, cfg config.Config, opts generateOptions, stdout, info io.Writer) error {
	data, err := runGenerate(ctx, deps, cfg, opts, info)
	if err != nil {
		return err
	}
	if opts.output == "" {
		if _, err := stdout.Write(data); err != nil {
			return fmt.Errorf("failed to write lyric: %w", err)
		}
		return nil
	}
	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", opts.output, err)
	}
	return nil
}

// runGenerate assembles a session from the options, generates one lyric
// and renders it. The seed and validation go to info.
func runGenerate(ctx context.Context, deps *app.Deps, cfg config.Config, opts generateOptions, info io.Writer) ([]byte, error) {
	theme, err := lyrics.ParseTheme(opts.theme)
	if err != nil {
		return nil, err
	}
	style, err := lyrics.ParseStyle(opts.style)
	if err != nil {
		return nil, err
	}
	scheme, err := rhyme.ParseScheme(opts.scheme)
	if err != nil {
		return nil, err
	}
	format, err := export.ParseFormat(opts.format)
	if err != nil {
		return nil, err
	}

	seed := opts.seed
	for seed == 0 {
		seed = rand.Uint64()
	}

	faces, err := parseDice(opts.dice)
	if err != nil {
		return nil, err
	}
	if len(faces) == 0 {
		r := lyrics.NewRand(seed)
		for i := 0; i < diceCount(cfg); i++ {
			faces = append(faces, lyrics.RollDie(r))
		}
	}

	session := state.Session{MaxRolls: len(faces), MaxCustom: max(cfg.MaxCustomKeywords, len(opts.keywords))}
	session.SetTheme(theme)
	session.SetStyle(style)
	session.SetScheme(scheme)
	for _, face := range faces {
		word, err := deps.Bank.Keyword(theme, face)
		if err != nil {
			return nil, err
		}
		if err := session.AddRoll(face, word); err != nil {
			return nil, err
		}
	}
	for _, raw := range opts.keywords {
		word, err := lyrics.NormalizeKeyword(raw, cfg.MaxKeywordLength)
		if err != nil {
			return nil, err
		}
		if err := session.AddCustomKeyword(word); err != nil {
			return nil, err
		}
	}
	if err := session.Ready(); err != nil {
		return nil, err
	}

	l, err := deps.Generator.Generate(ctx, lyrics.Request{
		Keywords:  session.Keywords(),
		Style:     session.Style,
		Scheme:    session.Scheme,
		Theme:     session.Theme,
		DiceRolls: session.Faces(),
		Seed:      seed,
	})
	if err != nil {
		return nil, err
	}

	data, err := export.Render(format, l, export.MetadataFor(l))
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(info, "seed %d · dice %s · rhyme %d/%d\n",
		l.Seed, formatDice(session.Faces()), l.Validation.Overall.Matches, l.Validation.Overall.Total)
	return data, nil
}

// parseDice reads "1,4,2,6". Empty input yields no faces.
func parseDice(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var faces []int
	for _, part := range strings.Split(s, ",") {
		face, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid die face %q: %w", part, err)
		}
		if face < 1 || face > lyrics.FacesPerTheme {
			return nil, fmt.Errorf("%w: die face %d", lyrics.ErrOutOfRange, face)
		}
		faces = append(faces, face)
	}
	return faces, nil
}

func formatDice(faces []int) string {
	parts := make([]string, len(faces))
	for i, f := range faces {
		parts[i] = strconv.Itoa(f)
	}
	return strings.Join(parts, ",")
}

func diceCount(cfg config.Config) int {
	if cfg.DiceRolls <= 0 {
		return state.DefaultDiceRolls
	}
	return cfg.DiceRolls
}
