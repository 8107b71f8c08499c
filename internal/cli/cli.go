package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"head-hunter/internal/config"
	"head-hunter/internal/dialect"
	"head-hunter/internal/head"
	"head-hunter/internal/headlist"
	"head-hunter/internal/preview"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// Execute runs the CLI application.
func Execute() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg := config.Load()
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	} else {
		log.Warn().Str("level", cfg.LogLevel).Msg("Unknown log level, using info")
	}

	rootCmd := &cobra.Command{
		Use:          "head-hunter",
		Short:        "Player head codec and data pack tool",
		Long:         "Encodes, decodes and migrates player head items across data pack formats, and manages head lists for wandering trader packs.",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(encodeCmd(cfg))
	rootCmd.AddCommand(decodeCmd())
	rootCmd.AddCommand(giveCmd())
	rootCmd.AddCommand(previewCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(tradesCmd())
	rootCmd.AddCommand(writeTradesCmd(cfg))
	rootCmd.AddCommand(lootCmd())
	rootCmd.AddCommand(scanCmd(cfg))
	rootCmd.AddCommand(migrateCmd(cfg))
	rootCmd.AddCommand(catalogCmd(cfg))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func encodeCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encode <head-list|->",
		Short: "Encode every head of a head list for a pack format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			packFormat, _ := cmd.Flags().GetInt("pack-format")
			components, _ := cmd.Flags().GetBool("components")
			return runEncode(cmd.OutOrStdout(), args[0], packFormat, components)
		},
	}

	cmd.Flags().Int("pack-format", cfg.PackFormat, "Target data pack format")
	cmd.Flags().Bool("components", false, "Print modern heads as a bracketed component list")

	return cmd
}

func runEncode(w io.Writer, input string, packFormat int, components bool) error {
	heads, err := loadHeadList(input)
	if err != nil {
		return err
	}

	d, err := dialect.ForPackFormat(packFormat)
	if err != nil {
		return err
	}
	_, modern := d.(dialect.Modern)

	for _, s := range heads {
		var out string
		if components && modern {
			out, err = dialect.ToComponentDict(s)
		} else {
			out, err = d.Encode(s)
		}
		if err != nil {
			return fmt.Errorf("encode %q: %w", s.Name, err)
		}
		fmt.Fprintln(w, out)
	}

	log.Info().Int("heads", len(heads)).Str("dialect", d.Name()).Msg("Encoded heads")
	return nil
}

func decodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode <fragment>",
		Short: "Decode an item fragment into a head list block",
		Long: `Decodes a tag or component fragment. Without --pack-format the dialect is
detected from the fragment itself.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			packFormat, _ := cmd.Flags().GetInt("pack-format")
			return runDecode(cmd.OutOrStdout(), args[0], packFormat)
		},
	}

	cmd.Flags().Int("pack-format", 0, "Pack format the fragment was written for (0 = detect)")

	return cmd
}

func runDecode(w io.Writer, fragment string, packFormat int) error {
	var (
		s   head.Spec
		err error
	)
	if packFormat == 0 {
		s, err = dialect.DecodeFragment(fragment)
	} else {
		s, err = dialect.Decode(fragment, packFormat)
	}
	if err != nil {
		return err
	}

	block, err := headlist.Dump(s)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, block)
	return nil
}

func giveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "give <command>",
		Short: "Build a head list block from a /give command",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			comment, _ := cmd.Flags().GetString("comment")
			return runGive(cmd.OutOrStdout(), args[0], head.Spec{Name: name, Comment: comment})
		},
	}

	cmd.Flags().String("name", "", "Display name of the head (required)")
	cmd.Flags().String("comment", "", "Annotation kept in the head list")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func runGive(w io.Writer, command string, base head.Spec) error {
	s, err := dialect.DecodeGiveCommand(command, base)
	if err != nil {
		return err
	}
	block, err := headlist.Dump(s)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, block)
	return nil
}

func previewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview <head-list|->",
		Short: "Show how each head's name renders in game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			codes, _ := cmd.Flags().GetBool("codes")
			heads, err := loadHeadList(args[0])
			if err != nil {
				return err
			}
			p := preview.New(cmd.OutOrStdout())
			for _, s := range heads {
				render := p.Card
				if codes {
					render = preview.Coded
				}
				out, err := render(s)
				if err != nil {
					log.Warn().Err(err).Str("head", s.Name).Msg("Cannot preview head")
					continue
				}
				fmt.Fprintln(cmd.OutOrStdout(), out)
			}
			return nil
		},
	}
	cmd.Flags().Bool("codes", false, "Print names behind legacy format codes instead of a styled card")
	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <head-list|->",
		Short: "Export a head list as JSON or YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			heads, err := loadHeadList(args[0])
			if err != nil {
				return err
			}
			switch format {
			case "json":
				return headlist.ExportJSON(cmd.OutOrStdout(), heads)
			case "yaml", "yml":
				return headlist.ExportYAML(cmd.OutOrStdout(), heads)
			default:
				return fmt.Errorf("unknown export format %q", format)
			}
		},
	}

	cmd.Flags().String("format", "json", "Export format: json or yaml")

	return cmd
}

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <yaml-file|->",
		Short: "Convert a YAML export back into a head list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, closeFn, err := openInput(args[0])
			if err != nil {
				return err
			}
			defer closeFn()

			heads, err := headlist.ImportYAML(r)
			if err != nil {
				return err
			}
			text, err := headlist.Dumps(heads)
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), text)
			return err
		},
	}
}

// loadHeadList reads and parses a head list file, or stdin for "-".
func loadHeadList(path string) ([]head.Spec, error) {
	r, closeFn, err := openInput(path)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read head list: %w", err)
	}
	heads, err := headlist.Loads(strings.ReplaceAll(string(data), "\r\n", "\n"))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return heads, nil
}

func openInput(path string) (io.Reader, func(), error) {
	if path == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open input: %w", err)
	}
	return f, func() { f.Close() }, nil
}

// setupContext creates a cancellable context with signal handling.
func setupContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		log.Warn().Msg("Received shutdown signal, cancelling...")
		cancel()
	}()

	return ctx, cancel
}

// initDependencies connects to PostgreSQL.
func initDependencies(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	pgPool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect PostgreSQL: %w", err)
	}

	if err := pgPool.Ping(ctx); err != nil {
		pgPool.Close()
		return nil, fmt.Errorf("ping PostgreSQL: %w", err)
	}
	log.Info().Msg("Connected to PostgreSQL")

	return pgPool, nil
}
