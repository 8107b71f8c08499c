package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"head-hunter/internal/catalog"
	"head-hunter/internal/config"
	"head-hunter/internal/filewalker"
	"head-hunter/internal/head"
	"head-hunter/internal/headlist"
	"head-hunter/internal/loottable"
	"head-hunter/internal/parser"
	"head-hunter/internal/worker"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type parseTask = worker.Task[filewalker.FileEntry, *parser.ParseResult]

func tradesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trades <file.mcfunction>",
		Short: "Split a trade function into a head list and block trades",
		Long: `Classifies every trade command of a wandering trader function. Plain head
sales are written as a head list; heads sold for something other than a plain
price are re-emitted as block trades numbered from --block-start.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			listPath, _ := cmd.Flags().GetString("list")
			blockPath, _ := cmd.Flags().GetString("block-out")
			blockStart, _ := cmd.Flags().GetInt("block-start")
			return runTrades(cmd.OutOrStdout(), args[0], listPath, blockPath, blockStart)
		},
	}

	cmd.Flags().String("list", "", "Write the head list here instead of stdout")
	cmd.Flags().String("block-out", "", "Write block trades to this file")
	cmd.Flags().Int("block-start", parser.DefaultBlockTradeStart, "First trade slot for block trades")

	return cmd
}

func runTrades(stdout io.Writer, path, listPath, blockPath string, blockStart int) error {
	result, err := parser.NewTradeParser().Parse(path)
	if err != nil {
		return err
	}

	text, err := headlist.Dumps(result.Specs())
	if err != nil {
		return err
	}
	if err := writeOutput(stdout, listPath, []byte(text)); err != nil {
		return err
	}

	if blockPath != "" && len(result.BlockSales) > 0 {
		f, err := os.Create(blockPath)
		if err != nil {
			return fmt.Errorf("create block trades file: %w", err)
		}
		defer f.Close()
		first, last, err := parser.WriteBlockTrades(f, result.BlockSales, blockStart)
		if err != nil {
			return err
		}
		log.Info().Int("first", first).Int("last", last).Str("path", blockPath).Msg("Wrote block trades")
	}

	log.Info().
		Int("heads", len(result.Heads)).
		Int("block_sales", len(result.BlockSales)).
		Str("file", path).
		Msg("Classified trades")
	return nil
}

func writeTradesCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "write-trades <head-list|->",
		Short: "Generate wandering trader commands selling every head of a head list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			heads, err := loadHeadList(args[0])
			if err != nil {
				return err
			}
			packFormat, _ := cmd.Flags().GetInt("pack-format")
			start, _ := cmd.Flags().GetInt("start")
			out, _ := cmd.Flags().GetString("out")

			tw := parser.NewTradeWriter(packFormat)
			tw.CostItem = strconv.Quote(cfg.CostItem)
			tw.CostQty = cfg.CostQty
			tw.PurchaseLimit = cfg.PurchaseLimit

			w := cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("create trades file: %w", err)
				}
				defer f.Close()
				w = f
			}

			first, last, err := tw.WriteHeadTrades(w, heads, start)
			if err != nil {
				return err
			}
			log.Info().Int("first", first).Int("last", last).Int("pack_format", packFormat).Msg("Wrote head trades")
			return nil
		},
	}

	cmd.Flags().Int("pack-format", cfg.PackFormat, "Target data pack format")
	cmd.Flags().Int("start", parser.DefaultHeadTradeStart, "First trade slot")
	cmd.Flags().String("out", "", "Write commands here instead of stdout")

	return cmd
}

func lootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "loot <loot-table.json>",
		Short: "List the player heads a loot table can drop",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			found, err := loottable.ReadFile(args[0])
			if err != nil {
				return err
			}
			specs := make([]head.Spec, len(found))
			for i, h := range found {
				log.Debug().Str("path", h.Path).Str("head", h.Spec.Name).Msg("Found head")
				specs[i] = h.Spec
			}
			text, err := headlist.Dumps(specs)
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), text)
			return err
		},
	}
}

func scanCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan <pack-dir>",
		Short: "Collect every distinct head of a data pack into a head list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, _ := cmd.Flags().GetString("out")
			return runScan(cmd.OutOrStdout(), cfg, args[0], out)
		},
	}

	cmd.Flags().String("out", "", "Write the head list here instead of stdout")

	return cmd
}

func runScan(stdout io.Writer, cfg *config.Config, dir, out string) error {
	ctx, cancel := setupContext()
	defer cancel()

	results, err := parseTree(ctx, cfg, dir)
	if err != nil {
		return err
	}

	seen := make(map[head.Spec]struct{})
	var heads []head.Spec
	for _, pr := range results {
		if pr.Err != nil || pr.Result == nil {
			continue
		}
		for _, s := range pr.Result.Specs() {
			if _, dup := seen[s]; dup {
				continue
			}
			seen[s] = struct{}{}
			heads = append(heads, s)
		}
	}

	text, err := headlist.Dumps(heads)
	if err != nil {
		return err
	}
	if err := writeOutput(stdout, out, []byte(text)); err != nil {
		return err
	}

	log.Info().Int("files", len(results)).Int("heads", len(heads)).Msg("Scan complete")
	return nil
}

func migrateCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate <input-dir> <output-dir>",
		Short: "Rewrite every head of a data pack for another pack format",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			packFormat, _ := cmd.Flags().GetInt("pack-format")
			return runMigrate(cfg, args[0], args[1], packFormat)
		},
	}

	cmd.Flags().Int("pack-format", cfg.PackFormat, "Target data pack format")

	return cmd
}

// runMigrate handles the `migrate` command. Files without heads are left out
// of the output tree.
func runMigrate(cfg *config.Config, inputDir, outputDir string, packFormat int) error {
	ctx, cancel := setupContext()
	defer cancel()

	results, err := parseTree(ctx, cfg, inputDir)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	inputAbs, _ := filepath.Abs(inputDir)
	outputAbs, _ := filepath.Abs(outputDir)

	migrated := 0
	for _, pr := range results {
		if pr.Err != nil || pr.Result == nil || len(pr.Result.Heads) == 0 {
			continue
		}

		entry := pr.Input
		m, ok := entry.Parser.(parser.Migrator)
		if !ok {
			continue
		}
		rewritten, err := m.Reconstruct(pr.Result, packFormat)
		if err != nil {
			log.Error().Err(err).Str("file", entry.Path).Msg("Reconstruct failed")
			continue
		}

		relPath, err := filepath.Rel(inputAbs, entry.Path)
		if err != nil {
			log.Error().Err(err).Msg("Compute relative path")
			continue
		}
		outPath := filepath.Join(outputAbs, relPath)

		if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
			log.Error().Err(err).Str("path", outPath).Msg("Create output directory")
			continue
		}
		if err := os.WriteFile(outPath, rewritten, 0644); err != nil {
			log.Error().Err(err).Str("path", outPath).Msg("Write output file")
			continue
		}

		migrated++
		log.Info().
			Str("input", entry.Path).
			Str("output", outPath).
			Int("heads", len(pr.Result.Heads)).
			Msg("File migrated")
	}

	log.Info().
		Int("files", migrated).
		Int("pack_format", packFormat).
		Str("output", outputDir).
		Msg("Migration complete")
	return nil
}

func catalogCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Store and list heads in the PostgreSQL catalog",
	}

	push := &cobra.Command{
		Use:   "push <pack-dir>",
		Short: "Store every head of a data pack in the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalogPush(cfg, args[0])
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "Print the catalog as a head list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			return runCatalogList(cmd.OutOrStdout(), cfg, format)
		},
	}
	list.Flags().String("format", "list", "Output format: list, json or yaml")

	cmd.AddCommand(push, list)
	return cmd
}

func runCatalogPush(cfg *config.Config, dir string) error {
	ctx, cancel := setupContext()
	defer cancel()

	pgPool, err := initDependencies(ctx, cfg)
	if err != nil {
		return err
	}
	defer pgPool.Close()

	store := catalog.New(pgPool)
	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}
	if err := store.Preload(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to preload catalog")
	}

	results, err := parseTree(ctx, cfg, dir)
	if err != nil {
		return err
	}

	total := 0
	for _, pr := range results {
		if pr.Err != nil || pr.Result == nil || len(pr.Result.Heads) == 0 {
			continue
		}
		// Batches keep a cancelled push from running to the end of a large file.
		for _, batch := range worker.Batch(pr.Result.Specs(), cfg.BatchSize) {
			if err := ctx.Err(); err != nil {
				return err
			}
			n, err := store.Upsert(ctx, batch, pr.Input.Path)
			if err != nil {
				return fmt.Errorf("push %s: %w", pr.Input.Path, err)
			}
			total += n
		}
	}

	log.Info().Int("inserted", total).Msg("Catalog push complete")
	return nil
}

func runCatalogList(w io.Writer, cfg *config.Config, format string) error {
	ctx, cancel := setupContext()
	defer cancel()

	pgPool, err := initDependencies(ctx, cfg)
	if err != nil {
		return err
	}
	defer pgPool.Close()

	entries, err := catalog.New(pgPool).List(ctx)
	if err != nil {
		return err
	}
	heads := catalog.Specs(entries)

	switch format {
	case "json":
		return headlist.ExportJSON(w, heads)
	case "yaml", "yml":
		return headlist.ExportYAML(w, heads)
	case "list":
		text, err := headlist.Dumps(heads)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, text)
		return err
	default:
		return fmt.Errorf("unknown catalog format %q", format)
	}
}

// parseTree walks dir and parses every supported file with the worker pool.
func parseTree(ctx context.Context, cfg *config.Config, dir string) ([]parseTask, error) {
	w := filewalker.NewWalker()
	entries, err := w.Walk(dir)
	if err != nil {
		return nil, fmt.Errorf("walk input directory: %w", err)
	}

	parsePool := worker.NewPool[filewalker.FileEntry, *parser.ParseResult](cfg.WorkerCount,
		func(ctx context.Context, entry filewalker.FileEntry) (*parser.ParseResult, error) {
			return w.ParseFile(entry)
		},
	)
	results := parsePool.Execute(ctx, entries)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func writeOutput(stdout io.Writer, path string, data []byte) error {
	if path == "" {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
