// tmxkit — TMX corpus kit: converts TMX translation memories into
// indexed, aligned corpus pairs and back.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/tmxtools/tmxkit/builder"
	"github.com/tmxtools/tmxkit/config"
	"github.com/tmxtools/tmxkit/corpus"
	"github.com/tmxtools/tmxkit/export"
	"github.com/tmxtools/tmxkit/i18n"
	"github.com/tmxtools/tmxkit/langmeta"
	"github.com/tmxtools/tmxkit/langpair"
	"github.com/tmxtools/tmxkit/lockfile"
	"github.com/tmxtools/tmxkit/stage"
	"github.com/tmxtools/tmxkit/tmxfile"
	"github.com/tmxtools/tmxkit/tokenize"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ANSI colors
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[0;31m"
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[1;33m"
	colorBlue   = "\033[0;34m"
)

func logInfo(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorBlue+"[INFO]"+colorReset+" "+format+"\n", args...)
}

func logSuccess(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorGreen+"[OK]"+colorReset+" "+format+"\n", args...)
}

func logWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorYellow+"[WARN]"+colorReset+" "+format+"\n", args...)
}

func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorRed+"[ERROR]"+colorReset+" "+format+"\n", args...)
}

// ---------------------------------------------------------------------------
// Global flag
// ---------------------------------------------------------------------------

var rootDir string

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tmxkit",
		Short: "TMX corpus kit: TMX <-> aligned corpus conversion",
		Long: `tmxkit — TMX corpus kit.

Converts TMX translation-memory documents into staging files for corpus
indexing, builds indexed aligned corpus pairs from them, and regenerates
TMX documents from already-aligned corpora.

Commands:
  status   Show project configuration, TMX languages, and built corpora
  stage    Write staging files and alignment map from a TMX document
  build    Stage (if needed) and index the corpus pair with alignment
  export   Regenerate a TMX document from an aligned corpus pair`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Optional .env in the project root may carry TMXKIT_* overrides
			_ = godotenv.Load(filepath.Join(rootDir, ".env"))
		},
	}

	// Global persistent flag — inherited by all subcommands
	root.PersistentFlags().StringVar(&rootDir, "root", ".", "Project root directory")

	root.AddCommand(
		newStatusCmd(),
		newStageCmd(),
		newBuildCmd(),
		newExportCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	i18n.Init("")
	if err := newRootCmd().Execute(); err != nil {
		logError("%v", err)
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// version
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("tmxkit %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}

// ---------------------------------------------------------------------------
// status
// ---------------------------------------------------------------------------

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show project configuration, TMX languages, and built corpora",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(rootDir)
			if err != nil {
				return err
			}

			fmt.Printf("Project root:  %s\n", rootDir)
			fmt.Printf("Corpus base:   %s\n", orDash(cfg.Base))
			fmt.Printf("Registry:      %s\n", cfg.Registry)
			fmt.Printf("Builder:       %s\n", cfg.Builder)

			if cfg.TMX != "" {
				doc, err := tmxfile.ParseFile(filepath.Join(rootDir, cfg.TMX))
				if err != nil {
					logWarning("cannot read TMX %s: %v", cfg.TMX, err)
				} else {
					fmt.Printf("TMX document:  %s (%d translation units)\n", cfg.TMX, len(doc.TUs))
					for _, lang := range doc.Languages() {
						fmt.Printf("  %-8s %s\n", lang, langmeta.Name(lang))
					}
				}
			}

			entries, err := os.ReadDir(filepath.Join(rootDir, cfg.Registry))
			if err == nil {
				var names []string
				for _, e := range entries {
					if e.IsDir() {
						names = append(names, e.Name())
					}
				}
				sort.Strings(names)
				if len(names) > 0 {
					fmt.Printf("Corpora:\n")
					reg := &corpus.Registry{Dir: filepath.Join(rootDir, cfg.Registry)}
					for _, name := range names {
						c, err := reg.Open(name)
						if err != nil {
							fmt.Printf("  %-24s (unreadable)\n", name)
							continue
						}
						fmt.Printf("  %-24s %s, %d tokens\n", name, langmeta.Name(c.Language()), c.Size())
						c.Close()
					}
				}
			}
			return nil
		},
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// ---------------------------------------------------------------------------
// stage
// ---------------------------------------------------------------------------

// stagingRun holds everything resolved from config, flags, and the TMX
// document for one staging pass.
type stagingRun struct {
	cfg     *config.Config
	doc     *tmxfile.File
	pair    langpair.Pair
	opts    stage.Options
	srcPath string
	tgtPath string
	mapPath string
}

// prepareStaging loads the TMX document and resolves the language
// pair. Flag hints take precedence over the config file's hints.
func prepareStaging(cfg *config.Config, tmxFlag, fromFlag, toFlag, baseFlag string) (*stagingRun, error) {
	if baseFlag != "" {
		cfg.Base = baseFlag
	}
	if tmxFlag != "" {
		cfg.TMX = tmxFlag
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.TMX == "" {
		return nil, fmt.Errorf("no TMX document given (flag --tmx or tmxkit.yaml)")
	}

	logInfo(i18n.T("Reading TMX document: %s"), cfg.TMX)
	doc, err := tmxfile.ParseFile(filepath.Join(rootDir, cfg.TMX))
	if err != nil {
		return nil, err
	}

	fromHint := firstNonEmpty(fromFlag, cfg.SourceLang)
	toHint := firstNonEmpty(toFlag, cfg.TargetLang)
	pair, err := langpair.Resolve(doc.Languages(), fromHint, toHint)
	if err != nil {
		return nil, err
	}
	logInfo(i18n.T("Language pair: %s -> %s"), pair.Source, pair.Target)

	opts := stage.Options{
		Base: cfg.Base,
		Pair: pair,
		Progress: func(n int) {
			logInfo(i18n.T("staged %d units..."), n)
		},
	}
	if len(cfg.SourceTokenizer) > 0 {
		opts.SourceTokenizer = tokenize.Command(cfg.SourceTokenizer[0], cfg.SourceTokenizer[1:]...)
	}
	if len(cfg.TargetTokenizer) > 0 {
		opts.TargetTokenizer = tokenize.Command(cfg.TargetTokenizer[0], cfg.TargetTokenizer[1:]...)
	}

	srcPath, tgtPath, mapPath := cfg.StagingPaths(pair.Source, pair.Target)
	return &stagingRun{
		cfg:     cfg,
		doc:     doc,
		pair:    pair,
		opts:    opts,
		srcPath: filepath.Join(rootDir, srcPath),
		tgtPath: filepath.Join(rootDir, tgtPath),
		mapPath: filepath.Join(rootDir, mapPath),
	}, nil
}

// runStaging writes the staging triple.
func runStaging(run *stagingRun) error {
	if err := os.MkdirAll(filepath.Dir(run.srcPath), 0o755); err != nil {
		return fmt.Errorf("%w: %v", stage.ErrStagingIO, err)
	}
	res, err := stage.ExportFiles(run.doc.TUs, run.opts, run.srcPath, run.tgtPath, run.mapPath)
	if err != nil {
		return err
	}
	logSuccess(i18n.T("Staged %d translation units (%d skipped)"), res.Retained, res.Skipped)
	return nil
}

func newStageCmd() *cobra.Command {
	var tmxFlag, fromFlag, toFlag, baseFlag string

	cmd := &cobra.Command{
		Use:   "stage",
		Short: "Write staging files and alignment map from a TMX document",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(rootDir)
			if err != nil {
				return err
			}
			run, err := prepareStaging(cfg, tmxFlag, fromFlag, toFlag, baseFlag)
			if err != nil {
				return err
			}
			return runStaging(run)
		},
	}

	cmd.Flags().StringVar(&tmxFlag, "tmx", "", "TMX document path (overrides tmxkit.yaml)")
	cmd.Flags().StringVar(&fromFlag, "from", "", "Source language hint")
	cmd.Flags().StringVar(&toFlag, "to", "", "Target language hint")
	cmd.Flags().StringVar(&baseFlag, "base", "", "Corpus base name (overrides tmxkit.yaml)")
	return cmd
}

// ---------------------------------------------------------------------------
// build
// ---------------------------------------------------------------------------

func newBuildCmd() *cobra.Command {
	var tmxFlag, fromFlag, toFlag, baseFlag string
	var force bool

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Stage (if needed) and index the corpus pair with alignment",
		Long: `Stages the TMX document and runs the corpus builder: the source
corpus is indexed first, then the target corpus, then the alignment map
is imported in both directions. Steps are order-dependent; any failure
aborts the build and leaves the staging files as the recoverable
artifact.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(rootDir)
			if err != nil {
				return err
			}
			run, err := prepareStaging(cfg, tmxFlag, fromFlag, toFlag, baseFlag)
			if err != nil {
				return err
			}

			// Incremental staging: skip when the TMX document and the
			// staging parameters are unchanged since the last run.
			lf, err := lockfile.Load(rootDir)
			if err != nil {
				return err
			}
			fp, err := lockfile.Fingerprint(filepath.Join(rootDir, cfg.TMX),
				cfg.Base, run.pair.Source, run.pair.Target,
				strings.Join(cfg.SourceTokenizer, " "), strings.Join(cfg.TargetTokenizer, " "))
			if err != nil {
				return err
			}
			if !force && lf.IsCurrent(cfg.Base, fp) && allExist(run.srcPath, run.tgtPath, run.mapPath) {
				logInfo(i18n.T("Staging unchanged, skipping (%s)"), cfg.Base)
			} else {
				if err := runStaging(run); err != nil {
					return err
				}
				lf.Update(cfg.Base, fp)
				if err := lf.Save(); err != nil {
					return err
				}
			}

			bld, err := newBuilder(cfg)
			if err != nil {
				return err
			}

			srcName := corpus.Name(cfg.Base, run.pair.Source)
			tgtName := corpus.Name(cfg.Base, run.pair.Target)

			logInfo(i18n.T("Encoding corpus %s"), srcName)
			if err := bld.EncodeCorpus(run.srcPath, srcName, run.pair.Source); err != nil {
				return err
			}
			logInfo(i18n.T("Encoding corpus %s"), tgtName)
			if err := bld.EncodeCorpus(run.tgtPath, tgtName, run.pair.Target); err != nil {
				return err
			}
			logInfo(i18n.T("Importing alignment map: %s"), run.mapPath)
			if err := bld.ImportAlignment(run.mapPath); err != nil {
				return err
			}

			logSuccess("Built aligned corpus pair %s / %s", srcName, tgtName)
			return nil
		},
	}

	cmd.Flags().StringVar(&tmxFlag, "tmx", "", "TMX document path (overrides tmxkit.yaml)")
	cmd.Flags().StringVar(&fromFlag, "from", "", "Source language hint")
	cmd.Flags().StringVar(&toFlag, "to", "", "Target language hint")
	cmd.Flags().StringVar(&baseFlag, "base", "", "Corpus base name (overrides tmxkit.yaml)")
	cmd.Flags().BoolVar(&force, "force", false, "Restage even if inputs are unchanged")
	return cmd
}

// newBuilder picks the indexing engine configured for the project.
func newBuilder(cfg *config.Config) (builder.Builder, error) {
	registry := filepath.Join(rootDir, cfg.Registry)
	switch cfg.Builder {
	case config.BuilderRegistry:
		return &builder.Registry{Dir: registry}, nil
	case config.BuilderTool:
		return &builder.Tool{Registry: registry, EncodeCmd: cfg.EncodeCmd, AlignCmd: cfg.AlignCmd}, nil
	}
	return nil, fmt.Errorf("unknown builder %q", cfg.Builder)
}

// ---------------------------------------------------------------------------
// export
// ---------------------------------------------------------------------------

func newExportCmd() *cobra.Command {
	var fromFlag, toFlag, baseFlag, outFlag string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Regenerate a TMX document from an aligned corpus pair",
		Long: `Walks the alignment attribute between the pair's two corpora in
block order and writes one TMX translation unit per block. Requires
both corpora to exist in the registry with imported alignment.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(rootDir)
			if err != nil {
				return err
			}
			if baseFlag != "" {
				cfg.Base = baseFlag
			}
			if cfg.Base == "" {
				return fmt.Errorf("no corpus base name given (flag --base or tmxkit.yaml)")
			}

			src := firstNonEmpty(fromFlag, cfg.SourceLang)
			tgt := firstNonEmpty(toFlag, cfg.TargetLang)
			if src == "" || tgt == "" {
				return fmt.Errorf("%w: export needs explicit --from and --to", langpair.ErrAmbiguousLanguagePair)
			}
			pair := langpair.Pair{Source: src, Target: tgt}

			out := os.Stdout
			dest := "stdout"
			if outFlag != "" {
				f, err := os.Create(filepath.Join(rootDir, outFlag))
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
				dest = outFlag
			}

			opener := &corpus.Registry{Dir: filepath.Join(rootDir, cfg.Registry)}
			n, err := export.Export(opener, export.Options{
				Base:        cfg.Base,
				Pair:        pair,
				ToolName:    "tmxkit",
				ToolVersion: version,
			}, out)
			if err != nil {
				return err
			}

			logSuccess(i18n.T("Exported %d translation units to %s"), n, dest)
			return nil
		},
	}

	cmd.Flags().StringVar(&fromFlag, "from", "", "Source language code")
	cmd.Flags().StringVar(&toFlag, "to", "", "Target language code")
	cmd.Flags().StringVar(&baseFlag, "base", "", "Corpus base name (overrides tmxkit.yaml)")
	cmd.Flags().StringVarP(&outFlag, "output", "o", "", "Output TMX path (default stdout)")
	return cmd
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func allExist(paths ...string) bool {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			return false
		}
	}
	return true
}
