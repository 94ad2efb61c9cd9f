// transkit — string-table translation kit: fills missing values in
// per-language .str tables from legacy human translations and a machine
// translation service.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/minios-linux/transkit/charset"
	"github.com/minios-linux/transkit/config"
	"github.com/minios-linux/transkit/guard"
	"github.com/minios-linux/transkit/i18n"
	"github.com/minios-linux/transkit/langmeta"
	"github.com/minios-linux/transkit/lockfile"
	"github.com/minios-linux/transkit/merge"
	"github.com/minios-linux/transkit/strfile"
	"github.com/minios-linux/transkit/translate"
	"github.com/spf13/cobra"
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
		Use:   "transkit",
		Short: "String-table translation kit",
		Long: `transkit — string-table translation kit.

Manages per-module directories of per-language .str string tables. Missing
values are filled from legacy human-translated files (decoded from their
historical encodings) first, then from a machine translation service.

Commands:
  status      Show project modules and translation statistics
  init        Write a starter .transkit.yaml configuration
  translate   Fill missing values in all translated tables

Legacy encodings:
  utf8        Treat every legacy file as UTF-8 (default)
  explicit    One configured encoding for all legacy files
  legacy      Historical per-language charset table, detection as fallback
  auto        Statistical detection only`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global persistent flag — inherited by all subcommands
	root.PersistentFlags().StringVar(&rootDir, "root", ".", "Project root directory")

	root.AddCommand(
		newStatusCmd(),
		newInitCmd(),
		newTranslateCmd(),
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
// version (display version information)
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display version, commit hash, and build date.`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("transkit version %s\n", version)
			fmt.Printf("  commit:    %s\n", commit)
			fmt.Printf("  built:     %s\n", date)
		},
	}

	return cmd
}

// ---------------------------------------------------------------------------
// init (write a starter configuration)
// ---------------------------------------------------------------------------

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter .transkit.yaml configuration",
		Long: `Write an annotated starter configuration to the project root.

Refuses to overwrite an existing configuration file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.WriteSkeleton(rootDir)
			if err != nil {
				return err
			}
			logSuccess("Wrote %s", path)
			logInfo("Edit the module list, then run 'transkit status'")
			return nil
		},
	}

	return cmd
}

// ---------------------------------------------------------------------------
// status (read-only: modules + translation stats)
// ---------------------------------------------------------------------------

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show project modules and translation statistics",
		Long: `Show configured modules and per-language translation progress.

Does not modify any files.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus()
		},
	}

	return cmd
}

func runStatus() error {
	cfg, err := config.Load(rootDir)
	if err != nil {
		return err
	}

	absRoot, _ := filepath.Abs(rootDir)
	fmt.Fprintf(os.Stderr, "\n%s%s%s\n", colorBlue, i18n.T("Project"), colorReset)
	fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))
	fmt.Fprintf(os.Stderr, "  Root:       %s\n", absRoot)
	fmt.Fprintf(os.Stderr, "  Source:     %s\n", langmeta.Label(cfg.Source()))
	fmt.Fprintf(os.Stderr, "  Encoding:   %s\n", encodingDesc(cfg))
	fmt.Fprintln(os.Stderr)

	for _, mod := range cfg.Modules {
		fmt.Fprintf(os.Stderr, "%s%s%s (%s)\n", colorBlue, mod.Name, colorReset, mod.Dir)

		template, err := strfile.ParseFile(cfg.TemplatePath(mod))
		if err != nil {
			logError("  template: %v", err)
			continue
		}
		fmt.Fprintf(os.Stderr, "  %s: %d\n", i18n.T("Keys"), template.Len())

		for _, lang := range cfg.ModuleLanguages(mod) {
			table, err := strfile.ParseFile(cfg.LangPath(mod, lang))
			if err != nil {
				fmt.Fprintf(os.Stderr, "  %-28s %s\n", langmeta.Label(lang), "missing")
				continue
			}
			synced, _ := merge.Merge(table, template)
			total, filled, pct := synced.Stats()
			marker := colorYellow + "…" + colorReset
			if filled == total {
				marker = colorGreen + "✓" + colorReset
			}
			fmt.Fprintf(os.Stderr, "  %-28s %4d/%-4d (%5.1f%%) %s\n",
				langmeta.Label(lang), filled, total, pct, marker)
		}
		fmt.Fprintln(os.Stderr)
	}

	return nil
}

func encodingDesc(cfg *config.Config) string {
	mode, err := cfg.Mode()
	if err != nil {
		return cfg.Encoding.Mode
	}
	desc := mode.String()
	if mode == charset.ModeExplicit {
		desc += " (" + cfg.Encoding.Name + ")"
	}
	if n := len(cfg.Encoding.Overrides); n > 0 {
		desc += fmt.Sprintf(", %d overrides", n)
	}
	return desc
}

// ---------------------------------------------------------------------------
// translate (fill missing values)
// ---------------------------------------------------------------------------

func newTranslateCmd() *cobra.Command {
	var (
		// Target selection
		langs   string
		modules string

		// Service selection
		baseURL      string
		token        string
		tokenCmd     string
		tokenRefresh time.Duration

		// Behavior
		verbose bool
		dryRun  bool

		// Network
		requestDelay time.Duration
		retryDelay   time.Duration
		maxRetries   int
		timeout      time.Duration
		proxy        string

		// Encoding override
		encodingName string
	)

	cmd := &cobra.Command{
		Use:   "translate",
		Short: "Fill missing values in translated string tables",
		Long: `Fill missing values in all translated .str tables.

For each module and language, rows are synchronised with the source
template, legacy human translations are merged in first, and the remaining
gaps are filled by the translation service. Per-key failures are logged and
skipped; a later run picks up where this one left off.

Examples:
  # Fill everything using a static token
  transkit translate --base-url https://mt.example.com --token $TOKEN

  # Refresh the bearer token through an external command
  transkit translate --base-url https://mt.example.com --token-cmd 'pass show mt'

  # Only two languages of one module
  transkit translate --module installer --lang ru,de

  # Show what would be translated
  transkit translate --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(translateArgs{
				langs: langs, modules: modules,
				baseURL: baseURL, token: token,
				tokenCmd: tokenCmd, tokenRefresh: tokenRefresh,
				verbose: verbose, dryRun: dryRun,
				requestDelay: requestDelay, retryDelay: retryDelay,
				maxRetries: maxRetries, timeout: timeout, proxy: proxy,
				encodingName: encodingName,
			})
		},
	}

	// Service selection
	cmd.Flags().StringVar(&baseURL, "base-url", "", "Translation service base URL (or TRANSKIT_BASE_URL)")
	cmd.Flags().StringVar(&token, "token", "", "Static bearer token (or TRANSKIT_TOKEN)")
	cmd.Flags().StringVar(&tokenCmd, "token-cmd", "", "Shell command that prints a fresh bearer token")
	cmd.Flags().DurationVar(&tokenRefresh, "token-refresh", 0, "How long a fetched token stays usable (default 9m)")

	// Target selection
	cmd.Flags().StringVar(&langs, "lang", "", "Languages to fill (comma-separated, default: all configured)")
	cmd.Flags().StringVar(&modules, "module", "", "Modules to fill (comma-separated names, default: all)")

	// Behavior
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Enable per-key logging")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be translated without calling the service")

	// Network
	cmd.Flags().DurationVar(&requestDelay, "request-delay", time.Second, "Fixed delay between translation requests")
	cmd.Flags().DurationVar(&retryDelay, "retry-delay", 2*time.Second, "Fixed delay before retrying a failed request")
	cmd.Flags().IntVar(&maxRetries, "max-retries", 3, "Maximum retries per key")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Request timeout (0 = default)")
	cmd.Flags().StringVar(&proxy, "proxy", "", "HTTP/HTTPS proxy URL")

	// Encoding override
	cmd.Flags().StringVar(&encodingName, "encoding", "", "Fallback encoding when auto-detection fails")

	return cmd
}

type translateArgs struct {
	langs, modules           string
	baseURL, token, tokenCmd string
	tokenRefresh             time.Duration
	verbose, dryRun          bool
	requestDelay, retryDelay time.Duration
	maxRetries               int
	timeout                  time.Duration
	proxy                    string
	encodingName             string
}

func runTranslate(a translateArgs) error {
	cfg, err := config.Load(rootDir)
	if err != nil {
		return err
	}
	mode, err := cfg.Mode()
	if err != nil {
		return err
	}

	mods, err := selectModules(cfg, a.modules)
	if err != nil {
		return err
	}

	var fn translate.Func
	if !a.dryRun {
		engine, err := buildEngine(a)
		if err != nil {
			return err
		}
		fn = engine.Translate
	}

	lock, err := lockfile.Load(cfg.Root())
	if err != nil {
		return err
	}

	// Graceful cancellation: finish the current key, save what we have.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		<-sigCh
		logWarning("Interrupted, saving progress...")
		cancel()
	}()

	var failed int
	for _, mod := range mods {
		format, _ := guard.ParseFormat(mod.Format)

		template, err := strfile.ParseFile(cfg.TemplatePath(mod))
		if err != nil {
			return fmt.Errorf("module %s: %w", mod.Name, err)
		}

		langs := cfg.ModuleLanguages(mod)
		if a.langs != "" {
			langs = intersect(langs, strings.Split(a.langs, ","))
		}

		for _, lang := range langs {
			n, err := fillLanguage(ctx, cfg, mod, template, format, mode, lang, lock, fn, a)
			if err != nil {
				logError("%s/%s: %v", mod.Name, lang, err)
				failed++
				continue
			}
			failed += n
			if ctx.Err() != nil {
				logWarning("Translation interrupted, partial progress saved")
				return nil
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d keys failed; rerun to retry", failed)
	}
	if !a.dryRun {
		logSuccess("Translation complete!")
	}
	return nil
}

// fillLanguage fills one module/language table and returns the number of
// keys that failed.
func fillLanguage(ctx context.Context, cfg *config.Config, mod config.Module, template *strfile.File,
	format guard.Format, mode charset.Mode, lang string, lock *lockfile.Lock, fn translate.Func,
	a translateArgs) (int, error) {

	path := cfg.LangPath(mod, lang)
	current, err := strfile.ParseFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return 0, err
		}
		current = strfile.New()
	}

	// Sync rows with the template, keeping existing values.
	synced, stats := merge.Merge(current, template)

	// Source strings that changed since the last run are retranslated.
	// Values with no recorded checksum predate the lock file; they are
	// adopted as-is, never blanked.
	stale := 0
	for _, key := range synced.Keys() {
		v, _ := synced.Get(key)
		if v == "" {
			continue
		}
		src, _ := template.Get(key)
		if !lock.Known(lang, key) {
			lock.Update(lang, key, src)
			continue
		}
		if lock.Changed(lang, key, src) {
			synced.Set(key, "")
			stale++
		}
	}

	missing := synced.Missing()
	if len(missing) == 0 {
		if a.verbose {
			logInfo("%s/%s: up to date", mod.Name, lang)
		}
		if a.dryRun {
			return 0, nil
		}
		return 0, lock.Save()
	}

	if a.dryRun {
		logInfo("%s/%s (%s): %d to translate (%d stale, %d dropped)",
			mod.Name, langmeta.Label(lang), format, len(missing), stale, stats.Dropped)
		return 0, nil
	}

	opts := translate.Options{
		Translate:    fn,
		Source:       cfg.Source(),
		Format:       format,
		EncodingMode: mode,
		Encoding:     cfg.Encoding.Name,
		RequestDelay: a.requestDelay,
		RetryDelay:   a.retryDelay,
		MaxRetries:   a.maxRetries,
		Verbose:      a.verbose,
		OnLog:        logInfo,
		OnError:      logError,
		OnProgress: func(lang string, done, total int) {
			logInfo("  %s: %d/%d", lang, done, total)
		},
	}
	if a.encodingName != "" {
		opts.EncodingFallback = func(string) (string, error) {
			return a.encodingName, nil
		}
	}
	// A per-language override pins the encoding regardless of mode.
	if enc, ok := cfg.LangEncoding(lang); ok {
		opts.EncodingMode = charset.ModeExplicit
		opts.Encoding = enc
	}

	overrides, _, err := translate.ReadLegacy(cfg.LegacyPath(mod, lang), lang, opts)
	if err != nil {
		return 0, fmt.Errorf("legacy file: %w", err)
	}

	logInfo("%s/%s: %d missing, %d legacy candidates", mod.Name, langmeta.Label(lang), len(missing), len(overrides))

	res := translate.FillMissing(ctx, template, synced, overrides, lang, opts)

	for _, key := range synced.Keys() {
		if v, _ := synced.Get(key); v != "" {
			src, _ := template.Get(key)
			lock.Update(lang, key, src)
		}
	}
	live := make(map[string]bool, synced.Len())
	for _, key := range synced.Keys() {
		live[key] = true
	}
	lock.Prune(lang, live)

	if err := synced.WriteFile(path); err != nil {
		return len(res.Errors), err
	}
	if err := lock.Save(); err != nil {
		return len(res.Errors), err
	}

	for _, kerr := range res.Errors {
		logError("  %s: %v", kerr.Key, kerr.Err)
	}
	logSuccess("%s/%s: %d human, %d machine, %d failed",
		mod.Name, lang, res.Human, res.Machine, len(res.Errors))
	return len(res.Errors), nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func buildEngine(a translateArgs) (*translate.Engine, error) {
	baseURL := a.baseURL
	if baseURL == "" {
		baseURL = os.Getenv("TRANSKIT_BASE_URL")
	}
	if baseURL == "" {
		return nil, fmt.Errorf("no translation service configured; use --base-url or TRANSKIT_BASE_URL")
	}

	var source translate.TokenSource
	switch {
	case a.tokenCmd != "":
		source = &translate.RefreshingToken{
			Interval: a.tokenRefresh,
			Fetch: func(ctx context.Context) (string, error) {
				out, err := exec.CommandContext(ctx, "sh", "-c", a.tokenCmd).Output()
				if err != nil {
					return "", fmt.Errorf("token command: %w", err)
				}
				return strings.TrimSpace(string(out)), nil
			},
		}
	case a.token != "":
		source = translate.StaticToken(a.token)
	case os.Getenv("TRANSKIT_TOKEN") != "":
		source = translate.StaticToken(os.Getenv("TRANSKIT_TOKEN"))
	}

	return &translate.Engine{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   source,
		Proxy:   a.proxy,
		Timeout: a.timeout,
	}, nil
}

func selectModules(cfg *config.Config, names string) ([]config.Module, error) {
	if names == "" {
		return cfg.Modules, nil
	}
	want := make(map[string]bool)
	for _, n := range strings.Split(names, ",") {
		want[strings.TrimSpace(n)] = true
	}
	var out []config.Module
	for _, mod := range cfg.Modules {
		if want[mod.Name] {
			out = append(out, mod)
			delete(want, mod.Name)
		}
	}
	for n := range want {
		return nil, fmt.Errorf("unknown module %q", n)
	}
	return out, nil
}

func intersect(have, want []string) []string {
	set := make(map[string]bool, len(want))
	for _, w := range want {
		set[strings.TrimSpace(w)] = true
	}
	var out []string
	for _, h := range have {
		if set[h] {
			out = append(out, h)
		}
	}
	return out
}
