// Package translate fills missing entries in per-language string tables.
//
// For every untranslated key the orchestrator prefers a human-supplied value
// from a legacy translation file (decoded via charset + transcode) and falls
// back to the machine path: guard the source string, call the external
// translation service, and normalize what comes back. Keys are processed
// sequentially to respect the service's rate limit; a failure on one key
// never blocks the remaining keys or languages.
package translate

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/minios-linux/transkit/charset"
	"github.com/minios-linux/transkit/guard"
	"github.com/minios-linux/transkit/strfile"
	"github.com/minios-linux/transkit/transcode"
)

// Func is the external translation call. It receives guarded text and
// returns the service's raw output; the caller owns retries and repair.
type Func func(ctx context.Context, source, target string, format guard.Format, text string) (string, error)

// ---------------------------------------------------------------------------
// Options
// ---------------------------------------------------------------------------

// Options controls how one language is filled.
type Options struct {
	// Translate is the external translation call. Required for the machine
	// path; with a nil Func only human overrides are applied.
	Translate Func
	// Source is the source language code (default "en").
	Source string
	// Format selects the guard/repair rules (text or markup).
	Format guard.Format

	// EncodingMode selects how legacy file encodings are resolved.
	EncodingMode charset.Mode
	// Encoding is the explicit encoding name for charset.ModeExplicit.
	Encoding string
	// EncodingFallback supplies an encoding when auto-detection fails.
	EncodingFallback charset.FallbackFunc

	// RequestDelay is the fixed minimum delay between translation calls.
	RequestDelay time.Duration
	// RetryDelay is the fixed delay before retrying a failed call.
	RetryDelay time.Duration
	// MaxRetries is the number of retries per key on transient failure.
	MaxRetries int

	// OnLog emits log messages during translation.
	OnLog func(format string, args ...any)
	// OnError emits error messages during translation.
	OnError func(format string, args ...any)
	// OnProgress is called after each key is handled.
	OnProgress func(lang string, done, total int)
	// Verbose enables per-key logging.
	Verbose bool
}

func (o *Options) log(format string, args ...any) {
	if o.OnLog != nil {
		o.OnLog(format, args...)
	}
}

func (o *Options) logError(format string, args ...any) {
	if o.OnError != nil {
		o.OnError(format, args...)
	} else if o.OnLog != nil {
		o.OnLog(format, args...)
	}
}

func (o *Options) effectiveSource() string {
	if o.Source != "" {
		return o.Source
	}
	return "en"
}

func (o *Options) effectiveMaxRetries() int {
	if o.MaxRetries > 0 {
		return o.MaxRetries
	}
	return 3
}

func (o *Options) effectiveRetryDelay() time.Duration {
	if o.RetryDelay > 0 {
		return o.RetryDelay
	}
	return 2 * time.Second
}

// ---------------------------------------------------------------------------
// Errors and results
// ---------------------------------------------------------------------------

// KeyError reports a failure on a single language/key pair. The batch
// continues past it; the caller decides whether to abort.
type KeyError struct {
	Lang string
	Key  string
	Err  error
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("%s/%s: %v", e.Lang, e.Key, e.Err)
}

func (e *KeyError) Unwrap() error { return e.Err }

// Result summarises one filled language.
type Result struct {
	// Table is the updated string table (same pointer the caller passed in).
	Table *strfile.File
	// Human counts values taken from the legacy human-translated file.
	Human int
	// Machine counts values produced by the translation service.
	Machine int
	// Errors lists per-key failures; the rest of the table is still valid.
	Errors []*KeyError
}

// ---------------------------------------------------------------------------
// Legacy human translations
// ---------------------------------------------------------------------------

// ReadLegacy loads the human-translated legacy file for a language. A
// missing file is not an error: it just means no human translation exists
// and the machine path applies to every key.
func ReadLegacy(path, lang string, opts Options) (map[string]string, charset.Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, charset.Profile{}, nil
		}
		return nil, charset.Profile{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return DecodeLegacy(data, lang, opts)
}

// DecodeLegacy resolves the encoding profile for lang, transcodes the raw
// bytes to canonical UTF-8, and parses the key-value overrides. Empty values
// are dropped so they never shadow the machine path.
func DecodeLegacy(data []byte, lang string, opts Options) (map[string]string, charset.Profile, error) {
	profile, err := charset.Resolve(lang, opts.EncodingMode, opts.Encoding, data, opts.EncodingFallback)
	if err != nil {
		return nil, profile, err
	}

	text, err := transcode.Decode(data, profile.Name)
	if err != nil {
		return nil, profile, fmt.Errorf("legacy %s file: %w", lang, err)
	}

	f, err := strfile.Parse([]byte(text))
	if err != nil {
		return nil, profile, fmt.Errorf("legacy %s file: %w", lang, err)
	}

	overrides := make(map[string]string, f.Len())
	for k, v := range f.Values() {
		if v != "" {
			overrides[k] = v
		}
	}
	return overrides, profile, nil
}

// ---------------------------------------------------------------------------
// Filling
// ---------------------------------------------------------------------------

// FillMissing fills every empty key of current, using template as the source
// of strings and overrides as the human translations for lang. It never
// rewrites a value that is already present. Per-key failures end up in
// Result.Errors; the returned table always reflects every key that did
// succeed.
func FillMissing(ctx context.Context, template, current *strfile.File, overrides map[string]string, lang string, opts Options) *Result {
	res := &Result{Table: current}

	missing := current.Missing()
	total := len(missing)
	calls := 0

	for done, key := range missing {
		if ctx.Err() != nil {
			res.Errors = append(res.Errors, &KeyError{Lang: lang, Key: key, Err: ctx.Err()})
			return res
		}

		src, ok := template.Get(key)
		if !ok || src == "" {
			continue
		}

		if v, found := overrides[key]; found {
			current.Set(key, v)
			res.Human++
			opts.progress(lang, done+1, total)
			continue
		}

		if opts.Translate == nil {
			continue
		}

		if calls > 0 && opts.RequestDelay > 0 {
			if err := sleepCtx(ctx, opts.RequestDelay); err != nil {
				res.Errors = append(res.Errors, &KeyError{Lang: lang, Key: key, Err: err})
				return res
			}
		}
		calls++

		value, err := opts.translateKey(ctx, src, lang)
		if err != nil {
			opts.logError("translate %s/%s: %v", lang, key, err)
			res.Errors = append(res.Errors, &KeyError{Lang: lang, Key: key, Err: err})
			continue
		}

		if opts.Verbose {
			opts.log("%s/%s: %q -> %q", lang, key, src, value)
		}
		current.Set(key, value)
		res.Machine++
		opts.progress(lang, done+1, total)
	}

	return res
}

// translateKey runs the guard → translate → normalize pipeline for one
// source string, retrying the external call with a fixed delay.
func (o *Options) translateKey(ctx context.Context, src, lang string) (string, error) {
	guarded := guard.Protect(src, o.Format)

	var lastErr error
	for attempt := 0; attempt <= o.effectiveMaxRetries(); attempt++ {
		if attempt > 0 {
			if err := sleepCtx(ctx, o.effectiveRetryDelay()); err != nil {
				return "", err
			}
		}
		raw, err := o.Translate(ctx, o.effectiveSource(), lang, o.Format, guarded)
		if err == nil {
			return guard.Normalize(raw, src, o.Format), nil
		}
		lastErr = err
	}
	return "", fmt.Errorf("after %d retries: %w", o.effectiveMaxRetries(), lastErr)
}

func (o *Options) progress(lang string, done, total int) {
	if o.OnProgress != nil {
		o.OnProgress(lang, done, total)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
