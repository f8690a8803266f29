// Package normalizer maps free-text drug names to canonical catalog names.
package normalizer

import (
	"context"
	"strings"
	"unicode"

	"github.com/giygas/drug-interactions-api/interfaces"
	"github.com/giygas/drug-interactions-api/logging"
	"github.com/giygas/drug-interactions-api/matcher"
	"github.com/giygas/drug-interactions-api/metrics"
	"github.com/giygas/drug-interactions-api/translator"
	"golang.org/x/text/language"
)

// DefaultThreshold is the minimum score for a canonical match
const DefaultThreshold = 80

// Options configures a Normalizer
type Options struct {
	Threshold      float64
	Script         *unicode.RangeTable // text with any rune in Script is translated
	SourceLanguage language.Tag
	TargetLanguage language.Tag
}

// DefaultOptions translates Thai to English and matches at 80
func DefaultOptions() Options {
	return Options{
		Threshold:      DefaultThreshold,
		Script:         translator.ThaiBlock,
		SourceLanguage: language.Thai,
		TargetLanguage: language.English,
	}
}

// Normalizer cleans raw names and matches them against a catalog index
type Normalizer struct {
	translator interfaces.Translator
	opts       Options
}

// NewNormalizer creates a normalizer. A nil translator disables translation.
func NewNormalizer(tr interfaces.Translator, opts Options) *Normalizer {
	if tr == nil {
		tr = translator.DisabledTranslator{}
	}
	if opts.Script == nil {
		opts.Script = translator.ThaiBlock
	}
	return &Normalizer{translator: tr, opts: opts}
}

// Threshold returns the configured match threshold
func (n *Normalizer) Threshold() float64 {
	return n.opts.Threshold
}

// Clean translates text written in the source script, then lower-cases and trims it.
// A failed translation keeps the original text.
func (n *Normalizer) Clean(ctx context.Context, raw string) string {
	text := raw
	if translator.ContainsScript(raw, n.opts.Script) {
		translated, err := n.translator.Translate(ctx, raw, n.opts.SourceLanguage, n.opts.TargetLanguage)
		if err != nil {
			metrics.TranslationFailuresTotal.Inc()
			logging.Warn("Translation failed, matching untranslated text", "input", raw, "error", err)
		} else {
			text = translated
		}
	}
	return strings.ToLower(strings.TrimSpace(text))
}

// Normalize returns the canonical name closest to raw, or the cleaned input
// when the index is empty or the best score is under the threshold.
// Empty input is returned unchanged.
func (n *Normalizer) Normalize(ctx context.Context, index *matcher.Index, raw string) string {
	if raw == "" {
		return raw
	}

	cleaned := n.Clean(ctx, raw)
	if cleaned == "" {
		// whitespace only input
		return raw
	}

	match, ok := index.Best(cleaned)
	if !ok || match.Score < n.opts.Threshold {
		logging.Debug("No confident match", "input", cleaned, "best", match.Name, "score", match.Score)
		return cleaned
	}
	return match.Name
}
