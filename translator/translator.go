// Package translator detects text outside the working alphabet and
// translates it through an external translation service.
package translator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode"

	"github.com/giygas/drug-interactions-api/interfaces"
	"github.com/giygas/drug-interactions-api/logging"
	"golang.org/x/text/language"
)

// ErrTranslationUnavailable is returned when the translation service cannot be used
var ErrTranslationUnavailable = errors.New("translation unavailable")

// ThaiBlock is the Unicode Thai block, U+0E00 to U+0E7F
var ThaiBlock = &unicode.RangeTable{
	R16: []unicode.Range16{{Lo: 0x0E00, Hi: 0x0E7F, Stride: 1}},
}

// ContainsScript reports whether any rune of s falls in table.
func ContainsScript(s string, table *unicode.RangeTable) bool {
	return strings.IndexFunc(s, func(r rune) bool {
		return unicode.Is(table, r)
	}) >= 0
}

// Compile-time checks
var (
	_ interfaces.Translator = (*HTTPTranslator)(nil)
	_ interfaces.Translator = DisabledTranslator{}
)

// DisabledTranslator is used when no translation service is configured.
type DisabledTranslator struct{}

// Translate always fails with ErrTranslationUnavailable
func (DisabledTranslator) Translate(_ context.Context, _ string, _, _ language.Tag) (string, error) {
	return "", fmt.Errorf("%w: no translation service configured", ErrTranslationUnavailable)
}

// HTTPTranslator talks to a LibreTranslate compatible API
type HTTPTranslator struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewHTTPTranslator creates a translator for the service at baseURL
func NewHTTPTranslator(baseURL, apiKey string, timeout time.Duration) *HTTPTranslator {
	return &HTTPTranslator{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type translateRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

type translateResponse struct {
	TranslatedText string `json:"translatedText"`
	Error          string `json:"error"`
}

// Translate sends text to the service and returns the translation
func (t *HTTPTranslator) Translate(ctx context.Context, text string, source, target language.Tag) (string, error) {
	body, err := json.Marshal(translateRequest{
		Q:      text,
		Source: baseCode(source),
		Target: baseCode(target),
		Format: "text",
		APIKey: t.apiKey,
	})
	if err != nil {
		return "", fmt.Errorf("%w: failed to encode request: %v", ErrTranslationUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/translate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: failed to build request: %v", ErrTranslationUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTranslationUnavailable, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logging.Warn("Failed to close translation response body", "error", err)
		}
	}()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: failed to read response: %v", ErrTranslationUnavailable, err)
	}

	var decoded translateResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return "", fmt.Errorf("%w: invalid response (status %d): %v", ErrTranslationUnavailable, resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d: %s", ErrTranslationUnavailable, resp.StatusCode, decoded.Error)
	}
	if strings.TrimSpace(decoded.TranslatedText) == "" {
		return "", fmt.Errorf("%w: empty translation", ErrTranslationUnavailable)
	}

	return decoded.TranslatedText, nil
}

// baseCode returns the ISO 639 code the service expects ("th", "en")
func baseCode(tag language.Tag) string {
	base, _ := tag.Base()
	return base.String()
}
