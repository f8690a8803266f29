package commands

import (
	"github.com/giygas/drug-interactions-api/catalogparser"
	"github.com/giygas/drug-interactions-api/classifier"
	"github.com/giygas/drug-interactions-api/config"
	"github.com/giygas/drug-interactions-api/data"
	"github.com/giygas/drug-interactions-api/engine"
	"github.com/giygas/drug-interactions-api/handlers"
	"github.com/giygas/drug-interactions-api/health"
	"github.com/giygas/drug-interactions-api/interfaces"
	"github.com/giygas/drug-interactions-api/normalizer"
	"github.com/giygas/drug-interactions-api/scheduler"
	"github.com/giygas/drug-interactions-api/translator"
	"github.com/giygas/drug-interactions-api/validation"
)

// App holds the wired components shared by every command
type App struct {
	Config     *config.Config
	Store      *data.DataContainer
	Validator  interfaces.DataValidator
	Scheduler  *scheduler.Scheduler
	Classifier *classifier.CachedClassifier
	Engine     *engine.Engine
}

// NewApp wires the catalog store, the collaborators and the engine from cfg.
// Nothing is loaded or started.
func NewApp(cfg *config.Config) *App {
	store := data.NewDataContainer()
	validator := validation.NewDataValidator(cfg.MaxDrugsPerRequest)

	sched := scheduler.NewScheduler(store, catalogparser.NewCatalogParser(), validator, scheduler.Options{
		CatalogPath: cfg.CatalogPath,
		ReloadAt:    cfg.CatalogReloadAt,
	})

	var tr interfaces.Translator = translator.DisabledTranslator{}
	if cfg.TranslatorURL != "" {
		tr = translator.NewHTTPTranslator(cfg.TranslatorURL, cfg.TranslatorAPIKey, cfg.ClassifierTimeout)
	}

	normOpts := normalizer.DefaultOptions()
	normOpts.Threshold = cfg.FuzzyThreshold
	normOpts.SourceLanguage = cfg.SourceLanguage
	normOpts.TargetLanguage = cfg.WorkingLanguage

	backend := classifier.NewChatCompletionClient(classifier.ChatCompletionConfig{
		URL:            cfg.ClassifierURL,
		APIKey:         cfg.ClassifierAPIKey,
		Model:          cfg.ClassifierModel,
		Timeout:        cfg.ClassifierTimeout,
		RequestsPerSec: cfg.ClassifierRate,
	})
	cached := classifier.NewCachedClassifier(backend, cfg.SourceLanguage, cfg.ClassifierTimeout)

	eng := engine.New(store, normalizer.NewNormalizer(tr, normOpts), cached, engine.Options{
		SearchLimit: cfg.SearchLimit,
		Language:    cfg.SourceLanguage,
	})

	return &App{
		Config:     cfg,
		Store:      store,
		Validator:  validator,
		Scheduler:  sched,
		Classifier: cached,
		Engine:     eng,
	}
}

// HTTPHandler builds the request handlers over the app's engine
func (a *App) HTTPHandler() interfaces.HTTPHandler {
	return handlers.NewHTTPHandler(a.Engine, a.Validator, health.NewHealthChecker(a.Engine))
}
