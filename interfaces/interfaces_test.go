package interfaces_test

import (
	"errors"
	"testing"

	"github.com/giygas/drug-interactions-api/catalogparser"
	"github.com/giygas/drug-interactions-api/catalogparser/entities"
	"github.com/giygas/drug-interactions-api/classifier"
	"github.com/giygas/drug-interactions-api/data"
	"github.com/giygas/drug-interactions-api/engine"
	"github.com/giygas/drug-interactions-api/interfaces"
	"github.com/giygas/drug-interactions-api/scheduler"
	"github.com/giygas/drug-interactions-api/translator"
)

// The concrete implementations must keep satisfying the contracts
var (
	_ interfaces.DataStore             = (*data.DataContainer)(nil)
	_ interfaces.Parser                = (*catalogparser.CatalogParser)(nil)
	_ interfaces.Translator            = translator.DisabledTranslator{}
	_ interfaces.Translator            = (*translator.HTTPTranslator)(nil)
	_ interfaces.ClassificationBackend = (*classifier.ChatCompletionClient)(nil)
	_ interfaces.Classifier            = (*classifier.CachedClassifier)(nil)
	_ interfaces.Engine                = (*engine.Engine)(nil)
	_ interfaces.Scheduler             = (*scheduler.Scheduler)(nil)
)

func TestClassificationOutcomeFallback(t *testing.T) {
	ok := interfaces.ClassificationOutcome{
		Classification: entities.Classification{Severity: entities.SeverityMajor, Explanation: "bleeding"},
	}
	if ok.Fallback() {
		t.Error("Expected an outcome without error not to be a fallback")
	}

	failed := interfaces.ClassificationOutcome{
		Classification: entities.Classification{Severity: entities.SeverityModerate},
		Err:            errors.New("timeout"),
	}
	if !failed.Fallback() {
		t.Error("Expected an outcome with an error to be a fallback")
	}
}

func TestDataContainerSnapshotContract(t *testing.T) {
	var store interfaces.DataStore = data.NewDataContainer()

	if store.GetSnapshot() != nil {
		t.Error("Expected no snapshot before the first load")
	}
	if store.IsLoaded() {
		t.Error("Expected IsLoaded to be false before the first load")
	}

	if !store.BeginUpdate() {
		t.Fatal("Expected BeginUpdate to succeed")
	}
	if store.BeginUpdate() {
		t.Error("Expected a second BeginUpdate to fail while updating")
	}
	store.EndUpdate()

	store.UpdateData(&interfaces.CatalogSnapshot{
		Drugs: []string{"aspirin", "warfarin"},
		Facts: []entities.InteractionFact{{DrugA: "Warfarin", DrugB: "Aspirin", Description: "bleeding"}},
	})
	if !store.IsLoaded() {
		t.Error("Expected IsLoaded after publishing a snapshot with facts")
	}
	if len(store.GetDrugs()) != 2 {
		t.Errorf("Expected 2 drugs, got %d", len(store.GetDrugs()))
	}
}
