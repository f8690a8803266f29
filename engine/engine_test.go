package engine

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/giygas/drug-interactions-api/catalogparser/entities"
	"github.com/giygas/drug-interactions-api/classifier"
	"github.com/giygas/drug-interactions-api/data"
	"github.com/giygas/drug-interactions-api/interfaces"
	"github.com/giygas/drug-interactions-api/matcher"
	"github.com/giygas/drug-interactions-api/normalizer"
	"github.com/giygas/drug-interactions-api/resolver"
	"golang.org/x/text/language"
)

type mockBackend struct {
	err   error
	calls atomic.Int32
}

func (m *mockBackend) Analyze(ctx context.Context, req interfaces.ClassificationRequest) (string, error) {
	m.calls.Add(1)
	if m.err != nil {
		return "", m.err
	}
	return `Sure. {"severity": "Major", "explanation": "เพิ่มความเสี่ยงเลือดออก"}`, nil
}

type mockTranslator struct {
	translations map[string]string
}

func (m *mockTranslator) Translate(ctx context.Context, text string, source, target language.Tag) (string, error) {
	if out, ok := m.translations[text]; ok {
		return out, nil
	}
	return "", errors.New("unknown phrase")
}

var testFacts = []entities.InteractionFact{
	{DrugA: "Warfarin", DrugB: "Aspirin", Description: "increased bleeding risk"},
	{DrugA: "Ibuprofen", DrugB: "Warfarin", Description: "ibuprofen may increase anticoagulant effect"},
	{DrugA: "Aspirin", DrugB: "Ibuprofen", Description: "reduced antiplatelet effect"},
}

var testDrugs = []string{"acetaminophen", "aspirin", "ibuprofen", "warfarin"}

func newStore(drugs []string, facts []entities.InteractionFact) *data.DataContainer {
	store := data.NewDataContainer()
	store.UpdateData(&interfaces.CatalogSnapshot{
		Drugs:     drugs,
		Facts:     facts,
		PairIndex: resolver.NewIndex(facts),
		DrugIndex: matcher.NewIndex(drugs),
		LoadedAt:  time.Now(),
	})
	return store
}

func newTestEngine(store interfaces.DataStore, backend interfaces.ClassificationBackend) *Engine {
	tr := &mockTranslator{translations: map[string]string{"วาร์ฟาริน": "Warfarin"}}
	return New(store,
		normalizer.NewNormalizer(tr, normalizer.DefaultOptions()),
		classifier.NewCachedClassifier(backend, language.Thai, time.Second),
		Options{Language: language.Thai},
	)
}

func TestCheckInteractionsExactNames(t *testing.T) {
	e := newTestEngine(newStore(testDrugs, testFacts), &mockBackend{})

	interactions, err := e.CheckInteractions(context.Background(), []string{"warfarin", "aspirin"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(interactions) != 1 {
		t.Fatalf("Expected 1 interaction, got %d", len(interactions))
	}

	got := interactions[0]
	if got.Drug1 != "warfarin" || got.Drug2 != "aspirin" {
		t.Errorf("Expected warfarin/aspirin, got %s/%s", got.Drug1, got.Drug2)
	}
	if got.Description != "increased bleeding risk" {
		t.Errorf("Expected catalog description, got %q", got.Description)
	}
	if !got.Severity.IsValid() {
		t.Errorf("Expected a valid severity, got %v", got.Severity)
	}
	if got.SeverityLocalized != "รุนแรงมาก" {
		t.Errorf("Expected Thai label for Major, got %q", got.SeverityLocalized)
	}
	if got.DescriptionLocalized != "เพิ่มความเสี่ยงเลือดออก" {
		t.Errorf("Expected classifier explanation, got %q", got.DescriptionLocalized)
	}
}

func TestCheckInteractionsIsOrderIndependent(t *testing.T) {
	e := newTestEngine(newStore(testDrugs, testFacts), &mockBackend{})

	interactions, err := e.CheckInteractions(context.Background(), []string{"aspirin", "warfarin"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(interactions) != 1 {
		t.Fatalf("Expected 1 interaction, got %d", len(interactions))
	}
	if interactions[0].Drug1 != "aspirin" || interactions[0].Drug2 != "warfarin" {
		t.Errorf("Expected submitted order aspirin/warfarin, got %s/%s", interactions[0].Drug1, interactions[0].Drug2)
	}
	if interactions[0].Description != "increased bleeding risk" {
		t.Errorf("Expected the stored fact, got %q", interactions[0].Description)
	}
}

func TestCheckInteractionsMisspelledNames(t *testing.T) {
	e := newTestEngine(newStore(testDrugs, testFacts), &mockBackend{})

	interactions, err := e.CheckInteractions(context.Background(), []string{"wafarin", "asprin"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(interactions) != 1 {
		t.Fatalf("Expected 1 interaction, got %d", len(interactions))
	}
	if interactions[0].Drug1 != "warfarin" || interactions[0].Drug2 != "aspirin" {
		t.Errorf("Expected typos to normalize to warfarin/aspirin, got %s/%s", interactions[0].Drug1, interactions[0].Drug2)
	}
	if interactions[0].Description != "increased bleeding risk" {
		t.Errorf("Expected the same fact as the exact spelling, got %q", interactions[0].Description)
	}
}

func TestCheckInteractionsTranslatedName(t *testing.T) {
	e := newTestEngine(newStore(testDrugs, testFacts), &mockBackend{})

	interactions, err := e.CheckInteractions(context.Background(), []string{"วาร์ฟาริน", "Aspirin"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(interactions) != 1 || interactions[0].Drug1 != "warfarin" {
		t.Errorf("Expected Thai name to resolve to warfarin, got %+v", interactions)
	}
}

func TestCheckInteractionsInsufficientInputs(t *testing.T) {
	e := newTestEngine(newStore(testDrugs, testFacts), &mockBackend{})

	for _, names := range [][]string{nil, {}, {"warfarin"}} {
		if _, err := e.CheckInteractions(context.Background(), names); !errors.Is(err, ErrInsufficientInputs) {
			t.Errorf("CheckInteractions(%v): expected ErrInsufficientInputs, got %v", names, err)
		}
	}
}

func TestCheckInteractionsUnrelatedNames(t *testing.T) {
	e := newTestEngine(newStore(testDrugs, testFacts), &mockBackend{})

	interactions, err := e.CheckInteractions(context.Background(), []string{"warfarin", "metformin"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if interactions == nil || len(interactions) != 0 {
		t.Errorf("Expected an empty list, got %v", interactions)
	}
}

func TestCheckInteractionsSameDrugTwice(t *testing.T) {
	e := newTestEngine(newStore(testDrugs, testFacts), &mockBackend{})

	interactions, err := e.CheckInteractions(context.Background(), []string{"warfarin", "Warfarin "})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(interactions) != 0 {
		t.Errorf("Expected no self interactions, got %v", interactions)
	}
}

func TestCheckInteractionsCombinationOrder(t *testing.T) {
	e := newTestEngine(newStore(testDrugs, testFacts), &mockBackend{})

	interactions, err := e.CheckInteractions(context.Background(), []string{"warfarin", "aspirin", "ibuprofen"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	expected := [][2]string{{"warfarin", "aspirin"}, {"warfarin", "ibuprofen"}, {"aspirin", "ibuprofen"}}
	if len(interactions) != len(expected) {
		t.Fatalf("Expected %d interactions, got %d", len(expected), len(interactions))
	}
	for i, pair := range expected {
		if interactions[i].Drug1 != pair[0] || interactions[i].Drug2 != pair[1] {
			t.Errorf("Position %d: expected %s/%s, got %s/%s", i, pair[0], pair[1], interactions[i].Drug1, interactions[i].Drug2)
		}
	}
}

func TestCheckInteractionsClassifierUnreachable(t *testing.T) {
	e := newTestEngine(newStore(testDrugs, testFacts), &mockBackend{err: errors.New("dial tcp: connection refused")})

	interactions, err := e.CheckInteractions(context.Background(), []string{"warfarin", "aspirin"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(interactions) != 1 {
		t.Fatalf("Expected 1 interaction, got %d", len(interactions))
	}
	if interactions[0].Severity != entities.SeverityMinor {
		t.Errorf("Expected Minor, got %v", interactions[0].Severity)
	}
	if interactions[0].SeverityLocalized != "เล็กน้อย" {
		t.Errorf("Expected Thai label for Minor, got %q", interactions[0].SeverityLocalized)
	}
	if !strings.Contains(interactions[0].DescriptionLocalized, "connection refused") {
		t.Errorf("Expected diagnostic placeholder, got %q", interactions[0].DescriptionLocalized)
	}
}

func TestCheckInteractionsMemoizesClassification(t *testing.T) {
	backend := &mockBackend{}
	e := newTestEngine(newStore(testDrugs, testFacts), backend)

	first, _ := e.CheckInteractions(context.Background(), []string{"warfarin", "aspirin"})
	second, _ := e.CheckInteractions(context.Background(), []string{"aspirin", "warfarin"})

	if calls := backend.calls.Load(); calls != 1 {
		t.Errorf("Expected 1 classification call, got %d", calls)
	}
	if first[0].Severity != second[0].Severity || first[0].DescriptionLocalized != second[0].DescriptionLocalized {
		t.Error("Expected identical classifications")
	}
}

func TestEmptyCatalog(t *testing.T) {
	e := newTestEngine(data.NewDataContainer(), &mockBackend{})

	if results := e.Search(context.Background(), "anything"); results == nil || len(results) != 0 {
		t.Errorf("Expected empty search results, got %v", results)
	}

	interactions, err := e.CheckInteractions(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if interactions == nil || len(interactions) != 0 {
		t.Errorf("Expected an empty list, got %v", interactions)
	}
}

func TestSearch(t *testing.T) {
	e := newTestEngine(newStore(testDrugs, testFacts), &mockBackend{})

	results := e.Search(context.Background(), "asp")
	if len(results) == 0 || results[0] != "aspirin" {
		t.Errorf("Expected aspirin first, got %v", results)
	}

	if results := e.Search(context.Background(), ""); len(results) != 0 {
		t.Errorf("Expected no results for an empty query, got %v", results)
	}

	if results := e.Search(context.Background(), "วาร์ฟาริน"); len(results) == 0 || results[0] != "warfarin" {
		t.Errorf("Expected translated query to find warfarin, got %v", results)
	}
}

func TestSearchLimit(t *testing.T) {
	store := newStore(testDrugs, testFacts)
	e := New(store, nil, classifier.NewCachedClassifier(&mockBackend{}, language.Thai, time.Second), Options{SearchLimit: 1})

	if results := e.Search(context.Background(), "in"); len(results) > 1 {
		t.Errorf("Expected at most 1 result, got %v", results)
	}
}

func TestHealth(t *testing.T) {
	e := newTestEngine(newStore(testDrugs, testFacts), &mockBackend{})
	_, _ = e.CheckInteractions(context.Background(), []string{"warfarin", "aspirin"})

	report := e.Health()
	if !report.CatalogLoaded {
		t.Error("Expected catalog to be loaded")
	}
	if report.DrugCount != 4 || report.FactCount != 3 {
		t.Errorf("Expected 4 drugs and 3 facts, got %d and %d", report.DrugCount, report.FactCount)
	}
	if report.CachedClassifications != 1 {
		t.Errorf("Expected 1 cached classification, got %d", report.CachedClassifications)
	}

	empty := newTestEngine(data.NewDataContainer(), &mockBackend{})
	if empty.Health().CatalogLoaded {
		t.Error("Expected empty catalog to report not loaded")
	}
}

// swappingStore publishes the other snapshot after every read, as if a reload
// landed between two reads
type swappingStore struct {
	*data.DataContainer
	next *interfaces.CatalogSnapshot
}

func (s *swappingStore) read() *interfaces.CatalogSnapshot {
	current := s.DataContainer.GetSnapshot()
	s.DataContainer.UpdateData(s.next)
	s.next = current
	return current
}

func (s *swappingStore) GetSnapshot() *interfaces.CatalogSnapshot {
	return s.read()
}

func (s *swappingStore) IsLoaded() bool {
	snapshot := s.read()
	return snapshot != nil && len(snapshot.Facts) > 0
}

func TestHealthReadsOneSnapshot(t *testing.T) {
	emptyLoadedAt := time.Date(2026, 10, 1, 3, 0, 0, 0, time.UTC)
	store := &swappingStore{
		DataContainer: data.NewDataContainer(),
		next: &interfaces.CatalogSnapshot{
			Drugs:     testDrugs,
			Facts:     testFacts,
			PairIndex: resolver.NewIndex(testFacts),
			DrugIndex: matcher.NewIndex(testDrugs),
			LoadedAt:  time.Now(),
		},
	}
	store.DataContainer.UpdateData(&interfaces.CatalogSnapshot{Drugs: []string{}, LoadedAt: emptyLoadedAt})

	report := newTestEngine(store, &mockBackend{}).Health()

	if report.CatalogLoaded != (report.FactCount > 0) {
		t.Errorf("Expected CatalogLoaded to agree with FactCount, got loaded=%v facts=%d", report.CatalogLoaded, report.FactCount)
	}
	if report.CatalogLoaded || report.DrugCount != 0 {
		t.Errorf("Expected the empty snapshot read first, got loaded=%v drugs=%d", report.CatalogLoaded, report.DrugCount)
	}
	if !report.LastUpdated.Equal(emptyLoadedAt) {
		t.Errorf("Expected LastUpdated %v, got %v", emptyLoadedAt, report.LastUpdated)
	}
}
