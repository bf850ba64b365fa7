package detect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	chromem "github.com/philippgille/chromem-go"

	"github.com/haven-ai/haven/pkg/httputil"
	"github.com/haven-ai/haven/pkg/lexicon"
)

// SeedPhrase is one reference disclosure used for similarity matching.
// Seeds are phrasings the lexicon misses: no trigger keywords, same intent.
type SeedPhrase struct {
	Text     string
	Category lexicon.Category
}

// SemanticDetector matches input against seed disclosures by embedding
// similarity. It catches paraphrases that share no vocabulary with the
// lexicon.
type SemanticDetector struct {
	db         *chromem.DB
	collection *chromem.Collection
	threshold  float32
	mu         sync.RWMutex
	ready      bool
}

// SemanticMatch is the best seed match above threshold.
type SemanticMatch struct {
	Category    lexicon.Category
	Similarity  float32
	MatchedText string
}

// NewSemanticDetector creates a detector backed by Ollama embeddings at
// ollamaURL. Call LoadSeeds before Detect.
func NewSemanticDetector(ollamaURL string) (*SemanticDetector, error) {
	db := chromem.NewDB()

	embeddingFunc := newOllamaEmbeddingFunc("nomic-embed-text", ollamaURL)

	collection, err := db.CreateCollection("crisis_phrases", nil, embeddingFunc)
	if err != nil {
		return nil, fmt.Errorf("failed to create collection: %w", err)
	}

	return &SemanticDetector{
		db:         db,
		collection: collection,
		threshold:  0.65,
	}, nil
}

// CheckOllama verifies the embedding backend answers. A down backend
// should fail fast here, not hang through the model-tier timeout once
// per seed phrase.
func CheckOllama(ctx context.Context, baseURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/tags", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := httputil.FastClient().Do(req)
	if err != nil {
		return fmt.Errorf("ollama unreachable at %s: %w", baseURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}
	return nil
}

// newOllamaEmbeddingFunc builds an embedding function against Ollama's
// /api/embeddings endpoint.
func newOllamaEmbeddingFunc(model, baseURL string) chromem.EmbeddingFunc {
	client := httputil.ModelClient()

	return func(ctx context.Context, text string) ([]float32, error) {
		reqBody := map[string]string{
			"model":  model,
			"prompt": text,
		}
		jsonData, err := json.Marshal(reqBody)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, "POST", baseURL+"/api/embeddings", bytes.NewBuffer(jsonData))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("request failed: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("ollama embedding returned status %d", resp.StatusCode)
		}

		var result struct {
			Embedding []float32 `json:"embedding"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
		return result.Embedding, nil
	}
}

// LoadSeeds embeds the seed phrases into the vector store. Documents are
// added sequentially to avoid overwhelming the embedding backend.
func (sd *SemanticDetector) LoadSeeds(ctx context.Context) error {
	sd.mu.Lock()
	defer sd.mu.Unlock()

	seeds := seedPhrases()
	docs := make([]chromem.Document, len(seeds))
	for i, s := range seeds {
		docs[i] = chromem.Document{
			ID:      fmt.Sprintf("seed_%d", i),
			Content: s.Text,
			Metadata: map[string]string{
				"category": string(s.Category),
			},
		}
	}

	if err := sd.collection.AddDocuments(ctx, docs, 1); err != nil {
		return fmt.Errorf("failed to add seed phrases: %w", err)
	}

	sd.ready = true
	return nil
}

// IsReady reports whether LoadSeeds has completed.
func (sd *SemanticDetector) IsReady() bool {
	sd.mu.RLock()
	defer sd.mu.RUnlock()
	return sd.ready
}

// Detect returns the best crisis seed match above threshold, or nil when
// nothing comes close. Neutral seeds suppress near-misses on everyday talk.
func (sd *SemanticDetector) Detect(ctx context.Context, text string) (*SemanticMatch, error) {
	sd.mu.RLock()
	defer sd.mu.RUnlock()

	if !sd.ready {
		return nil, fmt.Errorf("semantic detector not initialized, call LoadSeeds first")
	}

	results, err := sd.collection.Query(ctx, strings.ToLower(text), 3, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	if len(results) == 0 {
		return nil, nil
	}

	best := results[0]
	category := lexicon.Category(best.Metadata["category"])
	if category == lexicon.CategoryGeneral {
		return nil, nil
	}
	if best.Similarity < sd.threshold {
		return nil, nil
	}

	return &SemanticMatch{
		Category:    category,
		Similarity:  best.Similarity,
		MatchedText: best.Content,
	}, nil
}

// SetThreshold updates the similarity threshold.
func (sd *SemanticDetector) SetThreshold(t float32) {
	sd.mu.Lock()
	defer sd.mu.Unlock()
	sd.threshold = t
}

var (
	cachedSeeds     []SeedPhrase
	cachedSeedsOnce sync.Once
)

// seedPhrases returns the curated paraphrase database. Each crisis seed is
// a disclosure with little or no lexicon vocabulary; the general seeds
// anchor everyday distress so it does not pull toward a crisis category.
func seedPhrases() []SeedPhrase {
	cachedSeedsOnce.Do(func() {
		cachedSeeds = []SeedPhrase{
			{"i don't see a way forward anymore", lexicon.CategorySuicide},
			{"everyone would be better off without me around", lexicon.CategorySuicide},
			{"i keep thinking about how to make it all stop", lexicon.CategorySuicide},
			{"i wrote letters to my family last night", lexicon.CategorySuicide},

			{"i deserve the pain i give myself", lexicon.CategorySelfHarm},
			{"i've been scratching my arms until they sting", lexicon.CategorySelfHarm},
			{"marking my skin is the only relief i get", lexicon.CategorySelfHarm},

			{"i'm going to make him regret what he did to me", lexicon.CategoryViolence},
			{"i keep imagining putting my hands on her", lexicon.CategoryViolence},

			{"my partner goes through my phone and won't let me see my friends", lexicon.CategoryAbuse},
			{"he says it's my fault when he loses his temper with me", lexicon.CategoryAbuse},
			{"i'm not allowed to leave the house without permission", lexicon.CategoryAbuse},

			{"i took way more of my medication than i was supposed to", lexicon.CategoryOverdose},
			{"i've been mixing my prescriptions with alcohol to feel numb", lexicon.CategoryOverdose},

			{"work has been really stressful this week", lexicon.CategoryGeneral},
			{"i had an argument with my roommate about dishes", lexicon.CategoryGeneral},
			{"i'm nervous about my exam tomorrow", lexicon.CategoryGeneral},
			{"my favorite show got cancelled and i'm bummed", lexicon.CategoryGeneral},
		}
	})
	return cachedSeeds
}

// SeedCount returns the number of seed phrases.
func (sd *SemanticDetector) SeedCount() int {
	return len(seedPhrases())
}
