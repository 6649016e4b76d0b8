package probe

import (
	"context"
	"strings"
	"testing"
)

func TestTokenize(t *testing.T) {
	tokens := Tokenize("Quantum Decoherence   accelerates\tMarket volatility.")

	expected := []string{"quantum", "decoherence", "accelerates", "market", "volatility."}
	if len(tokens) != len(expected) {
		t.Fatalf("expected %d tokens, got %d", len(expected), len(tokens))
	}
	for i := range tokens {
		if tokens[i] != expected[i] {
			t.Errorf("token %d: expected %q, got %q", i, expected[i], tokens[i])
		}
	}

	if len(Tokenize("")) != 0 {
		t.Error("expected no tokens for empty text")
	}
}

func TestNewVectorizer(t *testing.T) {
	factory := NewFactory().WithSeed(13)

	v, err := NewVectorizer(context.Background(), factory, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(v.KnowledgeBase()) == 0 {
		t.Fatal("expected generated knowledge base")
	}
	if v.Trie().Size() != len(v.KnowledgeBase()) {
		t.Errorf("expected trie size %d, got %d", len(v.KnowledgeBase()), v.Trie().Size())
	}
	if v.Stats().ActualSize != len(v.KnowledgeBase()) {
		t.Errorf("stats actual size %d does not match knowledge base %d", v.Stats().ActualSize, len(v.KnowledgeBase()))
	}
}

func TestVectorizerLookup(t *testing.T) {
	factory := NewFactory().WithSeed(13)

	v, err := NewVectorizer(context.Background(), factory, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	known := v.KnowledgeBase()[0].Text
	payload, ok := v.Lookup(known)
	if !ok {
		t.Fatalf("expected known statement to be found: %q", known)
	}
	if payload != known {
		t.Errorf("expected payload %q, got %q", known, payload)
	}

	if _, ok := v.Lookup("this statement was never generated"); ok {
		t.Error("expected unknown statement not to be found")
	}
}

func TestFetchTruthCorpus(t *testing.T) {
	factory := NewFactory().
		WithSeed(1).
		WithVocabulary([]string{"Alpha"}, []string{"binds"}, []string{"gamma"})

	v, err := NewVectorizer(context.Background(), factory, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Every generated statement starts with "alpha"
	corpus := v.FetchTruthCorpus("alpha binds")
	if len(corpus) != len(v.KnowledgeBase()) {
		t.Fatalf("expected %d corpus items, got %d", len(v.KnowledgeBase()), len(corpus))
	}

	for _, item := range corpus {
		if item.Source != CorpusSource {
			t.Errorf("expected source %q, got %q", CorpusSource, item.Source)
		}
		if item.Relevance <= 0 || item.Relevance > 1 {
			t.Errorf("relevance %v outside (0, 1]", item.Relevance)
		}
		if !strings.Contains(strings.ToLower(item.Snippet), "alpha") {
			t.Errorf("snippet does not contain matched token: %q", item.Snippet)
		}
	}
}

func TestFetchTruthCorpusFirstTokenOnly(t *testing.T) {
	factory := NewFactory().
		WithSeed(1).
		WithVocabulary([]string{"Alpha"}, []string{"binds"}, []string{"gamma"})

	v, err := NewVectorizer(context.Background(), factory, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Matching is anchored on the claim's first token only
	if len(v.FetchTruthCorpus("binds alpha")) != len(v.KnowledgeBase()) {
		t.Error("expected match on first token present in statements")
	}
	if v.FetchTruthCorpus("unmatched alpha") != nil {
		t.Error("expected no match when first token is absent")
	}
}

func TestFetchTruthCorpusSentenceFinalWord(t *testing.T) {
	factory := NewFactory().
		WithSeed(1).
		WithVocabulary([]string{"Alpha"}, []string{"binds"}, []string{"gamma"})

	v, err := NewVectorizer(context.Background(), factory, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// "gamma" only ever appears as "gamma." at the end of the simple
	// statement, yet it must still match every statement containing it.
	corpus := v.FetchTruthCorpus("gamma claims")
	if len(corpus) != len(v.KnowledgeBase()) {
		t.Fatalf("expected %d corpus items for sentence-final word, got %d", len(v.KnowledgeBase()), len(corpus))
	}

	// Punctuation in the claim itself is also ignored
	if len(v.FetchTruthCorpus("gamma.")) != len(v.KnowledgeBase()) {
		t.Error("expected punctuated claim token to match")
	}

	// Relevance compares bare forms: "alpha binds gamma" fully matches
	// "Alpha binds gamma." despite the trailing period.
	for _, item := range v.FetchTruthCorpus("alpha binds gamma") {
		if item.Relevance != 1.0 {
			t.Errorf("expected full relevance, got %v for %q", item.Relevance, item.Snippet)
		}
	}
}

func TestFetchTruthCorpusEmptyClaim(t *testing.T) {
	v, err := NewVectorizer(context.Background(), NewFactory().WithSeed(2), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if v.FetchTruthCorpus("") != nil {
		t.Error("expected nil corpus for empty claim")
	}
	if v.FetchTruthCorpus("   ") != nil {
		t.Error("expected nil corpus for blank claim")
	}
}

func TestFetchTruthCorpusRelevance(t *testing.T) {
	factory := NewFactory().
		WithSeed(1).
		WithVocabulary([]string{"Alpha"}, []string{"binds"}, []string{"gamma"})

	v, err := NewVectorizer(context.Background(), factory, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Both claim tokens appear in every statement
	for _, item := range v.FetchTruthCorpus("alpha binds") {
		if item.Relevance != 1.0 {
			t.Errorf("expected full relevance, got %v for %q", item.Relevance, item.Snippet)
		}
	}

	// Only the first of four claim tokens matches some statements
	for _, item := range v.FetchTruthCorpus("alpha never seen here") {
		if item.Relevance != 0.25 {
			t.Errorf("expected relevance 0.25, got %v for %q", item.Relevance, item.Snippet)
		}
	}
}
