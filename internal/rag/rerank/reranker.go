package rerank

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/akolanti/DocQA/internal/config"
	"github.com/akolanti/DocQA/internal/domain/commonModels"
	"github.com/akolanti/DocQA/internal/metrics"
	"github.com/akolanti/DocQA/internal/rag/embedding"
	"github.com/akolanti/DocQA/internal/rag/vectorDB"
	"github.com/akolanti/DocQA/pkg/logger_i"
	"github.com/cespare/xxhash/v2"
	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
)

type sentenceSplitter interface {
	Tokenize(text string) []*sentences.Sentence
}

type Reranker struct {
	embedder embedding.Embedder
	splitter sentenceSplitter
	logger   *logger_i.Logger
}

func NewReranker(embedder embedding.Embedder) *Reranker {
	logger := logger_i.NewLogger("Reranker")
	r := &Reranker{embedder: embedder, logger: logger}

	tokenizer, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		logger.Warn("sentence tokenizer unavailable, snippets fall back to a prefix", "error", err)
	} else {
		r.splitter = tokenizer
	}
	return r
}

type scored struct {
	candidate commonModels.Candidate
	score     float32
}

// Rerank orders candidates by similarity to answer and returns at most
// MaxSnippets display snippets. Candidates with identical trimmed content are
// kept once. When nothing scores above zero the first FallbackSnippets unique
// candidates are returned with score 0.
func (r *Reranker) Rerank(ctx context.Context, answer string, candidates []commonModels.Candidate) ([]commonModels.Snippet, error) {
	logger := r.logger.WithTrace(ctx)
	defer metrics.DependencyLatency("rerank")()

	unique := dedupe(candidates)
	if len(unique) == 0 {
		return []commonModels.Snippet{}, nil
	}

	texts := make([]string, 0, len(unique)+1)
	texts = append(texts, answer)
	for _, c := range unique {
		texts = append(texts, c.Content)
	}
	vectors, err := embedding.EmbedAll(ctx, r.embedder, texts)
	if err != nil {
		return nil, fmt.Errorf("rerank embedding failed: %w", err)
	}

	var ranked []scored
	for i, c := range unique {
		score := vectorDB.Cosine(vectors[0], vectors[i+1])
		if score > 0 {
			ranked = append(ranked, scored{candidate: c, score: score})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	if len(ranked) == 0 {
		logger.Warn("No relevant sources above threshold, returning fallback top sources.")
		for _, c := range unique[:min(config.FallbackSnippets, len(unique))] {
			ranked = append(ranked, scored{candidate: c, score: 0})
		}
	}

	snippets := make([]commonModels.Snippet, 0, min(len(ranked), config.MaxSnippets))
	for _, s := range ranked[:min(len(ranked), config.MaxSnippets)] {
		snippets = append(snippets, commonModels.Snippet{
			Snippet:  r.snippet(s.candidate.Content),
			Metadata: commonModels.MetaToMap(s.candidate.Meta),
			Score:    s.score,
		})
	}
	return snippets, nil
}

// dedupe drops empty contents and repeats of the same trimmed content, keeping the first
func dedupe(candidates []commonModels.Candidate) []commonModels.Candidate {
	seen := make(map[uint64]struct{}, len(candidates))
	unique := make([]commonModels.Candidate, 0, len(candidates))
	for _, c := range candidates {
		content := strings.TrimSpace(c.Content)
		if content == "" {
			continue
		}
		h := xxhash.Sum64String(content)
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		unique = append(unique, c)
	}
	return unique
}

func (r *Reranker) snippet(content string) string {
	if r.splitter != nil {
		for _, s := range r.splitter.Tokenize(content) {
			if text := strings.TrimSpace(s.Text); text != "" {
				return text
			}
		}
	}
	runes := []rune(content)
	if len(runes) > config.SnippetFallbackSize {
		runes = runes[:config.SnippetFallbackSize]
	}
	return strings.TrimSpace(string(runes))
}
