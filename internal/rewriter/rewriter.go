package rewriter

import (
	"context"
	"fmt"
	"strings"

	"ArticleEnricher/internal/domain"
	"ArticleEnricher/internal/ports"
)

const instruction = `You are an expert editor. Rewrite the following article to be more comprehensive, using information from the provided references.
Ensure the formatting is professional (Markdown).
At the bottom, list the citations for the references used.`

// Rewriter turns an article plus reference texts into one generation request.
type Rewriter struct {
	generator ports.Generator
}

var _ ports.Rewriter = (*Rewriter)(nil)

// New wraps a generator.
func New(generator ports.Generator) *Rewriter {
	return &Rewriter{generator: generator}
}

// Rewrite returns the generator output verbatim. Generator failures come
// back as *domain.GenerationError.
func (r *Rewriter) Rewrite(ctx context.Context, article domain.Article, references []domain.Reference) (string, error) {
	if r.generator == nil {
		return "", &domain.GenerationError{Err: fmt.Errorf("generator is not configured")}
	}

	text, err := r.generator.Generate(ctx, BuildPrompt(article, references))
	if err != nil {
		return "", &domain.GenerationError{Model: r.generator.Model(), Err: err}
	}
	return text, nil
}

// BuildPrompt lays out the instruction, the original article and every reference.
func BuildPrompt(article domain.Article, references []domain.Reference) string {
	var b strings.Builder

	b.WriteString(instruction)
	b.WriteString("\n\nOriginal Article Title: ")
	b.WriteString(article.Title)
	b.WriteString("\nOriginal Article Content:\n")
	b.WriteString(article.Content)
	b.WriteString("\n\nReferences:\n")

	for i, ref := range references {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "Reference %d (%s):\n%s", i+1, ref.URL, ref.Content)
	}

	b.WriteString("\n\nRewritten Article:\n")
	return b.String()
}
