package loader

import (
	"context"
	"fmt"

	"github.com/cloo-solutions/linkdigest/internal/domain"
)

// Loader turns a classified link into content fragments in document order.
type Loader interface {
	Load(ctx context.Context, link domain.SourceLink) ([]domain.ContentFragment, error)
}

// Set holds one loader per link kind.
type Set struct {
	Video   Loader
	WebPage Loader
}

// For returns the loader registered for kind.
func (s Set) For(kind domain.LinkKind) (Loader, error) {
	var l Loader
	switch kind {
	case domain.LinkKindVideo:
		l = s.Video
	case domain.LinkKindWebPage:
		l = s.WebPage
	}
	if l == nil {
		return nil, fmt.Errorf("no loader registered for link kind %q", kind)
	}
	return l, nil
}

// Load dispatches to exactly one loader based on the link kind.
func (s Set) Load(ctx context.Context, link domain.SourceLink) ([]domain.ContentFragment, error) {
	l, err := s.For(link.Kind)
	if err != nil {
		return nil, domain.NewLoadError("unsupported link", err)
	}
	return l.Load(ctx, link)
}
