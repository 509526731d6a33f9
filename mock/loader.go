package mock

import (
	"context"

	"github.com/hoabrief/hoabrief"
)

var _ hoabrief.Loader = (*Loader)(nil)

// Loader is a mock implementation of hoabrief.Loader.
type Loader struct {
	LoadFn func(ctx context.Context, dir string) ([]*hoabrief.SourceFile, error)
}

func (l *Loader) Load(ctx context.Context, dir string) ([]*hoabrief.SourceFile, error) {
	return l.LoadFn(ctx, dir)
}
