// Package content resolves localized content records and enumerates the routes to
// pre-render for them.
package content

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"compagnie-lumen.org/web/internal/cms"
	"compagnie-lumen.org/web/internal/locale"
)

// ErrNotFound signals that neither the localized nor the default record exists, or that
// the requested locale is unsupported.
var ErrNotFound = errors.New("content: not found")

// Resolution is a resolved record together with the candidate that matched.
type Resolution struct {
	Item      cms.Item
	Locale    locale.Tag
	Candidate string
	// Fallback reports that the localized candidate was absent and the default record
	// was served instead.
	Fallback bool
}

// Resolver maps (logical path, locale) to a content record of one content type.
// It holds no state beyond its collaborators.
type Resolver struct {
	store   cms.Store
	typeTag string
	logger  *zap.Logger
}

// NewResolver binds a resolver to the records of typeTag in store.
func NewResolver(store cms.Store, typeTag string, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{store: store, typeTag: typeTag, logger: logger.Named("resolver")}
}

// Type returns the content type the resolver reads.
func (r *Resolver) Type() string {
	return r.typeTag
}

// Resolve returns {path}.{loc}.mdx when present, else {path}.mdx, else ErrNotFound.
// Callers cannot tell whether the default record was substituted.
func (r *Resolver) Resolve(ctx context.Context, logicalPath []string, loc string) (cms.Item, error) {
	res, err := r.ResolveWithSource(ctx, logicalPath, loc)
	if err != nil {
		return cms.Item{}, err
	}
	return res.Item, nil
}

// ResolveWithSource behaves like Resolve and also reports which candidate matched.
// loc must equal a supported tag exactly; "DE" or " de" are unsupported.
func (r *Resolver) ResolveWithSource(ctx context.Context, logicalPath []string, loc string) (Resolution, error) {
	tag, ok := locale.Parse(loc)
	if !ok || tag.String() != loc {
		return Resolution{}, ErrNotFound
	}
	joined, ok := joinLogicalPath(logicalPath)
	if !ok {
		return Resolution{}, ErrNotFound
	}

	localized := joined + "." + tag.String() + cms.Extension
	if item, found, err := r.probe(ctx, localized); err != nil {
		return Resolution{}, err
	} else if found {
		return Resolution{Item: item, Locale: tag, Candidate: localized}, nil
	}

	canonical := joined + cms.Extension
	item, found, err := r.probe(ctx, canonical)
	if err != nil {
		return Resolution{}, err
	}
	if !found {
		return Resolution{}, ErrNotFound
	}
	return Resolution{Item: item, Locale: tag, Candidate: canonical, Fallback: !tag.IsDefault()}, nil
}

// probe fetches one candidate. Store failures other than cancellation count as an
// absent record.
func (r *Resolver) probe(ctx context.Context, candidate string) (cms.Item, bool, error) {
	item, err := r.store.FetchOne(ctx, r.typeTag, candidate)
	switch {
	case err == nil:
		return item, true, nil
	case errors.Is(err, cms.ErrNotFound):
		return cms.Item{}, false, nil
	case ctx.Err() != nil:
		return cms.Item{}, false, ctx.Err()
	default:
		r.logger.Warn("content fetch failed",
			zap.String("type", r.typeTag),
			zap.String("candidate", candidate),
			zap.Error(err),
		)
		return cms.Item{}, false, nil
	}
}

func joinLogicalPath(segments []string) (string, bool) {
	if len(segments) == 0 {
		return "", false
	}
	for _, seg := range segments {
		if seg == "" || seg == "." || seg == ".." || strings.ContainsAny(seg, "/\\") {
			return "", false
		}
	}
	return strings.Join(segments, "/"), true
}
