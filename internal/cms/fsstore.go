package cms

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"compagnie-lumen.org/web/internal/pagination"
)

// FSStore serves content from a directory tree laid out as {type}/{relativePath}.
// Listings are ordered by relative path and paginated with opaque tokens.
type FSStore struct {
	fsys     fs.FS
	pageSize int
}

// FSOption customises an FSStore.
type FSOption func(*FSStore)

// WithFSPageSize sets the number of items per listing page.
func WithFSPageSize(size int) FSOption {
	return func(s *FSStore) {
		s.pageSize = pagination.ClampPageSize(size)
	}
}

// NewFSStore returns a store reading from fsys, typically os.DirFS(contentDir).
func NewFSStore(fsys fs.FS, opts ...FSOption) *FSStore {
	s := &FSStore{fsys: fsys, pageSize: pagination.DefaultPageSize}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ Store = (*FSStore)(nil)

// FetchOne reads and parses {typeTag}/{relativePath}.
func (s *FSStore) FetchOne(ctx context.Context, typeTag, relativePath string) (Item, error) {
	if err := ctx.Err(); err != nil {
		return Item{}, err
	}
	rel := cleanRelativePath(relativePath)
	if !validTypeTag(typeTag) || rel == "" {
		return Item{}, ErrNotFound
	}
	name := path.Join(typeTag, rel)
	data, err := fs.ReadFile(s.fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Item{}, ErrNotFound
		}
		return Item{}, fmt.Errorf("cms: read %s: %w", name, err)
	}
	item, err := ParseMDX(typeTag, rel, data)
	if err != nil {
		return Item{}, err
	}
	if item.UpdatedAt.IsZero() {
		if info, statErr := fs.Stat(s.fsys, name); statErr == nil {
			item.UpdatedAt = info.ModTime()
		}
	}
	return item, nil
}

// FetchPage lists the records of typeTag after the cursor. A missing type directory is
// an empty listing.
func (s *FSStore) FetchPage(ctx context.Context, typeTag, after string) (Page, error) {
	if err := ctx.Err(); err != nil {
		return Page{}, err
	}
	if !validTypeTag(typeTag) {
		return Page{}, nil
	}
	cursor, err := pagination.DecodeToken(after)
	if err != nil {
		return Page{}, err
	}
	paths, err := s.list(typeTag)
	if err != nil {
		return Page{}, err
	}

	start := 0
	if !cursor.IsZero() {
		start = sort.SearchStrings(paths, cursor.StartAfter)
		if start < len(paths) && paths[start] == cursor.StartAfter {
			start++
		}
	}
	end := start + s.pageSize
	if end > len(paths) {
		end = len(paths)
	}

	page := Page{Items: make([]Item, 0, end-start)}
	for _, rel := range paths[start:end] {
		item, err := s.FetchOne(ctx, typeTag, rel)
		if err != nil {
			return Page{}, err
		}
		page.Items = append(page.Items, item)
	}
	if end < len(paths) && end > start {
		page.HasMore = true
		page.NextCursor, err = pagination.EncodeToken(pagination.Cursor{StartAfter: paths[end-1]})
		if err != nil {
			return Page{}, err
		}
	}
	return page, nil
}

func (s *FSStore) list(typeTag string) ([]string, error) {
	var paths []string
	err := fs.WalkDir(s.fsys, typeTag, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && p == typeTag {
				return fs.SkipAll
			}
			return err
		}
		if d.IsDir() {
			if p != typeTag && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), Extension) || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		paths = append(paths, strings.TrimPrefix(p, typeTag+"/"))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("cms: list %s: %w", typeTag, err)
	}
	sort.Strings(paths)
	return paths, nil
}
