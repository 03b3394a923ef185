package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"compagnie-lumen.org/web/internal/content"
)

// notFoundProbe is a path no route can serve; its response becomes 404.html.
const notFoundProbe = "/_not-found"

type buildOptions struct {
	out         string
	concurrency int
	strict      bool
}

func newBuildCmd(c *cli) *cobra.Command {
	opts := buildOptions{}
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Render every route to static files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := c.build(cmd.Context(), opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "rendered %d pages into %s\n", n, opts.out)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.out, "out", "dist", "output directory")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 8, "pages rendered in parallel")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "fail when pagination stops early")
	return cmd
}

func (c *cli) build(ctx context.Context, opts buildOptions) (int, error) {
	if opts.concurrency <= 0 {
		opts.concurrency = 1
	}
	routes, err := c.site.Routes(ctx)
	if err != nil {
		if opts.strict || !errors.Is(err, content.ErrPaginationFailure) {
			return 0, err
		}
		c.logger.Warn("building a partial site", zap.Int("routes", len(routes)), zap.Error(err))
	}

	handler := c.site.Router()
	var rendered atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.concurrency)
	for _, route := range routes {
		g.Go(func() error {
			body, err := fetch(gctx, handler, route.URLPath(), http.StatusOK)
			if err != nil {
				return err
			}
			if err := writeFile(opts.out, pageFile(route.URLPath()), body); err != nil {
				return err
			}
			rendered.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return int(rendered.Load()), err
	}

	extras := []struct {
		path, file string
		status     int
	}{
		{"/sitemap.xml", "sitemap.xml", http.StatusOK},
		{"/robots.txt", "robots.txt", http.StatusOK},
		{notFoundProbe, "404.html", http.StatusNotFound},
	}
	for _, e := range extras {
		body, err := fetch(ctx, handler, e.path, e.status)
		if err != nil {
			return int(rendered.Load()), err
		}
		if err := writeFile(opts.out, e.file, body); err != nil {
			return int(rendered.Load()), err
		}
	}

	if err := copyAssets(filepath.Join(c.cfg.Paths.Public, "assets"), filepath.Join(opts.out, "assets")); err != nil {
		return int(rendered.Load()), err
	}
	c.logger.Info("site built", zap.Int64("pages", rendered.Load()), zap.String("out", opts.out))
	return int(rendered.Load()), nil
}

// fetch renders target through the site router.
func fetch(ctx context.Context, h http.Handler, target string, want int) ([]byte, error) {
	req := httptest.NewRequest(http.MethodGet, target, nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != want {
		return nil, fmt.Errorf("sitegen: %s returned %d, want %d", target, rec.Code, want)
	}
	return rec.Body.Bytes(), nil
}

// pageFile maps a URL path to its index.html below the output directory.
func pageFile(urlPath string) string {
	trimmed := strings.Trim(urlPath, "/")
	if trimmed == "" {
		return "index.html"
	}
	return filepath.Join(filepath.FromSlash(trimmed), "index.html")
}

func writeFile(out, name string, body []byte) error {
	dst := filepath.Join(out, name)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("sitegen: create %s: %w", filepath.Dir(dst), err)
	}
	if err := os.WriteFile(dst, body, 0o644); err != nil {
		return fmt.Errorf("sitegen: write %s: %w", dst, err)
	}
	return nil
}

// copyAssets replaces dst with a copy of src. A missing src is skipped.
func copyAssets(src, dst string) error {
	if _, err := os.Stat(src); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := os.RemoveAll(dst); err != nil {
		return fmt.Errorf("sitegen: clear %s: %w", dst, err)
	}
	if err := os.CopyFS(dst, os.DirFS(src)); err != nil {
		return fmt.Errorf("sitegen: copy assets: %w", err)
	}
	return nil
}
