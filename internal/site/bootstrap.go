package site

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"compagnie-lumen.org/web/internal/cms"
	"compagnie-lumen.org/web/internal/config"
	"compagnie-lumen.org/web/internal/i18n"
)

// NewStore selects the content store: the remote CMS when configured, otherwise the
// local content directory.
func NewStore(cfg config.Config) cms.Store {
	if cfg.CMS.Remote() {
		return cms.NewHTTPStore(cfg.CMS.URL,
			cms.WithToken(cfg.CMS.Token),
			cms.WithTimeout(cfg.CMS.Timeout),
			cms.WithPageSize(cfg.CMS.PageSize),
		)
	}
	return cms.NewFSStore(os.DirFS(cfg.Paths.Content), cms.WithFSPageSize(cfg.CMS.PageSize))
}

// FromConfig builds a Site from the loaded configuration.
func FromConfig(cfg config.Config, logger *zap.Logger) (*Site, error) {
	bundle, err := i18n.Load(cfg.Paths.Locales)
	if err != nil {
		return nil, fmt.Errorf("site: %w", err)
	}
	store := NewStore(cfg)
	if logger != nil {
		source := cfg.Paths.Content
		if cfg.CMS.Remote() {
			source = cfg.CMS.URL
		}
		logger.Info("content store selected", zap.Bool("remote", cfg.CMS.Remote()), zap.String("source", source))
	}
	return New(store, bundle, logger, Options{
		BaseURL:      cfg.BaseURL,
		TemplatesDir: cfg.Paths.Templates,
		PublicDir:    cfg.Paths.Public,
		Dev:          cfg.Dev,
		Revalidate:   cfg.Revalidate,
		Timeout:      cfg.Server.WriteTimeout,
	})
}
