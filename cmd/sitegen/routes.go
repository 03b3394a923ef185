package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"compagnie-lumen.org/web/internal/cms"
	"compagnie-lumen.org/web/internal/content"
)

func newRoutesCmd(c *cli) *cobra.Command {
	var (
		typeTag     string
		defaultOnly bool
		strict      bool
	)
	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Print the routes of a content type as JSON lines",
		Long: `Prints one {"locale":...,"path":[...]} object per line.

Without --default the non-default locales are listed; with it, the unprefixed
default-locale routes are.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			enumerator := c.site.Enumerator()
			enumerate := enumerator.Enumerate
			if defaultOnly {
				enumerate = enumerator.EnumerateDefault
			}
			routes, err := enumerate(cmd.Context(), typeTag)
			if err != nil {
				if strict || !errors.Is(err, content.ErrPaginationFailure) {
					return err
				}
				c.logger.Warn("route listing is partial", zap.String("type", typeTag), zap.Error(err))
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			for _, r := range routes {
				if err := enc.Encode(r); err != nil {
					return fmt.Errorf("write route: %w", err)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&typeTag, "type", cms.TypePages, "content type to enumerate")
	cmd.Flags().BoolVar(&defaultOnly, "default", false, "list the default-locale routes")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail when pagination stops early")
	return cmd
}
