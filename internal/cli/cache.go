package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ammerola/api-framework/internal/adapters/cache"
)

var errRedisNotConfigured = errors.New("redis is not configured (set REDIS_URL)")

func (a *app) newCacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the Redis response cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Drop every cached API response",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			c, err := a.responseCache(a.log.Logger)
			if err != nil {
				return err
			}
			defer a.closeCache(ctx)

			n, err := c.DeletePattern(ctx, cache.BuildKey(cache.PrefixResponse, "*"))
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "removed %d cached responses\n", n)
			return nil
		},
	})

	return cmd
}
