package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ricky-kiva/andro-tourism-app/internal/resource"
)

// ErrFetchFailed is returned when the destination list could not be loaded.
var ErrFetchFailed = errors.New("fetching destinations failed")

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	var follow bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all destinations",
		Long: `List all destinations. Cached rows are shown straight away; with an
empty store the list is fetched from the tourism API first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, rootOpts, follow, func(ctx context.Context, svc Service) error {
				out := printer{format: rootOpts.Format, w: cmd.OutOrStdout()}
				for state := range svc.GetAll(ctx) {
					if err := out.state(state); err != nil {
						return err
					}
					switch {
					case state.Status == resource.StatusError:
						return fmt.Errorf("%w: %s", ErrFetchFailed, state.Message)
					case !follow && state.Status == resource.StatusSuccess:
						return nil
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "keep printing as the store changes")
	return cmd
}

// NewFavoritesCommand creates the favorites command.
func NewFavoritesCommand(rootOpts *RootOptions) *cobra.Command {
	var follow bool

	cmd := &cobra.Command{
		Use:   "favorites",
		Short: "List favourite destinations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, rootOpts, follow, func(ctx context.Context, svc Service) error {
				out := printer{format: rootOpts.Format, w: cmd.OutOrStdout()}
				for list := range svc.GetFavorites(ctx) {
					if err := out.list(list); err != nil {
						return err
					}
					if !follow {
						return nil
					}
				}
				if !follow {
					return errors.New("favorites unavailable")
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "keep printing as favourites change")
	return cmd
}

// withSession opens a session and runs fn. With follow, the session's
// background work runs alongside fn until either returns.
func withSession(cmd *cobra.Command, opts *RootOptions, follow bool, fn func(context.Context, Service) error) error {
	s, err := opts.session(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if !follow || s.Background == nil {
		return fn(ctx, s.Service)
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return fn(gCtx, s.Service)
	})
	g.Go(func() error {
		return s.Background(gCtx)
	})
	return g.Wait()
}
