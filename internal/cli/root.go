package cli

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/ricky-kiva/andro-tourism-app/internal/resource"
	"github.com/ricky-kiva/andro-tourism-app/internal/tourism"
)

// Service is the repository surface the commands drive.
type Service interface {
	GetAll(ctx context.Context) <-chan resource.Resource[[]tourism.Tourism]
	GetFavorites(ctx context.Context) <-chan []tourism.Tourism
	UpdateFavorite(ctx context.Context, item tourism.Tourism, state bool) error
}

// Session is an opened Service plus its lifecycle hooks.
type Session struct {
	Service Service
	// Background, when set, runs alongside --follow streams (change feed relay).
	Background func(ctx context.Context) error
	Close      func()
}

// Opener connects to the backing stores. It is called once per command.
type Opener func(ctx context.Context, log *slog.Logger) (*Session, error)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	open Opener
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for tourismctl.
func NewRootCommand(open Opener) *cobra.Command {
	opts := &RootOptions{open: open}

	cmd := &cobra.Command{
		Use:   "tourismctl",
		Short: "Browse the tourism catalogue",
		Long: `Browse the tourism catalogue from the local store, fetching the
destination list from the tourism API when the store is empty.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewFavoritesCommand(opts))
	cmd.AddCommand(NewFavoriteCommand(opts))

	return cmd
}

// session opens the backing stores with a logger writing to the command's
// stderr.
func (o *RootOptions) session(cmd *cobra.Command) (*Session, error) {
	level := slog.LevelWarn
	if o.Verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	s, err := o.open(cmd.Context(), log)
	if err != nil {
		return nil, fmt.Errorf("opening catalogue: %w", err)
	}
	if s.Close == nil {
		s.Close = func() {}
	}
	return s, nil
}
