package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/ricky-kiva/andro-tourism-app/internal/tourism"
)

// NewFavoriteCommand creates the favorite command.
func NewFavoriteCommand(rootOpts *RootOptions) *cobra.Command {
	var off bool

	cmd := &cobra.Command{
		Use:   "favorite <id>",
		Short: "Mark a destination as favourite",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])

			s, err := rootOpts.session(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.Service.UpdateFavorite(cmd.Context(), tourism.Tourism{ID: id}, !off); err != nil {
				return err
			}

			out := printer{format: rootOpts.Format, w: cmd.OutOrStdout()}
			if off {
				return out.message("%s removed from favorites", id)
			}
			return out.message("%s added to favorites", id)
		},
	}

	cmd.Flags().BoolVar(&off, "off", false, "remove the favourite mark instead")
	return cmd
}
