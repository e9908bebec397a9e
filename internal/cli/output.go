package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/ricky-kiva/andro-tourism-app/internal/resource"
	"github.com/ricky-kiva/andro-tourism-app/internal/tourism"
)

// printer renders states and lists in the selected format. JSON output is one
// document per line.
type printer struct {
	format string
	w      io.Writer
}

func (p printer) state(r resource.Resource[[]tourism.Tourism]) error {
	if p.format == "json" {
		return json.NewEncoder(p.w).Encode(r)
	}

	switch r.Status {
	case resource.StatusLoading:
		_, err := fmt.Fprintln(p.w, "loading...")
		return err
	case resource.StatusError:
		_, err := fmt.Fprintf(p.w, "error: %s\n", r.Message)
		return err
	default:
		var list []tourism.Tourism
		if r.Data != nil {
			list = *r.Data
		}
		return p.table(list)
	}
}

func (p printer) list(list []tourism.Tourism) error {
	if p.format == "json" {
		if list == nil {
			list = []tourism.Tourism{}
		}
		return json.NewEncoder(p.w).Encode(list)
	}
	return p.table(list)
}

func (p printer) table(list []tourism.Tourism) error {
	if len(list) == 0 {
		_, err := fmt.Fprintln(p.w, "no destinations")
		return err
	}

	tw := tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tLIKES\tFAVORITE")
	for _, t := range list {
		fav := ""
		if t.IsFavorite {
			fav = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", t.ID, t.Name, t.Category, t.Like, fav)
	}
	return tw.Flush()
}

func (p printer) message(format string, args ...any) error {
	if p.format == "json" {
		return json.NewEncoder(p.w).Encode(map[string]string{"status": "ok", "message": fmt.Sprintf(format, args...)})
	}
	_, err := fmt.Fprintf(p.w, format+"\n", args...)
	return err
}
