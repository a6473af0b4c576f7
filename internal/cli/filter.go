package cli

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/heartmarshall/recordkeeper-audit/internal/domain"
)

type filterFlags struct {
	actor  string
	action string
	from   string
	to     string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.actor, "actor", "", "Only entries by this actor id")
	cmd.Flags().StringVar(&f.action, "action", "", "Only entries of this action kind (e.g. DELETE, HttpRequest)")
	cmd.Flags().StringVar(&f.from, "from", "", "Inclusive lower bound, RFC 3339 or YYYY-MM-DD")
	cmd.Flags().StringVar(&f.to, "to", "", "Inclusive upper bound, RFC 3339 or YYYY-MM-DD (a date covers the whole day)")
}

func (f *filterFlags) filter() (domain.AuditFilter, error) {
	var out domain.AuditFilter

	if f.actor != "" {
		id, err := uuid.Parse(f.actor)
		if err != nil {
			return out, fmt.Errorf("--actor: %w", err)
		}
		out.ActorID = &id
	}
	if f.action != "" {
		kind, ok := domain.ParseActionKind(f.action)
		if !ok {
			return out, fmt.Errorf("--action: unknown action %q", f.action)
		}
		out.Action = &kind
	}
	if f.from != "" {
		t, _, err := parseBound(f.from)
		if err != nil {
			return out, fmt.Errorf("--from: %w", err)
		}
		out.From = &t
	}
	if f.to != "" {
		t, dateOnly, err := parseBound(f.to)
		if err != nil {
			return out, fmt.Errorf("--to: %w", err)
		}
		if dateOnly {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		out.To = &t
	}
	return out, nil
}

func parseBound(v string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
		return t.UTC(), false, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("want RFC 3339 or YYYY-MM-DD, got %q", v)
	}
	return t, true, nil
}
