package cli

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/terraincognita07/clarity/internal/db"
	"github.com/terraincognita07/clarity/internal/models"
)

type Seeder interface {
	SeedIfNeeded() (bool, error)
}

type DefaultsMigrator interface {
	MigrateDefaults() int64
}

type Clearer interface {
	ClearAll() error
}

type SummaryReader interface {
	GetEntriesSummary(metric models.Metric, limit int) ([]db.EntrySummary, error)
}

func RunSeedCommand(store Seeder, out io.Writer) error {
	seeded, err := store.SeedIfNeeded()
	if err != nil {
		return fmt.Errorf("seed defaults: %w", err)
	}

	if seeded {
		fmt.Fprintln(out, "Seeded default blocks and settings.")
	} else {
		fmt.Fprintln(out, "Settings already present, nothing to seed.")
	}
	return nil
}

func RunMigrateDefaultsCommand(store DefaultsMigrator, out io.Writer) error {
	updated := store.MigrateDefaults()
	fmt.Fprintf(out, "Backfilled %d legacy score(s).\n", updated)
	return nil
}

var ErrClearNotConfirmed = errors.New("refusing to clear logged data without --yes")

// RunClearCommand deletes every entry and daily meta row. Blocks and
// settings are kept.
func RunClearCommand(store Clearer, confirmed bool, out io.Writer) error {
	if !confirmed {
		return ErrClearNotConfirmed
	}
	if err := store.ClearAll(); err != nil {
		return fmt.Errorf("clear logged data: %w", err)
	}

	fmt.Fprintln(out, "Cleared all entries and daily meta.")
	return nil
}

// RunSummaryCommand prints one row per recent tracked date with the
// metric total and its per-block breakdown.
func RunSummaryCommand(store SummaryReader, rawMetric string, limit int, out io.Writer) error {
	metric, err := models.ParseMetric(strings.ToLower(strings.TrimSpace(rawMetric)))
	if err != nil {
		return err
	}

	summaries, err := store.GetEntriesSummary(metric, limit)
	if err != nil {
		return fmt.Errorf("load %s summary: %w", metric, err)
	}
	if len(summaries) == 0 {
		fmt.Fprintln(out, "No entries yet.")
		return nil
	}

	writer := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(writer, "DATE\t%s\tBLOCKS\n", strings.ToUpper(string(metric)))
	for _, summary := range summaries {
		fmt.Fprintf(writer, "%s\t%d\t%s\n", summary.Date, summary.Total, formatBlockTotals(summary.Blocks))
	}
	return writer.Flush()
}

func formatBlockTotals(blocks map[string]int) string {
	ids := make([]string, 0, len(blocks))
	for id := range blocks {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("%s=%d", id, blocks[id]))
	}
	return strings.Join(parts, " ")
}
