package main

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/jward/itembank"
)

// formatRunText prints what an import created, then the trees and lists it
// created keyed by their map keys.
func formatRunText(w io.Writer, run *itembank.Run) {
	s := run.Stats
	fmt.Fprintf(w, "Generation: %s\n", run.Generation)
	fmt.Fprintf(w, "Trees: %d (%d nodes)\n", s.Trees, s.TreeNodes)
	fmt.Fprintf(w, "Lists: %d (%d elements)\n", s.Lists, s.ListElements)
	fmt.Fprintf(w, "Subclasses: %d created, %d reused\n", s.Subclasses, s.ReusedSubclasses)
	fmt.Fprintf(w, "Properties: %d\n", s.Properties)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "\nKEY\tKIND\tURI")
	for _, key := range sortedKeys(run.Trees) {
		fmt.Fprintf(tw, "%s\ttree\t%s\n", key, run.Trees[key].URI)
	}
	for _, key := range sortedKeys(run.EvidenceLists) {
		fmt.Fprintf(tw, "%s\tevidence list\t%s\n", key, run.EvidenceLists[key].URI)
	}
	for _, key := range sortedKeys(run.TaskLists) {
		fmt.Fprintf(tw, "%s\ttask model list\t%s\n", key, run.TaskLists[key].URI)
	}
	tw.Flush()
}

func formatSweepText(w io.Writer, sw itembank.Sweep) {
	fmt.Fprintf(w, "Deleted %d instances and %d classes\n", sw.Instances, sw.Classes)
}

// formatStatusText prints the migration ledger as aligned columns.
func formatStatusText(w io.Writer, states []itembank.MigrationState, changed bool) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "VERSION\tSTATUS\tAPPLIED AT\tDESCRIPTION")
	for _, st := range states {
		status, at := "pending", "-"
		if st.Applied {
			status = "applied"
			at = st.AppliedAt.UTC().Format(time.RFC3339)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", st.Version, status, at, st.Description)
	}
	tw.Flush()

	if changed {
		fmt.Fprintln(w, "\nReference data differs from the last import.")
	}
}

func formatAuditText(w io.Writer, r *itembank.AuditReport) {
	fmt.Fprintln(w, "Audit passed")
	fmt.Fprintf(w, "Generation: %s\n", r.Generation)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, row := range []struct {
		name string
		n    int
	}{
		{"trees", r.Trees},
		{"nodes", r.Nodes},
		{"lists", r.Lists},
		{"elements", r.Elements},
		{"classes", r.Classes},
		{"properties", r.Properties},
	} {
		fmt.Fprintf(tw, "  %s\t%d\n", row.name, row.n)
	}
	tw.Flush()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
