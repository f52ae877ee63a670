package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"journeymap/domain/core/aggregates"
	"journeymap/domain/layout"
	"journeymap/infrastructure/config"

	"github.com/spf13/cobra"
)

func newLayoutCmd() *cobra.Command {
	var configFile string
	cmd := &cobra.Command{
		Use:   "layout [journey.json]",
		Short: "Print lane geometry for a saved journey",
		Long: `Reads a journey as returned by GET /api/v1/journeys/{id}, either bare or
inside the response envelope, and prints the lane grid it is drawn on. Nodes
whose position lies outside their own cell are flagged.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read journey: %w", err)
			}
			snapshot, err := parseSnapshot(data)
			if err != nil {
				return err
			}

			settings := layout.DefaultSettings()
			if configFile != "" {
				fc, err := config.LoadFile(configFile)
				if err != nil {
					return err
				}
				settings = fc.Layout
			}
			settings = config.EnvLayoutOverrides().Apply(settings)
			if err := settings.Validate(); err != nil {
				return err
			}
			return printLayout(cmd.OutOrStdout(), snapshot, settings)
		},
	}
	cmd.Flags().StringVar(&configFile, "config", "", "YAML file with layout settings")
	return cmd
}

func parseSnapshot(data []byte) (aggregates.Snapshot, error) {
	var envelope struct {
		Data *aggregates.Snapshot `json:"data"`
	}
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Data != nil {
		return *envelope.Data, nil
	}
	var snapshot aggregates.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return aggregates.Snapshot{}, fmt.Errorf("failed to parse journey: %w", err)
	}
	return snapshot, nil
}

func printLayout(w io.Writer, snap aggregates.Snapshot, settings layout.Settings) error {
	grid, phasePerm, contextPerm := snap.Content.Grid(settings)

	heading.Fprintf(w, "%s\n", snap.Title)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PHASE\tORDER\tX\tWIDTH")
	for pos, idx := range phasePerm {
		p := snap.Phases[idx]
		fmt.Fprintf(tw, "%s\t%d\t%.0f\t%.0f\n", p.Name, p.Order, grid.PhaseOffsetX[pos], grid.PhaseWidth[pos])
	}
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "CONTEXT\tORDER\tY\tHEIGHT")
	for pos, idx := range contextPerm {
		c := snap.Contexts[idx]
		fmt.Fprintf(tw, "%s\t%d\t%.0f\t%.0f\n", c.Name, c.Order, grid.ContextOffsetY[pos], grid.ContextHeight[pos])
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	phaseSlot := slotsByID(phasePerm, func(i int) string { return snap.Phases[i].ID })
	contextSlot := slotsByID(contextPerm, func(i int) string { return snap.Contexts[i].ID })

	misplaced := 0
	for _, n := range snap.Nodes {
		p, c := grid.CellAt(n.Position)
		if p == phaseSlot[n.PhaseID] && c == contextSlot[n.ContextID] {
			continue
		}
		misplaced++
		bad.Fprintf(w, "node %s (%s) sits outside its cell at %.0f,%.0f\n", n.ID, n.Action, n.Position.X, n.Position.Y)
	}
	if misplaced == 0 {
		good.Fprintf(w, "%d nodes inside their cells\n", len(snap.Nodes))
	}
	return nil
}

func slotsByID(perm []int, id func(int) string) map[string]int {
	slots := make(map[string]int, len(perm))
	for pos, idx := range perm {
		slots[id(idx)] = pos
	}
	return slots
}
