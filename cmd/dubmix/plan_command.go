package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"dubmix/internal/config"
	"dubmix/internal/render"
	"dubmix/internal/segment"
)

// planRow is the JSON shape of one aligned chunk.
type planRow struct {
	ID            int     `json:"id"`
	SourceStart   float64 `json:"source_start"`
	SourceEnd     float64 `json:"source_end"`
	TargetStart   float64 `json:"target_start"`
	TargetEnd     float64 `json:"target_end"`
	ClipSeconds   float64 `json:"clip_seconds"`
	StretchFactor float64 `json:"stretch_factor"`
	Text          string  `json:"text"`
}

func newPlanCommand(ctx *commandContext) *cobra.Command {
	var srtOut string
	var asJSON bool
	var flags overrides

	cmd := &cobra.Command{
		Use:   "plan SEGMENTS",
		Short: "Show aligned windows and stretch factors without mixing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := flags.apply(cfg); err != nil {
				return err
			}
			logger, err := ctx.logger()
			if err != nil {
				return err
			}

			segmentsPath, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			segments, err := segment.LoadFile(segmentsPath)
			if err != nil {
				return err
			}

			renderer, err := render.New(cfg, logger)
			if err != nil {
				return err
			}
			defer renderer.Close()

			plan, err := renderer.Plan(cmd.Context(), segments)
			if err != nil {
				return err
			}

			if strings.TrimSpace(srtOut) != "" {
				if err := writeRetimedSRT(srtOut, plan); err != nil {
					return err
				}
			}

			rows := planRows(plan)
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), rows)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderPlanTable(rows))
			fmt.Fprintf(out, "Policy: %s  Segments: %d  Stretched: %d  Silenced: %d\n",
				cfg.Align.Policy, len(rows), plan.Stretched, plan.Substituted)
			return nil
		},
	}

	cmd.Flags().StringVar(&srtOut, "srt-out", "", "Write the aligned windows as an SRT file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the plan as JSON")
	flags.register(cmd)
	return cmd
}

func planRows(plan render.Plan) []planRow {
	rows := make([]planRow, 0, len(plan.Chunks))
	for _, chunk := range plan.Chunks {
		rows = append(rows, planRow{
			ID:            chunk.Segment.ID,
			SourceStart:   chunk.Segment.Start,
			SourceEnd:     chunk.Segment.End,
			TargetStart:   chunk.TargetStart,
			TargetEnd:     chunk.TargetEnd,
			ClipSeconds:   chunk.AudioDuration(),
			StretchFactor: chunk.StretchFactor,
			Text:          chunk.Segment.Text,
		})
	}
	return rows
}

func renderPlanTable(rows []planRow) string {
	columns := []tableColumn{
		{Header: "ID", Align: alignRight},
		{Header: "Source"},
		{Header: "Target"},
		{Header: "Clip", Align: alignRight},
		{Header: "Stretch", Align: alignRight},
		{Header: "Text", WidthMax: 48},
	}
	cells := make([][]string, 0, len(rows))
	for _, row := range rows {
		cells = append(cells, []string{
			strconv.Itoa(row.ID),
			formatSpan(row.SourceStart, row.SourceEnd),
			formatSpan(row.TargetStart, row.TargetEnd),
			fmt.Sprintf("%.2fs", row.ClipSeconds),
			fmt.Sprintf("%.3f", row.StretchFactor),
			text.Trim(row.Text, 96),
		})
	}
	return renderTable(columns, cells)
}

func formatSpan(start, end float64) string {
	return fmt.Sprintf("%s → %s", segment.FormatTimestamp(start), segment.FormatTimestamp(end))
}

func writeRetimedSRT(path string, plan render.Plan) error {
	target, err := config.ExpandPath(path)
	if err != nil {
		return err
	}
	retimed, err := plan.Retimed()
	if err != nil {
		return err
	}
	file, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("create srt: %w", err)
	}
	if err := segment.WriteSRT(file, retimed); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
