package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"dubmix/internal/config"
	"dubmix/internal/render"
)

func newRenderCommand(ctx *commandContext) *cobra.Command {
	var background string
	var flags overrides

	cmd := &cobra.Command{
		Use:   "render SEGMENTS OUTPUT",
		Short: "Synthesize, align, and mix segments into a WAV file",
		Long: "Render reads timed segments from an .srt, .vtt, or .json file, synthesizes a clip per\n" +
			"segment, aligns the clips to the source timing, mixes them over the optional\n" +
			"background track, and writes a 16-bit mono WAV.",
		Args: cobra.ExactArgs(2),
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
			outputPath, err := config.ExpandPath(args[1])
			if err != nil {
				return err
			}
			var backgroundPath string
			if strings.TrimSpace(background) != "" {
				if backgroundPath, err = config.ExpandPath(background); err != nil {
					return err
				}
			}

			renderer, err := render.New(cfg, logger)
			if err != nil {
				return err
			}
			defer renderer.Close()

			summary, err := renderer.Render(cmd.Context(), render.Request{
				SegmentsPath:   segmentsPath,
				OutputPath:     outputPath,
				BackgroundPath: backgroundPath,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote %s (%.2fs, %d segments)\n", summary.OutputPath, summary.OutputSeconds, summary.Segments)
			if summary.Stretched > 0 {
				fmt.Fprintf(out, "Stretched: %d\n", summary.Stretched)
			}
			if summary.Substituted > 0 {
				fmt.Fprintf(out, "Silenced: %d (synthesis failed)\n", summary.Substituted)
			}
			if summary.ClippedSamples > 0 {
				fmt.Fprintf(out, "Clipped samples: %d (peak %.2f)\n", summary.ClippedSamples, summary.Peak)
			}
			if cfg.Synth.Cache {
				fmt.Fprintf(out, "Clip cache: %d hits, %d misses\n", summary.CacheHits, summary.CacheMisses)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&background, "background", "b", "", "Background music or effects track (any format ffmpeg reads)")
	flags.register(cmd)
	return cmd
}
