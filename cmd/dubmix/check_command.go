package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dubmix/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report configuration, directories, and external tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			report := &checkReport{colorize: shouldColorize(out)}

			configLabel := ctx.configPath
			if configLabel == "" {
				configLabel = "defaults"
			}
			report.section("Configuration")
			report.add(
				infoLine("Config", configLabel),
				infoLine("Policy", cfg.Align.Policy),
				infoLine("Synth backend", cfg.Synth.Backend),
				infoLine("Sample rate", fmt.Sprintf("%d Hz", cfg.Mixer.SampleRate)),
			)

			results := preflight.RunAll(cfg)
			results = append(results, preflight.DepResults(preflight.CheckSystemDeps(cfg, false))...)
			results = append(results, preflight.CheckClipCache(cmd.Context(), cfg))

			report.section("Readiness")
			for _, r := range results {
				report.add(resultLine(r))
			}

			fmt.Fprintln(out, report.String())
			return preflight.Check(results)
		},
	}
}
