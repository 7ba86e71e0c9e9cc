package main

import (
	"github.com/spf13/cobra"

	"github.com/ivlev/sketchstory/internal/engine"
	"github.com/ivlev/sketchstory/internal/preview"
)

func newPreviewCmd(f *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview [prompt]",
		Short: "Play the animation live in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, f, args)
			if err != nil {
				return err
			}
			resolveStoryboard(cmd, cfg)
			logger := loggerFromContext(cmd.Context())

			sb, source, err := engine.NewProject(cfg, logger).Storyboard()
			if err != nil {
				return err
			}
			title := "sketchstory"
			if source != "" {
				title += " - " + source
			}
			return preview.Run(cmd.Context(), sb, preview.Options{
				Hz:     cfg.PreviewHz,
				Scale:  cfg.PreviewScale,
				Title:  title,
				Logger: logger,
			})
		},
	}

	addCanvasFlags(cmd, f)
	cmd.Flags().IntVar(&f.hz, "hz", 0, "preview refresh rate")
	cmd.Flags().Float64Var(&f.scale, "scale", 0, "terminal pixels per canvas unit")
	return cmd
}
