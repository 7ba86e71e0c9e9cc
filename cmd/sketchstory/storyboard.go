package main

import (
	"github.com/spf13/cobra"

	"github.com/ivlev/sketchstory/internal/engine"
)

func newStoryboardCmd(f *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "storyboard [prompt]",
		Short: "Write the generated storyboard to YAML for editing",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, f, args)
			if err != nil {
				return err
			}
			project := engine.NewProject(cfg, loggerFromContext(cmd.Context()))
			project.Out = cmd.OutOrStdout()
			_, err = project.GenerateStoryboard(f.output)
			return err
		},
	}

	cmd.Flags().IntVar(&f.width, "width", 0, "canvas width")
	cmd.Flags().IntVar(&f.height, "height", 0, "canvas height")
	cmd.Flags().StringVar(&f.preset, "preset", "", "aspect preset: 16:9, 9:16 (Shorts/TikTok), 4:5 (Instagram)")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "storyboard file (default: storyboards/storyboard_<time>.yaml)")
	return cmd
}
