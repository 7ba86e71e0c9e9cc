package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ivlev/sketchstory/internal/engine"
	"github.com/ivlev/sketchstory/internal/system"
)

func newRenderCmd(f *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render [prompt]",
		Short: "Capture the animation to video files",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, f, args)
			if err != nil {
				return err
			}
			resolveStoryboard(cmd, cfg)
			logger := loggerFromContext(cmd.Context())

			if cfg.OutputVideo == "" {
				if err := system.EnsureDirs(cfg.OutputDir); err != nil {
					return err
				}
			}
			if cfg.VideoEncoder == "" && containsMP4(cfg.Containers) {
				if enc := system.GetBestH264Encoder(cfg.FFmpeg); enc != "libx264" {
					fmt.Fprintf(cmd.OutOrStdout(), "[*] Обнаружено аппаратное ускорение: %s\n", enc)
				}
			}

			project := engine.NewProject(cfg, logger)
			project.Out = cmd.OutOrStdout()
			results, err := project.Run(cmd.Context())
			if err != nil {
				return err
			}
			for _, r := range results {
				fmt.Fprintf(cmd.OutOrStdout(), "[+++] Успех! Результат: %s\n", r.Path)
			}
			return nil
		},
	}

	addCanvasFlags(cmd, f)
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file; the extension follows the container (default: output/<name>_<time>)")
	cmd.Flags().IntVar(&f.fps, "fps", 0, "frames per second")
	cmd.Flags().IntVar(&f.bitrate, "bitrate", 0, "target bitrate in bits per second")
	cmd.Flags().IntVar(&f.quality, "quality", 0, "h264 quality (0: bitrate; x264 CRF 1-51, VideoToolbox Q*100 kbit/s)")
	cmd.Flags().StringSliceVar(&f.containers, "container", nil, "containers to write: webm, mp4")
	cmd.Flags().StringVar(&f.encoder, "encoder", "", "h264 encoder for mp4 (default: best available)")
	cmd.Flags().StringVar(&f.ffmpeg, "ffmpeg", "", "ffmpeg binary")
	cmd.Flags().IntVar(&f.tail, "tail", 0, "extra milliseconds after the last step (0 for none)")
	cmd.Flags().DurationVar(&f.flush, "flush-timeout", 0, "how long to wait for the encoder to finish")
	cmd.Flags().StringVar(&f.pacing, "pacing", "", "frame pacing: synthetic or realtime")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "containers captured in parallel")
	cmd.Flags().BoolVar(&f.stats, "stats", false, "print a performance report and append it to benchmark.log")
	return cmd
}

func containsMP4(containers []string) bool {
	for _, c := range containers {
		if c == "mp4" {
			return true
		}
	}
	return false
}
