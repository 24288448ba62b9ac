package main

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"time"

	"github.com/nfnt/resize"
	"github.com/spf13/cobra"

	"github.com/erparts/go-aveplay"
)

var errNoVideo = errors.New("media has no video stream")

func newSnapshotCmd(a *app) *cobra.Command {
	var (
		at     time.Duration
		frame  int64
		output string
		width  int
	)

	cmd := &cobra.Command{
		Use:   "snapshot <file>",
		Short: "Export one frame as PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("width") {
				a.cfg.Snapshot.Width = width
			}

			player, err := a.openPlayer(args[0])
			if err != nil {
				return err
			}
			defer player.Close()
			if !player.HasVideo() {
				return errNoVideo
			}

			if cmd.Flags().Changed("frame") {
				player.SetFramePosition(frame)
			} else {
				player.SetTimePositionInMs(float64(at) / float64(time.Millisecond))
			}
			img, err := snapshot(player, a.cfg.Snapshot.Width)
			if err != nil {
				return err
			}

			if err := writePNG(output, img); err != nil {
				return err
			}
			a.logger.Info().
				Str("output", output).
				Int64("frame", player.CurrentFrameNumber()).
				Int("width", img.Bounds().Dx()).
				Int("height", img.Bounds().Dy()).
				Msg("snapshot written")
			return nil
		},
	}

	flags := cmd.Flags()
	flags.DurationVar(&at, "at", 0, "position of the frame")
	flags.Int64Var(&frame, "frame", 0, "frame index, instead of --at")
	flags.StringVarP(&output, "output", "o", "snapshot.png", "output PNG file")
	flags.IntVar(&width, "width", 0, "scale to this width keeping the aspect ratio (0 keeps the source size)")
	return cmd
}

// snapshot copies the frame at the player's position into an image,
// scaled down to width when the frame is wider.
func snapshot(player *aveplay.Player, width int) (image.Image, error) {
	w, h := player.Width(), player.Height()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	if _, err := player.CopyFrame(img.Pix); err != nil {
		return nil, err
	}
	if player.CurrentFrameNumber() < 0 {
		return nil, errors.New("no frame could be decoded")
	}

	if width <= 0 || width >= w {
		return img, nil
	}
	return resize.Resize(uint(width), 0, img, resize.Lanczos3), nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return f.Close()
}
