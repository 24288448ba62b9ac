package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/erparts/go-aveplay"
	"github.com/erparts/go-aveplay/ffmpeg"
)

func newInfoCmd(a *app) *cobra.Command {
	var license bool

	cmd := &cobra.Command{
		Use:   "info <file>",
		Short: "Print stream information",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if license {
				fmt.Fprintln(out, aveplay.DescribeBackend(ffmpeg.Backend{}))
				fmt.Fprintln(out)
			}

			player, err := a.openPlayer(args[0])
			if err != nil {
				return err
			}
			defer player.Close()

			writeInfo(out, args[0], player.Info())
			return nil
		},
	}
	cmd.Flags().BoolVar(&license, "license", false, "print the decoding library banner first")
	return cmd
}

func writeInfo(out io.Writer, path string, info aveplay.MediaInfo) {
	fmt.Fprintf(out, "file:       %s\n", path)
	if stat, err := os.Stat(path); err == nil {
		fmt.Fprintf(out, "size:       %s\n", humanize.Bytes(uint64(stat.Size())))
	}

	kind := "video"
	switch {
	case info.IsImage:
		kind = "still image"
	case !info.HasVideo:
		kind = "audio"
	}
	fmt.Fprintf(out, "kind:       %s\n", kind)
	fmt.Fprintf(out, "duration:   %s\n", info.Duration().Round(time.Millisecond))
	fmt.Fprintf(out, "bitrate:    %s\n", humanize.SIWithDigits(float64(info.Bitrate)*1000, 1, "bit/s"))

	if info.HasVideo {
		fmt.Fprintf(out, "video:      %s, %dx%d, %.3f fps, %s frames\n",
			info.VideoCodec, info.Width, info.Height, info.Fps, humanize.Comma(info.DurationInFrames))
	}
	if info.HasAudio {
		fmt.Fprintf(out, "audio:      %s, %s Hz\n", info.AudioCodec, humanize.Comma(int64(info.AudioSampleRate)))
	}
}
