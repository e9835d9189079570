package main

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/spf13/cobra"
	"golang.org/x/image/draw"

	"github.com/deepteams/nexus"
)

var convertFlags struct {
	output string
	gray   bool
	width  int
	height int
}

var convertCmd = &cobra.Command{
	Use:   "convert [flags] <input>",
	Short: "Convert an image between the supported formats",
	Long: `Convert loads the input (PNM, PNG, or JPEG), optionally converts it to
grayscale and resizes it with a high-quality resampler, and saves it in
the format selected by the output filename extension.`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	f := convertCmd.Flags()
	f.StringVarP(&convertFlags.output, "output", "o", "", "output file (required)")
	f.BoolVar(&convertFlags.gray, "gray", false, "convert to grayscale")
	f.IntVar(&convertFlags.width, "width", 0, "resize to this width (0: keep, or follow --height at the same aspect ratio)")
	f.IntVar(&convertFlags.height, "height", 0, "resize to this height (0: keep, or follow --width at the same aspect ratio)")
	convertCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(convertCmd)
}

// resizeNexusImage resamples a u8 image with Catmull-Rom interpolation
// through the extended image/draw scalers.
func resizeNexusImage(img *nexus.Image, w, h int) {
	src := image.NewNRGBA(image.Rect(0, 0, img.Width, img.Height))
	wasGray := img.Type == nexus.Grayscale
	img.ConvertType(nexus.RGBA)
	for y := 0; y < img.Height; y++ {
		copy(src.Pix[y*src.Stride:y*src.Stride+4*img.Width],
			img.Pix[y*img.RowStride:y*img.RowStride+4*img.Width])
	}

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	img.Resize(w, h, nexus.StrideDefault, nexus.RGBA, nexus.U8)
	for y := 0; y < h; y++ {
		copy(img.Pix[y*img.RowStride:y*img.RowStride+4*w],
			dst.Pix[y*dst.Stride:y*dst.Stride+4*w])
	}
	if wasGray {
		img.ConvertType(nexus.Grayscale)
	}
}

func runConvert(cmd *cobra.Command, args []string) error {
	mode := nexus.LoadAsIs
	if convertFlags.gray {
		mode = nexus.LoadGrayscale
	}

	img := nexus.NewGrayU8(0, 0)
	if err := nexus.Load(img, args[0], mode); err != nil {
		return err
	}
	slog.Info("loaded image", "file", args[0],
		"width", img.Width, "height", img.Height, "type", img.Type.String())

	w, h := convertFlags.width, convertFlags.height
	if w > 0 || h > 0 {
		if w <= 0 {
			w = img.Width * h / img.Height
		}
		if h <= 0 {
			h = img.Height * w / img.Width
		}
		if w <= 0 || h <= 0 {
			return fmt.Errorf("invalid target size %dx%d", w, h)
		}
		resizeNexusImage(img, w, h)
		slog.Info("resized", "width", w, "height", h)
	}

	return nexus.Save(img, convertFlags.output)
}
