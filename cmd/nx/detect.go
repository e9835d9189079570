package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/deepteams/nexus"
	"github.com/deepteams/nexus/brief"
	"github.com/deepteams/nexus/detect"
	"github.com/deepteams/nexus/jsontree"
	"github.com/deepteams/nexus/pyramid"
)

var detectFlags struct {
	detector  string
	output    string
	maxKeys   int
	threshold int
	levels    int
	sigma0    float64
	describe  bool
	nOctets   int
	radius    int
}

var detectCmd = &cobra.Command{
	Use:   "detect [flags] <input>",
	Short: "Detect keypoints in an image",
	Long: `Detect runs the FAST-9 or Harris detector on the input image. FAST
detection runs over a fast pyramid; Harris runs on the full-resolution
image. Results are written as a JSON document tagged with a fresh run id,
or in raw binary form when the output filename ends in .keys.`,
	Args: cobra.ExactArgs(1),
	RunE: runDetect,
}

func init() {
	f := detectCmd.Flags()
	f.StringVarP(&detectFlags.detector, "detector", "d", "fast", "detector: fast or harris")
	f.StringVarP(&detectFlags.output, "output", "o", "-", `output file ("-" for stdout, .keys for binary)`)
	f.IntVarP(&detectFlags.maxKeys, "max-keys", "n", 1000, "maximum number of keypoints")
	f.IntVarP(&detectFlags.threshold, "threshold", "t", detect.DefaultFastThreshold, "FAST detection threshold")
	f.IntVarP(&detectFlags.levels, "levels", "l", 5, "number of pyramid levels")
	f.Float64Var(&detectFlags.sigma0, "sigma0", 0, "pyramid base smoothing sigma")
	f.BoolVar(&detectFlags.describe, "describe", false, "also compute BRIEF descriptors (fast detector only)")
	f.IntVar(&detectFlags.nOctets, "octets", 32, "BRIEF descriptor length in octets")
	f.IntVar(&detectFlags.radius, "radius", 16, "BRIEF sampling radius")
	rootCmd.AddCommand(detectCmd)
}

func runDetect(cmd *cobra.Command, args []string) error {
	img, err := nexus.LoadGray(args[0])
	if err != nil {
		return err
	}
	slog.Info("loaded image", "file", args[0], "width", img.Width, "height", img.Height)

	var keys []nexus.Keypoint
	var pyr *pyramid.Pyramid
	switch detectFlags.detector {
	case "fast":
		builder := pyramid.NewFastBuilder(detectFlags.levels, float32(detectFlags.sigma0))
		pyr = builder.Build(img)
		det := detect.NewFast()
		det.Threshold = detectFlags.threshold
		keys = det.DetectPyr(pyr, detectFlags.maxKeys, pyr.NLevels())
	case "harris":
		det := detect.NewHarris()
		keys = det.Detect(img, detectFlags.maxKeys, false)
	default:
		return fmt.Errorf("unknown detector %q", detectFlags.detector)
	}
	slog.Info("detection done", "detector", detectFlags.detector, "keys", len(keys))

	if strings.HasSuffix(detectFlags.output, ".keys") {
		out, err := os.Create(detectFlags.output)
		if err != nil {
			return err
		}
		defer out.Close()
		_, err = nexus.WriteKeypoints(out, keys)
		return err
	}

	doc := jsontree.NewObject()
	doc.ObjectAdd("run_id", jsontree.NewString(uuid.NewString()))
	doc.ObjectAdd("image", jsontree.NewString(args[0]))
	doc.ObjectAdd("detector", jsontree.NewString(detectFlags.detector))
	doc.ObjectAdd("keypoints", jsontree.BundleKeypointArray(keys))

	if detectFlags.describe && pyr != nil {
		be := brief.NewWithSeed(detectFlags.nOctets, detectFlags.radius, brief.GoodSeedN32R16)
		descs := jsontree.NewArray()
		desc := make([]byte, be.NOctets)
		n := 0
		for i := range keys {
			k := &keys[i]
			if !be.CheckPointPyr(pyr, int(k.X), int(k.Y), int(k.Level)) {
				descs.AddChild(jsontree.NewNull())
				continue
			}
			be.ComputePyr(pyr, int(k.X), int(k.Y), int(k.Level), desc)
			octets := make([]int, len(desc))
			for j, b := range desc {
				octets[j] = int(b)
			}
			descs.AddChild(jsontree.BundleIntArray(octets))
			n++
		}
		doc.ObjectAdd("descriptors", descs)
		slog.Info("description done", "described", n, "octets", be.NOctets)
	}

	out := os.Stdout
	if detectFlags.output != "-" {
		f, err := os.Create(detectFlags.output)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	return jsontree.Fprint(out, doc, 4)
}
