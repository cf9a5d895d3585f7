// Command pixform applies a per-pixel transform to an image file.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gogpu/pixform"
	"github.com/gogpu/pixform/internal/pix"

	// Enable GPU dispatch when a compatible adapter is present.
	_ "github.com/gogpu/pixform/device"
)

func main() {
	var (
		input      = flag.String("input", "", "input image file (PNG or JPEG)")
		output     = flag.String("output", "out.png", "output file")
		transform  = flag.String("transform", "identity", "transform: identity, invert, grayscale, brightness, swap")
		brightness = flag.Int("brightness", 0, "brightness delta for -transform=brightness")
		workers    = flag.Int("workers", 0, "CPU worker count (0 = all cores)")
		maxSide    = flag.Int("max-side", 0, "scale input so its longest side is at most this (0 = no scaling)")
		quality    = flag.Int("quality", 90, "JPEG output quality")
		verbose    = flag.Bool("verbose", false, "enable debug logging")
	)
	flag.Parse()

	if *input == "" {
		flag.Usage()
		os.Exit(2)
	}

	if *verbose {
		pixform.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	t, err := transformByName(*transform, *brightness)
	if err != nil {
		log.Fatalf("Unknown transform: %v", err)
	}

	buf, err := pix.LoadImage(*input)
	if err != nil {
		log.Fatalf("Failed to load %s: %v", *input, err)
	}
	if *maxSide > 0 {
		buf, err = buf.Thumbnail(*maxSide)
		if err != nil {
			log.Fatalf("Failed to scale: %v", err)
		}
	}

	start := time.Now()
	result, err := pixform.Dispatch(buf.Data(), buf.Width(), buf.Height(),
		pixform.WithTransform(t),
		pixform.WithWorkers(*workers))
	if err != nil {
		log.Fatalf("Dispatch failed: %v", err)
	}
	elapsed := time.Since(start)

	out, err := pix.FromRaw(result, buf.Width(), buf.Height(), pix.FormatRGB8)
	if err != nil {
		log.Fatalf("Failed to wrap result: %v", err)
	}

	if err := saveImage(out, *output, *quality); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}

	backend := "cpu"
	if d := pixform.ActiveDispatcher(); d != nil && d.CanDispatch(t) {
		backend = d.Name()
	}
	log.Printf("%s: %s (%dx%d) in %v [%s] -> %s\n",
		t.Name(), *input, buf.Width(), buf.Height(), elapsed, backend, *output)
}

func transformByName(name string, brightness int) (*pixform.Transform, error) {
	switch strings.ToLower(name) {
	case "identity":
		return pixform.Identity(), nil
	case "invert":
		return pixform.Invert(), nil
	case "grayscale", "gray":
		return pixform.Grayscale(), nil
	case "brightness":
		return pixform.Brightness(brightness), nil
	case "swap":
		return pixform.SwapChannels(), nil
	default:
		return nil, fmt.Errorf("%q (want identity, invert, grayscale, brightness, swap)", name)
	}
}

func saveImage(buf *pix.Buffer, path string, quality int) error {
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".jpg") || strings.HasSuffix(lower, ".jpeg") {
		return buf.SaveJPEG(path, quality)
	}
	return buf.SavePNG(path)
}
