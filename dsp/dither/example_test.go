package dither_test

import (
	"fmt"

	"github.com/cwbudde/algo-vose/dsp/dither"
)

func ExampleQuantizer_Quantize() {
	q, err := dither.NewQuantizer(
		dither.WithBitDepth(16),
		dither.WithDitherType(dither.DitherNone),
		dither.WithFIRPreset(dither.PresetNone),
	)
	if err != nil {
		panic(err)
	}

	pcm := make([]int, 4)
	q.Quantize(pcm, []float64{0, 0.25, 0.5, -1})
	fmt.Println(pcm)
	// Output: [0 8191 16383 -32768]
}
