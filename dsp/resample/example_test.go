package resample_test

import (
	"fmt"

	"github.com/cwbudde/algo-vose/dsp/resample"
)

func ExampleLinear() {
	dst := make([]float64, 5)
	resample.Linear(dst, []float64{0, 4})
	fmt.Println(dst)
	// Output:
	// [0 1 2 3 4]
}

func ExampleNewForRates() {
	r, _ := resample.NewForRates(44100, 48000, resample.WithQuality(resample.QualityBest))
	up, down := r.Ratio()
	fmt.Printf("ratio=%d/%d\n", up, down)
	// Output:
	// ratio=160/147
}
