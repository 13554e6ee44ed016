// Package resample changes the length and rate of sample buffers.
//
// The segment path used while rendering is built from plain interpolation:
//   - Linear stretches or squeezes a buffer to an exact length, keeping
//     its first and last sample
//   - Warp reads with a per-sample step, realizing pitch-bend curves
//   - FitPeriods repeats or drops whole pitch periods so a voiced buffer
//     can change duration without changing pitch
//   - Splice crops or loops a buffer at its natural rate with crossfaded
//     seams at arbitrary points
//   - Extend continues a segment past its end for crossfade tails,
//     following fractional periods
//
// Sample-rate conversion of recorded material uses a polyphase FIR
// (NewRational, NewForRates, Convert) with Kaiser-windowed sinc taps:
//
//	mode            taps/phase   nominal stopband
//	QualityFast     16           ~55 dB
//	QualityBalanced 32           ~75 dB
//	QualityBest     64           ~90 dB
package resample
