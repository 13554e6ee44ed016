// Package window generates the tapering windows used by the synthesis
// pipeline: Kaiser windows for the polyphase resampler's prototype filter
// and the rising half-windows that shape crossfade curves.
package window
