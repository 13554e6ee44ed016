// Package signal generates deterministic test and oscillator signals.
package signal
