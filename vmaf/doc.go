// Package vmaf is a from-scratch reimplementation of the elementary
// features of the public vmaf_v0.6.1 perceptual model: four scales of
// Visual Information Fidelity (VIF), the Additive Detail Metric (ADM2),
// the temporal Motion feature, and the nu-SVR regression that fuses them
// into a 0-100 score.
//
// The package is organized the same way the metric math in the metrics
// package is: feature extractors are pure functions of their grayscale
// plane inputs, with one deliberate exception. The Motion feature carries
// exactly one frame of state (the previous blurred frame and its motion
// score) in a TemporalState owned by the caller. With a nil TemporalState
// the feature reports 0 and the whole computation is pure.
//
// Four models are selectable: hd, phone, 4k and neg. They differ only in
// their constant tables, whether the phone score transform runs, and the
// enhancement-gain limit applied inside VIF and ADM2 (1.0 for neg, 100
// otherwise). Model tables are immutable shared assets loaded once;
// scores produced by different models are not comparable.
package vmaf
