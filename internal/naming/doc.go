// Package naming turns classification results into canonical file names and
// maps canonical names to their filing folders.
//
// Canonical names look like 0001_法人税及び地方法人税申告書_2407.pdf: a
// four-digit prefix, a label, and a YYMM fiscal period (XXXX when unknown).
// The prefix alone decides the folder, so the prefix ranges and folder labels
// here are the on-disk layout of an existing archive and must not drift.
package naming
