// Package filer moves one classified document into the filing tree.
//
// Engine.Rename runs a fixed sequence: confirm the source exists, validate
// the canonical name and target folder, create the category folder, pick a
// collision-free destination, copy the original into .backup, and move the
// source without overwriting anything. Every failure is reported in the
// Result rather than returned. Completed steps are not undone, so a failed
// Result may leave a backup copy behind.
package filer
