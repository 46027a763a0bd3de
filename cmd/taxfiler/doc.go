// Package main hosts the taxfiler CLI entrypoint and command graph.
//
// The Cobra command tree exposes the classifier, the name suggester, the
// filer, and the inbox watcher. It resolves configuration once per
// invocation, builds the structured logger, and opens the tracking database
// only for the commands that need it. Results go to stdout as tables or, with
// --json, as indented JSON; logs go to stderr and the log file.
//
// New behaviour belongs in the internal packages first; commands here stay
// thin adapters over them.
package main
