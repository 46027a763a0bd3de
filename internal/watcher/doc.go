// Package watcher turns inbox folder activity into "file ready" calls.
//
// A Watcher subscribes to the inbox with fsnotify (top level only), and for
// every accepted file waits until its size and modification time stop
// changing for the settle interval before handing the path to the handler.
// Handlers run one at a time on a single goroutine so the organizer never
// files two documents concurrently. Files that disappear are released in the
// watcher's tracking.Session so a later copy with the same name is filed
// again; the durable processed record is left in place.
package watcher
