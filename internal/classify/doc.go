// Package classify recognizes Japanese corporate tax filings and accounting
// exports from their file names.
//
// Two passes run in order. The structured pass matches the layout produced by
// e-Tax and eLTAX downloads ({label}_{YYYYMMDD}{company}_{timestamp}.pdf) and
// reads the category, company, fiscal period, and region from it. Names that
// do not follow the layout fall through to an ordered keyword table covering
// receipt notices, payment slips, ledgers, and asset schedules. When PDF text
// is available it fills metadata the name did not carry; it never changes the
// category or confidence.
//
// Everything here is pure and safe for concurrent use.
package classify
