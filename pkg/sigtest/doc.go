// Package sigtest provides test helpers for code built on rivulet signals:
// collectors that record a subscription's events and assertion helpers for
// comparing what was observed against expectations.
package sigtest
