// Package message renders the announcement payload.
//
// The payload is a small typed subset of Slack's Block Kit: dividers,
// sections with an image accessory, and rich_text bullet lists. Templates are
// immutable once loaded; every run builds a fresh payload tree, so a run can
// never leak mutated template state into the next one.
package message
