// Package roster fetches the employee roster from its spreadsheet source and
// extracts the people whose birthday or hire anniversary falls on a given day.
//
// The source contract is deliberately forgiving: a missing column yields an
// empty series (logged as a warning), an unparseable date cell yields a person
// who simply never matches, and a fetch failure yields an empty table. None of
// these abort a run.
package roster
