// Package history journals run outcomes.
//
// The journal is optional operational plumbing: when storage is not
// configured the bot runs exactly as before, it just has nothing to show on
// the status endpoint. Writes are best-effort and never fail a run.
package history
