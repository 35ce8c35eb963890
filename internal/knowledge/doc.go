// Package knowledge manages the short-form Q&A corpus used for direct-match
// retrieval.
//
// An Entry is a question/answer pair with keywords, a priority, and a usage
// counter. Entries are managed by an external admin surface; the engine reads
// candidates and increments the usage counter of cited entries, nothing else.
//
// Scoring is a pure function over (query, entry): additive weighted terms,
// each capped, with an exact question match short-circuiting to 1.0.
// Weights come from configuration so they can be retuned without code changes.
package knowledge
