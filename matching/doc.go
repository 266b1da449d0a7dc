// Package matching ranks tasks for a volunteer and volunteers for a task.
//
// Scores are semantic (cosine similarity of embeddings) where the oracle can
// provide them and keyword based (share of the task's skills the volunteer
// has) otherwise. The fallback is decided per entry, so one text the model
// cannot embed does not demote the whole batch. Entries are scored on a
// bounded ants worker pool and the output keeps input order among equal scores.
//
// Scores are raw; convert with core.ScoreToPercent at the presentation layer.
package matching
