// Package warmup pre-computes embeddings for a known corpus of tasks,
// events and volunteer profiles.
//
// Texts are sent to the oracle in batches with retry and exponential
// backoff, and progress is reported as a single updating line. With a
// persistent embedding store configured, a warm run lets later processes
// rank without calling the model.
package warmup
