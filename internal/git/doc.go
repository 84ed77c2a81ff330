// Package git implements the repository backend on top of libgit2 via
// git2go.
//
// Every handle wraps one *git2go.Repository and is used by a single worker,
// so no locking happens here. libgit2 objects are freed as soon as the
// value they carry has been copied out; only full hex object ids and plain
// Go values cross the package boundary.
//
// # Repository Operations
//
//   - [Opener.Open]: Open a working tree by path
//   - [Repo.Head]: Classify HEAD as branch, detached, unborn or unresolved
//   - [Repo.Status]: Bucket index and working tree changes
//   - [Repo.Checkout], [Repo.SetHead], [Repo.AdvanceHead]: Safe checkout and ref moves
//   - [Repo.Upstream], [Repo.AheadBehind], [Repo.MergeAnalysis]: Upstream relationship
//
// # Remote Operations
//
// [Repo.Fetch] fetches a named remote. Credential requests from the
// transport are forwarded to a [vcs.CredentialProvider]; a refusal aborts
// the fetch. Cancellation of the context is observed in the transfer
// progress and credential callbacks, which is where libgit2 lets a caller
// abort a running fetch.
package git
