// Package mediacrush is a client for the MediaCrush media-hosting API
// (https://www.mediacru.sh/api/). It uploads local files, streams or remote
// URLs, looks up file metadata and processing status by hash, checks whether a
// hash exists, and deletes files.
//
// Every call is a fresh, synchronous round trip; the Client keeps no state
// between calls and is safe for concurrent use. Uploads return a hash
// immediately, before the server has finished converting the media, so
// callers poll GetFile or PollStatus until the status leaves StatusProcessing.
//
// Failures are reported through sentinel errors (ErrDuplicate,
// ErrRateLimited, ...) that can be matched with errors.Is, and through
// *RejectedError and *ArgumentError for callers that need the status code or
// the offending parameter.
package mediacrush
