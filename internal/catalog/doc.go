// Package catalog loads the remote platform configuration and answers
// lookups over it.
//
// The configuration document lists, per platform, the services (boost types)
// that can be ordered. It is fetched once at start-up by [Loader], written
// through to a local cache file, and read back from that cache when the
// remote endpoint is unreachable. [Catalog] is a read-only view over the
// loaded document.
package catalog
