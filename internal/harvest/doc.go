// Package harvest holds the shared data model and the narrow interfaces the
// harvesting pipeline is assembled from: fetching, extraction-rule
// resolution, grant and source persistence, snapshots and event publishing.
package harvest
