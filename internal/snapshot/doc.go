// Package snapshot converts the studio's nested editor state into the flat,
// ordered render submission payload.
//
// The editor wire format keys tracks and clips by id inside JSON objects
// whose member order is position-sensitive for rendering, so the package
// decodes those objects through order-preserving set types instead of Go
// maps. BuildTracks performs the category grouping (including the target
// fan-out the upstream renderer expects) and BuildRenderRequest attaches
// project identity to produce the final payload.
package snapshot
