// Package studio implements the HTTP client for the remote dubbing studio.
//
// Two API surfaces are involved: the public API (api-key header) serves
// project metadata reads, and the studio API (bearer token) serves the editor
// snapshot, render submission, the internal status feed, and renames. All
// non-success responses surface as transport errors carrying the status code
// and response body so per-item logs show exactly what the service said.
package studio
