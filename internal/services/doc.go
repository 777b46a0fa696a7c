// Package services holds cross-cutting helpers shared by the remote service
// clients and the workflow runner: sentinel errors with a Wrap helper that
// tags failures for classification, and context keys that carry item, stage,
// and correlation identifiers into logs.
package services
