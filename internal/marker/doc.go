// Package marker implements the title-token protocol that gates rendering.
//
// Editors flag a project by adding a ready marker (default "#render") to its
// title; dubloom replaces it with an exported marker (default "#exported")
// once the render is done. Matching is case-insensitive and token-isolated so
// that "Prerendering" never triggers a "#render"-less marker like "render".
package marker
