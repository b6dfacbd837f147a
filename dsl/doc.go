// Package dsl provides fluent builders for type descriptors. Builders
// return plain typegraph descriptors; nothing here touches generation
// state, so built descriptors can be shared process-wide.
package dsl
