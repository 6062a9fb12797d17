// Package main provides the entry point for the accessd policy service.
// It runs an HTTP service built on the Fiber framework that stores roles,
// permissions and their associations, resolves a user's effective
// capabilities at request time, and renders allow/deny decisions for
// callers. Persistence is handled with gorm; every mutation of the policy
// data can leave an append-only audit trail.
package main
