// Package mock provides an in-memory vector index for testing.
package mock
