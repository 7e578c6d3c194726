// Package chroma implements the vector index contract against a ChromaDB
// server using the v2 HTTP API.
package chroma
