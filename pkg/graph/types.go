package graph

import (
	"crypto/sha256"
	"encoding/hex"
)

// NodeID is a content-addressed identifier for graph nodes.
// The zero value means "no node".
type NodeID [sha256.Size]byte

// NewNodeID derives an ID from an arbitrary path or content string.
func NewNodeID(s string) NodeID {
	return sha256.Sum256([]byte(s))
}

// IsZero reports whether id is the zero ID.
func (id NodeID) IsZero() bool {
	return id == NodeID{}
}

// String returns the full hex encoding.
func (id NodeID) String() string {
	return hex.EncodeToString(id[:])
}

// Short returns the first 12 hex characters, for logs and messages.
func (id NodeID) Short() string {
	return hex.EncodeToString(id[:6])
}
