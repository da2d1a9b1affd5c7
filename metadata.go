package imap

import (
	"fmt"
)

// GetMetadataDepth is the DEPTH option of GETMETADATA and GETANNOTATION.
type GetMetadataDepth int

const (
	GetMetadataDepthZero     GetMetadataDepth = 0
	GetMetadataDepthOne      GetMetadataDepth = 1
	GetMetadataDepthInfinity GetMetadataDepth = -1
)

func (depth GetMetadataDepth) String() string {
	switch depth {
	case GetMetadataDepthZero:
		return "0"
	case GetMetadataDepthOne:
		return "1"
	case GetMetadataDepthInfinity:
		return "infinity"
	default:
		panic(fmt.Errorf("imap: unknown GETMETADATA depth %d", depth))
	}
}

// GetMetadataOptions contains options for the GETMETADATA command.
type GetMetadataOptions struct {
	MaxSize *uint32
	Depth   GetMetadataDepth
}

// MetadataEntry is a mailbox annotation as sent by SETMETADATA. A nil Value
// (NIL on the wire) removes the entry.
//
// See RFC 5464.
type MetadataEntry struct {
	Key   string
	Value *[]byte
}
