// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import "fmt"

// ErrorKind classifies a per-item fetch failure.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindNoIdentifier
	KindTransport
	KindStatus
	KindContentType
	KindEmptyFile
	KindNoLink
)

func (k ErrorKind) String() string {
	switch k {
	case KindNoIdentifier:
		return "no-identifier"
	case KindTransport:
		return "transport"
	case KindStatus:
		return "status"
	case KindContentType:
		return "content-type"
	case KindEmptyFile:
		return "empty-file"
	case KindNoLink:
		return "no-link"
	default:
		return "unknown"
	}
}

// Error is a per-item fetch failure. Kind selects the recovery path
// (retry, fallback, or give up); Detail carries the human-readable
// description that ends up in the failure log.
type Error struct {
	Kind   ErrorKind
	Detail string
}

func (e *Error) Error() string {
	return e.Detail
}

func errf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}
