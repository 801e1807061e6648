package download

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"
)

// ErrorKind classifies a failed download.
type ErrorKind int

const (
	KindOther ErrorKind = iota
	KindUnavailable
	KindPrivate
	KindTransfer
	KindOutputMissing
	KindNotFound
)

// Status messages shown for each failure kind.
const (
	MsgUnavailable   = "Video bulunamadı"
	MsgPrivate       = "Video özel"
	MsgTransfer      = "İndirme hatası"
	MsgOutputMissing = "İndirilen dosya bulunamadı"
	MsgNotFound      = "Bulunamadı"
	MsgNoFile        = "Dosya Yok"
)

// maxTransferDetail caps the tool output quoted in a transfer failure.
const maxTransferDetail = 100

// Error is a classified download failure. Message is the text shown to
// the user; Err is the underlying cause, if any.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Kind == KindOther {
		return e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Reason returns the user-facing failure text for err.
func Reason(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// classifyFetchError maps an error from the fetch tool onto the failure
// taxonomy using the tool's well-known messages.
func classifyFetchError(err error) *Error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindOther, Message: err.Error(), Err: err}
	}

	text := err.Error()
	switch {
	case strings.Contains(text, "Video unavailable"):
		return &Error{Kind: KindUnavailable, Message: MsgUnavailable, Err: err}
	case strings.Contains(text, "Private video"):
		return &Error{Kind: KindPrivate, Message: MsgPrivate, Err: err}
	}
	return &Error{Kind: KindTransfer, Message: MsgTransfer + ": " + truncateRunes(text, maxTransferDetail), Err: err}
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
