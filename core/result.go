package core

import (
	"context"
	"encoding/json"
	"errors"
)

// Kind mengelompokkan jenis kegagalan collector supaya pemanggil bisa
// membedakan "memang kosong" dari "gagal ambil data".
type Kind string

const (
	KindNone        Kind = ""
	KindUnsupported Kind = "unsupported" // bukan Windows / fitur tidak ada
	KindCommand     Kind = "command"     // proses eksternal gagal
	KindQuery       Kind = "query"       // WMI / registry query gagal
	KindParse       Kind = "parse"       // output tidak bisa diparse
	KindAccess      Kind = "access"      // akses ditolak
	KindTimeout     Kind = "timeout"
	KindPanic       Kind = "panic"
	KindUnknown     Kind = "unknown"
)

// Error adalah error terstruktur dari collector.
type Error struct {
	Kind   Kind
	Source string // mis. "reg query", "Win32_QuickFixEngineering"
	Err    error
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Source != "" {
		msg += " error (" + e.Source + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Wrap membungkus err dengan kind dan sumbernya (nil tetap nil).
func Wrap(kind Kind, source string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Source: source, Err: err}
}

// KindOf menebak Kind dari sebuah error.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	switch {
	case errors.Is(err, errors.ErrUnsupported):
		return KindUnsupported
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	}
	return KindUnknown
}

// Result membawa nilai collector ATAU error-nya.
type Result[T any] struct {
	Value T
	Err   error
}

// OK membuat Result sukses.
func OK[T any](v T) Result[T] { return Result[T]{Value: v} }

// Fail membuat Result gagal.
func Fail[T any](err error) Result[T] { return Result[T]{Err: err} }

// From menggabungkan pasangan (nilai, error) khas Go ke Result.
func From[T any](v T, err error) Result[T] {
	return Result[T]{Value: v, Err: err}
}

func (r Result[T]) Failed() bool { return r.Err != nil }

func (r Result[T]) Kind() Kind { return KindOf(r.Err) }

// MarshalJSON: {"value": ..., "error": "...", "error_kind": "..."}
func (r Result[T]) MarshalJSON() ([]byte, error) {
	out := struct {
		Value     T      `json:"value"`
		Error     string `json:"error,omitempty"`
		ErrorKind Kind   `json:"error_kind,omitempty"`
	}{Value: r.Value}
	if r.Err != nil {
		out.Error = r.Err.Error()
		out.ErrorKind = r.Kind()
	}
	return json.Marshal(out)
}
