// Package iocontext carries the command's stdio streams through context so
// handlers never reach for os.Stdout directly.
package iocontext

import (
	"context"
	"io"
	"os"
)

type ctxKey int

const (
	stdinKey ctxKey = iota
	stdoutKey
	stderrKey
)

// WithIO injects stdin, stdout and stderr into context. Nil streams are
// left unset.
func WithIO(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer) context.Context {
	if stdin != nil {
		ctx = context.WithValue(ctx, stdinKey, stdin)
	}
	if stdout != nil {
		ctx = context.WithValue(ctx, stdoutKey, stdout)
	}
	if stderr != nil {
		ctx = context.WithValue(ctx, stderrKey, stderr)
	}
	return ctx
}

// Stdin returns the stdin reader from context, or os.Stdin.
func Stdin(ctx context.Context) io.Reader {
	if r, ok := ctx.Value(stdinKey).(io.Reader); ok {
		return r
	}
	return os.Stdin
}

// Stdout returns the stdout writer from context, or os.Stdout.
func Stdout(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(stdoutKey).(io.Writer); ok {
		return w
	}
	return os.Stdout
}

// Stderr returns the stderr writer from context, or os.Stderr.
func Stderr(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(stderrKey).(io.Writer); ok {
		return w
	}
	return os.Stderr
}
