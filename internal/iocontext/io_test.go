package iocontext

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"
)

func TestWithIO(t *testing.T) {
	var out, errBuf bytes.Buffer
	in := strings.NewReader("pricing")
	ctx := WithIO(context.Background(), in, &out, &errBuf)

	if Stdin(ctx) != in {
		t.Error("Stdin did not return injected reader")
	}
	if Stdout(ctx) != &out {
		t.Error("Stdout did not return injected writer")
	}
	if Stderr(ctx) != &errBuf {
		t.Error("Stderr did not return injected writer")
	}
}

func TestDefaults(t *testing.T) {
	ctx := context.Background()
	if Stdin(ctx) != os.Stdin {
		t.Error("Stdin default should be os.Stdin")
	}
	if Stdout(ctx) != os.Stdout {
		t.Error("Stdout default should be os.Stdout")
	}
	if Stderr(ctx) != os.Stderr {
		t.Error("Stderr default should be os.Stderr")
	}
}

func TestNilStreamsLeaveDefaults(t *testing.T) {
	var out bytes.Buffer
	ctx := WithIO(context.Background(), nil, &out, nil)

	if Stdout(ctx) != &out {
		t.Error("Stdout did not return injected writer")
	}
	if Stdin(ctx) != os.Stdin {
		t.Error("nil stdin should fall back to os.Stdin")
	}
	if Stderr(ctx) != os.Stderr {
		t.Error("nil stderr should fall back to os.Stderr")
	}
}
