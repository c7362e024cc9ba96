// Package browser launches the user's web browser for the login flow.
package browser

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"golang.org/x/term"
)

// start runs a command without waiting for it to exit.
var start = func(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

// Command returns the launcher used for url on goos.
func Command(goos, url string) (string, []string, error) {
	switch goos {
	case "darwin":
		return "open", []string{url}, nil
	case "linux", "freebsd", "openbsd", "netbsd":
		return "xdg-open", []string{url}, nil
	case "windows":
		return "cmd", []string{"/c", "start", strings.ReplaceAll(url, "&", "^&")}, nil
	default:
		return "", nil, fmt.Errorf("unsupported platform %q", goos)
	}
}

// Open starts the platform browser on url. It does not wait for the browser
// to exit; a launcher that cannot be started is reported as an error.
func Open(url string) error {
	name, args, err := Command(runtime.GOOS, url)
	if err != nil {
		return err
	}
	if err := start(name, args...); err != nil {
		return fmt.Errorf("open browser: %w", err)
	}
	return nil
}

// Interactive reports whether r is a terminal. Anything that is not an
// *os.File (pipes in tests, buffers) is treated as non-interactive.
func Interactive(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok || f == nil {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
