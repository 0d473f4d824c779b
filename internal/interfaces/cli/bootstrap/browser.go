package bootstrap

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// OpenBrowser prints the sign-in URL and tries to open it with the desktop
// handler. A missing handler is not an error: the operator can copy the URL.
func OpenBrowser(url string) error {
	fmt.Fprintf(os.Stderr, "Open this URL to sign in:\n\n  %s\n\n", url)

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err == nil {
		go func() { _ = cmd.Wait() }()
	}
	return nil
}
