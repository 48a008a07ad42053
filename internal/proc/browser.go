package proc

import (
	"fmt"
	"os/exec"
)

// BrowserCommand returns the program and arguments that open url in the
// default browser on goos.
func BrowserCommand(goos, url string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{url}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}
	default:
		return "xdg-open", []string{url}
	}
}

// OpenBrowser starts the platform opener for url under the supervisor.
func (s *Supervisor) OpenBrowser(goos, url string) error {
	name, args := BrowserCommand(goos, url)
	if _, err := exec.LookPath(name); err != nil {
		return fmt.Errorf("no browser opener: %w", err)
	}
	_, err := s.Start("browser", exec.Command(name, args...))
	return err
}
