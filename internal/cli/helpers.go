package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/twinlab/twin/internal/daemon"
	"github.com/twinlab/twin/internal/domain"
)

// openDaemon constructs the daemon and requires an active session.
func openDaemon() (*daemon.Daemon, domain.UserState, error) {
	d, err := daemon.New()
	if err != nil {
		return nil, domain.UserState{}, err
	}
	st, err := d.Session.State()
	if err != nil {
		d.Close()
		return nil, domain.UserState{}, fmt.Errorf("not logged in; run 'twin login' or 'twin register' first")
	}
	return d, st, nil
}

// confirm asks a yes/no question on stdin. Default is no.
func confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
	return answer == "y" || answer == "yes"
}

// readLine prompts and reads one line from stdin.
func readLine(prompt string) string {
	fmt.Print(prompt)
	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		return ""
	}
	return strings.TrimSpace(scanner.Text())
}
