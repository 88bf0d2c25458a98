package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/twinlab/twin/internal/app/gamify"
	"github.com/twinlab/twin/internal/daemon"
	"golang.org/x/term"
)

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)
}

var loginCmd = &cobra.Command{
	Use:   "login USERNAME",
	Short: "Log in to your twin account",
	Args:  cobra.ExactArgs(1),
	RunE:  runLogin,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new twin account",
	RunE:  runRegister,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and clear the local session",
	RunE:  runLogout,
}

func runLogin(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	password, err := readPassword("Password: ")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	data, err := d.Store.Login(ctx, args[0], password)
	if err != nil {
		return err
	}
	d.Session.Start(data.Username, data.State)

	if data.Offline {
		fmt.Printf("Logged in as %s (offline, from local cache", data.Username)
		if data.Stale {
			fmt.Print(", possibly stale")
		}
		fmt.Println(")")
	} else {
		fmt.Printf("Logged in as %s\n", data.Username)
	}
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	name := readLine("Name: ")
	email := readLine("Email: ")
	username := readLine("Username: ")
	if name == "" || email == "" || username == "" {
		return fmt.Errorf("name, email and username are all required")
	}
	password, err := readPassword("Password: ")
	if err != nil {
		return err
	}
	if password == "" {
		return fmt.Errorf("password must not be empty")
	}

	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	st := gamify.NewUserState(name, email, username, time.Now())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	message, err := d.Store.Register(ctx, st, password)
	if err != nil {
		return err
	}
	d.Session.Start(username, st)

	fmt.Printf("Welcome, %s! (%s)\n", name, message)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	if err := d.Session.End(); err != nil {
		return err
	}
	fmt.Println("Logged out.")
	return nil
}

// readPassword reads a password without echo when stdin is a terminal.
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	raw, err := term.ReadPassword(0)
	fmt.Println()
	if err != nil {
		// Not a terminal (piped input); fall back to a plain read.
		return readLine(""), nil
	}
	return string(raw), nil
}
