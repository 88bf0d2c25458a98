package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/twinlab/twin/internal/app/i18n"
	"github.com/twinlab/twin/internal/domain"
)

func init() {
	inboxCmd.AddCommand(inboxListCmd)
	inboxCmd.AddCommand(inboxReadCmd)
	rootCmd.AddCommand(inboxCmd)
}

var inboxCmd = &cobra.Command{
	Use:   "inbox",
	Short: "Read your twin's messages",
}

var inboxListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List inbox messages",
	RunE:    runInboxList,
}

var inboxReadCmd = &cobra.Command{
	Use:   "read MESSAGE_ID",
	Short: "Read a message and mark it read",
	Args:  cobra.ExactArgs(1),
	RunE:  runInboxRead,
}

func runInboxList(cmd *cobra.Command, args []string) error {
	d, st, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	if len(st.Messages) == 0 {
		fmt.Println("Inbox is empty.")
		return nil
	}

	lang := st.Preferences.Language
	vars := i18n.Vars{Name: st.Name, Email: st.Email}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tFROM\tSUBJECT\tREAD")
	for _, m := range st.Messages {
		mark := ""
		if !m.Read {
			mark = "unread"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			m.ID,
			m.Date.Format("2006-01-02 15:04"),
			i18n.Render(lang, m.Sender, vars),
			i18n.Render(lang, m.Subject, vars),
			mark,
		)
	}
	return w.Flush()
}

func runInboxRead(cmd *cobra.Command, args []string) error {
	d, st, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	id := args[0]
	var msg *domain.InboxMessage
	for i := range st.Messages {
		if st.Messages[i].ID == id {
			msg = &st.Messages[i]
			break
		}
	}
	if msg == nil {
		return fmt.Errorf("no message with id %s", id)
	}

	lang := st.Preferences.Language
	vars := i18n.Vars{Name: st.Name, Email: st.Email}
	fmt.Printf("From: %s\n", i18n.Render(lang, msg.Sender, vars))
	fmt.Printf("Date: %s\n", msg.Date.Format("2006-01-02 15:04"))
	fmt.Printf("Subject: %s\n\n", i18n.Render(lang, msg.Subject, vars))
	fmt.Println(i18n.Render(lang, msg.Body, vars))

	err = d.Session.Apply(func(st domain.UserState) (domain.UserState, error) {
		out := st.Clone()
		for i := range out.Messages {
			if out.Messages[i].ID == id {
				out.Messages[i].Read = true
			}
		}
		return out, nil
	})
	if err != nil {
		return err
	}
	d.Session.Flush()
	return nil
}
