// Command sendmail sends a plain text mail through the local MTA.
package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lfkit/lfkit/internal/cli"
	"github.com/lfkit/lfkit/internal/mail"
)

func main() {
	os.Exit(cli.Execute(newRootCmd()))
}

func newRootCmd() *cobra.Command {
	var m mail.Message
	root := &cobra.Command{
		Use:   "sendmail",
		Short: "Send a UTF-8 text mail via localhost:25",
		Args:  cobra.NoArgs,
	}
	app := cli.New(root)
	root.Flags().StringVar(&m.To, "to", "", "recipient")
	root.Flags().StringVar(&m.Subject, "subject", "", "subject line")
	root.Flags().StringVar(&m.Body, "body", "", "message body")
	root.Flags().StringVar(&m.From, "from", "", "sender (default <user>@localhost)")
	for _, name := range []string{"to", "subject", "body"} {
		_ = root.MarkFlagRequired(name)
	}

	root.RunE = func(cmd *cobra.Command, args []string) error {
		s, err := mail.NewLocalSender()
		if err != nil {
			return err
		}
		if err := mail.Send(cmd.Context(), s, m); err != nil {
			return err
		}
		app.Logger.Info("mail sent", zap.String("to", m.To), zap.String("subject", m.Subject))
		return nil
	}
	return root
}
