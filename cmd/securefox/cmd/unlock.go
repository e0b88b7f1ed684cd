package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/securefoxd/securefox/clierror"
	"github.com/securefoxd/securefox/genericclioptions"
	"github.com/securefoxd/securefox/input"
	"github.com/securefoxd/securefox/securefoxclient"

	"github.com/spf13/cobra"
)

// unlockOptions unlocks the daemon's vault and persists the resulting
// bearer token so subsequent commands reuse the session.
type unlockOptions struct {
	stdin bool

	client *securefoxclient.Client
}

var _ genericclioptions.CmdOptions = &unlockOptions{}

func (o *unlockOptions) Complete() error {
	o.client = global.client()
	return nil
}

func (*unlockOptions) Validate() error {
	return nil
}

func (o *unlockOptions) Run() error {
	var password string

	if o.stdin {
		p, err := input.PromptRead(os.Stdout, os.Stdin, "")
		if err != nil {
			return err
		}

		password = p
	} else {
		p, err := input.PromptPassword(os.Stdout, int(os.Stdin.Fd()))
		if err != nil {
			return err
		}

		password = string(p)
	}

	result, err := o.client.Unlock(context.Background(), password)
	if err != nil {
		return err
	}

	if err := saveSessionToken(result.Token); err != nil {
		return err
	}

	fmt.Printf("unlocked: %d items, %d folders\n", result.VaultSummary.ItemCount, result.VaultSummary.FolderCount)

	return nil
}

func newUnlockCommand() *cobra.Command {
	o := &unlockOptions{}

	cmd := &cobra.Command{
		Use:   "unlock",
		Short: "unlock the vault and start a session",
		RunE: func(*cobra.Command, []string) error {
			return clierror.Check(runOptions(o))
		},
	}

	cmd.Flags().BoolVar(&o.stdin, "stdin", false, "read the master password from stdin instead of a secure prompt")

	// --stdin bypasses the secure prompt; keep it out of the printed
	// help so it isn't the first thing a user reaches for.
	genericclioptions.MarkFlagsHidden(cmd, "stdin")

	return cmd
}
