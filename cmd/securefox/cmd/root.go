// Package cmd implements the securefox CLI's command tree. Each
// command follows the teacher's genericclioptions.CmdOptions pattern:
// an options struct with Complete/Validate/Run, wired into a
// *cobra.Command whose RunE calls genericclioptions.ExecuteCommand and
// reports failures via clierror.Check. Commands that need the running
// daemon talk to it exclusively through securefoxclient, never
// touching vaultstorage or vaultsession directly, since securefoxd is
// the single owner of the decrypted vault per spec.md §4.5.
package cmd

import (
	"github.com/securefoxd/securefox/genericclioptions"
	"github.com/securefoxd/securefox/securefoxclient"

	"github.com/spf13/cobra"
)

// globalOptions holds flags shared by every subcommand.
type globalOptions struct {
	addr string
}

var global = &globalOptions{}

// client builds a securefoxclient.Client bound to the configured
// daemon address, using the session token persisted by the last
// successful unlock.
func (g *globalOptions) client() *securefoxclient.Client {
	return securefoxclient.New(g.addr, loadSessionToken())
}

// Execute builds and runs the securefox root command.
func Execute(args []string) error {
	root := newRootCommand()
	root.SetArgs(args)

	return root.Execute()
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "securefox",
		Short:         "a local-first password manager",
		Long:          "securefox is the command-line client for securefoxd, the local vault daemon.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&global.addr, "addr", securefoxclient.DefaultAddr, "address of the securefoxd daemon")

	cmd.AddCommand(
		newInitCommand(),
		newUnlockCommand(),
		newLockCommand(),
		newStatusCommand(),
		newListCommand(),
		newAddCommand(),
		newGetCommand(),
		newUpdateCommand(),
		newRemoveCommand(),
		newTOTPCommand(),
		newGenerateCommand(),
		newRemoteCommand(),
		newSyncCommand(),
	)

	return cmd
}

// runOptions is a convenience wrapper matching the teacher's
// `clierror.Check(genericclioptions.ExecuteCommand(o))` call site.
func runOptions(o genericclioptions.CmdOptions) error {
	return genericclioptions.ExecuteCommand(o)
}
