package cmd

import (
	"fmt"

	"github.com/securefoxd/securefox/clierror"
	"github.com/securefoxd/securefox/genericclioptions"
	"github.com/securefoxd/securefox/gitsync"
	"github.com/securefoxd/securefox/vaultconfig"
	"github.com/securefoxd/securefox/vaultstorage"

	"github.com/spf13/cobra"
)

// remoteOptions manages the Git remote URL independent of sync mode,
// per SPEC_FULL.md's supplemented features: setting a remote doesn't
// require Auto mode, and Auto mode's interval is unaffected by it.
// This operates directly on the vault directory's git repository and
// the plaintext config file rather than going through securefoxd,
// since it changes neither the decrypted vault nor a live session.
type remoteOptions struct {
	url string
	get bool

	storage *vaultstorage.Storage
	config  *vaultconfig.Config
}

var _ genericclioptions.CmdOptions = &remoteOptions{}

func (o *remoteOptions) Complete() error {
	s, err := vaultstorage.New()
	if err != nil {
		return err
	}

	o.storage = s

	c, err := vaultconfig.Load()
	if err != nil {
		return err
	}

	o.config = c

	return nil
}

func (o *remoteOptions) Validate() error {
	if !o.get && o.url == "" {
		return fmt.Errorf("a remote URL is required (or pass --get)")
	}

	return nil
}

func (o *remoteOptions) Run() error {
	engine, err := gitsync.Open(o.storage.Dir())
	if err != nil {
		return err
	}

	if o.get {
		url, ok := engine.GetRemote()
		if !ok {
			fmt.Println("no remote configured")
			return nil
		}

		fmt.Println(url)

		return nil
	}

	if err := engine.SetRemote(o.url); err != nil {
		return err
	}

	o.config.RemoteURL = &o.url
	if err := o.config.Save(); err != nil {
		return err
	}

	fmt.Printf("remote set to %s\n", o.url)

	return nil
}

func newRemoteCommand() *cobra.Command {
	o := &remoteOptions{}

	cmd := &cobra.Command{
		Use:   "remote [url]",
		Short: "get or set the vault's git remote URL",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if len(args) == 1 {
				o.url = args[0]
			}

			return clierror.Check(runOptions(o))
		},
	}

	cmd.Flags().BoolVar(&o.get, "get", false, "print the current remote URL instead of setting one")

	return cmd
}
