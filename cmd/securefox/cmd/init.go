package cmd

import (
	"fmt"
	"os"

	"github.com/securefoxd/securefox/clierror"
	"github.com/securefoxd/securefox/genericclioptions"
	"github.com/securefoxd/securefox/input"
	"github.com/securefoxd/securefox/vaultmodel"
	"github.com/securefoxd/securefox/vaultstorage"

	"github.com/spf13/cobra"
)

const minMasterPasswordLength = 8

// initOptions creates a new, empty vault at the default location.
type initOptions struct {
	storage *vaultstorage.Storage
}

var _ genericclioptions.CmdOptions = &initOptions{}

func (o *initOptions) Complete() error {
	s, err := vaultstorage.New()
	if err != nil {
		return err
	}

	o.storage = s

	return nil
}

func (o *initOptions) Validate() error {
	if o.storage.Exists() {
		return fmt.Errorf("vault already exists at %s", o.storage.Path())
	}

	return nil
}

func (o *initOptions) Run() error {
	password, err := input.PromptNewPassword(os.Stdout, int(os.Stdin.Fd()), minMasterPasswordLength)
	if err != nil {
		return err
	}

	if err := o.storage.Save(vaultmodel.NewVault(), password); err != nil {
		return err
	}

	fmt.Printf("vault created at %s\n", o.storage.Path())

	return nil
}

func newInitCommand() *cobra.Command {
	o := &initOptions{}

	return &cobra.Command{
		Use:   "init",
		Short: "create a new, empty vault",
		RunE: func(*cobra.Command, []string) error {
			return clierror.Check(runOptions(o))
		},
	}
}
