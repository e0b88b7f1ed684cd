package cmd

import (
	"context"
	"fmt"

	"github.com/securefoxd/securefox/clierror"
	"github.com/securefoxd/securefox/genericclioptions"
	"github.com/securefoxd/securefox/securefoxclient"

	"github.com/spf13/cobra"
)

type totpOptions struct {
	id     string
	client *securefoxclient.Client
}

var _ genericclioptions.CmdOptions = &totpOptions{}

func (o *totpOptions) Complete() error {
	o.client = global.client()
	return nil
}

func (o *totpOptions) Validate() error {
	if o.id == "" {
		return fmt.Errorf("an item id is required")
	}

	return nil
}

func (o *totpOptions) Run() error {
	code, err := o.client.ItemTOTP(context.Background(), o.id)
	if err != nil {
		return err
	}

	fmt.Printf("%s (valid for %ds)\n", code.Code, code.TTL)

	return nil
}

func newTOTPCommand() *cobra.Command {
	o := &totpOptions{}

	return &cobra.Command{
		Use:   "totp <id>",
		Short: "generate the current TOTP code for an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			o.id = args[0]
			return clierror.Check(runOptions(o))
		},
	}
}
