package cmd

import (
	"context"
	"fmt"

	"github.com/securefoxd/securefox/clierror"
	"github.com/securefoxd/securefox/genericclioptions"
	"github.com/securefoxd/securefox/securefoxclient"

	"github.com/spf13/cobra"
)

type lockOptions struct {
	client *securefoxclient.Client
}

var _ genericclioptions.CmdOptions = &lockOptions{}

func (o *lockOptions) Complete() error {
	o.client = global.client()
	return nil
}

func (*lockOptions) Validate() error {
	return nil
}

func (o *lockOptions) Run() error {
	if _, err := o.client.Lock(context.Background()); err != nil {
		return err
	}

	clearSessionToken()
	fmt.Println("vault locked")

	return nil
}

func newLockCommand() *cobra.Command {
	o := &lockOptions{}

	return &cobra.Command{
		Use:   "lock",
		Short: "lock the vault and end the session",
		RunE: func(*cobra.Command, []string) error {
			return clierror.Check(runOptions(o))
		},
	}
}

type statusOptions struct {
	client *securefoxclient.Client
}

var _ genericclioptions.CmdOptions = &statusOptions{}

func (o *statusOptions) Complete() error {
	o.client = global.client()
	return nil
}

func (*statusOptions) Validate() error {
	return nil
}

func (o *statusOptions) Run() error {
	s, err := o.client.Status(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("locked: %v\nsession valid: %v\nvault exists: %v\n", s.Locked, s.SessionValid, s.VaultExists)

	return nil
}

func newStatusCommand() *cobra.Command {
	o := &statusOptions{}

	return &cobra.Command{
		Use:   "status",
		Short: "show daemon and session status",
		RunE: func(*cobra.Command, []string) error {
			return clierror.Check(runOptions(o))
		},
	}
}
