package cmd

import (
	"context"
	"fmt"

	"github.com/securefoxd/securefox/clierror"
	"github.com/securefoxd/securefox/genericclioptions"
	"github.com/securefoxd/securefox/securefoxclient"

	"github.com/spf13/cobra"
)

type syncOptions struct {
	pull   bool
	status bool

	client *securefoxclient.Client
}

var _ genericclioptions.CmdOptions = &syncOptions{}

func (o *syncOptions) Complete() error {
	o.client = global.client()
	return nil
}

func (*syncOptions) Validate() error {
	return nil
}

func (o *syncOptions) Run() error {
	ctx := context.Background()

	if o.status {
		s, err := o.client.SyncStatus(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("ahead: %d, behind: %d, dirty: %v\n", s.Ahead, s.Behind, s.Dirty)

		return nil
	}

	if o.pull {
		r, err := o.client.SyncPull(ctx)
		if err != nil {
			return err
		}

		fmt.Println(r.Message)

		return nil
	}

	r, err := o.client.SyncPush(ctx)
	if err != nil {
		return err
	}

	fmt.Println(r.Message)

	return nil
}

func newSyncCommand() *cobra.Command {
	o := &syncOptions{}

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "push, pull, or check the vault's sync state with its git remote",
		RunE: func(*cobra.Command, []string) error {
			return clierror.Check(runOptions(o))
		},
	}

	cmd.Flags().BoolVar(&o.pull, "pull", false, "pull from the remote instead of pushing")
	cmd.Flags().BoolVar(&o.status, "status", false, "show ahead/behind/dirty status instead of syncing")

	return cmd
}
