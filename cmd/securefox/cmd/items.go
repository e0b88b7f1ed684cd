package cmd

import (
	"context"
	"fmt"

	"github.com/securefoxd/securefox/clierror"
	"github.com/securefoxd/securefox/clipboard"
	"github.com/securefoxd/securefox/genericclioptions"
	"github.com/securefoxd/securefox/securefoxclient"
	"github.com/securefoxd/securefox/util"
	"github.com/securefoxd/securefox/vaultmodel"

	"github.com/spf13/cobra"
)

type listOptions struct {
	search   string
	folderID string

	client *securefoxclient.Client
}

var _ genericclioptions.CmdOptions = &listOptions{}

func (o *listOptions) Complete() error {
	o.client = global.client()
	return nil
}

func (*listOptions) Validate() error {
	return nil
}

func (o *listOptions) Run() error {
	items, err := o.client.ListItems(context.Background(), o.search, o.folderID)
	if err != nil {
		return err
	}

	if len(items) == 0 {
		fmt.Println("no items")
		return nil
	}

	for _, it := range items {
		name := usernameOf(it)
		fmt.Printf("%s\t%s\t%s\n", it.ID, it.Name, name)
	}

	return nil
}

func usernameOf(it vaultmodel.Item) string {
	if it.Login != nil && it.Login.Username != nil {
		return *it.Login.Username
	}

	return ""
}

func newListCommand() *cobra.Command {
	o := &listOptions{}

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "list vault items",
		RunE: func(*cobra.Command, []string) error {
			return clierror.Check(runOptions(o))
		},
	}

	cmd.Flags().StringVar(&o.search, "search", "", "filter by name or username substring")
	cmd.Flags().StringVar(&o.folderID, "folder-id", "", "filter by folder id")

	return cmd
}

type addOptions struct {
	name     string
	username string
	password string
	url      string
	totp     string
	folderID string

	client *securefoxclient.Client
}

var _ genericclioptions.CmdOptions = &addOptions{}

func (o *addOptions) Complete() error {
	o.client = global.client()
	return nil
}

func (o *addOptions) Validate() error {
	if o.name == "" {
		return fmt.Errorf("--name is required")
	}

	return nil
}

func (o *addOptions) Run() error {
	item := vaultmodel.Item{
		Name: o.name,
		Type: vaultmodel.ItemTypeLogin,
		Login: &vaultmodel.LoginData{
			Username: strPtrOrNil(o.username),
			Password: strPtrOrNil(o.password),
			Totp:     strPtrOrNil(o.totp),
		},
	}

	if o.folderID != "" {
		item.FolderID = &o.folderID
	}

	if o.url != "" {
		item.Login.Uris = loginURIs(o.url)
	}

	created, err := o.client.CreateItem(context.Background(), item)
	if err != nil {
		return err
	}

	fmt.Printf("created %s (%s)\n", created.Name, created.ID)

	return nil
}

// loginURIs splits a comma-separated --url flag into one LoginUri per
// entry, so a single item can carry several matching URLs.
func loginURIs(raw string) []vaultmodel.LoginUri {
	parts := util.ParseCommaSeparated(raw)
	uris := make([]vaultmodel.LoginUri, 0, len(parts))

	for _, p := range parts {
		uris = append(uris, vaultmodel.LoginUri{Uri: p})
	}

	return uris
}

func strPtrOrNil(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}

func newAddCommand() *cobra.Command {
	o := &addOptions{}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "add a login item",
		RunE: func(*cobra.Command, []string) error {
			return clierror.Check(runOptions(o))
		},
	}

	cmd.Flags().StringVar(&o.name, "name", "", "item display name (required)")
	cmd.Flags().StringVar(&o.username, "username", "", "login username")
	cmd.Flags().StringVar(&o.password, "password", "", "login password")
	cmd.Flags().StringVar(&o.url, "url", "", "comma-separated login URIs")
	cmd.Flags().StringVar(&o.totp, "totp", "", "TOTP secret or otpauth:// URI")
	cmd.Flags().StringVar(&o.folderID, "folder-id", "", "folder to file the item under")

	return cmd
}

type getOptions struct {
	id    string
	copy  bool
	show  bool
	client *securefoxclient.Client
}

var _ genericclioptions.CmdOptions = &getOptions{}

func (o *getOptions) Complete() error {
	o.client = global.client()
	return nil
}

func (o *getOptions) Validate() error {
	if o.id == "" {
		return fmt.Errorf("an item id is required")
	}

	return nil
}

func (o *getOptions) Run() error {
	item, err := o.client.GetItem(context.Background(), o.id)
	if err != nil {
		return err
	}

	fmt.Printf("name:     %s\n", item.Name)

	if item.Login != nil {
		if item.Login.Username != nil {
			fmt.Printf("username: %s\n", *item.Login.Username)
		}

		if item.Login.Password != nil {
			if o.copy {
				if err := clipboard.Copy(*item.Login.Password); err != nil {
					return fmt.Errorf("copy to clipboard: %w", err)
				}

				fmt.Println("password: (copied to clipboard)")
			} else if o.show {
				fmt.Printf("password: %s\n", *item.Login.Password)
			} else {
				fmt.Println("password: ******** (use --show or --copy)")
			}
		}

		for _, u := range item.Login.Uris {
			fmt.Printf("url:      %s\n", u.Uri)
		}
	}

	return nil
}

func newGetCommand() *cobra.Command {
	o := &getOptions{}

	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "show a single item",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			o.id = args[0]
			return clierror.Check(runOptions(o))
		},
	}

	cmd.Flags().BoolVar(&o.copy, "copy", false, "copy the password to the clipboard instead of printing it")
	cmd.Flags().BoolVar(&o.show, "show", false, "print the password in plaintext")

	return cmd
}

type updateOptions struct {
	id       string
	name     string
	username string
	password string
	url      string

	client *securefoxclient.Client
}

var _ genericclioptions.CmdOptions = &updateOptions{}

func (o *updateOptions) Complete() error {
	o.client = global.client()
	return nil
}

func (o *updateOptions) Validate() error {
	if o.id == "" {
		return fmt.Errorf("an item id is required")
	}

	return nil
}

func (o *updateOptions) Run() error {
	ctx := context.Background()

	existing, err := o.client.GetItem(ctx, o.id)
	if err != nil {
		return err
	}

	if o.name != "" {
		existing.Name = o.name
	}

	if existing.Login == nil {
		existing.Login = &vaultmodel.LoginData{}
	}

	if o.username != "" {
		existing.Login.Username = &o.username
	}

	if o.password != "" {
		existing.Login.Password = &o.password
	}

	if o.url != "" {
		existing.Login.Uris = loginURIs(o.url)
	}

	updated, err := o.client.UpdateItem(ctx, o.id, *existing)
	if err != nil {
		return err
	}

	fmt.Printf("updated %s (%s)\n", updated.Name, updated.ID)

	return nil
}

func newUpdateCommand() *cobra.Command {
	o := &updateOptions{}

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "update fields on an existing item",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			o.id = args[0]
			return clierror.Check(runOptions(o))
		},
	}

	cmd.Flags().StringVar(&o.name, "name", "", "new display name")
	cmd.Flags().StringVar(&o.username, "username", "", "new login username")
	cmd.Flags().StringVar(&o.password, "password", "", "new login password")
	cmd.Flags().StringVar(&o.url, "url", "", "new comma-separated login URIs")

	return cmd
}

type removeOptions struct {
	id     string
	client *securefoxclient.Client
}

var _ genericclioptions.CmdOptions = &removeOptions{}

func (o *removeOptions) Complete() error {
	o.client = global.client()
	return nil
}

func (o *removeOptions) Validate() error {
	if o.id == "" {
		return fmt.Errorf("an item id is required")
	}

	return nil
}

func (o *removeOptions) Run() error {
	if err := o.client.DeleteItem(context.Background(), o.id); err != nil {
		return err
	}

	fmt.Println("removed")

	return nil
}

func newRemoveCommand() *cobra.Command {
	o := &removeOptions{}

	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove", "delete"},
		Short:   "delete an item",
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			o.id = args[0]
			return clierror.Check(runOptions(o))
		},
	}
}
