package cmd

import (
	"context"
	"fmt"

	"github.com/securefoxd/securefox/clierror"
	"github.com/securefoxd/securefox/clipboard"
	"github.com/securefoxd/securefox/genericclioptions"
	"github.com/securefoxd/securefox/securefoxclient"

	"github.com/spf13/cobra"
)

// generateOptions asks the daemon to generate a random password,
// keeping the charset/strength logic server-side (httpapi.generatePassword)
// so the CLI and any other client apply identical policy.
type generateOptions struct {
	length  int
	upper   bool
	digits  bool
	symbols bool
	copy    bool

	client *securefoxclient.Client
}

var _ genericclioptions.CmdOptions = &generateOptions{}

func (o *generateOptions) Complete() error {
	o.client = global.client()
	return nil
}

func (*generateOptions) Validate() error {
	return nil
}

func (o *generateOptions) Run() error {
	result, err := o.client.GeneratePassword(context.Background(), securefoxclient.GeneratePasswordOptions{
		Length:           o.length,
		IncludeUppercase: o.upper,
		IncludeDigits:    o.digits,
		IncludeSymbols:   o.symbols,
	})
	if err != nil {
		return err
	}

	if o.copy {
		if err := clipboard.Copy(result.Password); err != nil {
			return fmt.Errorf("copy to clipboard: %w", err)
		}

		fmt.Printf("copied to clipboard (strength %d/4)\n", result.Strength)

		return nil
	}

	fmt.Printf("%s (strength %d/4)\n", result.Password, result.Strength)

	return nil
}

func newGenerateCommand() *cobra.Command {
	o := &generateOptions{upper: true, digits: true, symbols: true}

	cmd := &cobra.Command{
		Use:     "generate",
		Aliases: []string{"gen"},
		Short:   "generate a random password",
		RunE: func(*cobra.Command, []string) error {
			return clierror.Check(runOptions(o))
		},
	}

	cmd.Flags().IntVar(&o.length, "length", 20, "password length")
	cmd.Flags().BoolVar(&o.upper, "upper", true, "include uppercase letters")
	cmd.Flags().BoolVar(&o.digits, "digits", true, "include digits")
	cmd.Flags().BoolVar(&o.symbols, "symbols", true, "include symbols")
	cmd.Flags().BoolVarP(&o.copy, "copy-clipboard", "c", false, "copy the generated password to the clipboard")

	return cmd
}
