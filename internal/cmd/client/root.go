package client

import (
	"github.com/spf13/cobra"
)

// NewRoot constructs a root Cobra command for the flostream client.
// It registers the stream and exec commands.
func NewRoot(baseURL BaseURLFunc) *cobra.Command {
	root := &cobra.Command{
		Use:   "flostream",
		Short: "flostream client commands",
	}
	root.AddCommand(NewStreamCommand(baseURL))
	root.AddCommand(NewExecCommand())
	return root
}
