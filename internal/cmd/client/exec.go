package client

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	flostreamv1 "github.com/rzbill/flostream/api/flostream/v1"
)

// NewExecCommand constructs the `exec` command, which sends a raw command
// vector and prints the reply the way redis-cli does.
func NewExecCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "exec <command> [args...]",
		Short: "Send a raw command, e.g. exec XRANGE orders - + COUNT 10",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := getTransport().Exec(cmd.Context(), args...)
			if err != nil {
				return err
			}
			writeReply(cmd.OutOrStdout(), r)
			return nil
		},
	}
}

func writeReply(w io.Writer, r any) {
	for _, line := range formatReply(r) {
		_, _ = fmt.Fprintln(w, line)
	}
}

// formatReply renders a reply as lines; arrays are numbered and nested
// arrays are indented under their label.
func formatReply(r any) []string {
	switch t := r.(type) {
	case nil:
		return []string{"(nil)"}
	case flostreamv1.Status:
		return []string{string(t)}
	case int64:
		return []string{"(integer) " + strconv.FormatInt(t, 10)}
	case string:
		return []string{strconv.Quote(t)}
	case []any:
		if len(t) == 0 {
			return []string{"(empty array)"}
		}
		var out []string
		for i, e := range t {
			label := strconv.Itoa(i+1) + ") "
			pad := strings.Repeat(" ", len(label))
			for j, line := range formatReply(e) {
				if j == 0 {
					out = append(out, label+line)
				} else {
					out = append(out, pad+line)
				}
			}
		}
		return out
	default:
		return []string{fmt.Sprint(t)}
	}
}
