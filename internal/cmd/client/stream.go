package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	transports "github.com/rzbill/flostream/internal/cmd/client/transports"
)

// BaseURLFunc provides the base HTTP API URL (e.g., from env or flag).
type BaseURLFunc func() string

var errStreamRequired = errors.New("--stream is required")

func getTransport() transports.StreamsTransport {
	return transports.NewGrpcTransport(dialGRPCContext)
}

// NewStreamCommand constructs the `stream` command group and subcommands.
func NewStreamCommand(baseURL BaseURLFunc) *cobra.Command {
	streamCmd := &cobra.Command{Use: "stream", Short: "Stream operations"}

	streamCmd.AddCommand(
		newStreamAddCommand(),
		newStreamRangeCommand(false),
		newStreamRangeCommand(true),
		newStreamTrimCommand(),
		newStreamLenCommand(),
		newStreamReadCommand(),
		newStreamInfoCommand(),
		newStreamSearchCommand(baseURL),
	)

	return streamCmd
}

func streamFlag(cmd *cobra.Command) (string, error) {
	st, _ := cmd.Flags().GetString("stream")
	if st == "" {
		return "", errStreamRequired
	}
	return st, nil
}

// parseFieldFlags turns repeated name=value flags into a flat pair list,
// keeping flag order.
func parseFieldFlags(in []string) ([]string, error) {
	out := make([]string, 0, len(in)*2)
	for _, kv := range in {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --field %q; expected name=value", kv)
		}
		out = append(out, name, value)
	}
	return out, nil
}

func writeEntries(cmd *cobra.Command, items []transports.Entry) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	for _, it := range items {
		if err := enc.Encode(it); err != nil {
			return err
		}
	}
	return nil
}

// newStreamAddCommand constructs the `stream add` subcommand.
func newStreamAddCommand() *cobra.Command {
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Append an entry to a stream",
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := streamFlag(cmd)
			if err != nil {
				return err
			}
			id, _ := cmd.Flags().GetString("id")
			maxLen, _ := cmd.Flags().GetInt("maxlen")
			raw, _ := cmd.Flags().GetStringArray("field")
			fields, err := parseFieldFlags(raw)
			if err != nil {
				return err
			}
			if len(fields) == 0 {
				return errors.New("at least one --field is required")
			}
			added, err := getTransport().Add(cmd.Context(), transports.AddRequest{Key: st, ID: id, MaxLen: maxLen, Fields: fields})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "id:", added)
			return nil
		},
	}
	addCmd.Flags().String("stream", "", "Stream key")
	addCmd.Flags().String("id", "*", "Entry id: * or <ms>[-<seq>]")
	addCmd.Flags().StringArray("field", nil, "Field as name=value (repeatable, order is kept)")
	addCmd.Flags().Int("maxlen", -1, "Trim to at most N entries after the append (-1 = no trim)")
	return addCmd
}

// newStreamRangeCommand constructs `stream range`, or `stream revrange`
// when reverse is set.
func newStreamRangeCommand(reverse bool) *cobra.Command {
	use, short := "range", "List entries between --start and --end, oldest first"
	if reverse {
		use, short = "revrange", "List entries between --end and --start, newest first"
	}
	rangeCmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := streamFlag(cmd)
			if err != nil {
				return err
			}
			start, _ := cmd.Flags().GetString("start")
			end, _ := cmd.Flags().GetString("end")
			count, _ := cmd.Flags().GetInt("count")
			items, err := getTransport().Range(cmd.Context(), st, start, end, count, reverse)
			if err != nil {
				return err
			}
			return writeEntries(cmd, items)
		},
	}
	rangeCmd.Flags().String("stream", "", "Stream key")
	rangeCmd.Flags().String("start", "-", "Lowest id, inclusive")
	rangeCmd.Flags().String("end", "+", "Highest id, inclusive")
	rangeCmd.Flags().Int("count", -1, "Return at most N entries (-1 = all)")
	return rangeCmd
}

// newStreamTrimCommand constructs the `stream trim` subcommand.
func newStreamTrimCommand() *cobra.Command {
	trimCmd := &cobra.Command{
		Use:   "trim",
		Short: "Evict the oldest entries so at most --maxlen remain",
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := streamFlag(cmd)
			if err != nil {
				return err
			}
			maxLen, _ := cmd.Flags().GetInt("maxlen")
			if maxLen < 0 {
				return errors.New("--maxlen must be >= 0")
			}
			n, err := getTransport().Trim(cmd.Context(), st, maxLen)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "deleted:", n)
			return nil
		},
	}
	trimCmd.Flags().String("stream", "", "Stream key")
	trimCmd.Flags().Int("maxlen", -1, "Entries to keep")
	return trimCmd
}

// newStreamLenCommand constructs the `stream len` subcommand.
func newStreamLenCommand() *cobra.Command {
	lenCmd := &cobra.Command{
		Use:   "len",
		Short: "Print the number of entries in a stream",
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := streamFlag(cmd)
			if err != nil {
				return err
			}
			n, err := getTransport().Len(cmd.Context(), st)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "length:", n)
			return nil
		},
	}
	lenCmd.Flags().String("stream", "", "Stream key")
	return lenCmd
}

// newStreamReadCommand constructs the `stream read` subcommand.
func newStreamReadCommand() *cobra.Command {
	readCmd := &cobra.Command{
		Use:   "read",
		Short: "List entries with id >= --id, oldest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := streamFlag(cmd)
			if err != nil {
				return err
			}
			from, _ := cmd.Flags().GetString("id")
			count, _ := cmd.Flags().GetInt("count")
			items, err := getTransport().Read(cmd.Context(), st, from, count)
			if err != nil {
				return err
			}
			return writeEntries(cmd, items)
		},
	}
	readCmd.Flags().String("stream", "", "Stream key")
	readCmd.Flags().String("id", "0-0", "Lowest id, inclusive")
	readCmd.Flags().Int("count", 0, "Return at most N entries (0 = all)")
	return readCmd
}

// newStreamInfoCommand constructs the `stream info` subcommand.
func newStreamInfoCommand() *cobra.Command {
	infoCmd := &cobra.Command{
		Use:   "info",
		Short: "Show length, last generated id and edge entries",
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := streamFlag(cmd)
			if err != nil {
				return err
			}
			info, err := getTransport().Info(cmd.Context(), st)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(info)
		},
	}
	infoCmd.Flags().String("stream", "", "Stream key")
	return infoCmd
}

// newStreamSearchCommand constructs the `stream search` subcommand. It uses
// the HTTP API since filtering is not part of the command set.
func newStreamSearchCommand(baseURL BaseURLFunc) *cobra.Command {
	searchCmd := &cobra.Command{
		Use:   "search",
		Short: "Scan a stream with a CEL filter (server-side)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := streamFlag(cmd)
			if err != nil {
				return err
			}
			start, _ := cmd.Flags().GetString("start")
			end, _ := cmd.Flags().GetString("end")
			filter, _ := cmd.Flags().GetString("filter")
			limit, _ := cmd.Flags().GetInt("limit")
			reverse, _ := cmd.Flags().GetBool("reverse")
			res, err := transports.NewHTTPTransport(baseURL(), nil).Search(cmd.Context(), transports.SearchRequest{
				Key:     st,
				Start:   start,
				End:     end,
				Filter:  filter,
				Limit:   limit,
				Reverse: reverse,
			})
			if err != nil {
				return err
			}
			if err := writeEntries(cmd, res.Items); err != nil {
				return err
			}
			if res.Truncated {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "scan stopped after %d entries\n", res.Scanned)
			}
			return nil
		},
	}
	searchCmd.Flags().String("stream", "", "Stream key")
	searchCmd.Flags().String("start", "", "Lowest id, inclusive (default -)")
	searchCmd.Flags().String("end", "", "Highest id, inclusive (default +)")
	searchCmd.Flags().String("filter", "", `CEL expression over id, ms, seq, fields, now_ms, e.g. fields["level"] == "error"`)
	searchCmd.Flags().Int("limit", 0, "Return at most N matches (0 = server default)")
	searchCmd.Flags().Bool("reverse", false, "Newest first")
	return searchCmd
}
