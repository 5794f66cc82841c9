package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ceyewan/snowkit/idgen"
)

type decodeFlags struct {
	scheme string
	format string
}

func newDecodeCommand(o *appOptions) *cobra.Command {
	var f decodeFlags

	cmd := &cobra.Command{
		Use:   "decode <id>...",
		Short: "Decode ids into timestamp, node and sequence",
		Example: `  snowkit decode --scheme 64 1234567890123456789
  snowkit decode --scheme 128 --format hex 18bd1f3e2c40000000000050000`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecode(cmd.Context(), cmd.OutOrStdout(), *o, f, args)
		},
	}
	cmd.Flags().StringVar(&f.scheme, "scheme", "64", "id scheme: tiny|mini|48|64|128")
	cmd.Flags().StringVar(&f.format, "format", formatDec, "input format: dec|hex|ascii")
	return cmd
}

func runDecode(ctx context.Context, out io.Writer, o appOptions, f decodeFlags, ids []string) (err error) {
	scheme, err := idgen.ParseScheme(f.scheme)
	if err != nil {
		return err
	}
	if err := validateFormat(f.format); err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(ctx, o)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.close(); err == nil {
			err = cerr
		}
	}()

	layout, err := layoutFor(scheme, a.cfg.IDGen.TinyBlockMs)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tUNIX_MS\tNODE\tSEQUENCE")
	for _, s := range ids {
		var parts idgen.Parts
		if scheme == idgen.Scheme128 {
			id, err := parseID128(s, f.format)
			if err != nil {
				return err
			}
			parts = layout.Decode128(id)
		} else {
			id, err := parseID(s, f.format)
			if err != nil {
				return err
			}
			parts = layout.Decode(id)
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\n", s,
			time.UnixMilli(parts.Timestamp).UTC().Format(time.RFC3339Nano),
			parts.Timestamp, parts.Node, parts.Sequence)
	}
	return w.Flush()
}
