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

func newLayoutCommand(o *appOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "layout",
		Short: "Print the bit layout of every scheme",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLayout(cmd.Context(), cmd.OutOrStdout(), *o)
		},
	}
}

func runLayout(ctx context.Context, out io.Writer, o appOptions) (err error) {
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

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SCHEME\tWIDTH\tTIMESTAMP\tNODE\tSEQUENCE\tTICK\tEPOCH\tMAX_PER_TICK")
	for _, s := range idgen.Schemes() {
		l, err := layoutFor(s, a.cfg.IDGen.TinyBlockMs)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%v\t%s\t%d\n",
			s, l.Width, l.TimestampBits, l.NodeBits, l.SequenceBits,
			time.Duration(l.TickMs)*time.Millisecond,
			time.UnixMilli(l.Epoch).UTC().Format(time.DateOnly),
			l.MaxSequence+1)
	}
	return w.Flush()
}
