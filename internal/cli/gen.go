package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ceyewan/snowkit/clog"
	"github.com/ceyewan/snowkit/idgen"
	"github.com/ceyewan/snowkit/xerrors"
)

type genFlags struct {
	scheme string
	format string
	count  int
	node   uint64
	every  time.Duration
}

func newGenCommand(o *appOptions) *cobra.Command {
	var f genFlags

	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate ids",
		Example: `  snowkit gen --scheme 64 --count 3
  snowkit gen --scheme 128 --format hex --node 42
  snowkit gen --scheme mini --every 1s`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var override *uint64
			if cmd.Flags().Changed("node") {
				override = &f.node
			}
			return runGen(cmd.Context(), cmd.OutOrStdout(), *o, f, override)
		},
	}
	cmd.Flags().StringVar(&f.scheme, "scheme", "64", "id scheme: tiny|mini|48|64|128")
	cmd.Flags().StringVar(&f.format, "format", formatDec, "output format: dec|hex|ascii")
	cmd.Flags().IntVarP(&f.count, "count", "n", 1, "number of ids per batch")
	cmd.Flags().Uint64Var(&f.node, "node", 0, "node id, overrides nodeid configuration")
	cmd.Flags().DurationVar(&f.every, "every", 0, "repeat a batch at this interval until interrupted")
	return cmd
}

func runGen(ctx context.Context, out io.Writer, o appOptions, f genFlags, override *uint64) (err error) {
	scheme, err := idgen.ParseScheme(f.scheme)
	if err != nil {
		return err
	}
	if err := validateFormat(f.format); err != nil {
		return err
	}
	if f.count < 1 {
		return xerrors.Codef(xerrors.ErrInvalidInput, "count_not_positive", "count %d", f.count)
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

	nodeID, err := a.acquireNodeID(ctx, override)
	if err != nil {
		return err
	}
	gen, err := a.newGenerator(nodeID)
	if err != nil {
		return err
	}

	if f.every <= 0 {
		return emit(out, gen, scheme, f)
	}

	// 持续模式：租约需要续约，配置变更实时生效
	ctx, cancel := context.WithCancel(clog.WithRunIDContext(ctx, uuid.NewString()))
	defer cancel()
	lost := a.provider.KeepAlive(ctx)
	a.watchLogLevel(ctx)
	a.logger.InfoContext(ctx, "generating continuously",
		clog.Scheme(scheme.String()),
		clog.Duration("every", f.every),
		clog.NodeID(nodeID),
	)

	ticker := time.NewTicker(f.every)
	defer ticker.Stop()
	for {
		if err := emit(out, gen, scheme, f); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-lost:
			if ok && err != nil {
				return err
			}
			lost = nil
		case <-ticker.C:
		}
	}
}

func emit(out io.Writer, gen *idgen.Generator, scheme idgen.Scheme, f genFlags) error {
	for i := 0; i < f.count; i++ {
		var line string
		if scheme == idgen.Scheme128 {
			id, err := gen.Generate128()
			if err != nil {
				return err
			}
			line = formatID128(id, f.format)
		} else {
			id, err := gen.Generate(scheme)
			if err != nil {
				return err
			}
			line = formatID(id, f.format)
		}
		if _, err := fmt.Fprintln(out, line); err != nil {
			return err
		}
	}
	return nil
}
