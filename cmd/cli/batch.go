package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/turtacn/riskscore360/internal/application/dto"
	domainService "github.com/turtacn/riskscore360/internal/domain/service"
	"github.com/turtacn/riskscore360/internal/infrastructure/emitter"
	"github.com/turtacn/riskscore360/internal/infrastructure/signal"
)

func newBatchCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "batch file...",
		Short: "Score several signal documents concurrently",
		Long: `Batch scores every file and prints a summary with one entry per file.
A file that cannot be scored is reported in the summary and makes the
command exit non-zero once all files are done.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			log, err := newLogger(cfg)
			if err != nil {
				return err
			}

			rt, err := newScoringRuntime(cfg, log)
			if err != nil {
				return err
			}
			defer rt.Close()

			sources := make([]domainService.SignalSource, len(args))
			for i, path := range args {
				sources[i] = signal.NewFileSource(path, log)
			}
			items, err := rt.svc.ScoreBatch(cmd.Context(), sources)
			if err != nil {
				return err
			}

			resp := dto.NewBatchResponse(items)
			out, err := emitter.EncodeValue(resp, cfg.Output.OutputFormat())
			if err != nil {
				return err
			}
			if _, err := cmd.OutOrStdout().Write(out); err != nil {
				return err
			}
			if resp.Failed > 0 {
				return fmt.Errorf("%d of %d documents failed", resp.Failed, len(items))
			}
			return nil
		},
	}
}
