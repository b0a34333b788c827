package cli

import (
	"github.com/spf13/cobra"

	domainService "github.com/turtacn/riskscore360/internal/domain/service"
	"github.com/turtacn/riskscore360/internal/infrastructure/emitter"
	"github.com/turtacn/riskscore360/internal/infrastructure/signal"
)

func newScoreCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "score [file]",
		Short: "Score one signal document",
		Long: `Score reads a raw signal document from file, or from stdin when the file is
omitted or "-", and prints the composite risk report.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			log, err := newLogger(cfg)
			if err != nil {
				return err
			}

			rt, err := newScoringRuntime(cfg, log, emitter.NewWriterEmitter(cmd.OutOrStdout(), cfg.Output.OutputFormat()))
			if err != nil {
				return err
			}
			defer rt.Close()

			var src domainService.SignalSource
			if len(args) == 0 || args[0] == "-" {
				src = signal.NewReaderSource(cmd.InOrStdin(), "stdin", log)
			} else {
				src = signal.NewFileSource(args[0], log)
			}

			ctx := cmd.Context()
			loaded, err := src.Load(ctx)
			if err != nil {
				return err
			}
			_, err = rt.svc.Score(ctx, loaded)
			return err
		},
	}
}
