package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jask/confirmform/internal/config"
	"github.com/jask/confirmform/internal/form"
	loglib "github.com/jask/confirmform/internal/log"
	"github.com/jask/confirmform/internal/log/zerolog"
)

// Version is the confirmform version
var Version = "development"

// runtime carries what the root command resolves for its subcommands.
type runtime struct {
	cfg    config.Config
	target form.TargetType
	closer io.Closer
}

func Prepare() *cobra.Command {
	rt := &runtime{}
	rootCmd := &cobra.Command{
		Use:          "confirmform",
		Short:        "Edit and check form confirmation settings",
		SilenceUsage: true,
		Version:      Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}
			if f := cmd.Flags().Lookup("log-level"); f != nil && f.Changed {
				cfg.Log.Level = f.Value.String()
			}
			target, err := form.ParseTargetType(cfg.Form.DefaultTarget)
			if err != nil {
				return fmt.Errorf("form.default_target: %w", err)
			}
			rt.cfg = cfg
			rt.target = target
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if rt.closer == nil {
				return nil
			}
			return rt.closer.Close()
		},
	}

	rootCmd.PersistentFlags().String("log-level", "", "log level override. One of trace, debug, info, warn, error")

	rootCmd.AddCommand(newEditCmd(rt))
	rootCmd.AddCommand(newValidateCmd(rt))
	rootCmd.AddCommand(newResolveCmd(rt))
	return rootCmd
}

// logger opens the configured logger. Interactive sessions log to the
// configured file, everything else to the command's stderr.
func (rt *runtime) logger(cmd *cobra.Command, interactive bool) (loglib.Logger, error) {
	lc := zerolog.Config{Level: rt.cfg.Log.Level, Out: cmd.ErrOrStderr()}
	if interactive {
		lc.File = rt.cfg.Log.File
	}
	l, closer, err := zerolog.New(lc)
	if err != nil {
		return nil, fmt.Errorf("initialising logger: %w", err)
	}
	rt.closer = closer
	return l.WithFields(loglib.Fields{"command": cmd.Name()}), nil
}

func (rt *runtime) formOptions(l loglib.Logger) form.Options {
	return form.Options{
		Target:    rt.target,
		NoticeTTL: rt.cfg.Form.NoticeTTL,
		Logger:    l,
	}
}
