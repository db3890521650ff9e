package main

import (
	"io"
	"os"

	"github.com/xgx-io/failreport"
	"github.com/xgx-io/failreport/hook"
	"github.com/xgx-io/failreport/logline"
)

// installHandler installs a failure handler built from the configuration.
func installHandler(stderr, stdout io.Writer, exit func(int)) (*hook.Handler, error) {
	hc := hook.Config{
		Mode:           cfg.ReportMode(),
		Stderr:         stderr,
		Stdout:         stdout,
		Logger:         logger,
		Assertions:     cfg.Assertions,
		Bail:           cfg.Bail,
		Exit:           exit,
		ServerSoftware: cfg.ServerSoftware,
	}
	if cfg.LogDir != "" {
		if err := os.MkdirAll(cfg.LogDir, 0o755); err != nil {
			return nil, err
		}
		hc.Lines = logline.New(cfg.LogDir, logger.Named("logline"))
	}
	if cfg.Environment {
		hc.Server = failreport.EnvironSnapshot(os.Environ())
	}
	return hook.Install(hc)
}
