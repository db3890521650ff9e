package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xgx-io/failreport"
)

var (
	renderFormat     string
	renderRemoteAddr string
)

var renderCmd = &cobra.Command{
	Use:   "render [file|-]",
	Short: "Render a YAML failure document",
	Long: `Render reads a failure document (default: standard input) and writes the
report in the selected format to standard output.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVarP(&renderFormat, "format", "f", "", "console, html or xml (default from configuration)")
	renderCmd.Flags().StringVar(&renderRemoteAddr, "remote-addr", "127.0.0.1", "requester address for the HTML trace gate")
}

func runRender(cmd *cobra.Command, args []string) error {
	data, err := readInput(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}
	f, err := failreport.ParseDocument(data)
	if err != nil {
		return err
	}

	format := renderFormat
	if format == "" {
		format = cfg.Mode
	}
	mode, err := failreport.ParseMode(format)
	if err != nil {
		return err
	}
	logger.Debug("rendering document", zap.Stringer("mode", mode), zap.String("type", f.TypeName()))

	out := cmd.OutOrStdout()
	d := &failreport.Dispatcher{
		Stderr: cmd.ErrOrStderr(),
		Stdout: out,
		Logger: logger,
		HTML: failreport.HTMLOptions{
			RemoteAddr:     renderRemoteAddr,
			ServerSoftware: cfg.ServerSoftware,
		},
	}
	report := d.Render(f, mode)
	if mode == failreport.ModeConsole {
		report = styleConsole(out, report)
	}
	_, err = io.WriteString(out, report)
	return err
}

func readInput(stdin io.Reader, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return data, nil
}
