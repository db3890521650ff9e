package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xgx-io/failreport"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve pages that fail on purpose",
	Long: `Serve starts an HTTP server whose handlers fail:

  /panic    a runtime panic (500)
  /teapot   an HTTP failure with status 418

Stack traces are shown to loopback clients only.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "127.0.0.1:8080", "listen address")
}

var typeTeapot = failreport.NewType("failreport/demo/Teapot", failreport.TypeError, failreport.CapHTTP)

func newMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/panic", func(w http.ResponseWriter, r *http.Request) {
		var m map[string]int
		m[r.URL.Query().Get("key")]++
	})
	mux.HandleFunc("/teapot", func(w http.ResponseWriter, r *http.Request) {
		panic(failreport.New(typeTeapot, "refusing to brew coffee").WithStatus(http.StatusTeapot, "I'm a teapot"))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprintln(w, "try /panic or /teapot")
	})
	return mux
}

func runServe(cmd *cobra.Command, args []string) error {
	h, err := installHandler(cmd.ErrOrStderr(), cmd.OutOrStdout(), nil)
	if err != nil {
		return err
	}
	defer h.Restore()

	srv := &http.Server{
		Addr:              serveAddr,
		Handler:           h.Middleware(newMux()),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", serveAddr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
