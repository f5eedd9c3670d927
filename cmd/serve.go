package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/bpace/internal/server"
	"github.com/theirongolddev/bpace/internal/session"
)

var (
	flagServeAddr         string
	flagServeTemplate     string
	flagServeEventsBuffer int
	flagServeMaxUpload    int64
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the analysis over a local HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var serveStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Query a running server's status",
	Args:  cobra.NoArgs,
	RunE:  runServeStatus,
}

func init() {
	serveCmd.PersistentFlags().StringVar(&flagServeAddr, "addr", "", "HTTP listen address (default: server.addr)")
	serveCmd.Flags().StringVarP(&flagServeTemplate, "template", "t", "", "Template to activate at startup")
	serveCmd.Flags().IntVar(&flagServeEventsBuffer, "events-buffer", 200, "Max in-memory events retained")
	serveCmd.Flags().Int64Var(&flagServeMaxUpload, "max-upload", 32<<20, "Max ledger upload size in bytes")

	serveCmd.AddCommand(serveStatusCmd)
	rootCmd.AddCommand(serveCmd)
}

func serveAddr() string {
	if flagServeAddr != "" {
		return flagServeAddr
	}
	return cfg.Server.Addr
}

func runServe(cmd *cobra.Command, _ []string) error {
	st := session.New()
	if cfg.Ledger.Path != "" {
		loaded, err := loadSession(cmd.Context())
		if err != nil {
			return err
		}
		st = loaded
	}

	name := flagServeTemplate
	if name == "" {
		name = cfg.Budget.DefaultTemplate
	}
	if name != "" && st.HasLedger() {
		if err := applyNamedTemplate(st, name); err != nil {
			return err
		}
	}

	tpl, err := openTemplates()
	if err != nil {
		return err
	}

	addr := serveAddr()
	svc := server.New(server.Config{
		Addr:         addr,
		Options:      cfg.LedgerOptions(),
		EventsBuffer: flagServeEventsBuffer,
		MaxUpload:    flagServeMaxUpload,
	}, st, tpl, logger)

	fmt.Printf("  bpace listening on http://%s\n", addr)
	if st.HasLedger() {
		fmt.Printf("  Ledger: %s (%s)\n", st.Source(), strings.Join(st.Years(), ", "))
	} else {
		fmt.Println("  No ledger loaded; POST a CSV to /v1/ledger")
	}
	fmt.Printf("  Templates: %s\n", tpl.Path())

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runServeStatus(cmd *cobra.Command, _ []string) error {
	addr := serveAddr()
	fmt.Printf("  Address: http://%s\n", addr)

	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+addr+"/v1/status", nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("  API status: unreachable (%v)\n", err)
		return nil
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		fmt.Printf("  API status: HTTP %d\n", resp.StatusCode)
		return nil
	}

	var st server.Status
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		fmt.Printf("  API status: malformed response (%v)\n", err)
		return nil
	}

	fmt.Printf("  Started: %s\n", st.StartedAt.Local().Format(time.RFC3339))
	if st.LedgerSource != "" {
		fmt.Printf("  Ledger: %s\n", st.LedgerSource)
	} else {
		fmt.Println("  Ledger: none")
	}
	fmt.Printf("  Years: %s\n", orNone(strings.Join(st.Years, ", ")))
	fmt.Printf("  Categories: %d\n", st.Categories)
	fmt.Printf("  Template: %s\n", orNone(st.Template))
	fmt.Printf("  Uploads: %d\n", st.Uploads)
	if st.LastError != "" {
		fmt.Printf("  Last error: %s\n", st.LastError)
	}
	return nil
}
