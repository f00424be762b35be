package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/johnswift/eclipse/internal/config"
	"github.com/johnswift/eclipse/internal/db"
	"github.com/johnswift/eclipse/internal/previewcache"
	"github.com/johnswift/eclipse/internal/spaces"
	"github.com/johnswift/eclipse/internal/transfer"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// errAborted is returned when the user declines the import prompt.
	errAborted = errors.New("import cancelled")

	// errStdinNeedsYes is returned when the export arrives on stdin, which
	// leaves nothing to read the confirmation from.
	errStdinNeedsYes = errors.New("reading the export from stdin needs --yes or --dry-run")
)

// readImportFile reads an export for import, rejecting oversized input
// instead of decoding a truncated document.
func readImportFile(cmd *cobra.Command, path string) ([]byte, error) {
	r, err := openInput(cmd, path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	data, err := io.ReadAll(io.LimitReader(r, transfer.MaxPayloadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(data) > transfer.MaxPayloadBytes {
		return nil, fmt.Errorf("%s: %w: file exceeds %d bytes", path, transfer.ErrInvalidPayload, transfer.MaxPayloadBytes)
	}
	return data, nil
}

// openService connects to the configured store. The returned func releases it.
func (a *app) openService(ctx context.Context) (*spaces.Service, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.RequireDatabase(); err != nil {
		return nil, nil, err
	}

	database, err := db.New(ctx, cfg.DatabaseURL, cfg.TenantID)
	if err != nil {
		return nil, nil, err
	}
	if err := database.Migrate(ctx); err != nil {
		database.Close()
		return nil, nil, err
	}
	a.logger.Debug("connected to space store", zap.String("tenant", cfg.TenantID))

	svc := spaces.NewService(database, previewcache.NewMemoryStore(cfg.PreviewTTL), a.logger)
	return svc, database.Close, nil
}

func newImportCmd(a *app) *cobra.Command {
	var (
		selection string
		dryRun    bool
		yes       bool
		locale    string
	)

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import an export into the space store",
		Long: `Shows the import preview and asks for confirmation before writing.
Spaces whose names are taken get a numbered suffix; existing spaces are
never modified.

When FILE is "-" the export is read from stdin, so the prompt cannot be
answered: pass --yes to import or --dry-run to preview.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if args[0] == "-" && !yes && !dryRun {
				return errStdinNeedsYes
			}

			data, err := readImportFile(cmd, args[0])
			if err != nil {
				return err
			}

			svc, closeStore, err := a.openService(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			preview, err := svc.Preview(ctx, spaces.PreviewRequest{Data: data, Selection: selection, Locale: locale})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, preview.Message)

			if !dryRun && !yes {
				ok, err := confirm(cmd.InOrStdin(), out, "Proceed? [y/N] ")
				if err != nil {
					return err
				}
				if !ok {
					return errAborted
				}
			}

			result, err := svc.Import(ctx, spaces.ImportRequest{Token: preview.Token, DryRun: dryRun})
			if err != nil {
				return err
			}

			if result.DryRun {
				fmt.Fprintln(out, "Dry run: nothing was written.")
				return nil
			}
			for _, s := range result.Created {
				fmt.Fprintf(out, "created %s  %s\n", s.ID, s.Name)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&selection, "select", "s", "", "Spaces to import, e.g. \"1,3-4\" (default all)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Preview against the store without writing")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	cmd.Flags().StringVar(&locale, "locale", "en", "Message language (en or zh)")
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	var (
		ids    []string
		bundle bool
		output string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export spaces from the space store",
		Long: `Exports the spaces named by --id, in that order, or every live space when
no --id is given. A single space is written in the single-space format
unless --bundle is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			svc, closeStore, err := a.openService(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			resp, err := svc.Export(ctx, spaces.ExportRequest{IDs: ids, Bundle: bundle})
			if err != nil {
				return err
			}
			a.logger.Info("exported spaces",
				zap.Int("spaces", resp.Result.Spaces),
				zap.String("type", string(resp.Result.Type)),
			)

			return writeOutput(cmd, output, func(w io.Writer) error {
				_, err := w.Write(resp.Document)
				return err
			})
		},
	}
	cmd.Flags().StringSliceVar(&ids, "id", nil, "Space ID to export (repeatable)")
	cmd.Flags().BoolVar(&bundle, "bundle", false, "Always write the multi-space format")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")
	return cmd
}

// confirm asks a yes/no question on w and reads the answer from r.
func confirm(r io.Reader, w io.Writer, prompt string) (bool, error) {
	fmt.Fprint(w, prompt)
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("read answer: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
