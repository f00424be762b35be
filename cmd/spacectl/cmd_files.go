package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/johnswift/eclipse/internal/transfer"
	"github.com/spf13/cobra"
)

func readPayload(cmd *cobra.Command, path string) (transfer.ImportPayload, error) {
	r, err := openInput(cmd, path)
	if err != nil {
		return transfer.ImportPayload{}, err
	}
	defer r.Close()

	payload, err := transfer.DecodeReader(r)
	if err != nil {
		return transfer.ImportPayload{}, fmt.Errorf("%s: %w", path, err)
	}
	return payload, nil
}

func newNormalizeCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "normalize FILE",
		Short: "Upgrade an export to the current schema version",
		Long: `Reads an export of either shape, upgrades it to the current schema
version and writes it back out. Exports from newer builds are rejected.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := readPayload(cmd, args[0])
			if err != nil {
				return err
			}
			return writeOutput(cmd, output, func(w io.Writer) error {
				return transfer.EncodePayload(w, payload)
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")
	return cmd
}

func newPickCmd() *cobra.Command {
	var (
		selection string
		output    string
	)

	cmd := &cobra.Command{
		Use:   "pick FILE",
		Short: "Keep only some spaces of a multi-space export",
		Long: `Writes a new bundle holding the spaces chosen by --select, in bundle
order. Numbers are 1-based; ranges and lists may be mixed: "1,3-4".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := readPayload(cmd, args[0])
			if err != nil {
				return err
			}
			if payload.Kind != transfer.KindMulti {
				return fmt.Errorf("%s: pick needs a multi-space export", args[0])
			}

			picked, err := transfer.PickSelection(payload.Multi, selection)
			if err != nil {
				return err
			}
			return writeOutput(cmd, output, func(w io.Writer) error {
				return transfer.Encode(w, picked)
			})
		},
	}
	cmd.Flags().StringVarP(&selection, "select", "s", "", "Spaces to keep, e.g. \"1,3-4\"")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")
	_ = cmd.MarkFlagRequired("select")
	return cmd
}

func newPreviewCmd() *cobra.Command {
	var (
		selection string
		existing  string
		locale    string
		maxItems  int
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "preview FILE",
		Short: "Show what importing an export would do",
		Long: `Prints the confirmation message for importing FILE. Name conflicts are
checked against the spaces in --existing, itself an export file; without it
nothing is treated as existing.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := readPayload(cmd, args[0])
			if err != nil {
				return err
			}
			incoming := len(payload.Spaces())

			if selection != "" {
				if payload, err = selectSpaces(payload, selection); err != nil {
					return err
				}
			}

			var live []transfer.Space
			if existing != "" {
				existingPayload, err := readPayload(cmd, existing)
				if err != nil {
					return err
				}
				for _, s := range existingPayload.Spaces() {
					live = append(live, transfer.Space{Name: s.Name})
				}
			}

			preview := transfer.BuildPreview(payload, live)
			preview.IncomingSpaces = incoming

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(preview)
			}
			msg := transfer.FormatMessage(preview, transfer.ParseLocale(locale), transfer.MessageOptions{MaxItems: maxItems})
			_, err = fmt.Fprintln(out, msg)
			return err
		},
	}
	cmd.Flags().StringVarP(&selection, "select", "s", "", "Spaces to import, e.g. \"1,3-4\" (default all)")
	cmd.Flags().StringVar(&existing, "existing", "", "Export file whose spaces count as already present")
	cmd.Flags().StringVar(&locale, "locale", "en", "Message language (en or zh)")
	cmd.Flags().IntVar(&maxItems, "max-items", 0, "List at most this many spaces (0 = all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the preview as JSON instead of a message")
	return cmd
}

// selectSpaces applies a selection to either payload shape.
func selectSpaces(payload transfer.ImportPayload, selection string) (transfer.ImportPayload, error) {
	if payload.Kind == transfer.KindMulti {
		picked, err := transfer.PickSelection(payload.Multi, selection)
		if err != nil {
			return transfer.ImportPayload{}, err
		}
		return transfer.MultiPayload(picked), nil
	}

	// A single-space export only has "1" to choose.
	if _, err := transfer.ParseSelection(selection, 1); err != nil {
		return transfer.ImportPayload{}, err
	}
	return payload, nil
}
