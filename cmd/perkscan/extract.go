package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/perks-tracker/constants"
	"github.com/joseph-ayodele/perks-tracker/internal/common"
)

var (
	extractIssuer  string
	extractInspect bool
)

var extractCmd = &cobra.Command{
	Use:     "extract [text-file]",
	Short:   "Extract perk candidates from already recognized screen text",
	Example: "tesseract shot.png stdout | perkscan extract --issuer amex",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			raw []byte
			err error
		)
		if len(args) == 1 && args[0] != "-" {
			raw, err = os.ReadFile(args[0])
		} else {
			raw, err = io.ReadAll(cmd.InOrStdin())
		}
		if err != nil {
			return fmt.Errorf("read text: %w", err)
		}
		text := string(raw)

		v := common.NewValidator().
			Field("text", text, common.MaxLength(common.MaxScreenTextLength)).
			Field("issuer", extractIssuer, common.IssuerHint)
		if v.HasErrors() {
			return v.Error()
		}

		engine, err := newEngine()
		if err != nil {
			return err
		}
		issuer, known := constants.CanonicalIssuer(extractIssuer)
		if !known {
			issuer = engine.Classify(text)
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if extractInspect {
			key, lines := engine.Inspect(text, issuer)
			return enc.Encode(map[string]any{"issuer": key, "lines": lines})
		}
		return enc.Encode(map[string]any{
			"issuer":     issuer,
			"candidates": engine.Extract(text, issuer),
		})
	},
}

var issuersCmd = &cobra.Command{
	Use:   "issuers",
	Short: "List issuers with a dedicated screen profile",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := newEngine()
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "KEY\tNAME")
		for _, k := range engine.SupportedIssuers() {
			fmt.Fprintf(tw, "%s\t%s\n", k, engine.DisplayName(k))
		}
		return tw.Flush()
	},
}

func init() {
	extractCmd.Flags().StringVar(&extractIssuer, "issuer", "", "issuer key or card name; classified from the text when empty")
	extractCmd.Flags().BoolVar(&extractInspect, "inspect", false, "print line roles instead of candidates")
}
