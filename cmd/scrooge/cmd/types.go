package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/smallbiznis/scrooge/internal/labels"
	pricingobjectdomain "github.com/smallbiznis/scrooge/internal/pricingobject/domain"
	"github.com/spf13/cobra"
)

var typesLang string

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "List pricing object types with their stored codes and labels",
	RunE: func(cmd *cobra.Command, args []string) error {
		labeler, err := labels.New()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CODE\tTYPE\tLABEL")
		for _, t := range pricingobjectdomain.Types {
			fmt.Fprintf(w, "%d\t%s\t%s\n", uint8(t), t, labeler.Type(typesLang, t))
		}
		return w.Flush()
	},
}

func init() {
	typesCmd.Flags().StringVar(&typesLang, "lang", "en", "label language (Accept-Language syntax, e.g. pl or en-US)")
}
