package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"skin-assessment-service/internal/domain"
)

// NewClassifyCmd classifies a raw total score without running an assessment.
func NewClassifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify <total>",
		Short: "Show the classification for a total score",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			total, err := strconv.Atoi(args[0])
			if err != nil || total < 0 {
				return fmt.Errorf("total must be a non-negative integer, got %q", args[0])
			}
			return printClassification(cmd.OutOrStdout(), total)
		},
	}
}

func printClassification(w io.Writer, total int) error {
	c, err := domain.LookupClassification(domain.ClassifyTotal(total))
	if err != nil {
		return err
	}
	styles := newTierStyles()
	fmt.Fprintln(w, styles.header.Render(c.DisplayName()))
	fmt.Fprintf(w, "total:       %d\n", total)
	fmt.Fprintf(w, "eligibility: %s\n", styles.eligibility(c.Eligibility).Render(c.Eligibility.Label()))
	fmt.Fprintf(w, "description: %s\n", c.Description)
	fmt.Fprintf(w, "message:     %s\n", c.Message)
	fmt.Fprintln(w, "considerations:")
	fmt.Fprintln(w, "  - "+strings.Join(c.Considerations, "\n  - "))
	return nil
}
