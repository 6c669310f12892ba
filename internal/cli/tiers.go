package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"skin-assessment-service/internal/domain"
)

type tierStyles struct {
	header     lipgloss.Style
	suitable   lipgloss.Style
	borderline lipgloss.Style
	unsuitable lipgloss.Style
	dim        lipgloss.Style
}

func newTierStyles() tierStyles {
	return tierStyles{
		header:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		suitable:   lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		borderline: lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		unsuitable: lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		dim:        lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

func (s tierStyles) eligibility(e domain.Eligibility) lipgloss.Style {
	switch {
	case e >= domain.EligibilityGood:
		return s.suitable
	case e.Suitable():
		return s.borderline
	default:
		return s.unsuitable
	}
}

// NewTiersCmd prints the classification table with the score band of each tier.
func NewTiersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tiers",
		Short: "Print the skin type classification table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printTiers(cmd.OutOrStdout())
		},
	}
}

func printTiers(w io.Writer) error {
	styles := newTierStyles()
	fmt.Fprintln(w, styles.header.Render(fmt.Sprintf("%-28s %-8s %-20s %s", "SKIN TYPE", "TOTALS", "ELIGIBILITY", "CO2 LASER")))
	for _, c := range domain.Classifications() {
		band, err := bandLabel(c.Tier)
		if err != nil {
			return err
		}
		verdict := "not suitable"
		if c.IsSuitable {
			verdict = "suitable"
		}
		fmt.Fprintf(w, "%-28s %-8s %s %s\n",
			c.DisplayName(),
			band,
			styles.eligibility(c.Eligibility).Render(fmt.Sprintf("%-20s", c.Eligibility.Label())),
			verdict,
		)
	}
	fmt.Fprintln(w, styles.dim.Render(fmt.Sprintf("maximum reachable total with the built-in bank: %d", domain.DefaultQuestionBank().MaxScore())))
	return nil
}

func bandLabel(t domain.Tier) (string, error) {
	lo, hi, err := domain.TierBand(t)
	if err != nil {
		return "", err
	}
	if hi < 0 {
		return strconv.Itoa(lo) + "+", nil
	}
	return strings.Join([]string{strconv.Itoa(lo), strconv.Itoa(hi)}, "-"), nil
}
