package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/cfrscore/internal/scoring"
)

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Score individual CFR criteria with the rubric's auxiliary validators",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "objectives <count>",
			Short: "Score the number of objectives (ideal: 8 to 10)",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				n, err := strconv.Atoi(strings.TrimSpace(args[0]))
				if err != nil {
					return exitError(exitInput, "invalid objective count %q", args[0])
				}
				return printScore(cmd, float64(scoring.ValidateObjectivesCount(n)))
			},
		},
		&cobra.Command{
			Use:   "outcome <kind>",
			Short: "Score a success indicator's measurement kind: " + strings.Join(scoring.OutcomeKinds(), ", "),
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return printScore(cmd, float64(scoring.ValidateOutcomeOrientation(args[0])))
			},
		},
		&cobra.Command{
			Use:   "trend <v1,v2,...>",
			Short: "Score how completely a trend series is populated; leave a value empty for a missing year",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				points, err := parseTrend(args[0])
				if err != nil {
					return exitError(exitInput, "%v", err)
				}
				return printScore(cmd, scoring.ValidateTrendValues(points))
			},
		},
	)
	return cmd
}

// parseTrend reads a comma-separated series. Empty entries, "-", "null" and
// "na" are missing values.
func parseTrend(s string) ([]*float64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var points []*float64
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		switch strings.ToLower(field) {
		case "", "-", "null", "na", "n/a":
			points = append(points, nil)
			continue
		}
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid trend value %q", field)
		}
		points = append(points, &v)
	}
	return points, nil
}

func printScore(cmd *cobra.Command, score float64) error {
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n",
		strconv.FormatFloat(score, 'f', -1, 64), scoring.LabelFloat(score))
	return err
}
