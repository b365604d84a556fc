package main

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/pbaille/studykit/internal/domain"
	"github.com/pbaille/studykit/internal/gpa"
	"github.com/spf13/cobra"
)

func gpaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gpa",
		Short: "Calculate GPA and track its history",
	}
	cmd.AddCommand(gpaCalcCmd())
	cmd.AddCommand(gpaHistoryCmd())
	cmd.AddCommand(gpaClearCmd())
	return cmd
}

// parseCourse reads "Name:credits:grade".
func parseCourse(s string) (name string, credits float64, grade string, err error) {
	i := strings.LastIndex(s, ":")
	j := strings.LastIndex(s[:max(i, 0)], ":")
	if i < 0 || j < 0 {
		return "", 0, "", domain.NewValidationError("course", fmt.Sprintf("%q must look like Name:credits:grade", s))
	}
	credits, err = strconv.ParseFloat(strings.TrimSpace(s[j+1:i]), 64)
	if err != nil {
		return "", 0, "", domain.NewValidationError("credits", fmt.Sprintf("%q is not a number", s[j+1:i]))
	}
	return s[:j], credits, s[i+1:], nil
}

func gpaCalcCmd() *cobra.Command {
	var (
		courses []string
		save    bool
	)

	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Compute the GPA of a set of courses",
		Example: `  studykit gpa calc --course "Calculus:4:A" --course "History:3:B+" --save`,
		RunE: func(cmd *cobra.Command, args []string) error {
			calc := gpa.New(getKV(), appLogger)
			for _, c := range courses {
				name, credits, grade, err := parseCourse(c)
				if err != nil {
					return err
				}
				if _, err := calc.AddCourse(name, credits, grade); err != nil {
					return err
				}
			}

			for i, c := range calc.Courses() {
				fmt.Printf("%d. %-24s %4.1f credits  %-2s  %.2f points\n",
					i+1, truncate(c.Name, 24), c.Credits, c.Grade, c.WeightedPoints())
			}
			sum := calc.Calculate()
			fmt.Printf("\nGPA: %.2f (%.1f credits)\n", sum.GPA, sum.TotalCredits)

			dist := calc.GradeDistribution()
			parts := make([]string, 0, len(dist))
			for _, g := range sortedKeys(dist) {
				parts = append(parts, fmt.Sprintf("%s x%d", g, dist[g]))
			}
			fmt.Printf("Grades: %s\n", strings.Join(parts, ", "))

			if save {
				if err := calc.SaveResult(sum.GPA); err != nil {
					return err
				}
				fmt.Println("Saved to history.")
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&courses, "course", "c", nil, "course as Name:credits:grade (repeatable)")
	cmd.Flags().BoolVar(&save, "save", false, "append the result to the GPA history")
	_ = cmd.MarkFlagRequired("course")
	return cmd
}

func gpaHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show saved GPA results",
		RunE: func(cmd *cobra.Command, args []string) error {
			calc := gpa.New(getKV(), appLogger)
			trend := calc.Trend()
			if len(trend) == 0 {
				fmt.Println("No saved results yet. Use 'studykit gpa calc --save'.")
				return nil
			}
			for i, v := range trend {
				fmt.Printf("%2d. %.2f\n", i+1, v)
			}
			fmt.Printf("\nAverage %.2f  Highest %.2f  Lowest %.2f\n",
				calc.AverageGPA(), calc.HighestGPA(), calc.LowestGPA())
			return nil
		},
	}
}

func gpaClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear-history",
		Short: "Delete every saved GPA result",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := gpa.New(getKV(), appLogger).ClearHistory(); err != nil {
				return err
			}
			fmt.Println("GPA history cleared.")
			return nil
		},
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
