package main

import (
	"fmt"

	"github.com/pbaille/studykit/internal/domain"
	"github.com/pbaille/studykit/internal/homework"
	"github.com/spf13/cobra"
)

func homeworkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "homework",
		Aliases: []string{"hw"},
		Short:   "Track homework assignments",
	}
	cmd.AddCommand(hwAddCmd())
	cmd.AddCommand(hwListCmd())
	cmd.AddCommand(hwUpdateCmd())
	cmd.AddCommand(hwDoneCmd())
	cmd.AddCommand(hwRemoveCmd())
	cmd.AddCommand(hwOverdueCmd())
	cmd.AddCommand(hwStatsCmd())
	return cmd
}

func printItems(items []domain.HomeworkItem) {
	for i, h := range items {
		fmt.Printf("%2d. [%-11s] %-6s %s  %s: %s\n",
			i+1, h.Status, h.Priority, h.Due, h.Subject, truncate(h.Title, 50))
		if h.Details != "" {
			fmt.Printf("    %s\n", truncate(h.Details, 70))
		}
	}
}

func hwAddCmd() *cobra.Command {
	var subject, title, due, details, priority string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an assignment",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := homework.New(getKV(), appLogger)
			item, err := p.Add(subject, title, due, details, domain.Priority(priority))
			if err != nil {
				return err
			}
			fmt.Printf("Added: %s (%s, due %s)\n", item.Title, item.Subject, item.Due)
			return nil
		},
	}

	cmd.Flags().StringVarP(&subject, "subject", "s", "", "subject")
	cmd.Flags().StringVarP(&title, "title", "t", "", "title")
	cmd.Flags().StringVarP(&due, "due", "d", "", "due date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&details, "details", "", "free-form details")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "High, Medium or Low (default Medium)")
	return cmd
}

func hwListCmd() *cobra.Command {
	var status string
	var byPriority bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List assignments",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := homework.New(getKV(), appLogger)

			var items []domain.HomeworkItem
			switch {
			case byPriority:
				items = p.ByPriority()
			case status != "":
				s := domain.Status(status)
				var err error
				if items, err = p.FilterByStatus(&s); err != nil {
					return err
				}
			default:
				items = p.Items()
			}

			if len(items) == 0 {
				fmt.Println("No assignments. Use 'studykit homework add' to create one.")
				return nil
			}
			printItems(items)
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "only show Pending, In Progress or Completed")
	cmd.Flags().BoolVar(&byPriority, "by-priority", false, "order by priority then due date")
	return cmd
}

func hwUpdateCmd() *cobra.Command {
	var subject, title, due, details, status, priority string

	cmd := &cobra.Command{
		Use:   "update [n]",
		Short: "Change fields of assignment n",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := parseIndex(args[0])
			if err != nil {
				return err
			}

			var u domain.HomeworkUpdate
			flags := cmd.Flags()
			if flags.Changed("subject") {
				u.Subject = &subject
			}
			if flags.Changed("title") {
				u.Title = &title
			}
			if flags.Changed("due") {
				u.Due = &due
			}
			if flags.Changed("details") {
				u.Details = &details
			}
			if flags.Changed("status") {
				s := domain.Status(status)
				u.Status = &s
			}
			if flags.Changed("priority") {
				p := domain.Priority(priority)
				u.Priority = &p
			}

			item, err := homework.New(getKV(), appLogger).Update(idx, u)
			if err != nil {
				return err
			}
			fmt.Printf("Updated: %s [%s]\n", item.Title, item.Status)
			return nil
		},
	}

	cmd.Flags().StringVarP(&subject, "subject", "s", "", "subject")
	cmd.Flags().StringVarP(&title, "title", "t", "", "title")
	cmd.Flags().StringVarP(&due, "due", "d", "", "due date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&details, "details", "", "free-form details")
	cmd.Flags().StringVar(&status, "status", "", "Pending, In Progress or Completed")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "High, Medium or Low")
	return cmd
}

func hwDoneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done [n]",
		Short: "Mark assignment n completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := parseIndex(args[0])
			if err != nil {
				return err
			}
			item, err := homework.New(getKV(), appLogger).MarkComplete(idx)
			if err != nil {
				return err
			}
			fmt.Printf("Completed: %s\n", item.Title)
			return nil
		},
	}
}

func hwRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm [n]",
		Short: "Delete assignment n",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := parseIndex(args[0])
			if err != nil {
				return err
			}
			item, err := homework.New(getKV(), appLogger).Remove(idx)
			if err != nil {
				return err
			}
			fmt.Printf("Removed: %s\n", item.Title)
			return nil
		},
	}
}

func hwOverdueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "overdue",
		Short: "List unfinished assignments past their due date",
		RunE: func(cmd *cobra.Command, args []string) error {
			items := homework.New(getKV(), appLogger).Overdue()
			if len(items) == 0 {
				fmt.Println("Nothing overdue.")
				return nil
			}
			printItems(items)
			return nil
		},
	}
}

func hwStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Count assignments by status and priority",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := homework.New(getKV(), appLogger)
			items := p.Items()

			counts := make(map[domain.Status]int)
			for _, h := range items {
				counts[h.Status]++
			}
			fmt.Printf("Total: %d\n", len(items))
			for _, s := range domain.Statuses {
				fmt.Printf("  %-11s %d\n", s, counts[s])
			}

			dist := p.PriorityDistribution()
			fmt.Println("By priority:")
			for _, pr := range domain.Priorities {
				fmt.Printf("  %-11s %d\n", pr, dist[pr])
			}
			fmt.Printf("Overdue: %d\n", len(p.Overdue()))
			return nil
		},
	}
}
