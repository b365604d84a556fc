package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pbaille/studykit/internal/domain"
	"github.com/pbaille/studykit/internal/study"
	"github.com/spf13/cobra"
)

func cardsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cards",
		Short: "Flashcards with spaced repetition",
	}
	cmd.AddCommand(cardsAddCmd())
	cmd.AddCommand(cardsAddMCCmd())
	cmd.AddCommand(cardsListCmd())
	cmd.AddCommand(cardsEditCmd())
	cmd.AddCommand(cardsRemoveCmd())
	cmd.AddCommand(cardsClearCmd())
	cmd.AddCommand(cardsQuizCmd())
	cmd.AddCommand(cardsDueCmd())
	cmd.AddCommand(cardsStatsCmd())
	return cmd
}

func printCard(c domain.Card) {
	h := c.Header()
	fmt.Printf("%s  %s\n", h.FormattedID, truncate(h.Question, 60))
	if mc, ok := c.(*domain.MultipleChoiceCard); ok {
		for i, o := range mc.Options {
			mark := " "
			if i == mc.CorrectIndex {
				mark = "*"
			}
			fmt.Printf("      %s %d) %s\n", mark, i+1, o)
		}
		return
	}
	fmt.Printf("      -> %s\n", truncate(h.Answer, 60))
}

func cardsAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add [question] [answer]",
		Short: "Add an open-answer card",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := getService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			card, err := svc.AddOpen(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Printf("Added flashcard %s\n", card.Header().FormattedID)
			return nil
		},
	}
}

func cardsAddMCCmd() *cobra.Command {
	var (
		options []string
		correct int
	)

	cmd := &cobra.Command{
		Use:     "add-mc [question]",
		Short:   "Add a multiple-choice card",
		Example: `  studykit cards add-mc "2+2?" -o 3 -o 4 -o 5 --correct 2`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := getService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			card, err := svc.AddMultipleChoice(cmd.Context(), args[0], options, correct-1)
			if err != nil {
				return err
			}
			fmt.Printf("Added flashcard %s\n", card.Header().FormattedID)
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&options, "option", "o", nil, "answer option (repeatable, at least 2)")
	cmd.Flags().IntVar(&correct, "correct", 1, "number of the correct option")
	return cmd
}

func cardsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List flashcards",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := getService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			cards, err := svc.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(cards) == 0 {
				fmt.Println("No flashcards yet. Use 'studykit cards add' to create one.")
				return nil
			}
			for _, c := range cards {
				printCard(c)
			}
			return nil
		},
	}
}

func cardsEditCmd() *cobra.Command {
	var (
		question, answer string
		options          []string
		correct          int
	)

	cmd := &cobra.Command{
		Use:   "edit [id]",
		Short: "Edit a flashcard (F003 or numeric id)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, closeFn, err := getService(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			card, err := svc.Lookup(ctx, args[0])
			if err != nil {
				return err
			}
			h := card.Header()
			flags := cmd.Flags()
			if !flags.Changed("question") {
				question = h.Question
			}

			var updated domain.Card
			switch c := card.(type) {
			case *domain.MultipleChoiceCard:
				if !flags.Changed("option") {
					options = c.Options
				}
				idx := c.CorrectIndex
				if flags.Changed("correct") {
					idx = correct - 1
				}
				updated, err = svc.UpdateMultipleChoice(ctx, h.ID, question, options, idx)
			default:
				if !flags.Changed("answer") {
					answer = h.Answer
				}
				updated, err = svc.UpdateOpen(ctx, h.ID, question, answer)
			}
			if err != nil {
				return err
			}
			printCard(updated)
			return nil
		},
	}

	cmd.Flags().StringVarP(&question, "question", "q", "", "new question")
	cmd.Flags().StringVarP(&answer, "answer", "a", "", "new answer (open cards)")
	cmd.Flags().StringArrayVarP(&options, "option", "o", nil, "replacement options (multiple-choice cards)")
	cmd.Flags().IntVar(&correct, "correct", 1, "number of the correct option (multiple-choice cards)")
	return cmd
}

func cardsRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm [id]",
		Short: "Delete a flashcard with its history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, closeFn, err := getService(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			card, err := svc.Lookup(ctx, args[0])
			if err != nil {
				return err
			}
			if err := svc.Delete(ctx, card.Header().ID); err != nil {
				return err
			}
			fmt.Printf("Deleted flashcard %s\n", card.Header().FormattedID)
			return nil
		},
	}
}

func cardsClearCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every flashcard",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return domain.NewValidationError("", "refusing to delete every flashcard without --yes")
			}
			svc, closeFn, err := getService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			if err := svc.DeleteAll(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("All flashcards deleted.")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm")
	return cmd
}

func cardsQuizCmd() *cobra.Command {
	var size int

	cmd := &cobra.Command{
		Use:   "quiz",
		Short: "Answer a random sample of flashcards",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, closeFn, err := getService(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			q, err := svc.StartQuiz(ctx, size)
			if err != nil {
				return err
			}

			in := bufio.NewScanner(os.Stdin)
			for !q.Done() {
				card := q.Current()
				_, answered := q.Score()
				fmt.Printf("\n[%d/%d] %s\n", answered+1, len(q.Cards), card.Header().Question)

				mc, isMC := card.(*domain.MultipleChoiceCard)
				if isMC {
					for i, o := range mc.Options {
						fmt.Printf("  %d) %s\n", i+1, o)
					}
				}

				fmt.Print("> ")
				if !in.Scan() {
					break
				}
				answer := strings.TrimSpace(in.Text())
				if isMC {
					if n, err := strconv.Atoi(answer); err == nil && n >= 1 && n <= len(mc.Options) {
						answer = mc.Options[n-1]
					}
				}

				res, err := svc.Answer(ctx, q, answer)
				if err != nil {
					return err
				}
				if res.Correct {
					fmt.Printf("Correct! Next review in %d day(s).\n", res.Schedule.IntervalDays)
				} else {
					fmt.Printf("Wrong, the answer is: %s\n", res.Expected)
				}
			}

			correct, answered := q.Score()
			fmt.Printf("\nScore: %d/%d (%.0f%%) %s\n", correct, answered, q.Percent(), ratingLabel(q.Rating()))
			return in.Err()
		},
	}

	cmd.Flags().IntVarP(&size, "size", "n", study.DefaultQuizSize, "number of cards")
	return cmd
}

func ratingLabel(r study.Rating) string {
	switch r {
	case study.RatingExcellent:
		return "Excellent work!"
	case study.RatingGood:
		return "Good job."
	}
	return "Keep practicing."
}

func cardsDueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "due",
		Short: "List flashcards due for review",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, closeFn, err := getService(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			cards, err := svc.Due(ctx)
			if err != nil {
				return err
			}
			if len(cards) == 0 {
				fmt.Println("Nothing due. Come back later.")
				return nil
			}
			for _, c := range cards {
				level, err := svc.ReviewLevel(ctx, c.Header().ID)
				if err != nil {
					return err
				}
				fmt.Printf("%s  level %d  %s\n", c.Header().FormattedID, level, truncate(c.Header().Question, 60))
			}
			return nil
		},
	}
}

func cardsStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show study progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := getService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			s, err := svc.Stats(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Flashcards: %d (%d studied)\n", s.Total, s.Studied)
			fmt.Printf("Answers:    %d correct, %d incorrect\n", s.Correct, s.Incorrect)
			fmt.Printf("Accuracy:   %.1f%%\n", s.Accuracy)
			return nil
		},
	}
}
