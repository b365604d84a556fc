package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pbaille/studykit/internal/deck"
	"github.com/spf13/cobra"
)

func deckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deck",
		Short: "Named decks of question/answer cards",
	}
	cmd.AddCommand(deckCreateCmd())
	cmd.AddCommand(deckDeleteCmd())
	cmd.AddCommand(deckAddCmd())
	cmd.AddCommand(deckListCmd())
	cmd.AddCommand(deckQuizCmd())
	return cmd
}

func deckCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create [name]",
		Short: "Create an empty deck",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := deck.New(getKV(), appLogger).Create(args[0]); err != nil {
				return err
			}
			fmt.Printf("Created deck %q\n", args[0])
			return nil
		},
	}
}

func deckDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [name]",
		Short: "Delete a deck and its cards",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := deck.New(getKV(), appLogger).Delete(args[0]); err != nil {
				return err
			}
			fmt.Printf("Deleted deck %q\n", args[0])
			return nil
		},
	}
}

func deckAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add [deck] [question] [answer]",
		Short: "Add a card to a deck",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			card, err := deck.New(getKV(), appLogger).AddCard(args[0], args[1], args[2])
			if err != nil {
				return err
			}
			fmt.Printf("Added to %s: %s\n", args[0], truncate(card.Question, 60))
			return nil
		},
	}
}

func deckListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [deck]",
		Short: "List decks, or the cards of one deck",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d := deck.New(getKV(), appLogger)

			if len(args) == 0 {
				names := d.Names()
				if len(names) == 0 {
					fmt.Println("No decks yet. Use 'studykit deck create' to make one.")
					return nil
				}
				for _, name := range names {
					cards, _ := d.Cards(name)
					fmt.Printf("%s (%d cards)\n", name, len(cards))
				}
				return nil
			}

			cards, err := d.Cards(args[0])
			if err != nil {
				return err
			}
			for i, c := range cards {
				fmt.Printf("%2d. %s -> %s\n", i+1, truncate(c.Question, 40), truncate(c.Answer, 30))
			}
			return nil
		},
	}
}

func deckQuizCmd() *cobra.Command {
	var multipleChoice bool

	cmd := &cobra.Command{
		Use:   "quiz [deck]",
		Short: "Quiz yourself on a deck in random order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d := deck.New(getKV(), appLogger)
			cards, err := d.StartQuiz(args[0])
			if err != nil {
				return err
			}
			if len(cards) == 0 {
				fmt.Println("This deck has no cards.")
				return nil
			}

			in := bufio.NewScanner(os.Stdin)
			correct := 0
			for i, c := range cards {
				fmt.Printf("\n[%d/%d] %s\n", i+1, len(cards), c.Question)

				var options []string
				if multipleChoice {
					if options, err = d.MultipleChoiceOptions(args[0], c.Answer); err != nil {
						return err
					}
					for j, o := range options {
						fmt.Printf("  %d) %s\n", j+1, o)
					}
				}

				fmt.Print("> ")
				if !in.Scan() {
					break
				}
				answer := strings.TrimSpace(in.Text())
				if n, err := strconv.Atoi(answer); err == nil && n >= 1 && n <= len(options) {
					answer = options[n-1]
				}

				if strings.EqualFold(answer, c.Answer) {
					correct++
					fmt.Println("Correct!")
				} else {
					fmt.Printf("Wrong, the answer is: %s\n", c.Answer)
				}
			}

			fmt.Printf("\nScore: %d/%d\n", correct, len(cards))
			return in.Err()
		},
	}

	cmd.Flags().BoolVar(&multipleChoice, "mc", false, "offer multiple-choice options")
	return cmd
}
