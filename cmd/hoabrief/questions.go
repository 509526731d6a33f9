package main

import (
	"fmt"

	"github.com/hoabrief/hoabrief"
)

// Run executes the questions command.
func (c *QuestionsCmd) Run(deps *Dependencies) error {
	questions, err := loadBattery(c.File)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", hoabrief.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Question battery (%d questions):\n\n", len(questions))
	for _, q := range questions {
		fmt.Fprintf(deps.Stdout, "  %2d. %s\n", q.ID, q.Text)
	}

	return nil
}
