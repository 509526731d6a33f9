package main

import (
	"fmt"
	"strings"

	"github.com/hoabrief/hoabrief"
)

// Run executes the ranking command.
func (c *RankingCmd) Run(deps *Dependencies) error {
	ranking, err := loadRanking(c.File)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", hoabrief.ErrorMessage(err))
		return err
	}

	fmt.Fprintln(deps.Stdout, "Authority ranking (1 is highest priority):")
	for i, cat := range ranking.Categories {
		fmt.Fprintf(deps.Stdout, "  %2d. %s (%s)\n", i+1, cat.Name, strings.Join(cat.Keywords, ", "))
	}
	fmt.Fprintf(deps.Stdout, "  %2d. %s (no keyword match)\n", ranking.FallbackRank(), hoabrief.Uncategorized)

	return nil
}
