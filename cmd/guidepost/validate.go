package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/guidepost-io/guidepost/internal/script"
)

var validateCmd = &cobra.Command{
	Use:   "validate <script.yaml>",
	Short: "Check a tour script without running it",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		sc, rules, err := script.Load(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s: ok (%d steps, %d counted, %d rules)\n",
			args[0], sc.Len(), sc.TotalSteps(), len(rules))
		return nil
	},
}
