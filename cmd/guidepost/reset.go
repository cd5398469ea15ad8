package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/guidepost-io/guidepost/internal/adapters/settings"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear the tour-seen flags so the tour runs again",
	RunE: func(_ *cobra.Command, _ []string) error {
		store, err := settings.NewStore()
		if err != nil {
			return err
		}
		if err := store.Reset(); err != nil {
			return err
		}
		fmt.Println("Tour flags cleared.")
		return nil
	},
}
