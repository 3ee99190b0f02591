package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "gogogate2",
	Short: "GogoGate2 and iSmartGate control CLI",
	Long:  `A command line interface for controlling GogoGate2 and iSmartGate garage door controllers.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
