package main

import (
	"fmt"
	"os"

	"github.com/tachyonhq/tachyon-eval/cmd/tachyon-eval/commands"
)

func main() {
	rootCmd := commands.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
