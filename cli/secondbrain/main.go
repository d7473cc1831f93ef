package main

import (
	"os"

	secondbraincmder "github.com/secondbrainhq/secondbrain/cmd/secondbrain"
)

func main() {
	cmd := secondbraincmder.NewSecondbrainCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
