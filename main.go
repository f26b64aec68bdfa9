package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/dendrascience/jsonfs/internal/cmd"
	"github.com/dendrascience/jsonfs/version"
)

func main() {
	if err := fang.Execute(context.Background(), cmd.NewRootCmd(),
		fang.WithVersion(version.GetVersion()),
		fang.WithCommit(version.GetCommit()),
	); err != nil {
		os.Exit(1)
	}
}
