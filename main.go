package main

import (
	"context"
	"os"

	internalcmd "github.com/mickamy/fetchmany-repro/internal/cmd"
)

func main() {
	exitCode := 0
	if err := internalcmd.RootCmd().ExecuteContext(context.Background()); err != nil {
		exitCode = 1
	}

	os.Exit(exitCode)
}
