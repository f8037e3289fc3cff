// Command hashprobe tests a hash oracle for collisions over the input space
// [1..N] using a pool of concurrent workers.
package main

import (
	"context"
	"os"

	"github.com/agbru/hashprobe/internal/app"
	apperrors "github.com/agbru/hashprobe/internal/errors"
)

func main() {
	if app.HasVersionFlag(os.Args[1:]) {
		app.PrintVersion(os.Stdout)
		return
	}

	application, err := app.New(os.Args, os.Stderr)
	if err != nil {
		if app.IsHelpError(err) {
			os.Exit(apperrors.ExitSuccess)
		}
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(apperrors.ExitErrorConfig)
	}

	exitCode := application.Run(context.Background(), os.Stdout)
	os.Exit(exitCode)
}
