// Command dpb bootstraps the deploy workflow into application repositories
// and manages the account budget declaration.
//
// Run without arguments inside a repository checkout to write
// .github/workflows/deploy.yml for that repository.
package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errSilentFailure) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}
