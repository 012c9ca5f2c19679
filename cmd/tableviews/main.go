// Command tableviews administers default view pointers: it applies the
// migrations and sets, clears, resolves, and cleans up defaults from the shell.
package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	ctx := context.Background()
	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
