// Command formscript manages the script bindings of entity forms.
package main

import (
	"os"

	"github.com/roach88/formscript/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
