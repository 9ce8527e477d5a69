// Command dynapipe generates the dynamic CI deployment pipeline.
package main

import "dynapipe/internal/cli"

func main() {
	cli.Execute()
}
