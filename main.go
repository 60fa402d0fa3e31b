// The main package for the result-bot executable.
package main

import (
	"github.com/dharani043/result-bot/cmd"
)

func main() {
	cmd.Execute()
}
