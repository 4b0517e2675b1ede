package main

import "github.com/mcoot/chesspie/internal/cli"

func main() {
	cli.Execute()
}
