package main

import "github.com/bwops/metastack/internal/cli"

func main() {
	cli.Execute()
}
