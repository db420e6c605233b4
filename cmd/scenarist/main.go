package main

import "github.com/forPelevin/scenarist/internal/cli"

func main() {
	cli.Main()
}
