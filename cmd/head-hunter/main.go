package main

import "head-hunter/internal/cli"

func main() {
	cli.Execute()
}
