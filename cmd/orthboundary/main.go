package main

import "github.com/notargets/OrthoBoundary/cli"

func main() {
	cli.Execute()
}
