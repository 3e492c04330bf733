package main

import "github.com/mvp-joe/polyast/internal/cli"

func main() {
	cli.Execute()
}
