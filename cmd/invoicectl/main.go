package main

import "github.com/garyjia/invoice-editor/internal/cli"

func main() {
	cli.Execute()
}
