package main

import "github.com/ethanbaker/essaychat/internal/cli"

func main() {
	cli.Execute()
}
