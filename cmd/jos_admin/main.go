package main

import "github.com/gestionale-jos/jos_backend/internal/cli"

func main() {
	cli.Execute()
}
