package main

import "github.com/pothole-patrol/api-go/cli"

func main() {
	cli.Execute()
}
