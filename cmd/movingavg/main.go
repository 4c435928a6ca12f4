package main

import "github.com/chrisconley/movingavg/internal/cli"

func main() {
	cli.Execute()
}
