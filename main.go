package main

import "github.com/brabsmit/sportsbook-arb/cmd"

func main() {
	cmd.Execute()
}
