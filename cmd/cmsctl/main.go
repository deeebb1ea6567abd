package main

import "cms-backend/internal/cli"

func main() {
	cli.Execute()
}
