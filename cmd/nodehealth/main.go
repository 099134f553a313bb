package main

import "github.com/vietddude/nodehealth/internal/cli"

func main() {
	cli.Execute()
}
