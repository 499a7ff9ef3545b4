package main

import "github.com/wcs-project/wcs/internal/cli"

func main() {
	cli.Execute()
}
