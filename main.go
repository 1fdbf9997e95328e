package main

import (
	"os"

	"invitation_server_go/cli"
)

func main() {
	os.Exit(cli.Execute())
}
