package main

import "cogniflow/cmd/client/cmd"

func main() {
	cmd.Execute()
}
