package main

import "github.com/clinicore/access-management/cmd"

func main() {
	cmd.Execute()
}
