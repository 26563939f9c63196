package main

import "github.com/frahmantamala/drawing-management/cmd"

func main() {
	cmd.Execute()
}
