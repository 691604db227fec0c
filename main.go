package main

import "sevagan-backend/cmd"

func main() {
	cmd.Run()
}
