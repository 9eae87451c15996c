package main

import "instaapp/internal/cmd"

func main() {
	cmd.Run()
}
