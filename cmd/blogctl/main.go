package main

import "github.com/blog-publishing-api/cmd/blogctl/commands"

func main() {
	commands.Execute()
}
