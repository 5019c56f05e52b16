package main

import "github.com/urfave/cli/v2"

var APIURLFlag = &cli.StringFlag{
	Name:    "api-url",
	Aliases: []string{"u"},
	Usage:   "base URL of the blog API",
	EnvVars: []string{"BLOG_API_URL"},
	Value:   "http://localhost:8080",
}

var EnvFileFlag = &cli.StringFlag{
	Name:    "env-file",
	Aliases: []string{"e"},
	Usage:   "dotenv file loaded before reading BLOG_* settings (ignored when missing)",
	Value:   ".env",
}
