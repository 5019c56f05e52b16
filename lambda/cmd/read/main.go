package main

import (
	"personal-website/internal/handler"
	"personal-website/lambda"
)

func main() {
	lambda.Start(func(d lambda.Deps) handler.Func {
		return handler.NewRead(d.Table, d.Config.ListLimit).Handle
	})
}
