package main

import (
	"personal-website/internal/handler"
	"personal-website/lambda"
)

func main() {
	lambda.Start(func(d lambda.Deps) handler.Func {
		return handler.NewWrite(d.Table).Handle
	})
}
