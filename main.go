/*
Copyright © 2025 nishcheyk
*/
package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/nishcheyk/infinity-workspace/cmd"
)

func main() {
	cmd.Execute()
}

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on process environment")
	}
}
