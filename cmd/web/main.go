// Command web запускает HTTP API платформы тьюторий.
package main

import "tutorias_backend/internal/app"

func main() {
	app.Run()
}
