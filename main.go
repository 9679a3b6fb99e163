package main

import "tasktracker/internal/app"

// @title           Task Tracker API
// @version         1.0
// @description     Task tracking REST API with teams, comments, attachments and real-time notifications.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in   header
// @name Authorization
func main() {
	app.Run()
}
