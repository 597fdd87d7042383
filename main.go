package main

import "janmitra/internal/app"

// @title        Janmitra Grievance API
// @version      1.0
// @description  Citizen grievance intake and resolution tracking for political offices.
func main() {
	app.Run()
}
