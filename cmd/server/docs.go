package main

//go:generate swag init -g cmd/server/main.go -o docs

// @title           CityPulse Auto-Publish API
// @version         0.1.0
// @description     Social destination settings, connection testing, publish dispatch and history.
// @host            localhost:8080
// @BasePath        /
// @schemes         http
