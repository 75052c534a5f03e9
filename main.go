package main

import "net/http"

func main() {
	config := MustLoadConfig()
	directory := NewDirectory()
	registry := NewRegistry()
	hub := NewHub(directory, registry)
	invites := NewInviteSigner(config.InviteSecret, config.InviteTTL)
	handler := NewHTTPServer(hub, directory, registry, invites, config.AllowedOrigins)
	LogStartedServer(config.Port)
	http.ListenAndServe(":"+config.Port, handler)
}
