package main

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
}

type ConnLogger struct {
	zerolog zerolog.Logger
}

func GetConnLogger(connID string, ip string) ConnLogger {
	return ConnLogger{log.With().Str("conn-id", connID).Str("ip", ip).Logger()}
}

func (l ConnLogger) JoinedRoom(roomCode string, name string) {
	l.zerolog.Info().Str("room-code", roomCode).Str("name", name).Msg("Joined room")
}

func (l ConnLogger) LeftRoom(roomCode string) {
	l.zerolog.Info().Str("room-code", roomCode).Msg("Left room")
}

func (l ConnLogger) JoinedCall(roomCode string) {
	l.zerolog.Info().Str("room-code", roomCode).Msg("Joined call")
}

func (l ConnLogger) LeftCall(roomCode string) {
	l.zerolog.Info().Str("room-code", roomCode).Msg("Left call")
}

func (l ConnLogger) Disconnected() {
	l.zerolog.Info().Msg("Disconnected")
}

func LogCreatedRoom(roomCode string, name string) {
	log.Info().Str("room-code", roomCode).Str("name", name).Msg("Created room")
}

func LogStartedServer(port string) {
	log.Info().Msgf("Starting server on port %v", port)
}

func LogErrorWhileUpgradingHTTP(err error) {
	log.Error().Err(err).Msg("Error while upgrading HTTP")
}
