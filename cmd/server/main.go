// cmd/server/main.go
package main

import (
	"log"
	"net/http"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/sketchparty/sketchd/internal/handlers"
	"github.com/sketchparty/sketchd/internal/middleware"
	"github.com/sketchparty/sketchd/internal/room"
	"github.com/sketchparty/sketchd/internal/words"
)

func main() {
	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	// WORDS_FILE overrides the embedded word list.
	src, err := words.Load(os.Getenv("WORDS_FILE"))
	if err != nil {
		log.Fatalf("failed to load word list: %v", err)
	}
	logger.Infof("Loaded %d words", src.Count())

	store := room.NewRoomStore()

	mux := http.NewServeMux()
	mux.Handle("/ws", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.RoomWSHandler(logger, store, src.Pick),
	)))

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	logger.Infof("Running on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
