package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/wfunc/rpsls/events"
	"github.com/wfunc/rpsls/game"
	"github.com/wfunc/rpsls/remote"
)

const pollInterval = 500 * time.Millisecond

func main() {
	host := flag.String("host", "localhost:5001", "address of the hosting coordinator")
	roomID := flag.String("room", "", "room to join")
	user := flag.String("user", "", "your username")
	password := flag.String("password", "", "room password, if any")
	flag.Parse()

	if *roomID == "" || *user == "" {
		log.Fatal("-room and -user are required")
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	facade := remote.NewFacade("", nil)
	ctx := context.Background()

	snap, err := facade.JoinRoom(ctx, *host, *roomID, *user, *password)
	if err != nil {
		log.Fatalf("Join failed: %v", err)
	}
	log.Printf("Joined room %s hosted by %s (%d players)", snap.RoomID, snap.Host, len(snap.Players))

	done := make(chan struct{})

	// Poll loop: replay unseen events by watermark.
	go func() {
		defer close(done)
		var watermark int64
		for {
			select {
			case <-interrupt:
				return
			case <-time.After(pollInterval):
			}

			evs, err := facade.EventsSince(ctx, *host, *roomID, watermark)
			if err != nil {
				log.Printf("Poll error: %v", err)
				continue
			}
			for _, ev := range evs {
				printEvent(ev)
				watermark = ev.Timestamp
			}
		}
	}()

	log.Println("Commands: ready, start, rock, paper, scissors, lizard, spock, emote <text>, quit")

	reader := bufio.NewReader(os.Stdin)
	for {
		select {
		case <-done:
			return
		default:
		}

		text, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		text = strings.TrimSpace(text)

		switch {
		case text == "quit":
			if err := facade.LeaveRoom(ctx, *host, *roomID, *user); err != nil {
				log.Printf("Leave failed: %v", err)
			}
			return
		case text == "ready":
			if _, err := facade.ToggleReady(ctx, *host, *roomID, *user); err != nil {
				log.Printf("Ready failed: %v", err)
			}
		case text == "start":
			if _, err := facade.StartGame(ctx, *host, *roomID, *user); err != nil {
				log.Printf("Start failed: %v", err)
			}
		case strings.HasPrefix(text, "emote "):
			if err := facade.SendEmote(ctx, *host, *roomID, *user, strings.TrimPrefix(text, "emote ")); err != nil {
				log.Printf("Emote failed: %v", err)
			}
		case text != "":
			move, err := game.ParseMove(text)
			if err != nil {
				log.Printf("Unknown command %q", text)
				continue
			}
			if err := facade.SubmitMove(ctx, *host, *roomID, *user, move); err != nil {
				log.Printf("Move rejected: %v", err)
				continue
			}
			log.Printf("-> Played %s", move)
		}
	}
}

func printEvent(ev events.Event) {
	switch ev.Type {
	case events.TypeGameStart:
		log.Printf("Game started: %s, best of %d", strings.Join(ev.GameStart.Players, " vs "), ev.GameStart.BestOf)
	case events.TypeRoundOver:
		log.Printf("Round %d: %s", ev.RoundOver.Round, ev.RoundOver.Commentary)
		if ev.RoundOver.Winner != "" {
			log.Printf("  %s takes the round (%s)", ev.RoundOver.Winner, tallies(ev.RoundOver.RoundWins))
		} else {
			log.Println("  Round drawn")
		}
	case events.TypeGameOver:
		log.Printf("GAME OVER after %d rounds. Winner: %s (%s)",
			ev.GameOver.Round, ev.GameOver.Winner, tallies(ev.GameOver.RoundWins))
	case events.TypeEmote:
		log.Printf("[%s] %s", ev.Emote.From, ev.Emote.Emote)
	}
}

func tallies(wins map[string]int) string {
	parts := make([]string, 0, len(wins))
	for user, n := range wins {
		parts = append(parts, fmt.Sprintf("%s=%d", user, n))
	}
	return strings.Join(parts, ", ")
}
