package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	client_identity "github.com/NicolasKocher/sprint-poker/internal/client/identity"
	client_poker "github.com/NicolasKocher/sprint-poker/internal/client/poker"
	"github.com/NicolasKocher/sprint-poker/internal/model"
	usecase_estimate "github.com/NicolasKocher/sprint-poker/internal/usecase/estimate"
)

func main() {
	baseURL := flag.String("server", "http://localhost:8080", "backend base URL")
	flag.Parse()

	scanner := bufio.NewScanner(os.Stdin)

	name := prompt(scanner, "Your name: ")
	if name == "" {
		fmt.Println("name required")
		os.Exit(1)
	}

	user, err := resolveUser(name)
	if err != nil {
		fmt.Println("failed to resolve identity:", err)
		os.Exit(1)
	}

	api := client_poker.NewClient(*baseURL)

	intent := client_poker.IntentJoin
	var code model.RoomCode
	switch prompt(scanner, "(c)reate a room or (j)oin one? ") {
	case "c", "create":
		intent = client_poker.IntentCreate
		code = client_poker.GenerateRoomCode()
		fmt.Println("Room code:", code)
	default:
		code = model.NormalizeRoomCode(prompt(scanner, "Room code: "))
		if !code.Valid() {
			fmt.Println("invalid room code")
			os.Exit(1)
		}
	}

	rec := client_poker.NewReconciler(api, code, user, client_poker.Options{})
	rec.OnUpdate(printSession)
	rec.OnCountdown(func(remaining time.Duration) {
		fmt.Printf("\r%2ds left ", int(remaining.Round(time.Second).Seconds()))
	})

	ctx := context.Background()
	if err := rec.Start(ctx, intent); err != nil {
		fmt.Println("failed to enter room:", err)
		os.Exit(1)
	}
	// Leave synchronously on exit; a fire-and-forget goroutine would be
	// killed when main returns before the request lands.
	defer leaveRoom(rec, api, code, user.ID)

	fmt.Println("Commands: start | vote <XS|S|M|L|XL> | finish | reset | result | quit")
	for {
		line := prompt(scanner, "> ")
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		var err error
		switch fields[0] {
		case "start":
			_, err = api.StartVoting(ctx, code)
		case "vote":
			if len(fields) < 2 {
				fmt.Println("usage: vote <XS|S|M|L|XL>")
				continue
			}
			_, err = api.CastVote(ctx, code, user.ID, model.TShirtSize(strings.ToUpper(fields[1])))
		case "finish":
			_, err = api.FinishVoting(ctx, code)
		case "reset":
			_, err = api.ResetVoting(ctx, code)
		case "result":
			printResult(rec)
		case "quit", "exit":
			return
		default:
			fmt.Println("unknown command:", fields[0])
		}
		if err != nil {
			fmt.Println("error:", err)
		}
	}
}

func leaveRoom(rec *client_poker.Reconciler, api *client_poker.Client, code model.RoomCode, userID string) {
	rec.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := api.LeaveSession(ctx, code, userID); err != nil {
		fmt.Println("failed to leave room:", err)
	}
}

func resolveUser(name string) (model.Participant, error) {
	cachePath, err := client_identity.DefaultCachePath()
	if err != nil {
		return model.Participant{}, err
	}

	id, err := client_identity.NewCache(cachePath).Resolve(name)
	if err != nil {
		return model.Participant{}, err
	}
	return model.Participant{ID: id, Name: name}, nil
}

func printSession(session model.Session) {
	fmt.Printf("\n[%s] %s\n", session.ID, session.GameState)
	for _, p := range session.Participants {
		marker := " "
		if p.ID == session.HostID {
			marker = "*"
		}
		voted := ""
		if _, ok := session.Votes[p.ID]; ok {
			voted = " (voted)"
		}
		fmt.Printf(" %s %s%s\n", marker, p.Name, voted)
	}
	if session.GameState == model.StateFinished {
		if size, ok := usecase_estimate.Aggregate(session.Votes); ok {
			fmt.Println("Group estimate:", size)
		} else {
			fmt.Println("Group estimate: N/A")
		}
	}
}

func printResult(rec *client_poker.Reconciler) {
	session, ok := rec.Session()
	if !ok {
		fmt.Println("no session yet")
		return
	}
	if size, aggOK := usecase_estimate.Aggregate(session.Votes); aggOK {
		fmt.Println("Group estimate:", size)
	} else {
		fmt.Println("Group estimate: N/A")
	}
}

func prompt(scanner *bufio.Scanner, label string) string {
	fmt.Print(label)
	if !scanner.Scan() {
		os.Exit(0)
	}
	return strings.TrimSpace(scanner.Text())
}
