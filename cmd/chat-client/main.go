package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/example/terminal-chat/client"
	"github.com/example/terminal-chat/client/presenter"
)

const defaultWidth = 80

func main() {
	baseURL := os.Getenv("BROKER_URL")
	if baseURL == "" {
		baseURL = "http://localhost:3001"
	}
	wsURL := "ws" + strings.TrimPrefix(baseURL, "http") + "/ws"

	rest := client.NewRestClient(baseURL)
	p := presenter.New(terminalWidth())
	stdin := bufio.NewScanner(os.Stdin)
	ctx := context.Background()

	username := prompt(stdin, "Enter your username: ")
	if username == "" {
		log.Fatal("a username is required")
	}

	session := client.NewSession(rest, wsURL, username)
	if err := session.Connect(ctx); err != nil {
		log.Fatalf("Could not connect: %v", err)
	}
	defer session.Close()

	room, err := chooseRoom(ctx, rest, stdin)
	if err != nil {
		log.Fatalf("Could not pick a room: %v", err)
	}
	if err := session.Join(room); err != nil {
		log.Fatalf("Could not join %s: %v", room, err)
	}
	go consume(p, session.Client())

	fmt.Println("Type a message, @path to send a file, -h to switch rooms, -e to exit.")

	for stdin.Scan() {
		line := strings.TrimSpace(stdin.Text())
		switch {
		case line == "":
			continue

		case line == "-e":
			return

		case line == "-h":
			next, err := chooseRoom(ctx, rest, stdin)
			if err != nil {
				fmt.Printf("Could not pick a room: %v\n", err)
				continue
			}
			if err := session.SwitchRoom(ctx, next); err != nil {
				fmt.Printf("Could not switch to %s: %v\n", next, err)
				continue
			}
			go consume(p, session.Client())

		case strings.HasPrefix(line, "@"):
			path := strings.TrimPrefix(line, "@")
			if err := session.SendFile(path); err != nil {
				if errors.Is(err, client.ErrFileTooLarge) {
					fmt.Println("That file is over the 10 MiB limit and was not sent.")
				} else {
					fmt.Printf("Could not send %s: %v\n", path, err)
				}
			}

		default:
			if err := session.SendText(line); err != nil {
				fmt.Printf("Could not send message: %v\n", err)
			}
		}
	}
}

// consume prints broker events until the connection ends. A new consumer
// is started after every reconnect.
func consume(p *presenter.Presenter, c *client.Client) {
	for ev := range c.Events() {
		if out := p.Render(ev); out != "" {
			fmt.Println(out)
		}
	}
}

// chooseRoom lists the rooms and reads a choice by number or name. An
// unknown name is created first.
func chooseRoom(ctx context.Context, rest *client.RestClient, stdin *bufio.Scanner) (string, error) {
	rooms, err := rest.ListRooms(ctx)
	if err != nil {
		return "", err
	}

	if len(rooms) == 0 {
		fmt.Println("No rooms yet.")
	} else {
		fmt.Println("Rooms:")
		for i, name := range rooms {
			fmt.Printf("  %d. %s\n", i+1, name)
		}
	}

	choice := prompt(stdin, "Enter a room number or name: ")
	if choice == "" {
		return "", errors.New("no room chosen")
	}

	if n, err := strconv.Atoi(choice); err == nil && n >= 1 && n <= len(rooms) {
		return rooms[n-1], nil
	}
	for _, name := range rooms {
		if name == choice {
			return name, nil
		}
	}

	created, err := rest.CreateRoom(ctx, choice)
	if err != nil {
		return "", err
	}
	fmt.Printf("Created room %s.\n", created)
	return created, nil
}

func prompt(stdin *bufio.Scanner, label string) string {
	fmt.Print(label)
	if !stdin.Scan() {
		return ""
	}
	return strings.TrimSpace(stdin.Text())
}

func terminalWidth() int {
	if cols := os.Getenv("COLUMNS"); cols != "" {
		if n, err := strconv.Atoi(cols); err == nil && n > 0 {
			return n
		}
	}
	return defaultWidth
}
