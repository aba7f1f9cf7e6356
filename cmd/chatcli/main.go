package main

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/Netflix/go-env"
	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
)

// Exit codes for the client application.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

// Config defines the client-side environment variables.
type Config struct {
	ServerHost string `env:"CHAT_SERVER_HOST,default=127.0.0.1"`
	ServerPort int    `env:"CHAT_SERVER_PORT,default=12345"`
}

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "chatcli error: %v\n", err)
	}
	os.Exit(code)
}

// run connects to the server, prints everything it sends, and forwards
// stdin lines as commands. `chatcli [host] [port]` overrides the
// environment.
func run() (int, error) {
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	if len(os.Args) >= 2 {
		config.ServerHost = os.Args[1]
	}
	if len(os.Args) >= 3 {
		port, err := strconv.Atoi(os.Args[2])
		if err != nil {
			return exitConfig, fmt.Errorf("invalid port argument %q: %w", os.Args[2], err)
		}
		config.ServerPort = port
	}

	printHelp()

	address := fmt.Sprintf("%s:%d", config.ServerHost, config.ServerPort)
	conn, err := net.Dial("tcp", address)
	if err != nil {
		return exitRuntime, fmt.Errorf("could not connect to server %s: %w", address, err)
	}
	defer conn.Close()
	color.Cyan.Printf("Connected to server %s\n", address)

	// Background reception loop: prints until the server closes the
	// connection.
	done := make(chan struct{})
	go func() {
		defer close(done)
		scanner := bufio.NewScanner(conn)
		for scanner.Scan() {
			printServerLine(scanner.Text())
		}
		color.Yellow.Println("Disconnected from server.")
	}()

	// Main loop: forward stdin to the server. /quit lets the server
	// close the connection; the reception loop then observes EOF.
	stdin := bufio.NewScanner(os.Stdin)
	for stdin.Scan() {
		msg := strings.TrimSpace(stdin.Text())
		if msg == "" {
			continue
		}
		if _, err := fmt.Fprintf(conn, "%s\n", msg); err != nil {
			break
		}
		if msg == "/quit" {
			break
		}
	}

	<-done
	return exitOK, nil
}

// printServerLine colors the two message formats so broadcasts and
// private messages stand out from status lines.
func printServerLine(line string) {
	switch {
	case strings.HasPrefix(line, "[Channel "):
		color.Green.Println(line)
	case strings.HasPrefix(line, "[Private] "):
		color.Magenta.Println(line)
	default:
		fmt.Println(line)
	}
}

func printHelp() {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Command", "Description"})
	table.Append([]string{"/nick <name>", "Claim or change your nickname"})
	table.Append([]string{"/join <channel>", "Join a channel (created on first join)"})
	table.Append([]string{"/send <channel> <message>", "Broadcast to a channel you joined"})
	table.Append([]string{"/pm <nick> <message>", "Send a private message"})
	table.Append([]string{"/quit", "Disconnect"})
	table.Render()
}
