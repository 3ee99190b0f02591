package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vangorra/go-gogogate2-api/pkg/gogogate2"
)

var (
	host       string
	username   string
	password   string
	deviceType string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&host, "host", "", "Host or IP address of the device")
	rootCmd.PersistentFlags().StringVar(&username, "username", "", "Device account username")
	rootCmd.PersistentFlags().StringVar(&password, "password", "", "Device account password. Omit or use '-' for an interactive prompt")
	rootCmd.PersistentFlags().StringVar(&deviceType, "device-type", "gogogate2", "Device type (gogogate2 or ismartgate)")

	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(openCmd)
	rootCmd.AddCommand(closeCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(sensorCmd)
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show device and door information",
	Run: func(cmd *cobra.Command, args []string) {
		client := getClient()
		defer client.Close()

		info, err := client.Info(context.Background())
		if err != nil {
			fmt.Printf("Error getting info: %v\n", err)
			os.Exit(1)
		}
		echoJSON(info)
	},
}

var openCmd = &cobra.Command{
	Use:   "open [door-id]",
	Short: "Open a door",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		doorID := parseDoorID(args[0])

		client := getClient()
		defer client.Close()

		sent, err := client.OpenDoor(context.Background(), doorID)
		if err != nil {
			fmt.Printf("Error opening door: %v\n", err)
			os.Exit(1)
		}
		echoJSON(sent)
	},
}

var closeCmd = &cobra.Command{
	Use:   "close [door-id]",
	Short: "Close a door",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		doorID := parseDoorID(args[0])

		client := getClient()
		defer client.Close()

		sent, err := client.CloseDoor(context.Background(), doorID)
		if err != nil {
			fmt.Printf("Error closing door: %v\n", err)
			os.Exit(1)
		}
		echoJSON(sent)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the status of every configured door",
	Run: func(cmd *cobra.Command, args []string) {
		raw, _ := cmd.Flags().GetBool("raw")

		client := getClient()
		defer client.Close()

		statuses, err := client.DoorStatuses(context.Background(), !raw)
		if err != nil {
			fmt.Printf("Error getting door statuses: %v\n", err)
			os.Exit(1)
		}
		for doorID, status := range statuses {
			fmt.Printf("Door %d: %s\n", doorID, status)
		}
	},
}

var sensorCmd = &cobra.Command{
	Use:   "sensor [door-id]",
	Short: "Read a door's wireless sensor (iSmartGate only)",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		doorID := parseDoorID(args[0])

		client := getClient()
		defer client.Close()

		reading, err := client.Sensor(context.Background(), doorID)
		if err != nil {
			fmt.Printf("Error reading sensor: %v\n", err)
			os.Exit(1)
		}
		echoJSON(reading)
	},
}

func init() {
	statusCmd.Flags().Bool("raw", false, "Report only device-confirmed statuses, no opening/closing approximation")
}

func parseDoorID(arg string) int {
	doorID, err := strconv.Atoi(arg)
	if err != nil {
		fmt.Printf("Invalid door id '%s': must be a number\n", arg)
		os.Exit(1)
	}
	return doorID
}

func echoJSON(value any) {
	out, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		fmt.Printf("Error encoding output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}

func promptPassword() string {
	fmt.Fprint(os.Stderr, "Password: ")
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		fmt.Printf("Error reading password: %v\n", err)
		os.Exit(1)
	}
	return strings.TrimSpace(string(raw))
}

func getClient() *gogogate2.Client {
	if host == "" || username == "" {
		fmt.Println("--host and --username are required.")
		os.Exit(1)
	}

	if password == "" || password == "-" {
		password = promptPassword()
	}

	var (
		client *gogogate2.Client
		err    error
	)
	switch deviceType {
	case "gogogate2":
		client, err = gogogate2.NewGogoGate2Client(host, username, password)
	case "ismartgate":
		client, err = gogogate2.NewISmartGateClient(host, username, password)
	default:
		fmt.Printf("Invalid device type %q: must be gogogate2 or ismartgate\n", deviceType)
		os.Exit(1)
	}
	if err != nil {
		fmt.Printf("Error creating client for %s: %v\n", host, err)
		os.Exit(1)
	}
	return client
}
