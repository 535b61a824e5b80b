// FilePath: cmd/main.go
package main

import (
	"fmt"
	"log"
	"os"

	tm "github.com/buger/goterm"
	nuts "github.com/vaudience/go-nuts"

	"github.com/meteosense/hub/internal/config"
	"github.com/meteosense/hub/internal/server"
)

func main() {
	// Clear console and draw logo
	ClearConsole()
	DrawLogo()
	// Initialize version info
	nuts.InitVersion()
	nuts.L.Infof("[Main] Starting MeteoSense Hub v%s", nuts.GetVersion())

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Create and start server
	srv := server.New(cfg)
	if err := srv.Start(); err != nil {
		nuts.L.Errorf("[Main] Server error: %v", err)
		os.Exit(1)
	}
}

// ClearConsole clears the console screen and moves the cursor home.
func ClearConsole() {
	tm.Clear()
	tm.MoveCursor(1, 1)
	tm.Flush()
}

func DrawLogo() {
	fmt.Println()
	lines := []string{
		"    __  ___     __            _____                     ",
		"   /  |/  /__  / /____  ____ / ___/___  ____  ________  ",
		"  / /|_/ / _ \\/ __/ _ \\/ __ \\\\__ \\/ _ \\/ __ \\/ ___/ _ \\ ",
		" / /  / /  __/ /_/  __/ /_/ /__/ /  __/ / / (__  )  __/ ",
		"/_/  /_/\\___/\\__/\\___/\\____/____/\\___/_/ /_/____/\\___/  ",
		"......................................................  " + nuts.GetVersion(),
	}

	for _, line := range lines {
		fmt.Println(line)
	}
}
