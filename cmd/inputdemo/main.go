// Command inputdemo drives a small physics box from the platformer profile.
// Escape opens a menu that runs in its own higher-priority context; Ctrl+C
// copies the recorded input trace to the clipboard for use with replay.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/milk9111/actioninput/common"
	"github.com/milk9111/actioninput/profiles"
)

func main() {
	profile := flag.String("profile", "platformer.yaml", "profile name (embedded or under -dir)")
	dir := flag.String("dir", "", "directory overriding the embedded profiles; watched for changes")
	format := flag.String("log", "text", "log format: text or json")
	verbose := flag.Bool("v", false, "log pipeline transitions")
	flag.Parse()

	logger, err := common.NewLogger(os.Stderr, *format, *verbose)
	if err != nil {
		log.Fatal(err)
	}

	store := profiles.NewStore(*dir, logger)
	game, err := NewGame(store, *profile, logger)
	if err != nil {
		log.Fatal(err)
	}
	defer game.Close()

	if *dir != "" {
		if err := game.Watch(); err != nil {
			logger.Warn("inputdemo: watch disabled", "dir", *dir, "err", err)
		}
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("actioninput demo")

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
