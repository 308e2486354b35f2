package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/milk9111/critters/sim"
)

func main() {
	critters := flag.Int("critters", 6, "initial critter population")
	worms := flag.Int("worms", 12, "worm population target")
	networks := flag.Int("networks", 2, "waygate networks (two gates each)")
	seed := flag.Int64("seed", 0, "simulation seed (0 uses the current time)")
	watch := flag.String("watch", "prefabs", "prefab directory to watch for hot reload (empty disables)")
	debug := flag.Bool("debug", false, "draw per-entity active layers")
	flag.Parse()

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	nets := make([]string, 0, *networks)
	for i := 0; i < *networks; i++ {
		nets = append(nets, fmt.Sprintf("net-%d", i))
	}

	s, err := sim.New(sim.Config{
		Width:    baseWidth,
		Height:   baseHeight,
		Seed:     *seed,
		Critters: *critters,
		Worms:    *worms,
		Networks: nets,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer s.Close()

	if *watch != "" {
		if err := s.WatchPrefabs(*watch); err != nil {
			log.Printf("main: prefab watch disabled: %v", err)
		}
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(baseWidth, baseHeight)
	ebiten.SetWindowTitle("critters")

	if err := ebiten.RunGame(NewGame(s, *debug)); err != nil {
		log.Fatal(err)
	}
}
