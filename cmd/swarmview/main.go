// Command swarmview renders a running scenario in the terminal. Space
// pauses, q or escape quits.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/fieldlab/swarm/logging"
	"github.com/fieldlab/swarm/scenario"
)

// One glyph per heading octant, east first, counterclockwise.
var headingGlyphs = [8]rune{'>', '/', '^', '\\', '<', '/', 'v', '\\'}

var stateColors = [...]tcell.Color{
	tcell.ColorGreen,
	tcell.ColorRed,
	tcell.ColorBlue,
	tcell.ColorYellow,
	tcell.ColorFuchsia,
	tcell.ColorAqua,
}

func main() {
	var (
		configPath = flag.String("config", "", "scenario config file (required)")
		tps        = flag.Int("tps", 20, "ticks per second")
	)
	flag.Parse()

	log := logging.NewFromEnv()
	ctx := context.Background()

	if *configPath == "" {
		log.Error(ctx, "missing -config")
		os.Exit(2)
	}
	cfg, err := scenario.Load(*configPath)
	if err != nil {
		log.Error(ctx, "load scenario", logging.Err(err))
		os.Exit(1)
	}
	sim, err := scenario.New(cfg)
	if err != nil {
		log.Error(ctx, "build simulation", logging.Err(err))
		os.Exit(1)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		log.Error(ctx, "create screen", logging.Err(err))
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		log.Error(ctx, "init screen", logging.Err(err))
		os.Exit(1)
	}
	defer screen.Fini()
	screen.HideCursor()

	events := make(chan tcell.Event, 8)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	ticker := time.NewTicker(time.Second / time.Duration(*tps))
	defer ticker.Stop()

	paused := false
	flock := cfg.Flock != nil

	draw(screen, sim, cfg.Name, flock, paused)
	for {
		select {
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				switch {
				case ev.Key() == tcell.KeyEscape, ev.Key() == tcell.KeyCtrlC:
					return
				case ev.Rune() == 'q':
					return
				case ev.Rune() == ' ':
					paused = !paused
					draw(screen, sim, cfg.Name, flock, paused)
				}
			case *tcell.EventResize:
				screen.Sync()
				draw(screen, sim, cfg.Name, flock, paused)
			}

		case <-ticker.C:
			if paused || sim.Done() {
				continue
			}
			if err := sim.Step(); err != nil {
				screen.Fini()
				log.Error(ctx, "tick failed", logging.Err(err))
				os.Exit(1)
			}
			draw(screen, sim, cfg.Name, flock, paused)
		}
	}
}

// draw maps world coordinates onto the screen, leaving the bottom row
// for status.
func draw(screen tcell.Screen, sim scenario.Simulation, name string, flock, paused bool) {
	screen.Clear()

	cols, rows := screen.Size()
	if rows < 2 {
		return
	}
	plotRows := rows - 1

	w, h := sim.Bounds()
	sx := float64(cols) / w
	sy := float64(plotRows) / h

	for _, a := range sim.Census() {
		x := int(a.X * sx)
		y := int(a.Y * sy)
		if x < 0 || x >= cols || y < 0 || y >= plotRows {
			continue
		}

		glyph := 'o'
		if flock {
			glyph = headingGlyphs[a.State%8]
		}
		style := tcell.StyleDefault.
			Foreground(stateColors[a.State%len(stateColors)])
		if a.Flag {
			style = style.Dim(true)
		}
		screen.SetContent(x, y, glyph, nil, style)
	}

	status := fmt.Sprintf(" %s | tick %d | agents %d | space: pause, q: quit ",
		name, sim.Tick(), sim.Population())
	if paused {
		status = " PAUSED |" + status
	} else if sim.Done() {
		status = " DONE |" + status
	}
	barStyle := tcell.StyleDefault.Reverse(true)
	for x := 0; x < cols; x++ {
		r := ' '
		if x < len(status) {
			r = rune(status[x])
		}
		screen.SetContent(x, rows-1, r, nil, barStyle)
	}

	screen.Show()
}
