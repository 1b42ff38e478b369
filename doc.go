// Package toio provides a Go driver for toio Core Cube robots over
// Bluetooth Low Energy (BLE).
//
// # Features
//
//   - Cube discovery ranked by signal strength
//   - Differential-drive motion with speed/duration planning
//   - Targeted moves on a play mat with acknowledgment
//   - Lights, sound, motion/button/battery/position events
//   - Sensor threshold configuration
//
// # Quick Start
//
// Find the nearest cube and drive it:
//
//	ctx := context.Background()
//	cube, err := toio.Nearest(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cube.Connect(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer cube.Close()
//
//	cube.Go(30, 30)                  // forward
//	time.Sleep(2 * time.Second)
//	cube.GoFor(50, 5, time.Second)   // clockwise arc for 1s
//	cube.Stop()
//
// # Events
//
// Decoded notifications flow through a subscription channel:
//
//	events, cancel := cube.Events()
//	defer cancel()
//	for ev := range events {
//	    switch e := ev.(type) {
//	    case toio.ButtonEvent:
//	        fmt.Println("button pressed:", e.Pressed)
//	    case toio.PositionEvent:
//	        fmt.Println("at", e.Position.X, e.Position.Y)
//	    }
//	}
//
// Each subscriber sees only events published after it subscribed. The
// channel closes when the connection drops; reconnection is the caller's
// decision, never automatic.
//
// # Steering
//
// Move drives with a symmetric steering intent: Move(20, 20, 60) goes
// straight at speed 60, Move(5, 50, 60) arcs left. Wheel speeds are the
// requested speed scaled by each side's bias and clamped to ±MaxSpeed.
package toio
