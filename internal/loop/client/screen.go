package client

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/tomz197/lunardefender/internal/draw"
	"github.com/tomz197/lunardefender/internal/loop"
	"github.com/tomz197/lunardefender/internal/loop/config"
)

// Field glyphs.
const (
	glyphPlayer    = '▲'
	glyphLander    = 'W'
	glyphAstronaut = 'A'
	glyphLaser     = '•'
	glyphExplosion = '*'
	glyphHeading   = '·'
	glyphGround    = '.'
)

// groundSpacing is the distance between the scrolling ground marks.
const groundSpacing = 50.0

// drawFrame draws the current frame.
func (c *Client) drawFrame() error {
	snap := c.handle.Snapshot()
	phase := c.phase(snap)

	// On phase or inactivity transitions, repaint the whole terminal
	// so UI elements from the previous screen don't persist.
	if phase != c.state.prevPhase || c.state.isInactive != c.state.wasInactive {
		if phase == loop.StateRunning {
			c.state.Summary = nil
		}
		c.canvas.ForceRedraw()
		c.state.prevPhase = phase
		c.state.wasInactive = c.state.isInactive
	}

	c.canvas.Clear()
	c.drawUI(snap, phase)

	// Render canvas to terminal
	c.canvas.Render(c.out)

	// Draw border when terminal exceeds max render resolution
	c.canvas.RenderBorder(c.out)

	return c.out.Flush()
}

// drawUI picks the screen for the current state.
func (c *Client) drawUI(snap *loop.Snapshot, phase loop.GameState) {
	centerY := c.canvas.Height() / 2

	switch {
	case c.state.Shutdown:
		c.drawShutdownScreen(centerY)
	case c.state.isInactive:
		c.drawInactivityScreen(centerY)
	case c.state.Halted != nil:
		c.drawHaltedScreen(centerY)
	case snap == nil || phase == loop.StateNotStarted:
		c.drawStartScreen(centerY)
	case phase == loop.StateGameOver:
		c.drawGameOverScreen(centerY, snap)
	default:
		c.drawField(snap)
		c.drawHUD(snap)
		if phase == loop.StatePaused {
			c.drawPausedBanner(centerY)
		}
	}
}

// radar returns the field area of the canvas: everything between the HUD rows.
func (c *Client) radar() draw.Radar {
	return draw.Radar{
		HalfWidth: config.FieldHalfWidth,
		HalfDepth: config.TerrainHalfExtent,
		Col:       1,
		Row:       2,
		Cols:      c.canvas.Width() - 2,
		Rows:      c.canvas.Height() - 5,
	}
}

// drawField plots the top-down radar: scrolling ground, astronauts,
// landers, lasers, effects and the player with its heading.
func (c *Client) drawField(snap *loop.Snapshot) {
	r := c.radar()
	cv := c.canvas

	// Ground marks slide with the scroll offset so forward motion is visible.
	offset := math.Mod(snap.Scroll, groundSpacing)
	for z := -config.TerrainHalfExtent + offset; z <= config.TerrainHalfExtent; z += groundSpacing {
		for x := -config.FieldHalfWidth; x <= config.FieldHalfWidth; x += groundSpacing {
			if col, row, ok := r.Cell(x, z); ok {
				cv.Set(col, row, glyphGround, draw.ColorDim)
			}
		}
	}

	for _, a := range snap.Astronauts {
		if col, row, ok := r.Cell(a.Pos.X, a.Pos.Z); ok {
			cv.Set(col, row, glyphAstronaut, draw.ColorBrightGreen)
		}
	}

	for _, l := range snap.Landers {
		if col, row, ok := r.Cell(l.Pos.X, l.Pos.Z); ok {
			// Landers close to the ground are drawn brighter.
			color := draw.ColorRed
			if l.Pos.Y < 10 {
				color = draw.ColorBrightRed
			}
			cv.Set(col, row, glyphLander, color)
		}
	}

	for _, l := range snap.Lasers {
		if col, row, ok := r.Cell(l.Pos.X, l.Pos.Z); ok {
			cv.Set(col, row, glyphLaser, draw.ColorYellow)
		}
	}

	for _, e := range c.state.Effects {
		col, row, ok := r.Cell(e.Pos.X, e.Pos.Z)
		if !ok {
			continue
		}
		if e.Text == "" {
			cv.Set(col, row, glyphExplosion, draw.ColorBrightWhite)
			continue
		}
		// Popups drift upward as they age.
		rise := int((config.PopupSeconds - e.TTL) * 2)
		cv.Text(col-len(e.Text)/2, row-1-rise, e.Text, draw.ColorYellow)
	}

	p := snap.Player
	from := r.Point(p.Pos.X, p.Pos.Z)
	to := r.Point(p.Pos.X+math.Sin(p.Yaw)*80, p.Pos.Z+math.Cos(p.Yaw)*80)
	draw.Line(from, to, func(col, row int) {
		if r.Contains(col, row) && cv.Get(col, row).Ch == ' ' {
			cv.Set(col, row, glyphHeading, draw.ColorBrightCyan)
		}
	})
	if col, row, ok := r.Cell(p.Pos.X, p.Pos.Z); ok {
		cv.Set(col, row, glyphPlayer, draw.ColorBrightCyan)
	}
}

// drawHUD draws the status rows above and below the radar.
// Fields use fixed widths so the layout doesn't shift as values change.
func (c *Client) drawHUD(snap *loop.Snapshot) {
	cv := c.canvas
	w, h := cv.Width(), cv.Height()
	p := snap.Player

	top := fmt.Sprintf("SCORE %-7d  KILLS %-4d  SAVED %-3d  LEVEL %-2d",
		p.Score, p.LandersDestroyed, p.AstronautsSaved, snap.Level)
	cv.Text(2, 0, top, draw.ColorBrightWhite)

	status := fmt.Sprintf("ALT %3.0f  HDG %3.0f°  T %s",
		p.Pos.Y, headingDegrees(p.Yaw), clock(snap.MissionMs))
	cv.Text(w-len([]rune(status))-2, 0, status, "")

	cv.Text(1, 1, strings.Repeat("─", max(0, w-2)), draw.ColorDim)
	cv.Text(1, h-3, strings.Repeat("─", max(0, w-2)), draw.ColorDim)

	health := fmt.Sprintf("HULL   %s %3.0f%%", bar(p.Health/config.MaxHealth, 20), p.Health)
	cv.Text(2, h-2, health, barColor(p.Health/config.MaxHealth))
	energy := fmt.Sprintf("ENERGY %s %3.0f%%", bar(p.Energy/config.MaxEnergy, 20), p.Energy)
	cv.Text(2, h-1, energy, draw.ColorBrightCyan)

	counts := fmt.Sprintf("ASTRONAUTS %-3d  LANDERS %-3d", len(snap.Astronauts), len(snap.Landers))
	cv.Text(w-len(counts)-2, h-2, counts, "")

	if c.state.Message != "" {
		cv.CenterText(h-1, c.state.Message, draw.ColorYellow)
	}
}

// bar renders a fill gauge of width cells for a fraction in [0, 1].
func bar(frac float64, width int) string {
	frac = math.Max(0, math.Min(1, frac))
	full := int(math.Round(frac * float64(width)))
	return strings.Repeat(string(draw.BlockFull), full) + strings.Repeat(string(draw.BlockLight), width-full)
}

func barColor(frac float64) string {
	switch {
	case frac > 0.6:
		return draw.ColorGreen
	case frac > 0.3:
		return draw.ColorYellow
	default:
		return draw.ColorBrightRed
	}
}

// headingDegrees converts yaw to a compass heading in [0, 360).
func headingDegrees(yaw float64) float64 {
	deg := math.Mod(yaw*180/math.Pi, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

// clock formats mission milliseconds as m:ss.
func clock(ms int64) string {
	d := time.Duration(ms) * time.Millisecond
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}

// drawStartScreen draws the title screen.
func (c *Client) drawStartScreen(centerY int) {
	cv := c.canvas
	titleArt := []string{
		`╔═════════════════════════════════╗`,
		`║                                 ║`,
		`║    L U N A R   D E F E N D E R  ║`,
		`║                                 ║`,
		`╚═════════════════════════════════╝`,
	}
	titleStartY := centerY - 9
	for i, line := range titleArt {
		cv.CenterText(titleStartY+i, line, draw.ColorBrightCyan)
	}

	subtitle := "~ Keep the landers off the astronauts ~"
	cv.CenterText(titleStartY+len(titleArt)+1, subtitle, "")

	controlsY := titleStartY + len(titleArt) + 3
	cv.CenterText(controlsY, "Controls", draw.ColorBrightWhite)
	controlLines := []string{
		"W S  . . . . . Forward / Back",
		"A D  . . . . . . . . . Strafe",
		"R F  . . . . . Climb / Descend",
		"ARROWS / J L I K  . . . . Look",
		"SPACE  . . . . . . . . . Fire",
		"P  . . . . . . . . . . . Pause",
		"Q  . . . . . . . . . . . Quit",
	}
	for i, line := range controlLines {
		cv.CenterText(controlsY+1+i, line, "")
	}

	// Blinking start prompt
	if time.Now().UnixMilli()/600%2 == 0 {
		cv.CenterText(controlsY+len(controlLines)+2, ">>  Press ENTER to Launch  <<", draw.ColorYellow)
	}
}

// drawGameOverScreen draws the mission summary.
func (c *Client) drawGameOverScreen(centerY int, snap *loop.Snapshot) {
	cv := c.canvas
	titleStartY := centerY - 6
	cv.CenterText(titleStartY, "M I S S I O N   O V E R", draw.ColorBrightRed)

	sum := loop.Summary{
		Score:               snap.Player.Score,
		AstronautsSaved:     snap.Player.AstronautsSaved,
		AstronautsRemaining: len(snap.Astronauts),
		LandersDestroyed:    snap.Player.LandersDestroyed,
		Difficulty:          snap.Level,
		MissionMs:           snap.MissionMs,
	}
	if c.state.Summary != nil {
		sum = *c.state.Summary
	}

	lines := []string{
		fmt.Sprintf("Score               %6d", sum.Score),
		fmt.Sprintf("Landers destroyed   %6d", sum.LandersDestroyed),
		fmt.Sprintf("Astronauts saved    %6d", sum.AstronautsSaved),
		fmt.Sprintf("Astronauts left     %6d", sum.AstronautsRemaining),
		fmt.Sprintf("Difficulty reached  %6d", sum.Difficulty),
		fmt.Sprintf("Mission time        %6s", clock(sum.MissionMs)),
	}
	for i, line := range lines {
		cv.CenterText(titleStartY+2+i, line, "")
	}

	if time.Now().UnixMilli()/600%2 == 0 {
		cv.CenterText(titleStartY+len(lines)+4, ">>  Press ENTER to Fly Again  <<", draw.ColorYellow)
	}
}

// drawPausedBanner overlays the pause notice on the field.
func (c *Client) drawPausedBanner(centerY int) {
	c.canvas.CenterText(centerY, "  P A U S E D  ", draw.ColorBrightWhite)
	c.canvas.CenterText(centerY+1, "  P to resume  ", "")
}

// drawHaltedScreen reports a mission the server had to stop.
func (c *Client) drawHaltedScreen(centerY int) {
	cv := c.canvas
	cv.CenterText(centerY-2, "SIMULATION HALTED", draw.ColorBrightRed)
	cv.CenterText(centerY, "The mission hit an internal fault and was stopped.", "")
	cv.CenterText(centerY+2, "Press Q to disconnect", "")
}

// drawInactivityScreen draws the inactivity warning screen.
func (c *Client) drawInactivityScreen(centerY int) {
	cv := c.canvas
	cv.CenterText(centerY-2, "INACTIVITY WARNING", draw.ColorYellow)

	msg := fmt.Sprintf(
		"You have been inactive for too long. You will be disconnected in %d seconds.",
		int(config.InactivityDisconnectUser-time.Since(c.lastInput).Seconds()),
	)
	cv.CenterText(centerY, msg, "")
	cv.CenterText(centerY+2, "Press any key to continue", "")
}

// drawShutdownScreen draws the server shutdown notification screen.
func (c *Client) drawShutdownScreen(centerY int) {
	cv := c.canvas
	cv.CenterText(centerY-3, "SERVER SHUTTING DOWN", draw.ColorBrightRed)
	cv.CenterText(centerY-1, "The server is restarting for maintenance.", "")
	cv.CenterText(centerY, "Please reconnect in a moment.", "")

	remaining := int(c.state.shutdownTimer) + 1
	cv.CenterText(centerY+2, fmt.Sprintf("Disconnecting in %d seconds...", remaining), "")
	cv.CenterText(centerY+4, "Press Q to disconnect now", "")
}
