package loop

import (
	"github.com/tomz197/lunardefender/internal/loop/config"
	"github.com/tomz197/lunardefender/internal/object"
	"github.com/tomz197/lunardefender/internal/physics"
)

// resolveCollisions runs the proximity checks in a fixed order, then drops
// everything marked destroyed.
func (g *Game) resolveCollisions() {
	g.checkLaserHits()
	g.checkPlayerHits()
	g.checkCaptures()
	g.checkRescues()
	g.cullOutOfBounds()

	g.sim.Lasers = object.Compact(g.sim.Lasers, func(l *object.Laser) { g.untrack(l.ID) })
	g.sim.Landers = object.Compact(g.sim.Landers, func(l *object.Lander) { g.untrack(l.ID) })
	g.sim.Astronauts = object.Compact(g.sim.Astronauts, func(a *object.Astronaut) { g.untrack(a.ID) })
}

// checkLaserHits destroys laser and lander pairs in range. Unless every
// hit is requested, the scan stops at the first resolved pair.
func (g *Game) checkLaserHits() {
	landers := g.sim.Landers
	g.grid.Clear()
	for i, l := range landers {
		if !l.IsDestroyed() {
			g.grid.Insert(l.Pos.X, l.Pos.Z, i)
		}
	}

	for _, laser := range g.sim.Lasers {
		if laser.IsDestroyed() {
			continue
		}
		// Candidates come back in cell order; the hit is the first in list order.
		hit := -1
		g.grid.QueryAround(laser.Pos.X, laser.Pos.Z, func(i int) bool {
			l := landers[i]
			if (hit < 0 || i < hit) && !l.IsDestroyed() && object.Collides(laser, l, g.tun.HitRadius) {
				hit = i
			}
			return false
		})
		if hit < 0 {
			continue
		}

		l := landers[hit]
		laser.MarkDestroyed()
		l.MarkDestroyed()

		p := g.sim.Player
		p.LandersDestroyed++
		g.addScore(config.ScoreLanderDestroyed)
		g.presenter.SpawnExplosionEffect(l.Pos)
		g.presenter.ShowScorePopup(l.Pos, config.ScoreLanderDestroyed)
		g.presenter.OnLanderDestroyed()
		g.log.Debugw("lander destroyed", "id", l.ID, "laser", laser.ID, "score", p.Score)

		if !g.tun.ResolveAllHits {
			return
		}
	}
}

// checkPlayerHits rams landers into the player.
func (g *Game) checkPlayerHits() {
	p := g.sim.Player
	for _, l := range g.sim.Landers {
		if l.IsDestroyed() || !object.Collides(l, p, g.tun.PlayerHitRadius) {
			continue
		}
		l.MarkDestroyed()
		g.presenter.SpawnExplosionEffect(l.Pos)
		g.log.Debugw("player rammed", "id", l.ID, "damage", g.tun.LanderHitDamage)
		g.ApplyDamage(g.tun.LanderHitDamage)
		if p.IsDead() {
			return
		}
	}
}

// checkCaptures removes astronauts reached by a lander. The lander is
// spent as well. No score changes hands.
func (g *Game) checkCaptures() {
	for _, l := range g.sim.Landers {
		if l.IsDestroyed() {
			continue
		}
		for _, a := range g.sim.Astronauts {
			if a.IsDestroyed() || !object.Collides(l, a, g.tun.CaptureRadius) {
				continue
			}
			l.MarkDestroyed()
			a.MarkDestroyed()
			g.presenter.OnAstronautLost()
			g.log.Debugw("astronaut captured", "id", a.ID, "lander", l.ID)
			break
		}
	}
}

// checkRescues picks up astronauts the player hovers low over.
func (g *Game) checkRescues() {
	p := g.sim.Player
	for _, a := range g.sim.Astronauts {
		if a.IsDestroyed() {
			continue
		}
		if physics.PlanarDistance(p.Pos.X, p.Pos.Z, a.Pos.X, a.Pos.Z) >= g.tun.RescueRadius {
			continue
		}
		if p.Pos.Y-a.Pos.Y >= g.tun.RescueAltitude {
			continue
		}
		a.MarkDestroyed()
		p.AstronautsSaved++
		g.addScore(config.ScoreAstronautSaved)
		g.presenter.ShowScorePopup(a.Pos, config.ScoreAstronautSaved)
		g.log.Debugw("astronaut rescued", "id", a.ID, "saved", p.AstronautsSaved)
	}
}

// cullOutOfBounds drops landers left behind or fallen, and astronauts that
// fell off the field. A fallen astronaut costs score.
func (g *Game) cullOutOfBounds() {
	for _, l := range g.sim.Landers {
		if l.IsDestroyed() {
			continue
		}
		if l.Pos.Z < config.LanderCullZ || l.Pos.Y < config.FallCullY {
			l.MarkDestroyed()
		}
	}

	for _, a := range g.sim.Astronauts {
		if a.IsDestroyed() || a.Pos.Y >= config.FallCullY {
			continue
		}
		a.MarkDestroyed()
		g.addScore(config.ScoreAstronautLost)
		g.presenter.OnAstronautLost()
		g.log.Debugw("astronaut lost off field", "id", a.ID)
	}
}
