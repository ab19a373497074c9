package loop

// spawnLanders adds at most one lander per tick when the spawn timer is due.
func (g *Game) spawnLanders(now int64) {
	d := g.sim.Difficulty
	if g.tun.EnforceEnemyCap && g.sim.LiveLanders() >= d.MaxEnemies {
		return
	}

	p := g.sim.Player
	l, ok := g.spawner.MaybeSpawnLander(now, p.LastSpawnTime, d.SpawnInterval, g.sim.Scroll)
	if !ok {
		return
	}
	l.ID = g.sim.NewID()
	g.sim.Landers = append(g.sim.Landers, l)
	g.track(l)
	p.LastSpawnTime = now

	g.log.Debugw("lander spawned", "id", l.ID, "z", l.Pos.Z, "level", d.Level)
}

// advance moves lasers, re-anchors astronauts to the scrolled ground, then
// steers landers toward the astronauts' updated positions.
func (g *Game) advance() {
	for _, laser := range g.sim.Lasers {
		laser.Advance()
		if laser.Expired(g.tun.MaxLaserDistance) {
			laser.MarkDestroyed()
		}
	}

	for _, a := range g.sim.Astronauts {
		a.Follow(g.sim.Scroll, g.terrain.HeightAt)
	}

	speed := g.sim.Difficulty.GameSpeed
	for _, l := range g.sim.Landers {
		l.Steer(g.sim.Astronauts, g.sim.Scroll, speed)
	}
}
