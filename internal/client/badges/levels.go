package badges

type Level struct {
	Number int
	Name   string
	MinXP  int64
}

var levels = []Level{
	{1, "Observer", 0},
	{2, "Participant", 50},
	{3, "Citizen", 100},
	{4, "Advocate", 250},
	{5, "Organizer", 500},
	{6, "Leader", 1000},
	{7, "Statesperson", 2500},
}

// LevelFor returns the highest level whose MinXP is <= xp.
func LevelFor(xp int64) Level {
	cur := levels[0]
	for _, l := range levels {
		if xp >= l.MinXP {
			cur = l
		}
	}
	return cur
}

// NextLevel returns the level after the current one and false at the top.
func NextLevel(xp int64) (Level, bool) {
	cur := LevelFor(xp)
	if cur.Number >= len(levels) {
		return Level{}, false
	}
	return levels[cur.Number], true
}
