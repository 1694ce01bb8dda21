package geom

// JoinType selects how a 2D offset fills the gap at a convex corner.
type JoinType int

const (
	JoinRound   JoinType = iota // circular arc around the corner
	JoinMiter                   // edges extended until they meet
	JoinChamfer                 // corner cut square across the bisector
)

func (j JoinType) String() string {
	switch j {
	case JoinRound:
		return "round"
	case JoinMiter:
		return "miter"
	case JoinChamfer:
		return "chamfer"
	default:
		return "unknown"
	}
}

// Valid reports whether j is one of the defined join types.
func (j JoinType) Valid() bool {
	return j >= JoinRound && j <= JoinChamfer
}
