package rochambeau

// PairwiseScore is +1 when hand beats opponent, -1 when it loses and 0 on a tie. ROCK beats SCISSORS, SCISSORS beats
// PAPER, PAPER beats ROCK.
func PairwiseScore(hand, opponent Move) int {
	if hand == opponent {
		return 0
	}
	if beats(hand) == opponent {
		return 1
	}
	return -1
}

// RoundScore sums the pairwise scores against every opponent, floored at zero so a round never costs points.
func RoundScore(hand Move, opponents ...Move) int {
	score := 0
	for _, opponent := range opponents {
		score += PairwiseScore(hand, opponent)
	}
	if score < 0 {
		return 0
	}
	return score
}

// noMove is outside the set of valid moves.
const noMove = Move(-128)

func beats(hand Move) Move {
	switch hand {
	case ROCK:
		return SCISSORS
	case SCISSORS:
		return PAPER
	case PAPER:
		return ROCK
	default:
		return noMove
	}
}
